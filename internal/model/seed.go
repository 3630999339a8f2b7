package model

import (
	"context"
	"errors"
	"fmt"
	"insurance/internal/auth"
	"insurance/internal/config"
	"insurance/internal/entity/db"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var defaultCategories = []string{
	"个人意外险",
	"团体意外险",
	"健康险",
	"人寿险",
	"财产险",
	"学平险",
}

var defaultBusinessLevels = []db.BusinessLevel{
	{Name: "一级业务", Description: "重点客户业务，优先跟进", Status: true},
	{Name: "二级业务", Description: "一般客户业务，正常跟进", Status: true},
	{Name: "三级业务", Description: "普通客户业务，按需跟进", Status: true},
}

// SeedDefaults ensures the admin account, default insurance categories and
// business levels exist. Existing rows are left untouched.
func SeedDefaults(ctx context.Context, repo Repository, cfg config.Config) error {
	if repo == nil {
		return nil
	}
	if err := seedAdmin(ctx, repo, cfg); err != nil {
		return err
	}
	for _, name := range defaultCategories {
		_, err := repo.GetCategoryByName(ctx, name)
		switch {
		case err == nil:
			continue
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := repo.CreateCategory(ctx, &db.InsuranceCategory{Name: name}); err != nil {
				return fmt.Errorf("seed category %s: %w", name, err)
			}
		default:
			return err
		}
	}
	for _, seed := range defaultBusinessLevels {
		_, err := repo.GetBusinessLevelByName(ctx, seed.Name)
		switch {
		case err == nil:
			continue
		case errors.Is(err, gorm.ErrRecordNotFound):
			level := seed
			if err := repo.CreateBusinessLevel(ctx, &level); err != nil {
				return fmt.Errorf("seed business level %s: %w", seed.Name, err)
			}
		default:
			return err
		}
	}
	return nil
}

func seedAdmin(ctx context.Context, repo Repository, cfg config.Config) error {
	username := cfg.AdminUsername
	if username == "" {
		username = "admin"
	}
	_, err := repo.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &db.User{
		Username: username,
		Password: hashed,
		Name:     "系统管理员",
		Role:     db.UserRoleAdmin,
		Status:   true,
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logrus.WithField("username", username).Info("default admin account created")
	return nil
}
