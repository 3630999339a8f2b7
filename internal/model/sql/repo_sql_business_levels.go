package sql

import (
	"context"
	"fmt"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"strings"
)

// ListBusinessLevels returns business levels ordered by id.
func (r *GormRepository) ListBusinessLevels(ctx context.Context, params *dto.BusinessLevelQuery) ([]db.BusinessLevel, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	query := r.db.WithContext(ctx).Model(&db.BusinessLevel{})
	if params != nil {
		if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
			query = query.Where("name LIKE ?", "%"+keyword+"%")
		}
		if params.Status != nil {
			query = query.Where("status = ?", *params.Status)
		}
	}
	var levels []db.BusinessLevel
	if err := query.Order("id ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// GetBusinessLevel loads a business level by id.
func (r *GormRepository) GetBusinessLevel(ctx context.Context, id uint) (*db.BusinessLevel, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var level db.BusinessLevel
	if err := r.db.WithContext(ctx).First(&level, id).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

// GetBusinessLevelByName loads a business level by its unique name.
func (r *GormRepository) GetBusinessLevelByName(ctx context.Context, name string) (*db.BusinessLevel, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var level db.BusinessLevel
	if err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&level).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

// CreateBusinessLevel inserts a business level.
func (r *GormRepository) CreateBusinessLevel(ctx context.Context, level *db.BusinessLevel) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if level == nil {
		return fmt.Errorf("business level is nil")
	}
	return r.db.WithContext(ctx).Create(level).Error
}

// UpdateBusinessLevel updates business level fields.
func (r *GormRepository) UpdateBusinessLevel(ctx context.Context, id uint, updates db.BusinessLevelUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid business level id")
	}
	if updates.IsEmpty() {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&db.BusinessLevel{}).Where("id = ?", id).Updates(updates.ToMap())
	return r.checkUpdated(ctx, result, &db.BusinessLevel{}, id)
}

// DeleteBusinessLevel removes a business level.
func (r *GormRepository) DeleteBusinessLevel(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid business level id")
	}
	return notFoundIfNone(r.db.WithContext(ctx).Delete(&db.BusinessLevel{}, id))
}
