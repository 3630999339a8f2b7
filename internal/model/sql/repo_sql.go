package sql

import (
	"context"
	"errors"
	"insurance/internal/entity/common"

	"gorm.io/gorm"
)

var errNotInitialised = errors.New("repository not initialised")

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// DB exposes the underlying connection.
func (r *GormRepository) DB() *gorm.DB {
	if r == nil {
		return nil
	}
	return r.db
}

// Ping checks the database connection.
func (r *GormRepository) Ping(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// paginate counts the query and loads one page of it into dest.
func (r *GormRepository) paginate(query *gorm.DB, params common.BaseParams, order string, dest interface{}) (*common.Pagination, error) {
	params.Normalize(20, 200)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	if err := query.Order(order).Offset(params.Offset()).Limit(params.PageSize).Find(dest).Error; err != nil {
		return nil, err
	}
	return common.NewPagination(total, params.Page, params.PageSize), nil
}

func notFoundIfNone(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// checkUpdated maps an update that touched no rows to ErrRecordNotFound,
// unless the row exists and simply kept its values.
func (r *GormRepository) checkUpdated(ctx context.Context, result *gorm.DB, model interface{}, id uint) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
