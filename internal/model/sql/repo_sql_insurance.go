package sql

import (
	"context"
	"fmt"
	"insurance/internal/entity/common"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"strings"
)

// ListCategories returns all insurance categories ordered by id.
func (r *GormRepository) ListCategories(ctx context.Context) ([]db.InsuranceCategory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var categories []db.InsuranceCategory
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CountInsurancesByCategory returns the number of products per category id.
func (r *GormRepository) CountInsurancesByCategory(ctx context.Context) (map[uint]int64, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var rows []struct {
		CategoryID uint
		Total      int64
	}
	err := r.db.WithContext(ctx).
		Model(&db.Insurance{}).
		Select("category_id, COUNT(*) AS total").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}
	return counts, nil
}

// GetCategory loads a category by id.
func (r *GormRepository) GetCategory(ctx context.Context, id uint) (*db.InsuranceCategory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var category db.InsuranceCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// GetCategoryByName loads a category by its unique name.
func (r *GormRepository) GetCategoryByName(ctx context.Context, name string) (*db.InsuranceCategory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var category db.InsuranceCategory
	if err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory inserts a new category.
func (r *GormRepository) CreateCategory(ctx context.Context, category *db.InsuranceCategory) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if category == nil {
		return fmt.Errorf("category is nil")
	}
	return r.db.WithContext(ctx).Create(category).Error
}

// UpdateCategory renames a category.
func (r *GormRepository) UpdateCategory(ctx context.Context, id uint, name string) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid category id")
	}
	result := r.db.WithContext(ctx).Model(&db.InsuranceCategory{}).Where("id = ?", id).Update("name", name)
	return r.checkUpdated(ctx, result, &db.InsuranceCategory{}, id)
}

// DeleteCategory removes a category.
func (r *GormRepository) DeleteCategory(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid category id")
	}
	return notFoundIfNone(r.db.WithContext(ctx).Delete(&db.InsuranceCategory{}, id))
}

// CategoryInUse reports whether products or business rows reference the category.
func (r *GormRepository) CategoryInUse(ctx context.Context, id uint) (bool, error) {
	if r == nil || r.db == nil {
		return false, errNotInitialised
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.Insurance{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.WithContext(ctx).Model(&db.Business{}).Where("insurance_type_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateInsurance inserts a new product.
func (r *GormRepository) CreateInsurance(ctx context.Context, insurance *db.Insurance) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if insurance == nil {
		return fmt.Errorf("insurance is nil")
	}
	return r.db.WithContext(ctx).Omit("Category").Create(insurance).Error
}

// UpdateInsurance updates product fields.
func (r *GormRepository) UpdateInsurance(ctx context.Context, id uint, updates db.InsuranceUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid insurance id")
	}
	if updates.IsEmpty() {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&db.Insurance{}).Where("id = ?", id).Updates(updates.ToMap())
	return r.checkUpdated(ctx, result, &db.Insurance{}, id)
}

// GetInsurance loads a product with its category.
func (r *GormRepository) GetInsurance(ctx context.Context, id uint) (*db.Insurance, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var insurance db.Insurance
	if err := r.db.WithContext(ctx).Preload("Category").First(&insurance, id).Error; err != nil {
		return nil, err
	}
	return &insurance, nil
}

// GetInsuranceByName loads the first product with the given name.
func (r *GormRepository) GetInsuranceByName(ctx context.Context, name string) (*db.Insurance, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var insurance db.Insurance
	if err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&insurance).Error; err != nil {
		return nil, err
	}
	return &insurance, nil
}

// ListInsurances returns paginated products.
func (r *GormRepository) ListInsurances(ctx context.Context, params *dto.InsuranceQuery) ([]db.Insurance, *common.Pagination, error) {
	if r == nil || r.db == nil {
		return nil, nil, errNotInitialised
	}

	query := r.db.WithContext(ctx).Model(&db.Insurance{}).Preload("Category")
	var base common.BaseParams
	if params != nil {
		base = params.BaseParams
		if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
			kw := "%" + strings.ToLower(keyword) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", kw, kw)
		}
		if params.CategoryID > 0 {
			query = query.Where("category_id = ?", params.CategoryID)
		}
		if params.Status != nil {
			query = query.Where("status = ?", *params.Status)
		}
	}

	var items []db.Insurance
	meta, err := r.paginate(query, base, "id DESC", &items)
	if err != nil {
		return nil, nil, err
	}
	return items, meta, nil
}

// DeleteInsurance removes a product.
func (r *GormRepository) DeleteInsurance(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid insurance id")
	}
	return notFoundIfNone(r.db.WithContext(ctx).Delete(&db.Insurance{}, id))
}

// CountInsurances returns total product count.
func (r *GormRepository) CountInsurances(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.Insurance{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
