package sql

import (
	"context"
	"fmt"
	"insurance/internal/entity/common"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *GormRepository) businessQuery(ctx context.Context, filter *dto.BusinessFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&db.Business{})
	if filter == nil {
		return query
	}
	if filter.AgentID > 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.UnderwriterID > 0 {
		query = query.Where("underwriter_id = ?", filter.UnderwriterID)
	}
	if filter.InsuranceTypeID > 0 {
		query = query.Where("insurance_type_id = ?", filter.InsuranceTypeID)
	}
	if filter.SpecificInsuranceID > 0 {
		query = query.Where("specific_insurance_id = ?", filter.SpecificInsuranceID)
	}
	if filter.BusinessLevelID > 0 {
		query = query.Where("business_level_id = ?", filter.BusinessLevelID)
	}
	if v := strings.TrimSpace(filter.ClientType); v != "" {
		query = query.Where("client_type = ?", v)
	}
	if v := strings.TrimSpace(filter.DealStatus); v != "" {
		query = query.Where("deal_status = ?", v)
	}
	if v := strings.TrimSpace(filter.Status); v != "" {
		query = query.Where("status = ?", v)
	}
	if v := strings.TrimSpace(filter.CustomerName); v != "" {
		query = query.Where("customer_name LIKE ?", "%"+v+"%")
	}
	if v := strings.TrimSpace(filter.Keyword); v != "" {
		kw := "%" + v + "%"
		query = query.Where("(customer_name LIKE ? OR policy_number LIKE ? OR customer_phone LIKE ? OR plate_number LIKE ?)", kw, kw, kw, kw)
	}
	if filter.MinAmount != nil {
		query = query.Where("inquiry_amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("inquiry_amount <= ?", *filter.MaxAmount)
	}
	if filter.From != nil {
		query = query.Where("inquiry_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("inquiry_date <= ?", *filter.To)
	}
	return query
}

func withBusinessRelations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Agent").
		Preload("Underwriter").
		Preload("SpecificInsurance").
		Preload("InsuranceType").
		Preload("BusinessLevel")
}

// ListBusinesses returns paginated business rows with their relations.
func (r *GormRepository) ListBusinesses(ctx context.Context, filter *dto.BusinessFilter) ([]db.Business, *common.Pagination, error) {
	if r == nil || r.db == nil {
		return nil, nil, errNotInitialised
	}
	var base common.BaseParams
	if filter != nil {
		base = filter.BaseParams
	}
	var items []db.Business
	meta, err := r.paginate(withBusinessRelations(r.businessQuery(ctx, filter)), base, "id DESC", &items)
	if err != nil {
		return nil, nil, err
	}
	return items, meta, nil
}

// FindBusinesses returns every matching business row, used by the spreadsheet export.
func (r *GormRepository) FindBusinesses(ctx context.Context, filter *dto.BusinessFilter) ([]db.Business, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var items []db.Business
	if err := withBusinessRelations(r.businessQuery(ctx, filter)).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetBusiness loads a business row with its relations.
func (r *GormRepository) GetBusiness(ctx context.Context, id uint) (*db.Business, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid business id")
	}
	var business db.Business
	if err := withBusinessRelations(r.db.WithContext(ctx)).First(&business, id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// CountBusinessesByAgents counts business rows owned by any of the agents.
func (r *GormRepository) CountBusinessesByAgents(ctx context.Context, agentIDs []uint) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	if len(agentIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.Business{}).Where("agent_id IN ?", agentIDs).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateBusinessWithLog inserts the business row and its create log in one transaction.
func (r *GormRepository) CreateBusinessWithLog(ctx context.Context, business *db.Business, log *db.OperationLog) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if business == nil {
		return fmt.Errorf("business is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(business).Error; err != nil {
			return err
		}
		if log == nil {
			return nil
		}
		log.RelatedID = business.ID
		return tx.Create(log).Error
	})
}

// UpdateBusinessWithLog applies a partial update and writes its log in one transaction.
func (r *GormRepository) UpdateBusinessWithLog(ctx context.Context, id uint, updates db.BusinessUpdates, log *db.OperationLog) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid business id")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing db.Business
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return err
		}
		if !updates.IsEmpty() {
			if err := tx.Model(&db.Business{}).Where("id = ?", id).Updates(updates.ToMap()).Error; err != nil {
				return err
			}
		}
		if log == nil {
			return nil
		}
		log.RelatedID = id
		return tx.Create(log).Error
	})
}

// DeleteBusinessWithLog hard-deletes the row and writes its log in one transaction.
func (r *GormRepository) DeleteBusinessWithLog(ctx context.Context, id uint, log *db.OperationLog) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid business id")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := notFoundIfNone(tx.Delete(&db.Business{}, id)); err != nil {
			return err
		}
		if log == nil {
			return nil
		}
		log.RelatedID = id
		return tx.Create(log).Error
	})
}

// DeleteBusinessesWithLog hard-deletes the rows that exist among ids and writes
// one log entry per deleted row, all in one transaction.
func (r *GormRepository) DeleteBusinessesWithLog(ctx context.Context, ids []uint, log *db.OperationLog) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []uint
		if err := tx.Model(&db.Business{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
			return err
		}
		if len(existing) == 0 {
			return gorm.ErrRecordNotFound
		}
		result := tx.Where("id IN ?", existing).Delete(&db.Business{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		if log == nil {
			return nil
		}
		logs := make([]db.OperationLog, 0, len(existing))
		for _, id := range existing {
			entry := *log
			entry.RelatedID = id
			logs = append(logs, entry)
		}
		return tx.Create(&logs).Error
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// ImportBusinessesWithLog inserts all rows and a single import log in one transaction.
func (r *GormRepository) ImportBusinessesWithLog(ctx context.Context, businesses []db.Business, log *db.OperationLog) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if len(businesses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).CreateInBatches(&businesses, 100).Error; err != nil {
			return err
		}
		if log == nil {
			return nil
		}
		return tx.Create(log).Error
	})
}
