package sql

import (
	"context"
	"fmt"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"

	"gorm.io/gorm"
)

// dealColumns 允许作为成交判断依据的列
var dealColumns = map[string]struct{}{
	"deal_status": {},
	"status":      {},
}

func (r *GormRepository) statsQuery(ctx context.Context, filter dto.BusinessStatsFilter) (*gorm.DB, error) {
	query := r.db.WithContext(ctx).Model(&db.Business{})
	if filter.AgentID > 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.InsuranceTypeID > 0 {
		query = query.Where("insurance_type_id = ?", filter.InsuranceTypeID)
	}
	if filter.From != nil {
		query = query.Where("inquiry_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("inquiry_date <= ?", *filter.To)
	}
	if filter.DealColumn != "" && filter.DealValue != "" {
		if _, ok := dealColumns[filter.DealColumn]; !ok {
			return nil, fmt.Errorf("unsupported deal column %q", filter.DealColumn)
		}
		query = query.Where(filter.DealColumn+" = ?", filter.DealValue)
	}
	return query, nil
}

// AggregateBusinesses counts matching rows and sums their premium. No rows yields zeros.
func (r *GormRepository) AggregateBusinesses(ctx context.Context, filter dto.BusinessStatsFilter) (dto.BusinessAggregate, error) {
	if r == nil || r.db == nil {
		return dto.BusinessAggregate{}, errNotInitialised
	}
	query, err := r.statsQuery(ctx, filter)
	if err != nil {
		return dto.BusinessAggregate{}, err
	}
	var agg dto.BusinessAggregate
	if err := query.Select("COUNT(*) AS count, COALESCE(SUM(premium_amount), 0) AS premium").Scan(&agg).Error; err != nil {
		return dto.BusinessAggregate{}, err
	}
	return agg, nil
}

// ListBusinessFacts returns the projection of matching rows needed for bucketing.
func (r *GormRepository) ListBusinessFacts(ctx context.Context, filter dto.BusinessStatsFilter) ([]dto.BusinessFact, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	query, err := r.statsQuery(ctx, filter)
	if err != nil {
		return nil, err
	}
	var facts []dto.BusinessFact
	err = query.
		Select("id, agent_id, insurance_type_id, status, deal_status, premium_amount, inquiry_date").
		Order("inquiry_date ASC, id ASC").
		Scan(&facts).Error
	if err != nil {
		return nil, err
	}
	return facts, nil
}
