package converter

import (
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
)

// InsuranceToSummary converts a db.Insurance (with its preloaded category) to a summary.
func InsuranceToSummary(i *db.Insurance) dto.InsuranceSummary {
	if i == nil {
		return dto.InsuranceSummary{}
	}
	summary := dto.InsuranceSummary{
		ID:          i.ID,
		Name:        i.Name,
		Code:        i.Code,
		CategoryID:  i.CategoryID,
		Description: i.Description,
		Status:      i.Status,
		Image:       i.Image,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if i.Category != nil {
		summary.CategoryName = i.Category.Name
	}
	return summary
}

// InsurancesToSummaries converts a slice of db.Insurance.
func InsurancesToSummaries(items []db.Insurance) []dto.InsuranceSummary {
	out := make([]dto.InsuranceSummary, len(items))
	for i := range items {
		out[i] = InsuranceToSummary(&items[i])
	}
	return out
}

// InsuranceUpdatesFromRequest maps an update payload onto repository update fields.
func InsuranceUpdatesFromRequest(req dto.InsuranceUpdateRequest) db.InsuranceUpdates {
	return db.InsuranceUpdates{
		Name:        req.Name,
		Code:        req.Code,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Status:      req.Status,
	}
}

// BusinessLevelUpdatesFromRequest maps an update payload onto repository update fields.
func BusinessLevelUpdatesFromRequest(req dto.BusinessLevelUpdateRequest) db.BusinessLevelUpdates {
	return db.BusinessLevelUpdates{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	}
}
