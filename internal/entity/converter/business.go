package converter

import (
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
)

// BusinessToView converts a db.Business with preloaded relations to a view.
func BusinessToView(b *db.Business) dto.BusinessView {
	if b == nil {
		return dto.BusinessView{}
	}
	view := dto.BusinessView{
		ID:                  b.ID,
		AgentID:             b.AgentID,
		UnderwriterID:       b.UnderwriterID,
		InsuranceID:         b.InsuranceID,
		SpecificInsuranceID: b.SpecificInsuranceID,
		InsuranceTypeID:     b.InsuranceTypeID,
		BusinessLevelID:     b.BusinessLevelID,
		CustomerName:        b.CustomerName,
		CustomerPhone:       b.CustomerPhone,
		CustomerEmail:       b.CustomerEmail,
		ClientType:          b.ClientType,
		PersonalName:        b.PersonalName,
		CompanyName:         b.CompanyName,
		PlateNumber:         b.PlateNumber,
		PolicyNumber:        b.PolicyNumber,
		PremiumAmount:       b.PremiumAmount,
		CoverageAmount:      b.CoverageAmount,
		InquiryAmount:       b.InquiryAmount,
		StartDate:           b.StartDate,
		EndDate:             b.EndDate,
		Status:              b.Status,
		DealStatus:          b.DealStatus,
		DealStatusText:      db.DealStatusLabel(b.DealStatus),
		InquiryDate:         b.InquiryDate,
		ApprovalDate:        b.ApprovalDate,
		ReminderTime:        b.ReminderTime,
		DealTime:            b.DealTime,
		FollowUpRemark:      b.FollowUpRemark,
		Remarks:             b.Remarks,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
	if b.Agent != nil {
		view.AgentName = b.Agent.Name
	}
	if b.Underwriter != nil {
		view.UnderwriterName = b.Underwriter.Name
	}
	if b.SpecificInsurance != nil {
		view.SpecificInsuranceName = b.SpecificInsurance.Name
	}
	if b.InsuranceType != nil {
		view.InsuranceTypeName = b.InsuranceType.Name
	}
	if b.BusinessLevel != nil {
		view.BusinessLevelName = b.BusinessLevel.Name
	}
	return view
}

// BusinessesToViews converts a slice of db.Business.
func BusinessesToViews(items []db.Business) []dto.BusinessView {
	out := make([]dto.BusinessView, len(items))
	for i := range items {
		out[i] = BusinessToView(&items[i])
	}
	return out
}
