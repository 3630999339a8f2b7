package dto

import (
	"insurance/internal/entity/common"
	"time"

	"github.com/shopspring/decimal"
)

// BusinessQuery filters the business list. Dates are YYYY-MM-DD and inclusive.
type BusinessQuery struct {
	common.BaseParams
	AgentID             uint   `form:"agentId"`
	UnderwriterID       uint   `form:"underwriterId"`
	InsuranceTypeID     uint   `form:"insuranceTypeId"`
	SpecificInsuranceID uint   `form:"specificInsuranceId"`
	BusinessLevelID     uint   `form:"businessLevelId"`
	ClientType          string `form:"clientType"`
	DealStatus          string `form:"dealStatus"`
	Status              string `form:"status"`
	CustomerName        string `form:"customerName"`
	Keyword             string `form:"keyword"`
	MinAmount           string `form:"minAmount"`
	MaxAmount           string `form:"maxAmount"`
	StartDate           string `form:"startDate"`
	EndDate             string `form:"endDate"`
}

// BusinessCreateRequest is the payload of POST /api/business/add.
// Amount fields accept numbers or numeric strings.
type BusinessCreateRequest struct {
	AgentID             uint   `json:"agentId" binding:"required"`
	UnderwriterID       *uint  `json:"underwriterId"`
	InsuranceTypeID     *uint  `json:"insuranceTypeId"`
	SpecificInsuranceID *uint  `json:"specificInsuranceId"`
	BusinessLevelID     *uint  `json:"businessLevelId"`
	ClientType          string `json:"clientType" binding:"required,client_type"`
	CustomerName        string `json:"customerName"`
	ClientName          string `json:"clientName"`
	PersonalName        string `json:"personalName"`
	CompanyName         string `json:"companyName"`
	PlateNumber         string `json:"plateNumber"`
	CustomerPhone       string `json:"customerPhone"`
	CustomerEmail       string `json:"customerEmail" binding:"omitempty,email"`
	PolicyNumber        string `json:"policyNumber"`

	InquiryAmount  decimal.NullDecimal `json:"inquiryAmount"`
	Premium        decimal.NullDecimal `json:"premium"`
	AmountInsured  decimal.NullDecimal `json:"amountInsured"`
	Status         string              `json:"status" binding:"omitempty,business_status"`
	DealStatus     string              `json:"dealStatus"`
	StartDate      string              `json:"startDate"`
	EndDate        string              `json:"endDate"`
	InquiryDate    string              `json:"inquiryDate"`
	ReminderTime   string              `json:"reminderTime"`
	DealTime       string              `json:"dealTime"`
	FollowUpRemark string              `json:"followUpRemark"`
	Remark         string              `json:"remark"`
}

// BusinessUpdateRequest is the partial update payload of PUT /api/business/update/:id.
type BusinessUpdateRequest struct {
	AgentID             *uint   `json:"agentId"`
	UnderwriterID       *uint   `json:"underwriterId"`
	InsuranceTypeID     *uint   `json:"insuranceTypeId"`
	SpecificInsuranceID *uint   `json:"specificInsuranceId"`
	BusinessLevelID     *uint   `json:"businessLevelId"`
	ClientType          *string `json:"clientType" binding:"omitempty,client_type"`
	CustomerName        *string `json:"customerName"`
	PersonalName        *string `json:"personalName"`
	CompanyName         *string `json:"companyName"`
	PlateNumber         *string `json:"plateNumber"`
	CustomerPhone       *string `json:"customerPhone"`
	CustomerEmail       *string `json:"customerEmail" binding:"omitempty,email"`
	PolicyNumber        *string `json:"policyNumber"`

	InquiryAmount  *decimal.Decimal `json:"inquiryAmount"`
	Premium        *decimal.Decimal `json:"premium"`
	AmountInsured  *decimal.Decimal `json:"amountInsured"`
	Status         *string          `json:"status" binding:"omitempty,business_status"`
	DealStatus     *string          `json:"dealStatus"`
	StartDate      *string          `json:"startDate"`
	EndDate        *string          `json:"endDate"`
	InquiryDate    *string          `json:"inquiryDate"`
	ApprovalDate   *string          `json:"approvalDate"`
	ReminderTime   *string          `json:"reminderTime"`
	DealTime       *string          `json:"dealTime"`
	FollowUpRemark *string          `json:"followUpRemark"`
	Remark         *string          `json:"remark"`
}

// BusinessView is a business row with the names of its related records resolved.
type BusinessView struct {
	ID                    uint            `json:"id"`
	AgentID               uint            `json:"agent_id"`
	AgentName             string          `json:"agent_name"`
	UnderwriterID         *uint           `json:"underwriter_id"`
	UnderwriterName       string          `json:"underwriter_name"`
	InsuranceID           *uint           `json:"insurance_id"`
	SpecificInsuranceID   *uint           `json:"specific_insurance_id"`
	SpecificInsuranceName string          `json:"specific_insurance_name"`
	InsuranceTypeID       *uint           `json:"insurance_type_id"`
	InsuranceTypeName     string          `json:"insurance_type_name"`
	BusinessLevelID       *uint           `json:"business_level_id"`
	BusinessLevelName     string          `json:"business_level_name"`
	CustomerName          string          `json:"customer_name"`
	CustomerPhone         string          `json:"customer_phone"`
	CustomerEmail         string          `json:"customer_email"`
	ClientType            string          `json:"client_type"`
	PersonalName          string          `json:"personal_name"`
	CompanyName           string          `json:"company_name"`
	PlateNumber           string          `json:"plate_number"`
	PolicyNumber          string          `json:"policy_number"`
	PremiumAmount         decimal.Decimal `json:"premium_amount"`
	CoverageAmount        decimal.Decimal `json:"coverage_amount"`
	InquiryAmount         decimal.Decimal `json:"inquiry_amount"`
	StartDate             *time.Time      `json:"start_date"`
	EndDate               *time.Time      `json:"end_date"`
	Status                string          `json:"status"`
	DealStatus            string          `json:"deal_status"`
	DealStatusText        string          `json:"deal_status_text"`
	InquiryDate           time.Time       `json:"inquiry_date"`
	ApprovalDate          *time.Time      `json:"approval_date"`
	ReminderTime          *time.Time      `json:"reminder_time"`
	DealTime              *time.Time      `json:"deal_time"`
	FollowUpRemark        string          `json:"follow_up_remark"`
	Remarks               string          `json:"remarks"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// Operator identifies who performs a mutation, for the operation log.
type Operator struct {
	ID        uint
	Name      string
	IPAddress string
}

// BusinessFilter is the parsed form of BusinessQuery used by the repository.
type BusinessFilter struct {
	common.BaseParams
	AgentID             uint
	UnderwriterID       uint
	InsuranceTypeID     uint
	SpecificInsuranceID uint
	BusinessLevelID     uint
	ClientType          string
	DealStatus          string
	Status              string
	CustomerName        string
	Keyword             string
	MinAmount           *decimal.Decimal
	MaxAmount           *decimal.Decimal
	From                *time.Time
	To                  *time.Time
}

// BusinessImportResult reports the outcome of a spreadsheet import.
type BusinessImportResult struct {
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// BusinessImportRow is one data row of the import spreadsheet, as text.
type BusinessImportRow struct {
	Line            int
	PolicyNumber    string
	CustomerName    string
	InsuranceName   string
	Policyholder    string
	Insured         string
	InsurancePeriod string
	InquiryAmount   string
	DealStatus      string
	AgentName       string
	InquiryDate     string
}
