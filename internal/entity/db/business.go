package db

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ClientTypePersonal = "personal"
	ClientTypeCompany  = "company"
	ClientTypeVehicle  = "vehicle"
)

const (
	BusinessStatusPending  = "pending"
	BusinessStatusApproved = "approved"
	BusinessStatusRejected = "rejected"
	BusinessStatusExpired  = "expired"
)

const (
	DealStatusPending = "pending"
	DealStatusSuccess = "success"
	DealStatusFailed  = "failed"
)

// ValidClientType 判断客户类型是否受支持。
func ValidClientType(v string) bool {
	switch v {
	case ClientTypePersonal, ClientTypeCompany, ClientTypeVehicle:
		return true
	}
	return false
}

// ValidBusinessStatus 判断业务状态是否受支持。
func ValidBusinessStatus(v string) bool {
	switch v {
	case BusinessStatusPending, BusinessStatusApproved, BusinessStatusRejected, BusinessStatusExpired:
		return true
	}
	return false
}

// DealStatusLabel 返回成交状态的中文描述，未知值原样返回。
func DealStatusLabel(v string) string {
	switch v {
	case DealStatusPending:
		return "跟进中"
	case DealStatusSuccess:
		return "已成交"
	case DealStatusFailed:
		return "已失效"
	}
	return v
}

// DealStatusFromLabel 是 DealStatusLabel 的逆映射。
func DealStatusFromLabel(label string) string {
	switch label {
	case "跟进中":
		return DealStatusPending
	case "已成交":
		return DealStatusSuccess
	case "已失效":
		return DealStatusFailed
	}
	return label
}

// Business 一条询价/保单业务记录。
// status 与 deal_status 是两个独立字段，统计时由调用方指定使用哪一个。
type Business struct {
	ID                  uint  `gorm:"primarykey" json:"id"`
	AgentID             uint  `gorm:"column:agent_id;index;not null" json:"agent_id"`
	UnderwriterID       *uint `gorm:"column:underwriter_id;index" json:"underwriter_id"`
	InsuranceID         *uint `gorm:"column:insurance_id" json:"insurance_id"`
	SpecificInsuranceID *uint `gorm:"column:specific_insurance_id;index" json:"specific_insurance_id"`
	InsuranceTypeID     *uint `gorm:"column:insurance_type_id;index" json:"insurance_type_id"`
	BusinessLevelID     *uint `gorm:"column:business_level_id" json:"business_level_id"`

	CustomerName  string `gorm:"column:customer_name;type:varchar(128)" json:"customer_name"`
	CustomerPhone string `gorm:"column:customer_phone;type:varchar(32)" json:"customer_phone"`
	CustomerEmail string `gorm:"column:customer_email;type:varchar(128)" json:"customer_email"`
	ClientType    string `gorm:"column:client_type;type:varchar(20);not null" json:"client_type"`
	PersonalName  string `gorm:"column:personal_name;type:varchar(64)" json:"personal_name"`
	CompanyName   string `gorm:"column:company_name;type:varchar(128)" json:"company_name"`
	PlateNumber   string `gorm:"column:plate_number;type:varchar(32)" json:"plate_number"`
	PolicyNumber  string `gorm:"column:policy_number;type:varchar(64)" json:"policy_number"`

	PremiumAmount  decimal.Decimal `gorm:"column:premium_amount;type:decimal(14,2);not null" json:"premium_amount"`
	CoverageAmount decimal.Decimal `gorm:"column:coverage_amount;type:decimal(14,2);not null" json:"coverage_amount"`
	InquiryAmount  decimal.Decimal `gorm:"column:inquiry_amount;type:decimal(14,2);not null" json:"inquiry_amount"`

	StartDate *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate   *time.Time `gorm:"column:end_date" json:"end_date"`

	Status     string `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	DealStatus string `gorm:"column:deal_status;type:varchar(20);index" json:"deal_status"`

	InquiryDate    time.Time  `gorm:"column:inquiry_date;index;not null" json:"inquiry_date"`
	ApprovalDate   *time.Time `gorm:"column:approval_date" json:"approval_date"`
	ReminderTime   *time.Time `gorm:"column:reminder_time" json:"reminder_time"`
	DealTime       *time.Time `gorm:"column:deal_time" json:"deal_time"`
	FollowUpRemark string     `gorm:"column:follow_up_remark;type:text" json:"follow_up_remark"`
	Remarks        string     `gorm:"column:remarks;type:text" json:"remarks"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	Agent             *User              `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Underwriter       *User              `gorm:"foreignKey:UnderwriterID" json:"underwriter,omitempty"`
	SpecificInsurance *Insurance         `gorm:"foreignKey:SpecificInsuranceID" json:"specific_insurance,omitempty"`
	InsuranceType     *InsuranceCategory `gorm:"foreignKey:InsuranceTypeID" json:"insurance_type,omitempty"`
	BusinessLevel     *BusinessLevel     `gorm:"foreignKey:BusinessLevelID" json:"business_level,omitempty"`
}

// TableName 指定表名。
func (Business) TableName() string {
	return "business"
}

// ResolvedCustomerName 按客户类型取出对应的名称字段，缺省时回退到 customer_name。
func (b *Business) ResolvedCustomerName() string {
	switch b.ClientType {
	case ClientTypePersonal:
		if b.PersonalName != "" {
			return b.PersonalName
		}
	case ClientTypeCompany:
		if b.CompanyName != "" {
			return b.CompanyName
		}
	case ClientTypeVehicle:
		if b.PlateNumber != "" {
			return b.PlateNumber
		}
	}
	return b.CustomerName
}
