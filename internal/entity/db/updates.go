package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserUpdates 用户更新字段
type UserUpdates struct {
	Name       *string
	Password   *string
	Role       *string
	Email      *string
	Phone      *string
	Department *string
	Status     *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Password != nil {
		updates["password"] = *u.Password
	}
	if u.Role != nil {
		updates["role"] = *u.Role
	}
	if u.Email != nil {
		updates["email"] = *u.Email
	}
	if u.Phone != nil {
		updates["phone"] = *u.Phone
	}
	if u.Department != nil {
		updates["department"] = *u.Department
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// InsuranceUpdates 保险产品更新字段
type InsuranceUpdates struct {
	Name        *string
	Code        *string
	CategoryID  *uint
	Description *string
	Status      *bool
	Image       *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u InsuranceUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Code != nil {
		updates["code"] = *u.Code
	}
	if u.CategoryID != nil {
		updates["category_id"] = *u.CategoryID
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.Image != nil {
		updates["image"] = *u.Image
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u InsuranceUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// BusinessLevelUpdates 业务等级更新字段
type BusinessLevelUpdates struct {
	Name        *string
	Description *string
	Status      *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u BusinessLevelUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u BusinessLevelUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// BusinessUpdates 业务记录的部分更新字段
type BusinessUpdates struct {
	AgentID             *uint
	UnderwriterID       *uint
	InsuranceID         *uint
	SpecificInsuranceID *uint
	InsuranceTypeID     *uint
	BusinessLevelID     *uint

	CustomerName  *string
	CustomerPhone *string
	CustomerEmail *string
	ClientType    *string
	PersonalName  *string
	CompanyName   *string
	PlateNumber   *string
	PolicyNumber  *string

	PremiumAmount  *decimal.Decimal
	CoverageAmount *decimal.Decimal
	InquiryAmount  *decimal.Decimal

	StartDate *time.Time
	EndDate   *time.Time

	Status     *string
	DealStatus *string

	InquiryDate    *time.Time
	ApprovalDate   *time.Time
	ReminderTime   *time.Time
	DealTime       *time.Time
	FollowUpRemark *string
	Remarks        *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u BusinessUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	setUint := func(col string, v *uint) {
		if v != nil {
			updates[col] = *v
		}
	}
	setString := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	setDecimal := func(col string, v *decimal.Decimal) {
		if v != nil {
			updates[col] = *v
		}
	}
	setTime := func(col string, v *time.Time) {
		if v != nil {
			updates[col] = *v
		}
	}

	setUint("agent_id", u.AgentID)
	setUint("underwriter_id", u.UnderwriterID)
	setUint("insurance_id", u.InsuranceID)
	setUint("specific_insurance_id", u.SpecificInsuranceID)
	setUint("insurance_type_id", u.InsuranceTypeID)
	setUint("business_level_id", u.BusinessLevelID)

	setString("customer_name", u.CustomerName)
	setString("customer_phone", u.CustomerPhone)
	setString("customer_email", u.CustomerEmail)
	setString("client_type", u.ClientType)
	setString("personal_name", u.PersonalName)
	setString("company_name", u.CompanyName)
	setString("plate_number", u.PlateNumber)
	setString("policy_number", u.PolicyNumber)

	setDecimal("premium_amount", u.PremiumAmount)
	setDecimal("coverage_amount", u.CoverageAmount)
	setDecimal("inquiry_amount", u.InquiryAmount)

	setTime("start_date", u.StartDate)
	setTime("end_date", u.EndDate)

	setString("status", u.Status)
	setString("deal_status", u.DealStatus)

	setTime("inquiry_date", u.InquiryDate)
	setTime("approval_date", u.ApprovalDate)
	setTime("reminder_time", u.ReminderTime)
	setTime("deal_time", u.DealTime)
	setString("follow_up_remark", u.FollowUpRemark)
	setString("remarks", u.Remarks)
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u BusinessUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
