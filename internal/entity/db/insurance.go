package db

import "time"

// InsuranceCategory 险种分类，例如健康险、财产险。
type InsuranceCategory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(64);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名。
func (InsuranceCategory) TableName() string {
	return "insurance_category"
}

// Insurance 具体的保险产品。
type Insurance struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Code        string    `gorm:"column:code;type:varchar(64);uniqueIndex;not null" json:"code"`
	CategoryID  uint      `gorm:"column:category_id;index;not null" json:"category_id"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Status      bool      `gorm:"column:status;not null" json:"status"`
	Image       string    `gorm:"column:image;type:varchar(512)" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Category *InsuranceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName 指定表名。
func (Insurance) TableName() string {
	return "insurance"
}

// BusinessLevel 业务等级。
type BusinessLevel struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(64);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"column:description;type:varchar(255)" json:"description"`
	Status      bool      `gorm:"column:status;not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名。
func (BusinessLevel) TableName() string {
	return "business_level"
}
