package db

import "time"

const (
	UserRoleAdmin       = "admin"
	UserRoleAgent       = "agent"
	UserRoleUnderwriter = "underwriter"
)

// ValidUserRole 判断角色是否受支持。
func ValidUserRole(role string) bool {
	switch role {
	case UserRoleAdmin, UserRoleAgent, UserRoleUnderwriter:
		return true
	}
	return false
}

// User 表示系统账户，代理人和出单员共用此表，通过 role 区分。
type User struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Username   string     `gorm:"column:username;type:varchar(64);uniqueIndex;not null" json:"username"`
	Password   string     `gorm:"column:password;type:varchar(255);not null" json:"-"`
	Name       string     `gorm:"column:name;type:varchar(64);not null" json:"name"`
	Role       string     `gorm:"column:role;type:varchar(20);index;not null" json:"role"`
	Email      string     `gorm:"column:email;type:varchar(128)" json:"email"`
	Phone      string     `gorm:"column:phone;type:varchar(32)" json:"phone"`
	Department string     `gorm:"column:department;type:varchar(64)" json:"department"`
	Status     bool       `gorm:"column:status;not null" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName 指定表名。
func (User) TableName() string {
	return "user"
}
