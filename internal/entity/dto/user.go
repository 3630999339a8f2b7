package dto

import (
	"insurance/internal/entity/common"
	"time"
)

// UserSummary is a user description returned to clients. The password is never exposed.
type UserSummary struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Department string    `json:"department"`
	Status     bool      `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserQuery supports listing users with pagination.
type UserQuery struct {
	common.BaseParams
	Role    string `json:"role" form:"role"`
	Keyword string `json:"keyword" form:"keyword"`
	Status  *bool  `json:"status" form:"status"`
}

// StaffCreateRequest creates an agent or an underwriter. Username and password
// are generated when omitted.
type StaffCreateRequest struct {
	Name       string `json:"name" binding:"required"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Status     *bool  `json:"status"`
}

// StaffUpdateRequest is the partial update payload for agents and underwriters.
type StaffUpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	Password   *string `json:"password,omitempty"`
	Email      *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone      *string `json:"phone,omitempty"`
	Department *string `json:"department,omitempty"`
	Status     *bool   `json:"status,omitempty"`
}

// AgentBatchImportRequest carries many agents at once.
type AgentBatchImportRequest struct {
	Agents []StaffCreateRequest `json:"agents" binding:"required,min=1,dive"`
}

// BatchImportResult reports per-row outcome of a batch import.
type BatchImportResult struct {
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// IDsRequest is the body of batch delete endpoints.
type IDsRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}
