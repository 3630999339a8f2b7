package dto

import (
	"insurance/internal/entity/common"
	"time"
)

// InsuranceSummary describes an insurance product together with its category name.
type InsuranceSummary struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	CategoryID   uint      `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Description  string    `json:"description"`
	Status       bool      `json:"status"`
	Image        string    `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InsuranceQuery filters the product list.
type InsuranceQuery struct {
	common.BaseParams
	Keyword    string `form:"keyword"`
	CategoryID uint   `form:"categoryId"`
	Status     *bool  `form:"status"`
}

// InsuranceCreateRequest creates an insurance product.
type InsuranceCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required"`
	CategoryID  uint   `json:"category" binding:"required"`
	Description string `json:"description"`
	Status      *bool  `json:"status"`
}

// InsuranceUpdateRequest is the partial update payload for a product.
type InsuranceUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	CategoryID  *uint   `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *bool   `json:"status,omitempty"`
}

// CategorySummary describes an insurance category.
type CategorySummary struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	InsuranceCount int64     `json:"insurance_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CategoryRequest creates or renames a category.
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// BusinessLevelQuery filters business levels.
type BusinessLevelQuery struct {
	Keyword string `form:"keyword"`
	Status  *bool  `form:"status"`
}

// BusinessLevelCreateRequest creates a business level.
type BusinessLevelCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      *bool  `json:"status"`
}

// BusinessLevelUpdateRequest is the partial update payload for a business level.
type BusinessLevelUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *bool   `json:"status,omitempty"`
}
