package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatisticsQuery filters the statistics aggregate.
// When both a range and Date are supplied the range wins.
type StatisticsQuery struct {
	AgentID       uint   `form:"agentId"`
	InsuranceType uint   `form:"insuranceType"`
	DealField     string `form:"dealField"`
	DealStatus    string `form:"dealStatus"`
	StartDate     string `form:"startDate"`
	EndDate       string `form:"endDate"`
	Date          string `form:"date"`
}

// Statistics is the aggregate returned by /api/business/statistics.
type Statistics struct {
	TotalInquiry       int64           `json:"totalInquiry"`
	TotalDeal          int64           `json:"totalDeal"`
	TotalPremium       decimal.Decimal `json:"totalPremium"`
	ConversionRate     float64         `json:"conversionRate"`
	TodayInquiryCount  int64           `json:"todayInquiryCount"`
	TodayDealCount     int64           `json:"todayDealCount"`
	MonthlyPerformance decimal.Decimal `json:"monthlyPerformance"`
	DealField          string          `json:"dealField"`
	DealValue          string          `json:"dealValue"`
}

// TrendQuery selects the window of a business trend.
type TrendQuery struct {
	TimeDimension string `form:"timeDimension"`
	AgentID       uint   `form:"agentId"`
	InsuranceType uint   `form:"insuranceType"`
}

// TrendPoint is one bucket of a business trend.
type TrendPoint struct {
	Date      string `json:"date"`
	FollowUp  int64  `json:"followUp"`
	Completed int64  `json:"completed"`
}

// TrendResponse wraps trend buckets with the requested dimension.
type TrendResponse struct {
	TimeDimension string       `json:"timeDimension"`
	StartDate     string       `json:"startDate"`
	EndDate       string       `json:"endDate"`
	Data          []TrendPoint `json:"data"`
}

// DistributionItem is the share of one insurance category.
type DistributionItem struct {
	InsuranceTypeID uint            `json:"insuranceTypeId"`
	Name            string          `json:"name"`
	Count           int64           `json:"count"`
	Premium         decimal.Decimal `json:"premium"`
	Percentage      float64         `json:"percentage"`
}

// DealRateQuery selects the trailing window of the daily deal rate.
type DealRateQuery struct {
	Days          int    `form:"days"`
	AgentID       uint   `form:"agentId"`
	InsuranceType uint   `form:"insuranceType"`
	DealField     string `form:"dealField"`
	DealStatus    string `form:"dealStatus"`
}

// DealRatePoint is one calendar day of the deal rate series.
type DealRatePoint struct {
	Date      string  `json:"date"`
	Inquiries int64   `json:"inquiries"`
	Deals     int64   `json:"deals"`
	Rate      float64 `json:"rate"`
}

// RankingQuery filters the agent ranking.
type RankingQuery struct {
	Limit      int    `form:"limit"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	DealField  string `form:"dealField"`
	DealStatus string `form:"dealStatus"`
}

// AgentRankingItem is one agent's performance.
type AgentRankingItem struct {
	AgentID        uint            `json:"agentId"`
	AgentName      string          `json:"agentName"`
	Inquiries      int64           `json:"inquiries"`
	Deals          int64           `json:"deals"`
	Premium        decimal.Decimal `json:"premium"`
	ConversionRate float64         `json:"conversionRate"`
}

// DashboardTrendQuery is the query of /api/dashboard/trend.
type DashboardTrendQuery struct {
	TimeRange string `form:"timeRange"`
	Type      string `form:"type"`
}

// DashboardTrendPoint is one day of the dashboard series.
type DashboardTrendPoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// DashboardTrend is the response of /api/dashboard/trend.
type DashboardTrend struct {
	TimeRange string                `json:"timeRange"`
	Type      string                `json:"type"`
	Data      []DashboardTrendPoint `json:"data"`
}

// DashboardBasic is the headline numbers of the dashboard.
type DashboardBasic struct {
	Statistics
	AgentCount       int64 `json:"agentCount"`
	UnderwriterCount int64 `json:"underwriterCount"`
	InsuranceCount   int64 `json:"insuranceCount"`
}

// BusinessStatsFilter restricts the rows of an aggregate.
// DealColumn/DealValue, when both set, keep only deal rows.
type BusinessStatsFilter struct {
	AgentID         uint
	InsuranceTypeID uint
	From            *time.Time
	To              *time.Time
	DealColumn      string
	DealValue       string
}

// BusinessAggregate is a row count with its premium sum.
type BusinessAggregate struct {
	Count   int64           `gorm:"column:count"`
	Premium decimal.Decimal `gorm:"column:premium"`
}

// BusinessFact is the projection of a business row used for in-memory bucketing.
type BusinessFact struct {
	ID              uint            `gorm:"column:id"`
	AgentID         uint            `gorm:"column:agent_id"`
	InsuranceTypeID *uint           `gorm:"column:insurance_type_id"`
	Status          string          `gorm:"column:status"`
	DealStatus      string          `gorm:"column:deal_status"`
	PremiumAmount   decimal.Decimal `gorm:"column:premium_amount"`
	InquiryDate     time.Time       `gorm:"column:inquiry_date"`
}
