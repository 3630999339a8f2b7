package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionRate(t *testing.T) {
	tests := []struct {
		name  string
		deals int64
		total int64
		want  float64
	}{
		{"无数据", 0, 0, 0},
		{"三分之二", 2, 3, 66.67},
		{"全部成交", 5, 5, 100},
		{"三分之一", 1, 3, 33.33},
		{"负数总量", 1, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, conversionRate(tt.deals, tt.total))
		})
	}
}

func TestResolveDeal(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		value      string
		wantColumn string
		wantValue  string
		wantErr    bool
	}{
		{name: "默认", wantColumn: "deal_status", wantValue: "success"},
		{name: "status 默认值", field: "status", wantColumn: "status", wantValue: "approved"},
		{name: "显式值", field: "deal_status", value: "failed", wantColumn: "deal_status", wantValue: "failed"},
		{name: "非法字段", field: "premium_amount", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			column, value, err := resolveDeal(tt.field, tt.value)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidDealField))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumn, column)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestGetStatisticsSingleDay(t *testing.T) {
	repo := newTestRepo(t)
	agent := createUser(t, repo, "agent1", db.UserRoleAgent)
	day := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	insertRows(t, repo,
		businessRow{agentID: agent.ID, at: day, deal: db.DealStatusPending, premium: 100},
		businessRow{agentID: agent.ID, at: day.Add(time.Hour), deal: db.DealStatusSuccess, premium: 200},
		businessRow{agentID: agent.ID, at: day.Add(2 * time.Hour), deal: db.DealStatusSuccess, premium: 300},
		businessRow{agentID: agent.ID, at: day.AddDate(0, 0, -1), deal: db.DealStatusSuccess, premium: 1000},
	)

	svc := NewStatisticsService(repo, time.UTC)
	svc.SetClock(fixedClock(time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)))

	stats, err := svc.GetStatistics(context.Background(), dto.StatisticsQuery{Date: "2024-06-10"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalInquiry)
	assert.EqualValues(t, 2, stats.TotalDeal)
	assert.True(t, stats.TotalPremium.Equal(decimal.NewFromInt(600)), stats.TotalPremium.String())
	assert.Equal(t, 66.67, stats.ConversionRate)
	assert.EqualValues(t, 3, stats.TodayInquiryCount)
	assert.EqualValues(t, 2, stats.TodayDealCount)
	// 本月成交保费包含 6 月 9 日那条
	assert.True(t, stats.MonthlyPerformance.Equal(decimal.NewFromInt(1500)), stats.MonthlyPerformance.String())
	assert.Equal(t, "deal_status", stats.DealField)
	assert.Equal(t, "success", stats.DealValue)
}

func TestGetStatisticsRangeWinsOverDate(t *testing.T) {
	repo := newTestRepo(t)
	agent := createUser(t, repo, "agent1", db.UserRoleAgent)
	insertRows(t, repo,
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 3, 23, 30, 0, 0, time.UTC)},
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)},
	)
	svc := NewStatisticsService(repo, time.UTC)

	stats, err := svc.GetStatistics(context.Background(), dto.StatisticsQuery{
		StartDate: "2024-06-01",
		EndDate:   "2024-06-03",
		Date:      "2024-06-10",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalInquiry)
	assert.Zero(t, stats.ConversionRate)
}

func TestGetStatisticsStatusField(t *testing.T) {
	repo := newTestRepo(t)
	agent := createUser(t, repo, "agent1", db.UserRoleAgent)
	day := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	insertRows(t, repo,
		businessRow{agentID: agent.ID, at: day, status: db.BusinessStatusApproved, deal: db.DealStatusPending, premium: 100},
		businessRow{agentID: agent.ID, at: day, status: db.BusinessStatusPending, deal: db.DealStatusSuccess, premium: 100},
	)
	svc := NewStatisticsService(repo, time.UTC)

	stats, err := svc.GetStatistics(context.Background(), dto.StatisticsQuery{DealField: "status"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalDeal)
	assert.Equal(t, "approved", stats.DealValue)

	_, err = svc.GetStatistics(context.Background(), dto.StatisticsQuery{Date: "06/10/2024"})
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestGetBusinessTrendWeek(t *testing.T) {
	repo := newTestRepo(t)
	agent := createUser(t, repo, "agent1", db.UserRoleAgent)
	insertRows(t, repo,
		// 上周日，不在窗口内
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)},
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)},
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), status: db.BusinessStatusApproved},
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC), status: db.BusinessStatusRejected},
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 16, 20, 0, 0, 0, time.UTC), status: db.BusinessStatusApproved},
	)
	svc := NewStatisticsService(repo, time.UTC)
	svc.SetClock(fixedClock(time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)))

	trend, err := svc.GetBusinessTrend(context.Background(), dto.TrendQuery{})
	require.NoError(t, err)
	assert.Equal(t, "week", trend.TimeDimension)
	assert.Equal(t, "2024-06-10", trend.StartDate)
	assert.Equal(t, "2024-06-16", trend.EndDate)
	assert.Equal(t, []dto.TrendPoint{
		{Date: "2024-06-10", FollowUp: 1, Completed: 1},
		{Date: "2024-06-16", FollowUp: 0, Completed: 1},
	}, trend.Data)
}

func TestGetBusinessTrendMonthAndQuarter(t *testing.T) {
	repo := newTestRepo(t)
	agent := createUser(t, repo, "agent1", db.UserRoleAgent)
	insertRows(t, repo,
		businessRow{agentID: agent.ID, at: time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)},
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)},
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 5, 11, 0, 0, 0, time.UTC), status: db.BusinessStatusApproved},
	)
	svc := NewStatisticsService(repo, time.UTC)
	svc.SetClock(fixedClock(time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)))

	month, err := svc.GetBusinessTrend(context.Background(), dto.TrendQuery{TimeDimension: "month"})
	require.NoError(t, err)
	assert.Equal(t, []dto.TrendPoint{{Date: "2024-06-05", FollowUp: 1, Completed: 1}}, month.Data)

	quarter, err := svc.GetBusinessTrend(context.Background(), dto.TrendQuery{TimeDimension: "quarter"})
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", quarter.StartDate)
	assert.Equal(t, "2024-06-30", quarter.EndDate)
	assert.Equal(t, []dto.TrendPoint{
		{Date: "2024-W22", FollowUp: 1, Completed: 0},
		{Date: "2024-W23", FollowUp: 1, Completed: 1},
	}, quarter.Data)

	_, err = svc.GetBusinessTrend(context.Background(), dto.TrendQuery{TimeDimension: "year"})
	assert.True(t, errors.Is(err, ErrInvalidTimeDimension))
}

func TestGetDealRateIsDense(t *testing.T) {
	repo := newTestRepo(t)
	agent := createUser(t, repo, "agent1", db.UserRoleAgent)
	insertRows(t, repo,
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), deal: db.DealStatusSuccess},
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)},
		businessRow{agentID: agent.ID, at: time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC)},
	)
	svc := NewStatisticsService(repo, time.UTC)
	svc.SetClock(fixedClock(time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)))

	points, err := svc.GetDealRate(context.Background(), dto.DealRateQuery{Days: 3})
	require.NoError(t, err)
	assert.Equal(t, []dto.DealRatePoint{
		{Date: "2024-06-08", Inquiries: 1, Deals: 0, Rate: 0},
		{Date: "2024-06-09", Inquiries: 0, Deals: 0, Rate: 0},
		{Date: "2024-06-10", Inquiries: 2, Deals: 1, Rate: 50},
	}, points)

	points, err = svc.GetDealRate(context.Background(), dto.DealRateQuery{})
	require.NoError(t, err)
	assert.Len(t, points, defaultDealRateDays)
}

func TestGetAgentRanking(t *testing.T) {
	repo := newTestRepo(t)
	a1 := createUser(t, repo, "a1", db.UserRoleAgent)
	a2 := createUser(t, repo, "a2", db.UserRoleAgent)
	day := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	insertRows(t, repo,
		businessRow{agentID: a1.ID, at: day, deal: db.DealStatusSuccess, premium: 100},
		businessRow{agentID: a1.ID, at: day},
		businessRow{agentID: a2.ID, at: day, deal: db.DealStatusSuccess, premium: 500},
	)
	svc := NewStatisticsService(repo, time.UTC)

	items, err := svc.GetAgentRanking(context.Background(), dto.RankingQuery{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, a2.ID, items[0].AgentID)
	assert.Equal(t, "a2", items[0].AgentName)
	assert.Equal(t, 100.0, items[0].ConversionRate)
	assert.Equal(t, a1.ID, items[1].AgentID)
	assert.Equal(t, 50.0, items[1].ConversionRate)

	items, err = svc.GetAgentRanking(context.Background(), dto.RankingQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGetInsuranceDistribution(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	agent := createUser(t, repo, "a1", db.UserRoleAgent)
	cat := &db.InsuranceCategory{Name: "健康险"}
	require.NoError(t, repo.CreateCategory(ctx, cat))
	day := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	insertRows(t, repo,
		businessRow{agentID: agent.ID, at: day, premium: 100, typeID: &cat.ID},
		businessRow{agentID: agent.ID, at: day, premium: 200, typeID: &cat.ID},
		businessRow{agentID: agent.ID, at: day, premium: 50},
	)
	svc := NewStatisticsService(repo, time.UTC)

	items, err := svc.GetInsuranceDistribution(ctx, dto.StatisticsQuery{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "健康险", items[0].Name)
	assert.EqualValues(t, 2, items[0].Count)
	assert.Equal(t, 66.67, items[0].Percentage)
	assert.True(t, items[0].Premium.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "未分类", items[1].Name)
}

func TestGetDashboardTrend(t *testing.T) {
	repo := newTestRepo(t)
	agent := createUser(t, repo, "a1", db.UserRoleAgent)
	day := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	insertRows(t, repo,
		businessRow{agentID: agent.ID, at: day, deal: db.DealStatusSuccess, premium: 120},
		businessRow{agentID: agent.ID, at: day, premium: 80},
	)
	svc := NewStatisticsService(repo, time.UTC)
	svc.SetClock(fixedClock(day.Add(5 * time.Hour)))

	premium, err := svc.GetDashboardTrend(context.Background(), dto.DashboardTrendQuery{TimeRange: "7d", Type: "premium"})
	require.NoError(t, err)
	require.Len(t, premium.Data, 7)
	last := premium.Data[6]
	assert.Equal(t, "2024-06-10", last.Date)
	assert.True(t, last.Value.Equal(decimal.NewFromInt(120)), last.Value.String())
	assert.True(t, premium.Data[0].Value.IsZero())

	inquiry, err := svc.GetDashboardTrend(context.Background(), dto.DashboardTrendQuery{})
	require.NoError(t, err)
	assert.Equal(t, "30d", inquiry.TimeRange)
	assert.True(t, inquiry.Data[29].Value.Equal(decimal.NewFromInt(2)))

	_, err = svc.GetDashboardTrend(context.Background(), dto.DashboardTrendQuery{TimeRange: "1y"})
	assert.True(t, errors.Is(err, ErrInvalidTimeRange))
	_, err = svc.GetDashboardTrend(context.Background(), dto.DashboardTrendQuery{Type: "profit"})
	assert.True(t, errors.Is(err, ErrInvalidTrendType))
}

func TestGetDashboardBasic(t *testing.T) {
	repo := newTestRepo(t)
	createUser(t, repo, "a1", db.UserRoleAgent)
	createUser(t, repo, "a2", db.UserRoleAgent)
	createUser(t, repo, "u1", db.UserRoleUnderwriter)
	svc := NewStatisticsService(repo, time.UTC)

	basic, err := svc.GetDashboardBasic(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, basic.AgentCount)
	assert.EqualValues(t, 1, basic.UnderwriterCount)
	assert.Zero(t, basic.InsuranceCount)
	assert.Zero(t, basic.TotalInquiry)
}
