package service

import (
	"context"
	"fmt"
	"insurance/internal/entity/common"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"insurance/internal/model"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TimeDimensionWeek    = "week"
	TimeDimensionMonth   = "month"
	TimeDimensionQuarter = "quarter"

	DealFieldDealStatus = "deal_status"
	DealFieldStatus     = "status"

	defaultDealRateDays = 7
	maxDealRateDays     = 366
	defaultRankingLimit = 10
	maxRankingLimit     = 100
)

const dayKeyLayout = "2006-01-02"

// StatisticsService 业务统计服务。所有时间边界都按 loc 计算。
type StatisticsService struct {
	repo model.Repository
	loc  *time.Location
	now  func() time.Time
}

// NewStatisticsService 创建统计服务，loc 为空时使用本地时区
func NewStatisticsService(repo model.Repository, loc *time.Location) *StatisticsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatisticsService{repo: repo, loc: loc, now: time.Now}
}

// SetClock 替换时钟（用于测试）
func (s *StatisticsService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *StatisticsService) today() time.Time {
	return s.now().In(s.loc)
}

// resolveDeal 返回成交判断使用的列和值。
// deal_status 默认值为 success，status 默认值为 approved。
func resolveDeal(field, value string) (string, string, error) {
	field = strings.TrimSpace(field)
	value = strings.TrimSpace(value)
	switch field {
	case "", DealFieldDealStatus:
		if value == "" {
			value = db.DealStatusSuccess
		}
		return DealFieldDealStatus, value, nil
	case DealFieldStatus:
		if value == "" {
			value = db.BusinessStatusApproved
		}
		return DealFieldStatus, value, nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrInvalidDealField, field)
}

// resolveRange 解析日期过滤。区间优先于单日 date，区间两端都包含整天。
func (s *StatisticsService) resolveRange(startDate, endDate, date string) (*time.Time, *time.Time, error) {
	if strings.TrimSpace(startDate) != "" || strings.TrimSpace(endDate) != "" {
		var from, to *time.Time
		if strings.TrimSpace(startDate) != "" {
			t, err := common.ParseDate(startDate, s.loc)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: startDate %q", ErrInvalidDate, startDate)
			}
			start := common.StartOfDay(t)
			from = &start
		}
		if strings.TrimSpace(endDate) != "" {
			t, err := common.ParseDate(endDate, s.loc)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: endDate %q", ErrInvalidDate, endDate)
			}
			end := common.EndOfDay(t)
			to = &end
		}
		return from, to, nil
	}
	if strings.TrimSpace(date) != "" {
		t, err := common.ParseDate(date, s.loc)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: date %q", ErrInvalidDate, date)
		}
		start, end := common.StartOfDay(t), common.EndOfDay(t)
		return &start, &end, nil
	}
	return nil, nil, nil
}

// conversionRate 返回 deals/total*100，保留两位小数，total 为 0 时返回 0
func conversionRate(deals, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(deals)/float64(total)*10000) / 100
}

func isDeal(f dto.BusinessFact, column, value string) bool {
	if column == DealFieldStatus {
		return f.Status == value
	}
	return f.DealStatus == value
}

// GetStatistics 汇总询价数、成交数、保费和转化率，以及今日和本月的子统计。
// 今日/本月只应用代理人和险种过滤，不受日期过滤影响。
func (s *StatisticsService) GetStatistics(ctx context.Context, q dto.StatisticsQuery) (*dto.Statistics, error) {
	dealColumn, dealValue, err := resolveDeal(q.DealField, q.DealStatus)
	if err != nil {
		return nil, err
	}
	from, to, err := s.resolveRange(q.StartDate, q.EndDate, q.Date)
	if err != nil {
		return nil, err
	}

	base := dto.BusinessStatsFilter{AgentID: q.AgentID, InsuranceTypeID: q.InsuranceType, From: from, To: to}
	total, err := s.repo.AggregateBusinesses(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("aggregate inquiries: %w", err)
	}
	deals, err := s.repo.AggregateBusinesses(ctx, withDeal(base, dealColumn, dealValue))
	if err != nil {
		return nil, fmt.Errorf("aggregate deals: %w", err)
	}

	now := s.today()
	dayStart, dayEnd := common.StartOfDay(now), common.EndOfDay(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	todayFilter := dto.BusinessStatsFilter{AgentID: q.AgentID, InsuranceTypeID: q.InsuranceType, From: &dayStart, To: &dayEnd}
	todayAll, err := s.repo.AggregateBusinesses(ctx, todayFilter)
	if err != nil {
		return nil, fmt.Errorf("aggregate today: %w", err)
	}
	todayDeals, err := s.repo.AggregateBusinesses(ctx, withDeal(todayFilter, dealColumn, dealValue))
	if err != nil {
		return nil, fmt.Errorf("aggregate today deals: %w", err)
	}
	monthFilter := dto.BusinessStatsFilter{AgentID: q.AgentID, InsuranceTypeID: q.InsuranceType, From: &monthStart, To: &monthEnd}
	monthDeals, err := s.repo.AggregateBusinesses(ctx, withDeal(monthFilter, dealColumn, dealValue))
	if err != nil {
		return nil, fmt.Errorf("aggregate month deals: %w", err)
	}

	return &dto.Statistics{
		TotalInquiry:       total.Count,
		TotalDeal:          deals.Count,
		TotalPremium:       total.Premium,
		ConversionRate:     conversionRate(deals.Count, total.Count),
		TodayInquiryCount:  todayAll.Count,
		TodayDealCount:     todayDeals.Count,
		MonthlyPerformance: monthDeals.Premium,
		DealField:          dealColumn,
		DealValue:          dealValue,
	}, nil
}

func withDeal(f dto.BusinessStatsFilter, column, value string) dto.BusinessStatsFilter {
	f.DealColumn = column
	f.DealValue = value
	return f
}

// trendWindow 计算包含 now 的周（周一至周日）、自然月或自然季度的边界
func trendWindow(dimension string, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	switch dimension {
	case TimeDimensionMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case TimeDimensionQuarter:
		firstMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		start := time.Date(now.Year(), firstMonth, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 3, 0).Add(-time.Nanosecond)
	default:
		offset := (int(now.Weekday()) + 6) % 7
		start := common.StartOfDay(now).AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	}
}

// trendKey 周/月按天分桶，季度按 ISO 周分桶（YYYY-Www）
func trendKey(dimension string, t time.Time) string {
	if dimension == TimeDimensionQuarter {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
	return t.Format(dayKeyLayout)
}

// GetBusinessTrend 统计当前周/月/季度内每个时间桶的跟进中（pending）与已完成（approved）数量。
// 只在任一序列有值的桶出现，缺失的一侧补 0。
func (s *StatisticsService) GetBusinessTrend(ctx context.Context, q dto.TrendQuery) (*dto.TrendResponse, error) {
	dimension := strings.TrimSpace(q.TimeDimension)
	if dimension == "" {
		dimension = TimeDimensionWeek
	}
	switch dimension {
	case TimeDimensionWeek, TimeDimensionMonth, TimeDimensionQuarter:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeDimension, dimension)
	}

	start, end := trendWindow(dimension, s.today())
	facts, err := s.repo.ListBusinessFacts(ctx, dto.BusinessStatsFilter{
		AgentID:         q.AgentID,
		InsuranceTypeID: q.InsuranceType,
		From:            &start,
		To:              &end,
	})
	if err != nil {
		return nil, fmt.Errorf("load trend rows: %w", err)
	}

	followUp := make(map[string]int64)
	completed := make(map[string]int64)
	for _, f := range facts {
		key := trendKey(dimension, f.InquiryDate.In(s.loc))
		switch f.Status {
		case db.BusinessStatusPending:
			followUp[key]++
		case db.BusinessStatusApproved:
			completed[key]++
		}
	}

	keys := make([]string, 0, len(followUp)+len(completed))
	seen := make(map[string]struct{}, cap(keys))
	for _, m := range []map[string]int64{followUp, completed} {
		for k := range m {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	points := make([]dto.TrendPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, dto.TrendPoint{Date: k, FollowUp: followUp[k], Completed: completed[k]})
	}
	return &dto.TrendResponse{
		TimeDimension: dimension,
		StartDate:     start.Format(dayKeyLayout),
		EndDate:       end.Format(dayKeyLayout),
		Data:          points,
	}, nil
}

// GetInsuranceDistribution 按险种分类统计数量和保费占比，按数量降序
func (s *StatisticsService) GetInsuranceDistribution(ctx context.Context, q dto.StatisticsQuery) ([]dto.DistributionItem, error) {
	from, to, err := s.resolveRange(q.StartDate, q.EndDate, q.Date)
	if err != nil {
		return nil, err
	}
	facts, err := s.repo.ListBusinessFacts(ctx, dto.BusinessStatsFilter{
		AgentID:         q.AgentID,
		InsuranceTypeID: q.InsuranceType,
		From:            from,
		To:              to,
	})
	if err != nil {
		return nil, fmt.Errorf("load distribution rows: %w", err)
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	names := make(map[uint]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	byType := make(map[uint]*dto.DistributionItem)
	for _, f := range facts {
		var typeID uint
		if f.InsuranceTypeID != nil {
			typeID = *f.InsuranceTypeID
		}
		item, ok := byType[typeID]
		if !ok {
			name, known := names[typeID]
			if !known {
				name = "未分类"
			}
			item = &dto.DistributionItem{InsuranceTypeID: typeID, Name: name, Premium: decimal.Zero}
			byType[typeID] = item
		}
		item.Count++
		item.Premium = item.Premium.Add(f.PremiumAmount)
	}

	total := int64(len(facts))
	items := make([]dto.DistributionItem, 0, len(byType))
	for _, item := range byType {
		item.Percentage = conversionRate(item.Count, total)
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].InsuranceTypeID < items[j].InsuranceTypeID
	})
	return items, nil
}

// GetDealRate 返回截至今天的最近 N 天每日成交率，每天一条（无数据的天为 0）
func (s *StatisticsService) GetDealRate(ctx context.Context, q dto.DealRateQuery) ([]dto.DealRatePoint, error) {
	dealColumn, dealValue, err := resolveDeal(q.DealField, q.DealStatus)
	if err != nil {
		return nil, err
	}
	days := q.Days
	if days <= 0 {
		days = defaultDealRateDays
	}
	if days > maxDealRateDays {
		days = maxDealRateDays
	}

	now := s.today()
	end := common.EndOfDay(now)
	start := common.StartOfDay(now).AddDate(0, 0, -(days - 1))
	facts, err := s.repo.ListBusinessFacts(ctx, dto.BusinessStatsFilter{
		AgentID:         q.AgentID,
		InsuranceTypeID: q.InsuranceType,
		From:            &start,
		To:              &end,
	})
	if err != nil {
		return nil, fmt.Errorf("load deal rate rows: %w", err)
	}

	inquiries := make(map[string]int64)
	deals := make(map[string]int64)
	for _, f := range facts {
		key := f.InquiryDate.In(s.loc).Format(dayKeyLayout)
		inquiries[key]++
		if isDeal(f, dealColumn, dealValue) {
			deals[key]++
		}
	}

	points := make([]dto.DealRatePoint, 0, days)
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format(dayKeyLayout)
		points = append(points, dto.DealRatePoint{
			Date:      key,
			Inquiries: inquiries[key],
			Deals:     deals[key],
			Rate:      conversionRate(deals[key], inquiries[key]),
		})
	}
	return points, nil
}

// GetAgentRanking 按成交保费排序的代理人业绩榜
func (s *StatisticsService) GetAgentRanking(ctx context.Context, q dto.RankingQuery) ([]dto.AgentRankingItem, error) {
	dealColumn, dealValue, err := resolveDeal(q.DealField, q.DealStatus)
	if err != nil {
		return nil, err
	}
	from, to, err := s.resolveRange(q.StartDate, q.EndDate, "")
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultRankingLimit
	}
	if limit > maxRankingLimit {
		limit = maxRankingLimit
	}

	facts, err := s.repo.ListBusinessFacts(ctx, dto.BusinessStatsFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("load ranking rows: %w", err)
	}

	byAgent := make(map[uint]*dto.AgentRankingItem)
	for _, f := range facts {
		item, ok := byAgent[f.AgentID]
		if !ok {
			item = &dto.AgentRankingItem{AgentID: f.AgentID, Premium: decimal.Zero}
			byAgent[f.AgentID] = item
		}
		item.Inquiries++
		if isDeal(f, dealColumn, dealValue) {
			item.Deals++
			item.Premium = item.Premium.Add(f.PremiumAmount)
		}
	}

	ids := make([]uint, 0, len(byAgent))
	for id := range byAgent {
		ids = append(ids, id)
	}
	users, err := s.repo.ListUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	for _, u := range users {
		if item, ok := byAgent[u.ID]; ok {
			item.AgentName = u.Name
		}
	}

	items := make([]dto.AgentRankingItem, 0, len(byAgent))
	for _, item := range byAgent {
		item.ConversionRate = conversionRate(item.Deals, item.Inquiries)
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		if c := items[i].Premium.Cmp(items[j].Premium); c != 0 {
			return c > 0
		}
		if items[i].Deals != items[j].Deals {
			return items[i].Deals > items[j].Deals
		}
		return items[i].AgentID < items[j].AgentID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var dashboardRanges = map[string]int{"7d": 7, "30d": 30, "90d": 90}

// GetDashboardTrend 返回最近 7/30/90 天的每日询价数、成交数或成交保费
func (s *StatisticsService) GetDashboardTrend(ctx context.Context, q dto.DashboardTrendQuery) (*dto.DashboardTrend, error) {
	timeRange := strings.TrimSpace(q.TimeRange)
	if timeRange == "" {
		timeRange = "30d"
	}
	days, ok := dashboardRanges[timeRange]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeRange, timeRange)
	}
	kind := strings.TrimSpace(q.Type)
	if kind == "" {
		kind = "inquiry"
	}
	switch kind {
	case "inquiry", "deal", "premium":
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTrendType, kind)
	}

	now := s.today()
	end := common.EndOfDay(now)
	start := common.StartOfDay(now).AddDate(0, 0, -(days - 1))
	facts, err := s.repo.ListBusinessFacts(ctx, dto.BusinessStatsFilter{From: &start, To: &end})
	if err != nil {
		return nil, fmt.Errorf("load dashboard rows: %w", err)
	}

	values := make(map[string]decimal.Decimal)
	for _, f := range facts {
		key := f.InquiryDate.In(s.loc).Format(dayKeyLayout)
		switch kind {
		case "inquiry":
			values[key] = values[key].Add(decimal.NewFromInt(1))
		case "deal":
			if f.DealStatus == db.DealStatusSuccess {
				values[key] = values[key].Add(decimal.NewFromInt(1))
			}
		case "premium":
			if f.DealStatus == db.DealStatusSuccess {
				values[key] = values[key].Add(f.PremiumAmount)
			}
		}
	}

	points := make([]dto.DashboardTrendPoint, 0, days)
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format(dayKeyLayout)
		points = append(points, dto.DashboardTrendPoint{Date: key, Value: values[key]})
	}
	return &dto.DashboardTrend{TimeRange: timeRange, Type: kind, Data: points}, nil
}

// GetDashboardBasic 仪表盘头部指标
func (s *StatisticsService) GetDashboardBasic(ctx context.Context) (*dto.DashboardBasic, error) {
	stats, err := s.GetStatistics(ctx, dto.StatisticsQuery{})
	if err != nil {
		return nil, err
	}
	agents, err := s.repo.CountUsers(ctx, db.UserRoleAgent)
	if err != nil {
		return nil, err
	}
	underwriters, err := s.repo.CountUsers(ctx, db.UserRoleUnderwriter)
	if err != nil {
		return nil, err
	}
	insurances, err := s.repo.CountInsurances(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardBasic{
		Statistics:       *stats,
		AgentCount:       agents,
		UnderwriterCount: underwriters,
		InsuranceCount:   insurances,
	}, nil
}
