package api

import (
	"context"
	"insurance/internal/entity/dto"
	"time"

	"github.com/gin-gonic/gin"
)

const statisticsTimeout = 10 * time.Second

// BusinessStatistics 统计汇总，同时服务 /business/statistics 与 /statistics/overview
func (h *HTTPHandler) BusinessStatistics(c *gin.Context) {
	var query dto.StatisticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), statisticsTimeout)
	defer cancel()

	stats, err := h.statisticsService.GetStatistics(ctx, query)
	if err != nil {
		respondError(c, err, "获取统计数据失败")
		return
	}
	Success(c, "获取成功", stats)
}

func (h *HTTPHandler) BusinessTrend(c *gin.Context) {
	var query dto.TrendQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), statisticsTimeout)
	defer cancel()

	trend, err := h.statisticsService.GetBusinessTrend(ctx, query)
	if err != nil {
		respondError(c, err, "获取业务趋势失败")
		return
	}
	Success(c, "获取成功", trend)
}

func (h *HTTPHandler) InsuranceDistribution(c *gin.Context) {
	var query dto.StatisticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), statisticsTimeout)
	defer cancel()

	items, err := h.statisticsService.GetInsuranceDistribution(ctx, query)
	if err != nil {
		respondError(c, err, "获取险种分布失败")
		return
	}
	if items == nil {
		items = []dto.DistributionItem{}
	}
	Success(c, "获取成功", items)
}

func (h *HTTPHandler) DealRate(c *gin.Context) {
	var query dto.DealRateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), statisticsTimeout)
	defer cancel()

	points, err := h.statisticsService.GetDealRate(ctx, query)
	if err != nil {
		respondError(c, err, "获取成交率失败")
		return
	}
	if points == nil {
		points = []dto.DealRatePoint{}
	}
	Success(c, "获取成功", points)
}

func (h *HTTPHandler) AgentRanking(c *gin.Context) {
	var query dto.RankingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), statisticsTimeout)
	defer cancel()

	items, err := h.statisticsService.GetAgentRanking(ctx, query)
	if err != nil {
		respondError(c, err, "获取代理人排行失败")
		return
	}
	if items == nil {
		items = []dto.AgentRankingItem{}
	}
	Success(c, "获取成功", items)
}

func (h *HTTPHandler) DashboardBasic(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statisticsTimeout)
	defer cancel()

	basic, err := h.statisticsService.GetDashboardBasic(ctx)
	if err != nil {
		respondError(c, err, "获取仪表盘数据失败")
		return
	}
	Success(c, "获取成功", basic)
}

// DashboardTrend timeRange 取 7d/30d/90d，type 取 inquiry/deal/premium
func (h *HTTPHandler) DashboardTrend(c *gin.Context) {
	var query dto.DashboardTrendQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), statisticsTimeout)
	defer cancel()

	trend, err := h.statisticsService.GetDashboardTrend(ctx, query)
	if err != nil {
		respondError(c, err, "获取仪表盘趋势失败")
		return
	}
	Success(c, "获取成功", trend)
}
