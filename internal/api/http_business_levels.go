package api

import (
	"context"
	"errors"
	"insurance/internal/entity/converter"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *HTTPHandler) ListBusinessLevels(c *gin.Context) {
	var query dto.BusinessLevelQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	levels, err := h.repo.ListBusinessLevels(ctx, &query)
	if err != nil {
		respondError(c, err, "获取业务等级列表失败")
		return
	}
	if levels == nil {
		levels = []db.BusinessLevel{}
	}
	Success(c, "获取成功", levels)
}

func (h *HTTPHandler) BusinessLevelDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "业务等级")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	level, err := h.repo.GetBusinessLevel(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "业务等级不存在")
			return
		}
		respondError(c, err, "获取业务等级详情失败")
		return
	}
	Success(c, "获取成功", level)
}

func (h *HTTPHandler) AddBusinessLevel(c *gin.Context) {
	var req dto.BusinessLevelCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		MissingField(c, "业务等级名称")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := true
	if req.Status != nil {
		status = *req.Status
	}
	level := &db.BusinessLevel{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Status:      status,
	}
	if err := h.repo.CreateBusinessLevel(ctx, level); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, "业务等级名称已存在")
			return
		}
		respondError(c, err, "添加业务等级失败")
		return
	}
	Success(c, "添加成功", level)
}

func (h *HTTPHandler) UpdateBusinessLevel(c *gin.Context) {
	id, ok := parseIDParam(c, "业务等级")
	if !ok {
		return
	}
	var req dto.BusinessLevelUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			MissingField(c, "业务等级名称")
			return
		}
		req.Name = &trimmed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.UpdateBusinessLevel(ctx, id, converter.BusinessLevelUpdatesFromRequest(req)); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			NotFound(c, "业务等级不存在")
		case errors.Is(err, gorm.ErrDuplicatedKey):
			BadRequest(c, "业务等级名称已存在")
		default:
			respondError(c, err, "更新业务等级失败")
		}
		return
	}
	Success(c, "更新成功", nil)
}

func (h *HTTPHandler) DeleteBusinessLevel(c *gin.Context) {
	id, ok := parseIDParam(c, "业务等级")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.DeleteBusinessLevel(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "业务等级不存在")
			return
		}
		respondError(c, err, "删除业务等级失败")
		return
	}
	Success(c, "删除成功", nil)
}
