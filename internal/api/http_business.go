package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"insurance/internal/entity/converter"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"insurance/internal/excel"
	"insurance/internal/service"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxImportBytes = 10 << 20

func (h *HTTPHandler) ListBusinesses(c *gin.Context) {
	var query dto.BusinessQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}
	query.Normalize(20, 200)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	views, meta, err := h.businessService.List(ctx, query)
	if err != nil {
		respondError(c, err, "获取业务列表失败")
		return
	}
	if views == nil {
		views = []dto.BusinessView{}
	}
	Paged(c, "获取成功", views, meta)
}

func (h *HTTPHandler) AddBusiness(c *gin.Context) {
	var req dto.BusinessCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	business, err := h.businessService.Create(ctx, req, operatorFrom(c))
	if err != nil {
		respondError(c, err, "添加业务记录失败")
		return
	}
	Success(c, "添加成功", h.reloadView(ctx, business))
}

// reloadView 重新加载关联名称，失败时退回未关联的视图
func (h *HTTPHandler) reloadView(ctx context.Context, business *db.Business) dto.BusinessView {
	view, err := h.businessService.Get(ctx, business.ID)
	if err != nil {
		logrus.WithError(err).WithField("business_id", business.ID).Warn("failed to reload business")
		return converter.BusinessToView(business)
	}
	return *view
}

func (h *HTTPHandler) BusinessDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "业务记录")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	view, err := h.businessService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "业务记录不存在")
			return
		}
		respondError(c, err, "获取业务详情失败")
		return
	}
	Success(c, "获取成功", view)
}

func (h *HTTPHandler) UpdateBusiness(c *gin.Context) {
	id, ok := parseIDParam(c, "业务记录")
	if !ok {
		return
	}
	var req dto.BusinessUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	business, err := h.businessService.Update(ctx, id, req, operatorFrom(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "业务记录不存在")
			return
		}
		respondError(c, err, "更新业务记录失败")
		return
	}
	Success(c, "更新成功", h.reloadView(ctx, business))
}

func (h *HTTPHandler) DeleteBusiness(c *gin.Context) {
	id, ok := parseIDParam(c, "业务记录")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.businessService.Delete(ctx, id, operatorFrom(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "业务记录不存在")
			return
		}
		respondError(c, err, "删除业务记录失败")
		return
	}
	Success(c, "删除成功", nil)
}

func (h *HTTPHandler) BatchDeleteBusinesses(c *gin.Context) {
	var req dto.IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请选择要删除的业务记录")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	deleted, err := h.businessService.BatchDelete(ctx, req.IDs, operatorFrom(c))
	if err != nil {
		respondError(c, err, "批量删除业务记录失败")
		return
	}
	Success(c, fmt.Sprintf("成功删除 %d 条业务记录", deleted), gin.H{"deleted": deleted})
}

func (h *HTTPHandler) BusinessLogs(c *gin.Context) {
	id, ok := parseIDParam(c, "业务记录")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	logs, err := h.businessService.Logs(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "业务记录不存在")
			return
		}
		respondError(c, err, "获取操作日志失败")
		return
	}
	if logs == nil {
		logs = []db.OperationLog{}
	}
	Success(c, "获取成功", logs)
}

// sendWorkbook 以附件形式返回 xlsx，文件名按 RFC 5987 编码
func sendWorkbook(c *gin.Context, name string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s",
		"export.xlsx", url.PathEscape(name)))
	c.Data(http.StatusOK, excel.ContentType, data)
}

// ExportBusinesses 按列表过滤条件导出全部匹配记录
func (h *HTTPHandler) ExportBusinesses(c *gin.Context) {
	var query dto.BusinessQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	views, err := h.businessService.Export(ctx, query, operatorFrom(c))
	if err != nil {
		respondError(c, err, "导出业务记录失败")
		return
	}
	var buf bytes.Buffer
	if err := excel.WriteBusinesses(&buf, views, h.location); err != nil {
		logrus.WithError(err).Error("failed to render business workbook")
		InternalError(c, "导出业务记录失败", err)
		return
	}
	sendWorkbook(c, fmt.Sprintf("业务记录_%s.xlsx", h.now().In(h.location).Format("20060102150405")), buf.Bytes())
}

func (h *HTTPHandler) BusinessImportTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := excel.WriteTemplate(&buf); err != nil {
		InternalError(c, "生成导入模板失败", err)
		return
	}
	sendWorkbook(c, "业务导入模板.xlsx", buf.Bytes())
}

// importDefaultAgent 表格行缺少代理人时的归属：表单 agentId 优先，其次是代理人本人
func importDefaultAgent(c *gin.Context) (uint, error) {
	if raw := strings.TrimSpace(c.PostForm("agentId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: agentId %q", service.ErrAgentNotFound, raw)
		}
		return uint(id), nil
	}
	if user := CurrentUser(c); user != nil && user.Role == db.UserRoleAgent {
		return user.ID, nil
	}
	return 0, nil
}

// ImportBusinesses 导入业务表格（multipart 字段 file），有效行在同一事务中写入
func (h *HTTPHandler) ImportBusinesses(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		MissingField(c, "导入文件")
		return
	}
	if fileHeader.Size > maxImportBytes {
		BadRequest(c, "导入文件不能超过 10MB")
		return
	}
	defaultAgent, err := importDefaultAgent(c)
	if err != nil {
		respondError(c, err, "导入业务记录失败")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		InvalidPayload(c, err)
		return
	}
	defer file.Close()

	rows, err := excel.ReadBusinessRows(file)
	if err != nil {
		if errors.Is(err, excel.ErrMissingHeader) {
			BadRequest(c, "表格缺少客户名称列，请使用导入模板")
			return
		}
		ErrorResponseWithDetails(c, http.StatusBadRequest, "无法解析导入文件", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result, err := h.businessService.Import(ctx, rows, defaultAgent, operatorFrom(c))
	if err != nil {
		if errors.Is(err, service.ErrNothingToImport) && result != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": "没有可导入的数据",
				"data":    result,
			})
			return
		}
		respondError(c, err, "导入业务记录失败")
		return
	}
	logrus.WithFields(logrus.Fields{"imported": result.Imported, "skipped": result.Skipped}).Info("businesses imported")
	Success(c, fmt.Sprintf("导入完成，成功 %d 条，跳过 %d 条", result.Imported, result.Skipped), result)
}
