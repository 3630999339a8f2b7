package api

import (
	"context"
	"errors"
	"fmt"
	"insurance/internal/entity/converter"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"insurance/internal/storage"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxImageBytes = 5 << 20

func (h *HTTPHandler) ListInsurances(c *gin.Context) {
	var query dto.InsuranceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}
	// 兼容旧前端的 typeId 参数
	if query.CategoryID == 0 {
		if typeID, err := strconv.ParseUint(c.Query("typeId"), 10, 64); err == nil {
			query.CategoryID = uint(typeID)
		}
	}
	query.Normalize(20, 200)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, meta, err := h.repo.ListInsurances(ctx, &query)
	if err != nil {
		respondError(c, err, "获取险种列表失败")
		return
	}
	Paged(c, "获取成功", converter.InsurancesToSummaries(items), meta)
}

func (h *HTTPHandler) InsuranceDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "险种")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.repo.GetInsurance(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "险种不存在")
			return
		}
		respondError(c, err, "获取险种详情失败")
		return
	}
	Success(c, "获取成功", converter.InsuranceToSummary(item))
}

// requireCategory 校验分类存在，失败时已写入响应
func (h *HTTPHandler) requireCategory(ctx context.Context, c *gin.Context, id uint) bool {
	if _, err := h.repo.GetCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			BadRequest(c, "险种分类不存在")
			return false
		}
		respondError(c, err, "获取险种分类失败")
		return false
	}
	return true
}

func (h *HTTPHandler) AddInsurance(c *gin.Context) {
	var req dto.InsuranceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	code := strings.TrimSpace(req.Code)
	if name == "" {
		MissingField(c, "险种名称")
		return
	}
	if code == "" {
		MissingField(c, "险种代码")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !h.requireCategory(ctx, c, req.CategoryID) {
		return
	}
	status := true
	if req.Status != nil {
		status = *req.Status
	}
	item := &db.Insurance{
		Name:        name,
		Code:        code,
		CategoryID:  req.CategoryID,
		Description: strings.TrimSpace(req.Description),
		Status:      status,
	}
	if err := h.repo.CreateInsurance(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, "险种代码已存在")
			return
		}
		respondError(c, err, "添加险种失败")
		return
	}
	Success(c, "添加成功", gin.H{"id": item.ID})
}

func (h *HTTPHandler) UpdateInsurance(c *gin.Context) {
	id, ok := parseIDParam(c, "险种")
	if !ok {
		return
	}
	var req dto.InsuranceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if req.CategoryID != nil && !h.requireCategory(ctx, c, *req.CategoryID) {
		return
	}
	if err := h.repo.UpdateInsurance(ctx, id, converter.InsuranceUpdatesFromRequest(req)); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			NotFound(c, "险种不存在")
		case errors.Is(err, gorm.ErrDuplicatedKey):
			BadRequest(c, "险种代码已存在")
		default:
			respondError(c, err, "更新险种失败")
		}
		return
	}
	Success(c, "更新成功", nil)
}

func (h *HTTPHandler) DeleteInsurance(c *gin.Context) {
	id, ok := parseIDParam(c, "险种")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.repo.GetInsurance(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "险种不存在")
			return
		}
		respondError(c, err, "删除险种失败")
		return
	}
	if err := h.repo.DeleteInsurance(ctx, id); err != nil {
		respondError(c, err, "删除险种失败")
		return
	}
	h.removeImage(ctx, item.Image)
	Success(c, "删除成功", nil)
}

// removeImage 删除险种图片对应的对象，失败只记录日志
func (h *HTTPHandler) removeImage(ctx context.Context, url string) {
	if h.storage == nil || strings.TrimSpace(url) == "" {
		return
	}
	key := storage.KeyFromURL(h.storagePublicBase, url)
	if key == "" {
		return
	}
	if err := h.storage.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("failed to delete insurance image")
	}
}

// UploadInsuranceImage 上传险种图片（multipart 字段 image），替换旧图片
func (h *HTTPHandler) UploadInsuranceImage(c *gin.Context) {
	id, ok := parseIDParam(c, "险种")
	if !ok {
		return
	}
	if h.storage == nil {
		ServiceUnavailable(c, "未配置对象存储")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		MissingField(c, "图片")
		return
	}
	ext, ok := storage.ImageExtension(fileHeader.Filename)
	if !ok {
		BadRequest(c, "仅支持 jpg、png、gif、webp 格式的图片")
		return
	}
	if fileHeader.Size > maxImageBytes {
		BadRequest(c, "图片不能超过 5MB")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		InvalidPayload(c, err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		InvalidPayload(c, err)
		return
	}
	if len(data) > maxImageBytes {
		BadRequest(c, "图片不能超过 5MB")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	item, err := h.repo.GetInsurance(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "险种不存在")
			return
		}
		respondError(c, err, "上传图片失败")
		return
	}

	key, err := h.storage.Save(ctx, data, storage.SaveOptions{
		Category:  storage.CategoryInsuranceImages,
		Extension: ext,
		BaseName:  fmt.Sprintf("insurance-%d-%d", id, h.now().UnixNano()),
	})
	if err != nil {
		logrus.WithError(err).WithField("insurance_id", id).Error("failed to store insurance image")
		InternalError(c, "上传图片失败", err)
		return
	}
	url := storage.PublicURL(h.storagePublicBase, key)
	if err := h.repo.UpdateInsurance(ctx, id, db.InsuranceUpdates{Image: &url}); err != nil {
		h.removeImage(ctx, url)
		respondError(c, err, "上传图片失败")
		return
	}
	h.removeImage(ctx, item.Image)
	Success(c, "上传成功", gin.H{"image": url})
}

func (h *HTTPHandler) ListCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	categories, err := h.repo.ListCategories(ctx)
	if err != nil {
		respondError(c, err, "获取险种分类失败")
		return
	}
	counts, err := h.repo.CountInsurancesByCategory(ctx)
	if err != nil {
		respondError(c, err, "获取险种分类失败")
		return
	}
	out := make([]dto.CategorySummary, len(categories))
	for i, category := range categories {
		out[i] = dto.CategorySummary{
			ID:             category.ID,
			Name:           category.Name,
			InsuranceCount: counts[category.ID],
			CreatedAt:      category.CreatedAt,
			UpdatedAt:      category.UpdatedAt,
		}
	}
	Success(c, "获取成功", out)
}

func bindCategoryName(c *gin.Context) (string, bool) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		MissingField(c, "分类名称")
		return "", false
	}
	return strings.TrimSpace(req.Name), true
}

func (h *HTTPHandler) AddCategory(c *gin.Context) {
	name, ok := bindCategoryName(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	category := &db.InsuranceCategory{Name: name}
	if err := h.repo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, "分类名称已存在")
			return
		}
		respondError(c, err, "新增险种分类失败")
		return
	}
	Success(c, "分类添加成功", category)
}

func (h *HTTPHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "分类")
	if !ok {
		return
	}
	name, ok := bindCategoryName(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.UpdateCategory(ctx, id, name); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			NotFound(c, "分类不存在")
		case errors.Is(err, gorm.ErrDuplicatedKey):
			BadRequest(c, "分类名称已存在")
		default:
			respondError(c, err, "更新险种分类失败")
		}
		return
	}
	Success(c, "分类更新成功", nil)
}

// DeleteCategory 正在被险种或业务记录使用的分类不允许删除
func (h *HTTPHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "分类")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	inUse, err := h.repo.CategoryInUse(ctx, id)
	if err != nil {
		respondError(c, err, "删除险种分类失败")
		return
	}
	if inUse {
		BadRequest(c, "该分类正在被使用，无法删除")
		return
	}
	if err := h.repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "分类不存在")
			return
		}
		respondError(c, err, "删除险种分类失败")
		return
	}
	Success(c, "分类删除成功", nil)
}
