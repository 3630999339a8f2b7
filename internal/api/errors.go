package api

import (
	"errors"
	"insurance/internal/entity/common"
	"insurance/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 响应体中的 code 与 HTTP 状态码一致

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, common.Response{
		Code:    status,
		Message: message,
	})
}

// ErrorResponseWithDetails 返回带原始错误信息的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, message string, detail string) {
	c.JSON(status, common.Response{
		Code:    status,
		Message: message,
		Error:   detail,
	})
}

// 常用错误响应快捷函数

// BadRequest 400 错误请求
func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

// Unauthorized 401 未授权
func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message)
}

// Forbidden 403 禁止访问
func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, message)
}

// NotFound 404 资源不存在
func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

// InternalError 500 服务器内部错误，err 原文放在 error 字段
func InternalError(c *gin.Context, message string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	ErrorResponseWithDetails(c, http.StatusInternalServerError, message, detail)
}

// ServiceUnavailable 503 服务不可用
func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, message)
}

// MissingField 缺少必填字段
func MissingField(c *gin.Context, field string) {
	ErrorResponse(c, http.StatusBadRequest, field+"不能为空")
}

// InvalidPayload 无效的请求体，校验错误原文放在 error 字段
func InvalidPayload(c *gin.Context, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	ErrorResponseWithDetails(c, http.StatusBadRequest, "请求参数无效", detail)
}

// respondError 按错误类型选择状态码：
// 业务校验 400，记录不存在 404，唯一键冲突 400，其余 500。
func respondError(c *gin.Context, err error, message string) {
	switch {
	case service.IsValidationError(err):
		ErrorResponseWithDetails(c, http.StatusBadRequest, message, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		ErrorResponse(c, http.StatusNotFound, "记录不存在")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		ErrorResponseWithDetails(c, http.StatusBadRequest, message, "记录已存在")
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error(message)
		InternalError(c, message, err)
	}
}

// Success 200 成功响应
func Success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, common.Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Paged 200 带分页信息的列表响应
func Paged(c *gin.Context, message string, data any, pagination *common.Pagination) {
	c.JSON(http.StatusOK, common.PagedResponse{
		Code:       http.StatusOK,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}
