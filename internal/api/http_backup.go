package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// requireBackup 当前数据库不支持备份时返回 503
func (h *HTTPHandler) requireBackup(c *gin.Context) bool {
	if h.backupService == nil {
		ServiceUnavailable(c, "当前数据库不支持备份")
		return false
	}
	return true
}

func (h *HTTPHandler) ExportBackup(c *gin.Context) {
	if !h.requireBackup(c) {
		return
	}
	if h.backupService.Status().Running {
		ErrorResponse(c, http.StatusConflict, "备份正在进行中")
		return
	}

	if !h.backupService.Export(c.Request.Context()) {
		ErrorResponse(c, http.StatusInternalServerError, "备份失败")
		return
	}
	Success(c, "备份成功", h.backupService.Status())
}

// RestoreBackup force=true 时删除现有表后全量恢复
func (h *HTTPHandler) RestoreBackup(c *gin.Context) {
	if !h.requireBackup(c) {
		return
	}
	force := false
	if raw := c.Query("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			BadRequest(c, "force 参数无效")
			return
		}
		force = parsed
	}
	if !h.backupService.Exists() {
		NotFound(c, "备份文件不存在")
		return
	}
	if h.backupService.Status().Running {
		ErrorResponse(c, http.StatusConflict, "备份正在进行中")
		return
	}

	if !h.backupService.Import(c.Request.Context(), force) {
		if h.backupService.Status().Running {
			ErrorResponse(c, http.StatusConflict, "备份正在进行中")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "恢复失败")
		return
	}
	Success(c, "恢复成功", gin.H{"force": force, "path": h.backupService.Path()})
}

func (h *HTTPHandler) BackupStatus(c *gin.Context) {
	if !h.requireBackup(c) {
		return
	}
	Success(c, "获取成功", h.backupService.Status())
}
