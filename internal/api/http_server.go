package api

import (
	"insurance/internal/auth"
	"insurance/internal/backup"
	"insurance/internal/config"
	"insurance/internal/model"
	"insurance/internal/service"
	"insurance/internal/storage"
	"strings"
	"time"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storage           storage.Storage
	storagePublicBase string
	authManager       *auth.Manager
	location          *time.Location
	now               func() time.Time

	// 服务层
	businessService   *service.BusinessService
	statisticsService *service.StatisticsService
	// backupService 为 nil 表示当前数据库不支持备份
	backupService *backup.Service
}

// NewHTTPHandler 创建 HTTP 处理器实例，store 与 backupSvc 均可为 nil
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, backupSvc *backup.Service) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, expiry)
	if err != nil {
		return nil, err
	}
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	loc := time.Local
	return &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storage:           store,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		authManager:       authManager,
		location:          loc,
		now:               time.Now,
		businessService:   service.NewBusinessService(repo, loc),
		statisticsService: service.NewStatisticsService(repo, loc),
		backupService:     backupSvc,
	}, nil
}

// SetClock 替换处理器及其服务的时钟（用于测试）
func (h *HTTPHandler) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	h.now = now
	h.authManager.SetClock(now)
	h.businessService.SetClock(now)
	h.statisticsService.SetClock(now)
}

// normalisePublicBase 规范化公共 URL 基础路径
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}
