package main

import (
	"context"
	"errors"
	"fmt"
	"insurance/internal/api"
	"insurance/internal/backup"
	"insurance/internal/config"
	"insurance/internal/model"
	"insurance/internal/storage"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		os.Exit(1)
	}

	// 初始化logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		os.Exit(1)
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		os.Exit(1)
	}

	backupSvc := newBackupService(cfg, repo, store)
	if backupSvc != nil && cfg.BackupRestoreOnBoot {
		// 只恢复到空库；恢复失败时不继续运行，避免空库覆盖备份
		restored, err := backupSvc.RestoreIfEmpty(ctx)
		if err != nil {
			logrus.WithError(err).WithField("path", backupSvc.Path()).Error("failed to restore backup on boot")
			os.Exit(1)
		}
		if restored {
			logrus.WithField("path", backupSvc.Path()).Info("database restored from backup")
		}
	}

	if err := model.SeedDefaults(ctx, repo, cfg); err != nil {
		logrus.WithError(err).Warn("failed to seed default data")
	}

	schedulerDone := make(chan struct{})
	if backupSvc != nil && cfg.BackupAuto {
		go func() {
			defer close(schedulerDone)
			backupSvc.Start(ctx)
		}()
	} else {
		close(schedulerDone)
	}

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store, backupSvc)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		os.Exit(1)
	}

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	httpHandler.RegisterRoutes(r)

	if localProvider, ok := store.(storage.LocalBaseDirProvider); ok {
		publicPrefix := strings.TrimSpace(cfg.StoragePublicBaseURL)
		if publicPrefix == "" {
			publicPrefix = "/files"
		}
		if !strings.HasPrefix(publicPrefix, "http://") && !strings.HasPrefix(publicPrefix, "https://") {
			if !strings.HasPrefix(publicPrefix, "/") {
				publicPrefix = "/" + publicPrefix
			}
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logrus.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("服务器启动失败")
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("服务器关闭中")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("服务器关闭失败")
	}
	// 等调度器退出（包括进行中的导出）后再保存最后一次快照
	select {
	case <-schedulerDone:
	case <-shutdownCtx.Done():
	}
	if backupSvc != nil && cfg.BackupAuto {
		backupSvc.Export(shutdownCtx)
	}
}

// newBackupService 当前数据库不支持备份时返回 nil
func newBackupService(cfg config.Config, repo model.Repository, store storage.Storage) *backup.Service {
	opts := backup.Options{
		Dir:      cfg.BackupDir,
		File:     cfg.BackupFile,
		Interval: cfg.BackupInterval,
	}
	if cfg.BackupMirror {
		opts.Mirror = store
	}
	svc, err := backup.NewService(repo.DB(), opts)
	if err != nil {
		logrus.WithError(err).WithField("db_type", cfg.DBType).Warn("database backup disabled")
		return nil
	}
	return svc
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  time.Since(start).String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
