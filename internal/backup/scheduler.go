package backup

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Start 立即导出一次，之后按间隔定时导出，直到 ctx 取消。
// 调用方应在独立 goroutine 中运行。
func (s *Service) Start(ctx context.Context) {
	logrus.WithFields(logrus.Fields{
		"path":     s.path,
		"interval": s.interval.String(),
	}).Info("backup scheduler started")

	s.Export(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("backup scheduler stopped")
			return
		case <-ticker.C:
			s.Export(ctx)
		}
	}
}
