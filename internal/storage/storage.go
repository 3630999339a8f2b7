package storage

import (
	"context"
	"fmt"
	"insurance/internal/config"
	"strings"
)

const (
	// TypeNone 关闭对象存储：不接受图片上传，备份不做镜像。
	TypeNone = "none"
	// TypeLocal 本地文件系统，文件由 HTTP 服务直接提供。
	TypeLocal = "local"
	// TypeS3 Amazon S3 或兼容的存储后端。
	TypeS3 = "s3"
	// TypeOSS 阿里云 OSS。
	TypeOSS = "oss"
	// TypeCOS 腾讯云 COS。
	TypeCOS = "cos"
	// TypeR2 Cloudflare R2。
	TypeR2 = "r2"
)

// Categories used by this service.
const (
	CategoryInsuranceImages = "insurance-images"
	CategoryBackups         = "backups"
)

// SaveOptions 描述对象的存放位置。
//
// 对象键为 <prefix>/<category>/<yyyy/mm/dd>/<base>.<ext>；BaseName 为空时使用纳秒时间戳。
type SaveOptions struct {
	Category  string
	Extension string
	BaseName  string
}

// Storage 保存险种图片与备份快照，返回对象键。
type Storage interface {
	Save(ctx context.Context, data []byte, opts SaveOptions) (string, error)
	// Delete 删除对象，对象不存在时不报错。
	Delete(ctx context.Context, key string) error
}

// LocalBaseDirProvider 由可以直接挂载为静态目录的存储实现。
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage 根据配置创建存储后端。TypeNone 返回 nil, nil。
func NewStorage(cfg config.Config) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageType)) {
	case TypeNone:
		return nil, nil
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	}
	return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
}
