package storage

import (
	"errors"
	"fmt"
	"insurance/internal/config"
	"strings"
)

// NewR2Storage 创建 Cloudflare R2 存储，未配置端点时按账号 ID 推导
func NewR2Storage(cfg config.Config) (Storage, error) {
	bucket := strings.TrimSpace(cfg.StorageR2Bucket)
	if bucket == "" {
		return nil, errors.New("storage: missing R2 bucket")
	}
	endpoint := strings.TrimSpace(cfg.StorageR2Endpoint)
	if endpoint == "" {
		account := strings.TrimSpace(cfg.StorageR2AccountID)
		if account == "" {
			return nil, errors.New("storage: missing R2 endpoint or account id")
		}
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", account)
	}
	region := strings.TrimSpace(cfg.StorageR2Region)
	if region == "" {
		region = "auto"
	}

	client, err := newS3Client(s3Settings{
		Region:          region,
		Endpoint:        endpoint,
		AccessKeyID:     cfg.StorageR2AccessKeyID,
		SecretAccessKey: cfg.StorageR2SecretAccessKey,
		PathStyle:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: r2: %w", err)
	}
	return &bucketStorage{client: client, bucket: bucket, prefix: cfg.StorageR2Prefix}, nil
}
