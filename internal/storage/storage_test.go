package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"insurance/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 42, time.UTC)
	tests := []struct {
		name   string
		prefix string
		opts   SaveOptions
		want   string
	}{
		{"完整参数", "", SaveOptions{Category: "backups", Extension: "sql", BaseName: "backup-20240610"}, "backups/2024/06/10/backup-20240610.sql"},
		{"带前缀", "/tenant/", SaveOptions{Category: "Insurance-Images", Extension: ".PNG", BaseName: "Ins 1"}, "tenant/insurance-images/2024/06/10/ins-1.png"},
		{"缺省值", "", SaveOptions{}, "misc/2024/06/10/1718006400000000042.bin"},
		{"非法字符", "", SaveOptions{Category: "../etc", Extension: "sql", BaseName: "../passwd"}, "etc/2024/06/10/passwd.sql"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, objectKey(tt.prefix, tt.opts, now))
		})
	}
}

func TestImageExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		ok       bool
	}{
		{"photo.JPEG", "jpg", true},
		{"a.png", "png", true},
		{"b.webp", "webp", true},
		{"script.sh", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, ok := ImageExtension(tt.filename)
		assert.Equal(t, tt.ok, ok, tt.filename)
		assert.Equal(t, tt.want, got, tt.filename)
	}
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "/files/insurance-images/a.png", PublicURL("", "insurance-images/a.png"))
	assert.Equal(t, "https://cdn.example.com/x/a.png", PublicURL("https://cdn.example.com/", "/x/a.png"))
	assert.Equal(t, "https://other/a.png", PublicURL("/files", "https://other/a.png"))
	assert.Empty(t, PublicURL("/files", " "))

	assert.Equal(t, "insurance-images/a.png", KeyFromURL("/files", "/files/insurance-images/a.png"))
	assert.Empty(t, KeyFromURL("/files", "https://elsewhere/a.png"))
}

func TestLocalStorageSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) }

	key, err := s.Save(ctx, []byte("-- dump"), SaveOptions{Category: CategoryBackups, Extension: "sql", BaseName: "snap"})
	require.NoError(t, err)
	assert.Equal(t, "backups/2024/06/10/snap.sql", key)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "-- dump", string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))
	// 重复删除不报错
	require.NoError(t, s.Delete(ctx, key))

	_, err = s.Save(ctx, nil, SaveOptions{})
	assert.ErrorIs(t, err, errEmptyPayload)
}

func TestLocalStorageDeleteStaysInsideBaseDir(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	s, err := NewLocalStorage(filepath.Join(root, "files"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(context.Background(), "../outside.txt"))

	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestNewStorage(t *testing.T) {
	none, err := NewStorage(config.Config{StorageType: "none"})
	require.NoError(t, err)
	assert.Nil(t, none)

	local, err := NewStorage(config.Config{StorageType: "LOCAL", StorageLocalDir: t.TempDir()})
	require.NoError(t, err)
	_, ok := local.(LocalBaseDirProvider)
	assert.True(t, ok)

	_, err = NewStorage(config.Config{StorageType: "ftp"})
	assert.Error(t, err)

	_, err = NewStorage(config.Config{StorageType: "s3", StorageS3Bucket: "b"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "region"))

	_, err = NewStorage(config.Config{StorageType: "r2", StorageR2Bucket: "b"})
	assert.Error(t, err)
	_, err = NewStorage(config.Config{StorageType: "oss"})
	assert.Error(t, err)
	_, err = NewStorage(config.Config{StorageType: "cos"})
	assert.Error(t, err)
}
