package storage

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

var errEmptyPayload = errors.New("storage: empty payload")

// imageExtensions 允许上传的险种图片格式
var imageExtensions = map[string]string{
	"jpg":  "jpg",
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

// ImageExtension 返回文件名对应的规范化图片扩展名，不支持的格式返回 false。
func ImageExtension(filename string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strings.TrimSpace(filename)), "."))
	normalized, ok := imageExtensions[ext]
	return normalized, ok
}

// cleanSegment 只保留小写字母、数字、- 和 _
func cleanSegment(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// objectKey 生成带日期目录的对象键
func objectKey(prefix string, opts SaveOptions, now time.Time) string {
	category := cleanSegment(opts.Category)
	if category == "" {
		category = "misc"
	}
	ext := cleanSegment(strings.TrimPrefix(opts.Extension, "."))
	if ext == "" {
		ext = "bin"
	}
	base := strings.Trim(cleanSegment(strings.ReplaceAll(opts.BaseName, " ", "-")), "-_")
	if base == "" {
		base = fmt.Sprintf("%d", now.UnixNano())
	}
	key := path.Join(category, now.Format("2006/01/02"), base+"."+ext)
	if p := strings.Trim(strings.TrimSpace(prefix), "/"); p != "" {
		key = path.Join(p, key)
	}
	return key
}

func contentType(ext string) string {
	if t := mime.TypeByExtension("." + cleanSegment(strings.TrimPrefix(ext, "."))); t != "" {
		return t
	}
	if cleanSegment(ext) == "sql" {
		return "application/sql"
	}
	return "application/octet-stream"
}

// PublicURL 把对象键拼接为可访问的地址，已是完整 URL 时原样返回。
func PublicURL(base, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	if base = strings.TrimRight(strings.TrimSpace(base), "/"); base == "" {
		base = "/files"
	}
	return base + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL 是 PublicURL 的逆操作，无法识别时返回空串。
func KeyFromURL(base, url string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = "/files"
	}
	if !strings.HasPrefix(url, base+"/") {
		return ""
	}
	return strings.TrimPrefix(url, base+"/")
}
