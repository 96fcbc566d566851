package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"

	"github.com/sitaurs/apm-portal-sub000/config"
)

// Object 已上传对象
type Object struct {
	Key string
	URL string
}

// OSSStore 阿里云 OSS 媒体托管
type OSSStore struct {
	bucket        *oss.Bucket
	endpoint      string
	bucketName    string
	publicBaseURL string
	prefix        string
	logger        *zap.Logger
}

// NewOSSStore 创建 OSS 客户端并绑定 Bucket
func NewOSSStore(cfg *config.StorageConfig, logger *zap.Logger) (*OSSStore, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("创建 OSS 客户端失败: %w", err)
	}

	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("获取 OSS Bucket 失败: %w", err)
	}

	logger.Info("OSS 媒体托管已启用",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)

	return &OSSStore{
		bucket:        bucket,
		endpoint:      cfg.Endpoint,
		bucketName:    cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		prefix:        strings.Trim(cfg.Prefix, "/"),
		logger:        logger,
	}, nil
}

// Put 上传对象并返回公开访问地址
func (s *OSSStore) Put(ctx context.Context, key, contentType string, r io.Reader) (*Object, error) {
	fullKey := key
	if s.prefix != "" {
		fullKey = path.Join(s.prefix, key)
	}

	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.bucket.PutObject(fullKey, r, opts...); err != nil {
		s.logger.Error("OSS 上传失败", zap.String("key", fullKey), zap.Error(err))
		return nil, fmt.Errorf("OSS 上传失败: %w", err)
	}

	return &Object{Key: fullKey, URL: s.PublicURL(fullKey)}, nil
}

// PublicURL 由对象 Key 生成公开地址
// 配置了 public_base_url（CDN）时优先使用
func (s *OSSStore) PublicURL(key string) string {
	return publicURL(s.publicBaseURL, s.endpoint, s.bucketName, key)
}

func publicURL(base, endpoint, bucket, key string) string {
	if key == "" {
		return ""
	}
	if base != "" {
		return base + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", bucket, end, key)
}
