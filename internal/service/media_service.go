package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitaurs/apm-portal-sub000/config"
	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/pkg/storage"
)

// ── 媒体模块业务错误 ──

var (
	ErrMediaUnavailable    = errors.New("媒体托管未配置")
	ErrMediaUpstream       = errors.New("媒体托管服务异常")
	ErrMediaTooLarge       = errors.New("文件过大")
	ErrMediaTypeNotAllowed = errors.New("不支持的文件类型")
	ErrMediaFolderInvalid  = errors.New("无效的上传目录")
)

// 上传目录
const (
	FolderThumbnail  = "thumbnail"
	FolderGaleri     = "galeri"
	FolderSertifikat = "sertifikat"
	FolderDokumen    = "dokumen"
)

// 图片缩放上限
const (
	thumbnailMaxSide = 800
	galeriMaxSide    = 1920
)

// MediaStore 媒体托管协作者，流水线只保存返回的 URL
type MediaStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (*storage.Object, error)
}

// UploadFile 待上传文件
type UploadFile struct {
	FileName string
	Size     int64
	Reader   io.Reader
}

// MediaService 媒体上传业务接口
type MediaService interface {
	// Upload public 为 true 时只允许上传到 dokumen 目录
	Upload(ctx context.Context, folder string, file *UploadFile, public bool) (*dto.MediaResponse, error)
}

type mediaService struct {
	store    MediaStore
	maxBytes int64
	now      func() time.Time
	logger   *zap.Logger
}

// NewMediaService 创建 MediaService 实例，store 为 nil 时上传返回 ErrMediaUnavailable
func NewMediaService(cfg *config.Config, store MediaStore, logger *zap.Logger) MediaService {
	maxBytes := cfg.Storage.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &mediaService{store: store, maxBytes: maxBytes, now: time.Now, logger: logger}
}

var allowedMediaTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

func (s *mediaService) Upload(ctx context.Context, folder string, file *UploadFile, public bool) (*dto.MediaResponse, error) {
	if s.store == nil {
		return nil, ErrMediaUnavailable
	}

	// 1. 目录
	switch folder {
	case FolderThumbnail, FolderGaleri, FolderSertifikat, FolderDokumen:
	default:
		return nil, ErrMediaFolderInvalid
	}
	if public && folder != FolderDokumen {
		return nil, ErrMediaFolderInvalid
	}

	// 2. 大小
	if file.Size > s.maxBytes {
		return nil, ErrMediaTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file.Reader, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrMediaTooLarge
	}

	// 3. 类型按内容嗅探，不信任扩展名
	contentType := http.DetectContentType(data)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	ext, ok := allowedMediaTypes[contentType]
	if !ok {
		return nil, ErrMediaTypeNotAllowed
	}

	// 4. 展示图片缩放
	if folder == FolderThumbnail || folder == FolderGaleri {
		maxSide := galeriMaxSide
		if folder == FolderThumbnail {
			maxSide = thumbnailMaxSide
		}
		if resized, ok := s.downscale(data, contentType, maxSide); ok {
			data, contentType, ext = resized, "image/jpeg", ".jpg"
		}
	}

	// 5. 上传
	key := path.Join(folder, s.now().Format("2006/01"), uuid.NewString()+ext)
	obj, err := s.store.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		s.logger.Error("媒体上传失败", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMediaUpstream, err)
	}

	return &dto.MediaResponse{
		URL:         obj.URL,
		Key:         obj.Key,
		FileName:    file.FileName,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// downscale 超出边长上限的 JPEG/PNG 等比缩小并转为 JPEG；无需处理时返回 false
func (s *mediaService) downscale(data []byte, contentType string, maxSide int) ([]byte, bool) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return nil, false
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || (cfg.Width <= maxSide && cfg.Height <= maxSide) {
		return nil, false
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		s.logger.Warn("图片解码失败，按原图上传", zap.Error(err))
		return nil, false
	}
	img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		s.logger.Warn("图片编码失败，按原图上传", zap.Error(err))
		return nil, false
	}
	return buf.Bytes(), true
}
