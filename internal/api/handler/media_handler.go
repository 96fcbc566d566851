package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitaurs/apm-portal-sub000/internal/api/middleware"
	"github.com/sitaurs/apm-portal-sub000/internal/service"
	"github.com/sitaurs/apm-portal-sub000/pkg/response"
)

// MediaHandler 媒体上传 HTTP 处理器
type MediaHandler struct {
	mediaSvc service.MediaService
}

// NewMediaHandler 创建 MediaHandler
func NewMediaHandler(mediaSvc service.MediaService) *MediaHandler {
	return &MediaHandler{mediaSvc: mediaSvc}
}

// Upload 管理端上传展示素材
// POST /api/v1/admin/media  (multipart: folder, file)
func (h *MediaHandler) Upload(c *gin.Context) {
	if _, ok := MustGetIdentity(c); !ok {
		return
	}
	h.upload(c, c.PostForm("folder"), false)
}

// UploadPublic 公开提交表单上传证明文件，只允许 dokumen 目录
// POST /api/v1/submissions/uploads  (multipart: file)
func (h *MediaHandler) UploadPublic(c *gin.Context) {
	h.upload(c, service.FolderDokumen, true)
}

func (h *MediaHandler) upload(c *gin.Context, folder string, public bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 24003, "文件过大")
			return
		}
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return
	}
	defer f.Close()

	result, err := h.mediaSvc.Upload(c.Request.Context(), folder, &service.UploadFile{
		FileName: fh.Filename,
		Size:     fh.Size,
		Reader:   f,
	}, public)
	if err != nil {
		h.handleMediaError(c, err)
		return
	}

	response.Created(c, result)
}

// handleMediaError 统一处理媒体模块业务错误
func (h *MediaHandler) handleMediaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMediaFolderInvalid):
		response.BadRequest(c, 24001, "无效的上传目录")
	case errors.Is(err, service.ErrMediaTypeNotAllowed):
		response.BadRequest(c, 24002, "不支持的文件类型")
	case errors.Is(err, service.ErrMediaTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 24003, "文件过大")
	case errors.Is(err, service.ErrMediaUnavailable):
		response.Error(c, http.StatusServiceUnavailable, 24004, "媒体托管未配置")
	case errors.Is(err, service.ErrMediaUpstream):
		response.BadGateway(c, 24005, "媒体托管服务异常")
	default:
		response.InternalError(c)
	}
}
