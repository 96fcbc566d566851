package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/service"
	"github.com/sitaurs/apm-portal-sub000/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSubmissions 导出提交列表
// GET /api/v1/admin/export/submissions?status=&display_state=&tahun=&q=
func (h *ExportHandler) ExportSubmissions(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.SubmissionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportSubmissions(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeAttachment(c, filename, buf.Bytes())
}

// ExportPrestasi 导出全部成就
// GET /api/v1/admin/export/prestasi
func (h *ExportHandler) ExportPrestasi(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportPrestasi(c.Request.Context(), actor)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeAttachment(c, filename, buf.Bytes())
}

// writeAttachment 设置下载响应头并写入 xlsx
func writeAttachment(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if writeCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 25001, "生成 Excel 文件失败")
	default:
		response.InternalError(c)
	}
}
