package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/service"
	"github.com/sitaurs/apm-portal-sub000/pkg/response"
)

// PrestasiHandler 成就发布、维护与公开展示 HTTP 处理器
type PrestasiHandler struct {
	prestasiSvc    service.PrestasiService
	directEntrySvc service.DirectEntryService
}

// NewPrestasiHandler 创建 PrestasiHandler
func NewPrestasiHandler(prestasiSvc service.PrestasiService, directEntrySvc service.DirectEntryService) *PrestasiHandler {
	return &PrestasiHandler{prestasiSvc: prestasiSvc, directEntrySvc: directEntrySvc}
}

// ── 公开接口 ──

// ListPublic 已发布成就列表
// GET /api/v1/prestasi
func (h *PrestasiHandler) ListPublic(c *gin.Context) {
	var req dto.PrestasiListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.prestasiSvc.ListPublic(c.Request.Context(), &req)
	if err != nil {
		h.handlePrestasiError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetPublic 按 slug 获取已发布成就
// GET /api/v1/prestasi/:slug
func (h *PrestasiHandler) GetPublic(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		response.BadRequest(c, 10001, "slug 不能为空")
		return
	}

	result, err := h.prestasiSvc.GetPublicBySlug(c.Request.Context(), slug)
	if err != nil {
		h.handlePrestasiError(c, err)
		return
	}

	response.OK(c, result)
}

// ── 管理端接口 ──

// Publish 由提交发布成就
// POST /api/v1/admin/submissions/:id/publish
func (h *PrestasiHandler) Publish(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.PublishRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.prestasiSvc.Publish(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handlePrestasiError(c, err)
		return
	}

	response.Created(c, result)
}

// CreateDirect 管理员直录成就
// POST /api/v1/admin/prestasi
func (h *PrestasiHandler) CreateDirect(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.DirectEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.directEntrySvc.CreateDirect(c.Request.Context(), &req, actor)
	if err != nil {
		h.handlePrestasiError(c, err)
		return
	}

	response.Created(c, result)
}

// ListAdmin 管理端成就列表（含未发布）
// GET /api/v1/admin/prestasi
func (h *PrestasiHandler) ListAdmin(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.PrestasiListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.prestasiSvc.ListAdmin(c.Request.Context(), &req, actor)
	if err != nil {
		h.handlePrestasiError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 管理端成就详情
// GET /api/v1/admin/prestasi/:id
func (h *PrestasiHandler) Get(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.prestasiSvc.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handlePrestasiError(c, err)
		return
	}

	response.OK(c, result)
}

// Update 编辑成就
// PUT /api/v1/admin/prestasi/:id
func (h *PrestasiHandler) Update(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePrestasiRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.prestasiSvc.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handlePrestasiError(c, err)
		return
	}

	response.OK(c, result)
}

// SetPublished 切换发布状态
// PATCH /api/v1/admin/prestasi/:id/publish
func (h *PrestasiHandler) SetPublished(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SetPublishedRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.prestasiSvc.SetPublished(c.Request.Context(), id, *req.IsPublished, actor)
	if err != nil {
		h.handlePrestasiError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除成就（关联日历条目一并停用）
// DELETE /api/v1/admin/prestasi/:id
func (h *PrestasiHandler) Delete(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.prestasiSvc.Delete(c.Request.Context(), id, actor); err != nil {
		h.handlePrestasiError(c, err)
		return
	}

	response.OK(c, nil)
}

// handlePrestasiError 统一处理成就模块业务错误
func (h *PrestasiHandler) handlePrestasiError(c *gin.Context, err error) {
	if writeCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrPrestasiNotFound):
		response.NotFound(c, 21001, "成就不存在")
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 21002, "提交不存在")
	case errors.Is(err, service.ErrSubmissionAlreadyPublished):
		response.Conflict(c, 21003, "该提交已发布为成就")
	case errors.Is(err, service.ErrSubmissionNotApproved):
		response.Conflict(c, 21004, "提交未通过审核，不能发布")
	case errors.Is(err, service.ErrSlugConflict):
		response.Conflict(c, 21005, "slug 已被占用")
	case errors.Is(err, service.ErrSubmissionDuplicate):
		response.Conflict(c, 21006, "同一 NIM 已提交过相同标题的成就")
	default:
		response.InternalError(c)
	}
}
