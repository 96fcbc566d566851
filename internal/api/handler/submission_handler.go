package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/service"
	"github.com/sitaurs/apm-portal-sub000/pkg/response"
)

// SubmissionHandler 成就提交与审核 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// Submit 公开提交成就
// POST /api/v1/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.submissionSvc.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.Created(c, result)
}

// List 管理端提交列表
// GET /api/v1/admin/submissions
func (h *SubmissionHandler) List(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.SubmissionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.submissionSvc.List(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Summary 各展示状态的数量
// GET /api/v1/admin/submissions/summary
func (h *SubmissionHandler) Summary(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	result, err := h.submissionSvc.Summary(c.Request.Context(), actor)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, result)
}

// Get 提交详情（含成员、导师、文件与关联成就）
// GET /api/v1/admin/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.submissionSvc.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, result)
}

// Update 修改待审核提交
// PUT /api/v1/admin/submissions/:id
func (h *SubmissionHandler) Update(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.submissionSvc.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, result)
}

// Review 审核提交
// POST /api/v1/admin/submissions/:id/review
func (h *SubmissionHandler) Review(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.submissionSvc.Review(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, result)
}

// ListReviewLogs 审核历史
// GET /api/v1/admin/submissions/:id/logs
func (h *SubmissionHandler) ListReviewLogs(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	logs, err := h.submissionSvc.ListReviewLogs(c.Request.Context(), id, actor)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": logs})
}

// Delete 删除提交（级联删除子表）
// DELETE /api/v1/admin/submissions/:id
func (h *SubmissionHandler) Delete(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.submissionSvc.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSubmissionError 统一处理提交模块业务错误
func (h *SubmissionHandler) handleSubmissionError(c *gin.Context, err error) {
	if writeCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 20001, "提交不存在")
	case errors.Is(err, service.ErrSubmissionDuplicate):
		response.Conflict(c, 20002, "同一 NIM 已提交过相同标题的成就")
	case errors.Is(err, service.ErrSubmissionFrozen):
		response.Conflict(c, 20003, "提交已审核，事实字段不可修改")
	case errors.Is(err, service.ErrSubmissionAlreadyReviewed):
		response.Conflict(c, 20004, "该提交已审核，不能再次审核")
	default:
		response.InternalError(c)
	}
}
