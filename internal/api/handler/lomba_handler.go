package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sitaurs/apm-portal-sub000/internal/service"
	"github.com/sitaurs/apm-portal-sub000/pkg/response"
)

// LombaHandler 竞赛 HTTP 处理器
type LombaHandler struct {
	lombaSvc service.LombaService
}

// NewLombaHandler 创建 LombaHandler
func NewLombaHandler(lombaSvc service.LombaService) *LombaHandler {
	return &LombaHandler{lombaSvc: lombaSvc}
}

// Delete 删除竞赛并停用其日历条目
// DELETE /api/v1/admin/lomba/:id
func (h *LombaHandler) Delete(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.lombaSvc.Delete(c.Request.Context(), id, actor); err != nil {
		if writeCommonError(c, err) {
			return
		}
		if errors.Is(err, service.ErrLombaNotFound) {
			response.NotFound(c, 23001, "竞赛不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
