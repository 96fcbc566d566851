package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/service"
	"github.com/sitaurs/apm-portal-sub000/pkg/response"
)

// CalendarHandler 日历展示 HTTP 处理器（只读）
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// List 启用的日历条目
// GET /api/v1/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD&type=prestasi
func (h *CalendarHandler) List(c *gin.Context) {
	var req dto.CalendarListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	events, err := h.calendarSvc.List(c.Request.Context(), &req)
	if err != nil {
		if writeCommonError(c, err) {
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// Feed iCalendar 订阅源
// GET /api/v1/calendar/feed.ics
func (h *CalendarHandler) Feed(c *gin.Context) {
	data, err := h.calendarSvc.Feed(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `inline; filename="kalender-apm.ics"`)
	c.Header("Cache-Control", "public, max-age=900")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}
