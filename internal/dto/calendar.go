package dto

// ── 日历模块 DTO ──

// CalendarListRequest 日历条目查询区间
type CalendarListRequest struct {
	From string `form:"from"` // YYYY-MM-DD
	To   string `form:"to"`
	Type string `form:"type"`
}

// CalendarEventResponse 日历条目
type CalendarEventResponse struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Type      string  `json:"type"`
	Color     *string `json:"color,omitempty"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
	Link      *string `json:"link,omitempty"`
	IsActive  bool    `json:"is_active"`
}

// DeactivateResponse 停用结果
type DeactivateResponse struct {
	Deactivated int64 `json:"deactivated"`
}
