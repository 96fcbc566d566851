package model

import "time"

// CalendarEvent 日历条目 — 对应 calendar_events
// 条目只会被停用（is_active=false），不会被物理删除
type CalendarEvent struct {
	BaseModel
	Title     string     `gorm:"type:varchar(300);not null"                 json:"title"`
	Type      string     `gorm:"type:varchar(20);not null;default:'lainnya'" json:"type"`
	Color     *string    `gorm:"type:varchar(20)"                           json:"color,omitempty"`
	StartDate time.Time  `gorm:"type:date;not null"                         json:"start_date"`
	EndDate   *time.Time `gorm:"type:date"                                  json:"end_date,omitempty"`
	Link      *string    `gorm:"type:text"                                  json:"link,omitempty"`
	IsActive  bool       `gorm:"not null;default:true"                      json:"is_active"`
}

// TableName 指定表名
func (CalendarEvent) TableName() string { return "calendar_events" }
