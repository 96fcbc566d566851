package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sitaurs/apm-portal-sub000/internal/model"
)

// CalendarRepository 日历条目数据访问接口
type CalendarRepository interface {
	Create(ctx context.Context, e *model.CalendarEvent) error
	// DeactivateByLinkOrTitle 停用 link 以路径 linkPath 结尾（或其后紧跟 "/"、"?"、"#"）
	// 或 title 包含 title 的启用条目，返回受影响行数
	// 为空的条件不参与匹配；两个条件都为空时不做任何事
	DeactivateByLinkOrTitle(ctx context.Context, linkPath, title string) (int64, error)
	// ListActive from/to 为 nil 表示不限
	ListActive(ctx context.Context, from, to *time.Time, eventType string) ([]model.CalendarEvent, error)
}

type calendarRepo struct {
	db *gorm.DB
}

// NewCalendarRepo 创建 CalendarRepository 实例
func NewCalendarRepo(db *gorm.DB) CalendarRepository {
	return &calendarRepo{db: db}
}

func (r *calendarRepo) Create(ctx context.Context, e *model.CalendarEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *calendarRepo) DeactivateByLinkOrTitle(ctx context.Context, linkPath, title string) (int64, error) {
	var conds []string
	var args []interface{}
	if linkPath != "" {
		pats := pathPatterns(linkPath)
		conds = append(conds, "(link LIKE ? OR link LIKE ? OR link LIKE ? OR link LIKE ?)")
		for _, p := range pats {
			args = append(args, p)
		}
	}
	if title != "" {
		conds = append(conds, "title ILIKE ?")
		args = append(args, containsPattern(title))
	}
	if len(conds) == 0 {
		return 0, nil
	}

	where := conds[0]
	if len(conds) == 2 {
		where = "(" + conds[0] + " OR " + conds[1] + ")"
	}

	result := r.db.WithContext(ctx).
		Model(&model.CalendarEvent{}).
		Where("is_active = ?", true).
		Where(where, args...).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *calendarRepo) ListActive(ctx context.Context, from, to *time.Time, eventType string) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent

	db := r.db.WithContext(ctx).Where("is_active = ?", true)
	if from != nil {
		db = db.Where("COALESCE(end_date, start_date) >= ?", *from)
	}
	if to != nil {
		db = db.Where("start_date <= ?", *to)
	}
	if eventType != "" {
		db = db.Where("type = ?", eventType)
	}

	err := db.Order("start_date ASC, id ASC").Find(&events).Error
	return events, err
}
