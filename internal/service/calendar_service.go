package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/sitaurs/apm-portal-sub000/config"
	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/model"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
)

// CalendarSource 触发停用的来源（竞赛或成就）
type CalendarSource struct {
	Kind string // lomba | prestasi
	Slug string
	Name string
}

// CalendarService 日历同步业务接口
//
// 停用匹配：link 以 "/{kind}/{slug}" 结尾（或其后紧跟 "/"、"?"、"#"），或标题包含 Name（不区分大小写）。
// link 匹配不会命中带时间戳后缀的同名 slug；标题仍按子串匹配，名称较短或与其他条目重叠时可能误停用无关条目。
type CalendarService interface {
	// DeactivateFor 停用与来源关联的启用条目；无匹配不是错误
	DeactivateFor(ctx context.Context, source CalendarSource) (int64, error)
	// List 查询启用条目
	List(ctx context.Context, req *dto.CalendarListRequest) ([]dto.CalendarEventResponse, error)
	// Feed 生成启用条目的 iCalendar 订阅内容
	Feed(ctx context.Context) ([]byte, error)
}

type calendarService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{cfg: cfg, repo: repo, logger: logger}
}

func (s *calendarService) DeactivateFor(ctx context.Context, source CalendarSource) (int64, error) {
	var link string
	if source.Kind != "" && strings.TrimSpace(source.Slug) != "" {
		link = "/" + source.Kind + "/" + strings.TrimSpace(source.Slug)
	}
	name := strings.TrimSpace(source.Name)

	n, err := s.repo.Calendar.DeactivateByLinkOrTitle(ctx, link, name)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("已停用关联日历条目",
			zap.String("kind", source.Kind),
			zap.String("slug", source.Slug),
			zap.Int64("count", n),
		)
	}
	return n, nil
}

// deactivateBestEffort 删除流程中调用：失败只记录日志，不影响主流程
func deactivateBestEffort(ctx context.Context, cal CalendarService, source CalendarSource, logger *zap.Logger) {
	if cal == nil {
		return
	}
	if _, err := cal.DeactivateFor(ctx, source); err != nil {
		logger.Warn("停用日历条目失败，已忽略",
			zap.String("kind", source.Kind),
			zap.String("slug", source.Slug),
			zap.Error(err),
		)
	}
}

// calendarTitleMaxLen calendar_events.title 列宽（字符数）
const calendarTitleMaxLen = 300

// prestasiEventTitle 成就日历条目标题，超出列宽时截断
func prestasiEventTitle(peringkat, namaLomba string) string {
	title := fmt.Sprintf("🏆 %s - %s", peringkat, namaLomba)
	if r := []rune(title); len(r) > calendarTitleMaxLen {
		title = string(r[:calendarTitleMaxLen])
	}
	return title
}

// createPrestasiEvent 为成就创建日历条目，repo 可为事务聚合
func createPrestasiEvent(ctx context.Context, repo *repository.Repository, p *model.Prestasi, date time.Time) (*model.CalendarEvent, error) {
	link := "/prestasi/" + p.Slug
	event := &model.CalendarEvent{
		Title:     prestasiEventTitle(p.Peringkat, p.NamaLomba),
		Type:      model.CalendarPrestasi,
		StartDate: date,
		Link:      &link,
		IsActive:  true,
	}
	if err := repo.Calendar.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// calendarDate 发布请求中的日历日期；未勾选时返回 nil
func calendarDate(opt *dto.CalendarOption) (*time.Time, error) {
	if opt == nil || !opt.AddToCalendar {
		return nil, nil
	}
	if opt.TanggalKalender == nil || strings.TrimSpace(*opt.TanggalKalender) == "" {
		return nil, newValidationError("tanggal_kalender")
	}
	return parseDate("tanggal_kalender", opt.TanggalKalender)
}

func (s *calendarService) List(ctx context.Context, req *dto.CalendarListRequest) ([]dto.CalendarEventResponse, error) {
	from, err := parseDate("from", &req.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("to", &req.To)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, newValidationError("to")
	}

	events, err := s.repo.Calendar.ListActive(ctx, from, to, req.Type)
	if err != nil {
		s.logger.Error("查询日历条目失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.CalendarEventResponse, 0, len(events))
	for i := range events {
		list = append(list, toCalendarEventResponse(&events[i]))
	}
	return list, nil
}

func (s *calendarService) Feed(ctx context.Context) ([]byte, error) {
	events, err := s.repo.Calendar.ListActive(ctx, nil, nil, "")
	if err != nil {
		s.logger.Error("查询日历条目失败", zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//APM Portal//Kalender//ID")
	cal.SetXWRCalName(s.cfg.Calendar.FeedName)
	cal.SetXWRTimezone(s.cfg.Calendar.Timezone)

	baseURL := strings.TrimRight(s.cfg.Server.BaseURL, "/")
	for i := range events {
		e := &events[i]
		vevent := cal.AddEvent("calendar-event-" + strconv.FormatInt(e.ID, 10) + "@apm-portal")
		vevent.SetDtStampTime(e.UpdatedAt)
		vevent.SetModifiedAt(e.UpdatedAt)
		vevent.SetSummary(e.Title)
		vevent.SetAllDayStartAt(e.StartDate)

		// DTEND 为开区间：结束日期次日
		end := e.StartDate
		if e.EndDate != nil && e.EndDate.After(end) {
			end = *e.EndDate
		}
		vevent.SetAllDayEndAt(end.AddDate(0, 0, 1))

		vevent.SetProperty(ics.ComponentPropertyCategories, strings.ToUpper(e.Type))
		if e.Link != nil && *e.Link != "" {
			link := *e.Link
			if strings.HasPrefix(link, "/") {
				link = baseURL + link
			}
			vevent.SetURL(link)
		}
	}

	return []byte(cal.Serialize()), nil
}
