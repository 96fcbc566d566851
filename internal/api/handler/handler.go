package handler

import "github.com/sitaurs/apm-portal-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Submission *SubmissionHandler
	Prestasi   *PrestasiHandler
	Calendar   *CalendarHandler
	Lomba      *LombaHandler
	Media      *MediaHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Submission: NewSubmissionHandler(svc.Submission),
		Prestasi:   NewPrestasiHandler(svc.Prestasi, svc.DirectEntry),
		Calendar:   NewCalendarHandler(svc.Calendar),
		Lomba:      NewLombaHandler(svc.Lomba),
		Media:      NewMediaHandler(svc.Media),
		Export:     NewExportHandler(svc.Export),
	}
}
