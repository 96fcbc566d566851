package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/model"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
)

// directEntryNote 直录时写入审核记录的备注
const directEntryNote = "Input langsung oleh admin"

// DirectEntryService 管理员直录业务接口
type DirectEntryService interface {
	// CreateDirect 单事务内写入已通过的哨兵提交、成就与可选日历条目；任一步失败全部回滚
	CreateDirect(ctx context.Context, req *dto.DirectEntryRequest, admin *Identity) (*dto.DirectEntryResponse, error)
}

type directEntryService struct {
	repo     *repository.Repository
	slugs    *SlugAllocator
	validate *validator.Validate
	now      func() time.Time
	logger   *zap.Logger
}

// NewDirectEntryService 创建 DirectEntryService 实例
func NewDirectEntryService(
	repo *repository.Repository,
	slugs *SlugAllocator,
	now func() time.Time,
	logger *zap.Logger,
) DirectEntryService {
	if now == nil {
		now = time.Now
	}
	return &directEntryService{
		repo:     repo,
		slugs:    slugs,
		validate: newValidator(),
		now:      now,
		logger:   logger,
	}
}

func (s *directEntryService) CreateDirect(ctx context.Context, req *dto.DirectEntryRequest, admin *Identity) (*dto.DirectEntryResponse, error) {
	// 1. 权限
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	// 2. 校验：写入前完成，材料 file_url 必填
	normalizeAchievement(&req.AchievementFields)
	req.SubmitterEmail = trimPtr(req.SubmitterEmail)
	now := s.now()

	tagErr := validateStruct(s.validate, req)
	tanggal, dateErr := parseDate("tanggal", req.Tanggal)
	calDate, calErr := calendarDate(&req.CalendarOption)
	var missingDocs []string
	for i, d := range req.Documents {
		if strings.TrimSpace(d.FileURL) == "" {
			missingDocs = append(missingDocs, fmt.Sprintf("documents[%d].file_url", i))
		}
	}
	var docErr error
	if len(missingDocs) > 0 {
		docErr = newValidationError(missingDocs...)
	}
	if err := mergeValidation(tagErr, checkTahun(req.Tahun, now), dateErr, calErr, docErr); err != nil {
		return nil, err
	}

	// 3. 组装哨兵提交：视为已由当前管理员审核通过
	adminID := admin.ID
	sub := buildSubmission(&req.AchievementFields, tanggal, now)
	sub.SubmitterNama = model.AdminSubmitterNama
	sub.SubmitterNIM = model.AdminSubmitterNIM
	sub.SubmitterEmail = req.SubmitterEmail
	if sub.SubmitterEmail == nil && admin.Email != "" {
		email := admin.Email
		sub.SubmitterEmail = &email
	}
	sub.Status = model.StatusApproved
	sub.ReviewedAt = &now
	sub.ReviewedBy = &adminID
	sub.Members = buildMembers(req.Members)
	sub.Pembimbing = buildPembimbing(req.Pembimbing)
	for _, d := range req.Documents {
		sub.Documents = append(sub.Documents, buildDocument(d))
	}

	// 4. 单事务：提交 → 审核记录 → 成就 → 日历
	var (
		p     *model.Prestasi
		event *model.CalendarEvent
	)
	err := runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Submission.Create(ctx, sub); err != nil {
			return err
		}

		note := directEntryNote
		if err := txRepo.ReviewLog.Create(ctx, &model.ReviewLog{
			SubmissionID: sub.ID,
			FromStatus:   model.StatusPending,
			ToStatus:     model.StatusApproved,
			ReviewerID:   &adminID,
			Notes:        &note,
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		p = projectSubmission(sub, &req.PresentationFields, now)
		if err := s.slugs.Insert(ctx, txRepo.Prestasi, p, sub.Judul); err != nil {
			return err
		}

		if calDate != nil {
			ev, err := createPrestasiEvent(ctx, txRepo, p, *calDate)
			if err != nil {
				return err
			}
			event = ev
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlugConflict) {
			return nil, err
		}
		s.logger.Error("管理员直录失败，已回滚", zap.Int64("admin", adminID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("管理员直录成就",
		zap.Int64("submission_id", sub.ID),
		zap.Int64("prestasi_id", p.ID),
		zap.String("slug", p.Slug),
		zap.Int64("admin", adminID),
	)

	resp := &dto.DirectEntryResponse{
		SubmissionID: sub.ID,
		Prestasi:     toPrestasiResponse(p, false),
	}
	if event != nil {
		id := event.ID
		resp.CalendarEventID = &id
	}
	return resp, nil
}
