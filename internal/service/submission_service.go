package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sitaurs/apm-portal-sub000/config"
	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/model"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
	pkgerrors "github.com/sitaurs/apm-portal-sub000/pkg/errors"
)

// ── 提交模块业务错误 ──

var (
	ErrSubmissionNotFound  = errors.New("提交不存在")
	ErrSubmissionDuplicate = errors.New("同一 NIM 已提交过相同标题的成就")
	ErrSubmissionFrozen    = errors.New("提交已审核，事实字段不可修改")
)

// SubmissionService 成就提交与审核业务接口
type SubmissionService interface {
	// Submit 公开提交，结果恒为 pending
	Submit(ctx context.Context, req *dto.SubmitRequest) (*dto.SubmissionResponse, error)
	GetByID(ctx context.Context, id int64, actor *Identity) (*dto.SubmissionResponse, error)
	List(ctx context.Context, req *dto.SubmissionListRequest, actor *Identity) ([]dto.SubmissionResponse, int64, error)
	Summary(ctx context.Context, actor *Identity) (*dto.SubmissionSummaryResponse, error)
	// Update 仅 pending 状态可修改事实字段
	Update(ctx context.Context, id int64, req *dto.UpdateSubmissionRequest, actor *Identity) (*dto.SubmissionResponse, error)
	// Review 审核通过/驳回；通过不会自动发布
	Review(ctx context.Context, id int64, req *dto.ReviewRequest, reviewer *Identity) (*dto.SubmissionResponse, error)
	ListReviewLogs(ctx context.Context, id int64, actor *Identity) ([]dto.ReviewLogResponse, error)
	Delete(ctx context.Context, id int64, actor *Identity) error
}

type submissionService struct {
	repo     *repository.Repository
	policy   ReviewPolicy
	validate *validator.Validate
	notifier ReviewNotifier
	now      func() time.Time
	logger   *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(
	cfg *config.Config,
	repo *repository.Repository,
	notifier ReviewNotifier,
	now func() time.Time,
	logger *zap.Logger,
) SubmissionService {
	if now == nil {
		now = time.Now
	}
	if notifier == nil {
		notifier = NopReviewNotifier{}
	}
	return &submissionService{
		repo:     repo,
		policy:   ParseReviewPolicy(cfg.Pipeline.ReviewPolicy),
		validate: newValidator(),
		notifier: notifier,
		now:      now,
		logger:   logger,
	}
}

// ────────────────────── Submit ──────────────────────

func (s *submissionService) Submit(ctx context.Context, req *dto.SubmitRequest) (*dto.SubmissionResponse, error) {
	// 1. 归一化与校验
	normalizeAchievement(&req.AchievementFields)
	req.SubmitterNama = strings.TrimSpace(req.SubmitterNama)
	req.SubmitterNIM = strings.TrimSpace(req.SubmitterNIM)
	req.SubmitterEmail = trimPtr(req.SubmitterEmail)
	req.SubmitterWhatsapp = trimPtr(req.SubmitterWhatsapp)
	req.Documents = dropEmptyDocuments(req.Documents)

	now := s.now()
	tanggal, err := s.validateAchievement(req, &req.AchievementFields, now)
	if err != nil {
		return nil, err
	}

	// 2. 去重：同一 NIM + 标题（不区分大小写）
	dup, err := s.repo.Submission.ExistsByJudulNIM(ctx, req.Judul, req.SubmitterNIM, 0)
	if err != nil {
		s.logger.Error("提交查重失败", zap.Error(err))
		return nil, err
	}
	if dup {
		return nil, ErrSubmissionDuplicate
	}

	// 3. 组装提交
	sub := buildSubmission(&req.AchievementFields, tanggal, now)
	sub.SubmitterNama = req.SubmitterNama
	sub.SubmitterNIM = req.SubmitterNIM
	sub.SubmitterEmail = req.SubmitterEmail
	sub.SubmitterWhatsapp = req.SubmitterWhatsapp
	sub.Status = model.StatusPending
	sub.Members = buildMembers(req.Members)
	sub.Pembimbing = buildPembimbing(req.Pembimbing)
	for _, d := range req.Documents {
		sub.Documents = append(sub.Documents, buildDocument(d))
	}

	// 4. 主表与子表在同一事务中写入
	if err := s.repo.Submission.Create(ctx, sub); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSubmissionDuplicate
		}
		s.logger.Error("创建提交失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("收到成就提交",
		zap.Int64("id", sub.ID),
		zap.String("nim", sub.SubmitterNIM),
	)
	return toSubmissionResponse(sub), nil
}

// validateAchievement 标签校验 + 年份与日期校验，返回解析后的日期
func (s *submissionService) validateAchievement(req interface{}, a *dto.AchievementFields, now time.Time) (*time.Time, error) {
	tagErr := validateStruct(s.validate, req)
	var ve *ValidationError
	if tagErr != nil && !errors.As(tagErr, &ve) {
		return nil, tagErr
	}
	tanggal, dateErr := parseDate("tanggal", a.Tanggal)
	if err := mergeValidation(tagErr, checkTahun(a.Tahun, now), dateErr); err != nil {
		return nil, err
	}
	return tanggal, nil
}

// dropEmptyDocuments 丢弃 file_url 为空的材料（含空白占位行），在校验前执行
func dropEmptyDocuments(docs []dto.DocumentInput) []dto.DocumentInput {
	kept := docs[:0]
	for _, d := range docs {
		if strings.TrimSpace(d.FileURL) == "" {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

// normalizeAchievement 去除首尾空白
func normalizeAchievement(a *dto.AchievementFields) {
	a.Judul = strings.TrimSpace(a.Judul)
	a.NamaLomba = strings.TrimSpace(a.NamaLomba)
	a.Tingkat = strings.TrimSpace(a.Tingkat)
	a.Peringkat = strings.TrimSpace(a.Peringkat)
	a.Tanggal = trimPtr(a.Tanggal)
	a.Kategori = trimPtr(a.Kategori)
	a.Deskripsi = trimPtr(a.Deskripsi)
}

// buildSubmission 事实字段；tingkat 默认 kampus，tahun 默认取日期年份或当前年份
func buildSubmission(a *dto.AchievementFields, tanggal *time.Time, now time.Time) *model.Submission {
	sub := &model.Submission{
		Judul:     a.Judul,
		NamaLomba: a.NamaLomba,
		Tingkat:   a.Tingkat,
		Peringkat: a.Peringkat,
		Tahun:     a.Tahun,
		Tanggal:   tanggal,
		Kategori:  a.Kategori,
		Deskripsi: a.Deskripsi,
	}
	if sub.Tingkat == "" {
		sub.Tingkat = model.TingkatKampus
	}
	if sub.Tahun == 0 {
		if tanggal != nil {
			sub.Tahun = tanggal.Year()
		} else {
			sub.Tahun = now.Year()
		}
	}
	return sub
}

func buildMembers(in []dto.MemberInput) []model.SubmissionMember {
	out := make([]model.SubmissionMember, 0, len(in))
	for _, m := range in {
		out = append(out, model.SubmissionMember{
			Nama:     strings.TrimSpace(m.Nama),
			NIM:      strings.TrimSpace(m.NIM),
			Prodi:    trimPtr(m.Prodi),
			Angkatan: trimPtr(m.Angkatan),
			Whatsapp: trimPtr(m.Whatsapp),
			IsKetua:  m.IsKetua,
		})
	}
	return out
}

func buildPembimbing(in []dto.PembimbingInput) []model.SubmissionPembimbing {
	out := make([]model.SubmissionPembimbing, 0, len(in))
	for _, p := range in {
		out = append(out, model.SubmissionPembimbing{
			Nama:     strings.TrimSpace(p.Nama),
			NIDN:     trimPtr(p.NIDN),
			Whatsapp: trimPtr(p.Whatsapp),
		})
	}
	return out
}

func buildDocument(d dto.DocumentInput) model.SubmissionDocument {
	return model.SubmissionDocument{
		Tipe:     d.Tipe,
		Label:    trimPtr(d.Label),
		FileURL:  strings.TrimSpace(d.FileURL),
		FileName: trimPtr(d.FileName),
	}
}

// ────────────────────── Query ──────────────────────

func (s *submissionService) GetByID(ctx context.Context, id int64, actor *Identity) (*dto.SubmissionResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSubmissionResponse(sub), nil
}

func (s *submissionService) load(ctx context.Context, id int64) (*model.Submission, error) {
	sub, err := s.repo.Submission.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return sub, nil
}

var (
	statusValues       = []string{model.StatusPending, model.StatusApproved, model.StatusRejected}
	displayStateValues = []string{model.DisplayPending, model.DisplayRejected, model.DisplayApprovedUnpublished, model.DisplayPublished}
)

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func (s *submissionService) List(ctx context.Context, req *dto.SubmissionListRequest, actor *Identity) ([]dto.SubmissionResponse, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}

	var bad []string
	if req.Status != "" && !contains(statusValues, req.Status) {
		bad = append(bad, "status")
	}
	if req.DisplayState != "" && !contains(displayStateValues, req.DisplayState) {
		bad = append(bad, "display_state")
	}
	if len(bad) > 0 {
		return nil, 0, newValidationError(bad...)
	}

	filter := repository.SubmissionFilter{
		Status:       req.Status,
		DisplayState: req.DisplayState,
		Tahun:        req.Tahun,
		Q:            strings.TrimSpace(req.Q),
	}
	subs, total, err := s.repo.Submission.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询提交列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		list = append(list, *toSubmissionResponse(&subs[i]))
	}
	return list, total, nil
}

func (s *submissionService) Summary(ctx context.Context, actor *Identity) (*dto.SubmissionSummaryResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	counts, err := s.repo.Submission.CountByDisplayState(ctx)
	if err != nil {
		s.logger.Error("统计提交状态失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.SubmissionSummaryResponse{
		Pending:             counts[model.DisplayPending],
		Rejected:            counts[model.DisplayRejected],
		ApprovedUnpublished: counts[model.DisplayApprovedUnpublished],
		Published:           counts[model.DisplayPublished],
	}
	resp.Total = resp.Pending + resp.Rejected + resp.ApprovedUnpublished + resp.Published
	return resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *submissionService) Update(ctx context.Context, id int64, req *dto.UpdateSubmissionRequest, actor *Identity) (*dto.SubmissionResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	req.Judul = trimPtr(req.Judul)
	req.NamaLomba = trimPtr(req.NamaLomba)
	tagErr := validateStruct(s.validate, req)
	var tahunErr error
	if req.Tahun != nil {
		if *req.Tahun == 0 {
			tahunErr = newValidationError("tahun")
		} else {
			tahunErr = checkTahun(*req.Tahun, s.now())
		}
	}
	tanggal, dateErr := parseDate("tanggal", req.Tanggal)
	if err := mergeValidation(tagErr, tahunErr, dateErr); err != nil {
		return nil, err
	}

	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.IsPending() {
		return nil, ErrSubmissionFrozen
	}

	judulChanged := req.Judul != nil && !strings.EqualFold(*req.Judul, sub.Judul)
	if req.Judul != nil {
		sub.Judul = *req.Judul
	}
	if req.NamaLomba != nil {
		sub.NamaLomba = *req.NamaLomba
	}
	if req.Tingkat != nil {
		sub.Tingkat = *req.Tingkat
	}
	if req.Peringkat != nil {
		sub.Peringkat = strings.TrimSpace(*req.Peringkat)
	}
	if req.Tahun != nil {
		sub.Tahun = *req.Tahun
	}
	if req.Tanggal != nil {
		sub.Tanggal = tanggal
	}
	if req.Kategori != nil {
		sub.Kategori = trimPtr(req.Kategori)
	}
	if req.Deskripsi != nil {
		sub.Deskripsi = trimPtr(req.Deskripsi)
	}
	if req.SubmitterEmail != nil {
		sub.SubmitterEmail = trimPtr(req.SubmitterEmail)
	}
	if req.SubmitterWhatsapp != nil {
		sub.SubmitterWhatsapp = trimPtr(req.SubmitterWhatsapp)
	}

	if judulChanged {
		dup, err := s.repo.Submission.ExistsByJudulNIM(ctx, sub.Judul, sub.SubmitterNIM, sub.ID)
		if err != nil {
			s.logger.Error("提交查重失败", zap.Error(err))
			return nil, err
		}
		if dup {
			return nil, ErrSubmissionDuplicate
		}
	}

	sub.UpdatedAt = s.now()
	if err := s.repo.Submission.Update(ctx, sub); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSubmissionDuplicate
		}
		s.logger.Error("更新提交失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	return toSubmissionResponse(sub), nil
}

// ────────────────────── Review ──────────────────────

func (s *submissionService) Review(ctx context.Context, id int64, req *dto.ReviewRequest, reviewer *Identity) (*dto.SubmissionResponse, error) {
	// 1. 权限
	if err := requireAdmin(reviewer); err != nil {
		return nil, err
	}

	// 2. 参数
	req.Status = strings.TrimSpace(req.Status)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	// 3. 查询提交并检查策略
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(sub.Status); err != nil {
		return nil, err
	}

	// 4. 写入审核结论与审核记录
	now := s.now()
	from := sub.Status
	reviewerID := reviewer.ID
	notes := trimPtr(req.ReviewerNotes)

	sub.Status = req.Status
	sub.ReviewedAt = &now
	sub.ReviewedBy = &reviewerID
	sub.ReviewerNotes = notes
	sub.UpdatedAt = now

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Submission.Update(ctx, sub); err != nil {
			return err
		}
		return txRepo.ReviewLog.Create(ctx, &model.ReviewLog{
			SubmissionID: sub.ID,
			FromStatus:   from,
			ToStatus:     sub.Status,
			ReviewerID:   &reviewerID,
			Notes:        notes,
			CreatedAt:    now,
		})
	})
	if err != nil {
		s.logger.Error("审核提交失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("提交已审核",
		zap.Int64("id", id),
		zap.String("from", from),
		zap.String("to", sub.Status),
		zap.Int64("reviewer", reviewerID),
	)

	// 5. 通知提交人（失败不影响审核结果）
	s.notifier.NotifyReviewed(sub)

	return toSubmissionResponse(sub), nil
}

func (s *submissionService) ListReviewLogs(ctx context.Context, id int64, actor *Identity) ([]dto.ReviewLogResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	logs, err := s.repo.ReviewLog.ListBySubmission(ctx, id)
	if err != nil {
		s.logger.Error("查询审核记录失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	list := make([]dto.ReviewLogResponse, 0, len(logs))
	for i := range logs {
		list = append(list, toReviewLogResponse(&logs[i]))
	}
	return list, nil
}

// ────────────────────── Delete ──────────────────────

func (s *submissionService) Delete(ctx context.Context, id int64, actor *Identity) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Submission.Delete(ctx, id); err != nil {
		s.logger.Error("删除提交失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("提交已删除", zap.Int64("id", id), zap.Int64("operator", actor.ID))
	return nil
}
