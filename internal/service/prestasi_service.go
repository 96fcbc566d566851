package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sitaurs/apm-portal-sub000/config"
	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/model"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
	pkgerrors "github.com/sitaurs/apm-portal-sub000/pkg/errors"
)

// ── 成就发布模块业务错误 ──

var (
	ErrPrestasiNotFound           = errors.New("成就不存在")
	ErrSubmissionAlreadyPublished = errors.New("该提交已发布为成就")
	ErrSubmissionNotApproved      = errors.New("提交未通过审核，不能发布")
)

// PrestasiService 成就发布与维护业务接口
type PrestasiService interface {
	// Publish 由提交生成公开成就，可选创建日历条目
	Publish(ctx context.Context, submissionID int64, req *dto.PublishRequest, actor *Identity) (*dto.PublishResponse, error)
	// Update 只修改成就本身，从不回写提交
	Update(ctx context.Context, id int64, req *dto.UpdatePrestasiRequest, actor *Identity) (*dto.PrestasiResponse, error)
	SetPublished(ctx context.Context, id int64, published bool, actor *Identity) (*dto.PrestasiResponse, error)
	// Delete 先停用关联日历条目（失败忽略），再物理删除
	Delete(ctx context.Context, id int64, actor *Identity) error
	GetByID(ctx context.Context, id int64, actor *Identity) (*dto.PrestasiResponse, error)
	ListAdmin(ctx context.Context, req *dto.PrestasiListRequest, actor *Identity) ([]dto.PrestasiResponse, int64, error)

	// ── 公开接口 ──

	ListPublic(ctx context.Context, req *dto.PrestasiListRequest) ([]dto.PrestasiResponse, int64, error)
	GetPublicBySlug(ctx context.Context, slug string) (*dto.PrestasiResponse, error)
}

type prestasiService struct {
	repo            *repository.Repository
	slugs           *SlugAllocator
	calendar        CalendarService
	requireApproved bool
	validate        *validator.Validate
	now             func() time.Time
	logger          *zap.Logger
}

// NewPrestasiService 创建 PrestasiService 实例
func NewPrestasiService(
	cfg *config.Config,
	repo *repository.Repository,
	slugs *SlugAllocator,
	calendar CalendarService,
	now func() time.Time,
	logger *zap.Logger,
) PrestasiService {
	if now == nil {
		now = time.Now
	}
	return &prestasiService{
		repo:            repo,
		slugs:           slugs,
		calendar:        calendar,
		requireApproved: cfg.Pipeline.RequireApprovedForPublish,
		validate:        newValidator(),
		now:             now,
		logger:          logger,
	}
}

// ────────────────────── Publish ──────────────────────

func (s *prestasiService) Publish(ctx context.Context, submissionID int64, req *dto.PublishRequest, actor *Identity) (*dto.PublishResponse, error) {
	// 1. 权限与参数
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	tagErr := validateStruct(s.validate, req)
	date, dateErr := calendarDate(&req.CalendarOption)
	if err := mergeValidation(tagErr, dateErr); err != nil {
		return nil, err
	}

	// 2. 提交必须存在且未发布
	sub, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.Int64("id", submissionID), zap.Error(err))
		return nil, err
	}
	if sub.Prestasi != nil {
		return nil, ErrSubmissionAlreadyPublished
	}
	if s.requireApproved && sub.Status != model.StatusApproved {
		return nil, ErrSubmissionNotApproved
	}

	// 3. 投影 + slug 分配 + 可选日历条目，同一事务
	slugSource := sub.Judul
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		slugSource = *req.Slug
	}
	now := s.now()
	p := projectSubmission(sub, &req.PresentationFields, now)

	var event *model.CalendarEvent
	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := s.slugs.Insert(ctx, txRepo.Prestasi, p, slugSource); err != nil {
			return err
		}
		if date != nil {
			ev, err := createPrestasiEvent(ctx, txRepo, p, *date)
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
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSubmissionAlreadyPublished
		}
		s.logger.Error("发布成就失败", zap.Int64("submission_id", submissionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("成就已发布",
		zap.Int64("submission_id", submissionID),
		zap.Int64("prestasi_id", p.ID),
		zap.String("slug", p.Slug),
	)

	resp := &dto.PublishResponse{Prestasi: toPrestasiResponse(p, false)}
	if event != nil {
		id := event.ID
		resp.CalendarEventID = &id
	}
	return resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *prestasiService) Update(ctx context.Context, id int64, req *dto.UpdatePrestasiRequest, actor *Identity) (*dto.PrestasiResponse, error) {
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
	if err := mergeValidation(tagErr, tahunErr); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// slug 显式修改：归一化并排除自身查重，冲突不自动追加后缀
	if req.Slug != nil {
		slug, err := s.slugs.Reserve(ctx, s.repo.Prestasi, *req.Slug, p.ID)
		if err != nil {
			return nil, err
		}
		p.Slug = slug
	}

	if req.Judul != nil {
		p.Judul = *req.Judul
	}
	if req.NamaLomba != nil {
		p.NamaLomba = *req.NamaLomba
	}
	if req.Tingkat != nil {
		p.Tingkat = *req.Tingkat
	}
	if req.Peringkat != nil {
		p.Peringkat = strings.TrimSpace(*req.Peringkat)
	}
	if req.Tahun != nil {
		p.Tahun = *req.Tahun
	}
	if req.Kategori != nil {
		p.Kategori = trimPtr(req.Kategori)
	}
	if req.Deskripsi != nil {
		p.Deskripsi = trimPtr(req.Deskripsi)
	}
	if req.Thumbnail != nil {
		p.Thumbnail = trimPtr(req.Thumbnail)
	}
	if req.Galeri != nil {
		galeri := datatypes.JSONSlice[string]{}
		for _, g := range *req.Galeri {
			if g != "" {
				galeri = append(galeri, g)
			}
		}
		p.Galeri = galeri
	}
	if req.Sertifikat != nil {
		p.Sertifikat = trimPtr(req.Sertifikat)
	}
	if req.SertifikatPublic != nil {
		p.SertifikatPublic = *req.SertifikatPublic
	}
	if req.LinkBerita != nil {
		p.LinkBerita = trimPtr(req.LinkBerita)
	}
	if req.LinkPortofolio != nil {
		p.LinkPortofolio = trimPtr(req.LinkPortofolio)
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}

	now := s.now()
	if req.IsPublished != nil {
		p.IsPublished = *req.IsPublished
		if p.IsPublished && p.PublishedAt == nil {
			p.PublishedAt = &now
		}
	}
	p.UpdatedAt = now

	if err := s.repo.Prestasi.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, ErrSlugConflict
		}
		s.logger.Error("更新成就失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	resp := toPrestasiResponse(p, false)
	return &resp, nil
}

func (s *prestasiService) SetPublished(ctx context.Context, id int64, published bool, actor *Identity) (*dto.PrestasiResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	if err := s.repo.Prestasi.SetPublished(ctx, id, published); err != nil {
		s.logger.Error("切换发布状态失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toPrestasiResponse(p, false)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *prestasiService) Delete(ctx context.Context, id int64, actor *Identity) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	deactivateBestEffort(ctx, s.calendar, CalendarSource{
		Kind: model.CalendarPrestasi,
		Slug: p.Slug,
		Name: p.Judul,
	}, s.logger)

	if err := s.repo.Prestasi.Delete(ctx, id); err != nil {
		s.logger.Error("删除成就失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("成就已删除", zap.Int64("id", id), zap.String("slug", p.Slug), zap.Int64("operator", actor.ID))
	return nil
}

// ────────────────────── Query ──────────────────────

func (s *prestasiService) load(ctx context.Context, id int64) (*model.Prestasi, error) {
	p, err := s.repo.Prestasi.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrestasiNotFound
		}
		s.logger.Error("查询成就失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *prestasiService) GetByID(ctx context.Context, id int64, actor *Identity) (*dto.PrestasiResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toPrestasiResponse(p, false)
	return &resp, nil
}

func (s *prestasiService) ListAdmin(ctx context.Context, req *dto.PrestasiListRequest, actor *Identity) ([]dto.PrestasiResponse, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	req.IncludeUnpublished = true
	return s.list(ctx, req, false)
}

func (s *prestasiService) ListPublic(ctx context.Context, req *dto.PrestasiListRequest) ([]dto.PrestasiResponse, int64, error) {
	req.IncludeUnpublished = false
	return s.list(ctx, req, true)
}

func (s *prestasiService) list(ctx context.Context, req *dto.PrestasiListRequest, public bool) ([]dto.PrestasiResponse, int64, error) {
	if req.Tingkat != "" && !contains(model.TingkatValues, req.Tingkat) {
		return nil, 0, newValidationError("tingkat")
	}

	filter := repository.PrestasiFilter{
		Slug:               strings.TrimSpace(req.Slug),
		Tingkat:            req.Tingkat,
		Kategori:           strings.TrimSpace(req.Kategori),
		Tahun:              req.Tahun,
		Q:                  strings.TrimSpace(req.Q),
		Featured:           req.Featured,
		IncludeUnpublished: req.IncludeUnpublished,
	}
	items, total, err := s.repo.Prestasi.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询成就列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.PrestasiResponse, 0, len(items))
	for i := range items {
		list = append(list, toPrestasiResponse(&items[i], public))
	}
	return list, total, nil
}

func (s *prestasiService) GetPublicBySlug(ctx context.Context, slug string) (*dto.PrestasiResponse, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrPrestasiNotFound
	}

	p, err := s.repo.Prestasi.GetBySlug(ctx, slug, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrestasiNotFound
		}
		s.logger.Error("按 slug 查询成就失败", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	resp := toPrestasiResponse(p, true)
	return &resp, nil
}
