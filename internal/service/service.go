package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sitaurs/apm-portal-sub000/config"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
	"github.com/sitaurs/apm-portal-sub000/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Submission  SubmissionService
	Prestasi    PrestasiService
	DirectEntry DirectEntryService
	Calendar    CalendarService
	Lomba       LombaService
	Media       MediaService
	Export      ExportService
}

// Deps 外部协作者，均可为 nil（对应功能降级）
type Deps struct {
	Blacklist TokenBlacklist
	Store     MediaStore
	Notifier  ReviewNotifier
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	now := time.Now
	slugs := NewSlugAllocator(now, logger)
	calendar := NewCalendarService(cfg, repo, logger)

	return &Service{
		Auth:        NewAuthService(repo, jwtMgr, deps.Blacklist, logger),
		Submission:  NewSubmissionService(cfg, repo, deps.Notifier, now, logger),
		Prestasi:    NewPrestasiService(cfg, repo, slugs, calendar, now, logger),
		DirectEntry: NewDirectEntryService(repo, slugs, now, logger),
		Calendar:    calendar,
		Lomba:       NewLombaService(repo, calendar, logger),
		Media:       NewMediaService(cfg, deps.Store, logger),
		Export:      NewExportService(repo, logger),
	}
}

// runInTx 在事务中执行 fn
// 单元测试中 BeginTx 返回 nil 事务，fn 直接在原聚合上执行
func runInTx(ctx context.Context, repo *repository.Repository, logger *zap.Logger, fn func(txRepo *repository.Repository) error) error {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(repo.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	return nil
}
