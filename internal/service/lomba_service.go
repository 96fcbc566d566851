package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sitaurs/apm-portal-sub000/internal/model"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
)

// ErrLombaNotFound 竞赛不存在
var ErrLombaNotFound = errors.New("竞赛不存在")

// LombaService 竞赛业务接口（流水线只关心删除时的日历停用）
type LombaService interface {
	Delete(ctx context.Context, id int64, actor *Identity) error
}

type lombaService struct {
	repo     *repository.Repository
	calendar CalendarService
	logger   *zap.Logger
}

// NewLombaService 创建 LombaService 实例
func NewLombaService(repo *repository.Repository, calendar CalendarService, logger *zap.Logger) LombaService {
	return &lombaService{repo: repo, calendar: calendar, logger: logger}
}

func (s *lombaService) Delete(ctx context.Context, id int64, actor *Identity) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	lomba, err := s.repo.Lomba.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLombaNotFound
		}
		s.logger.Error("查询竞赛失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	deactivateBestEffort(ctx, s.calendar, CalendarSource{
		Kind: model.CalendarLomba,
		Slug: lomba.Slug,
		Name: lomba.NamaLomba,
	}, s.logger)

	if err := s.repo.Lomba.Delete(ctx, id); err != nil {
		s.logger.Error("删除竞赛失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("竞赛已删除", zap.Int64("id", id), zap.Int64("operator", actor.ID))
	return nil
}
