package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sitaurs/apm-portal-sub000/internal/model"
)

// ReviewLogRepository 审核记录数据访问接口
type ReviewLogRepository interface {
	Create(ctx context.Context, log *model.ReviewLog) error
	ListBySubmission(ctx context.Context, submissionID int64) ([]model.ReviewLog, error)
}

type reviewLogRepo struct {
	db *gorm.DB
}

// NewReviewLogRepo 创建 ReviewLogRepository 实例
func NewReviewLogRepo(db *gorm.DB) ReviewLogRepository {
	return &reviewLogRepo{db: db}
}

func (r *reviewLogRepo) Create(ctx context.Context, log *model.ReviewLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *reviewLogRepo) ListBySubmission(ctx context.Context, submissionID int64) ([]model.ReviewLog, error) {
	var logs []model.ReviewLog
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	return logs, err
}
