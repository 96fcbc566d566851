package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sitaurs/apm-portal-sub000/internal/model"
)

// LombaRepository 竞赛数据访问接口（流水线只需要删除）
type LombaRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Lomba, error)
	// Delete 软删除
	Delete(ctx context.Context, id int64) error
}

type lombaRepo struct {
	db *gorm.DB
}

// NewLombaRepo 创建 LombaRepository 实例
func NewLombaRepo(db *gorm.DB) LombaRepository {
	return &lombaRepo{db: db}
}

func (r *lombaRepo) GetByID(ctx context.Context, id int64) (*model.Lomba, error) {
	var l model.Lomba
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lombaRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Lomba{}).Error
}
