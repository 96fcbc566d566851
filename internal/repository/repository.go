package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrSlugTaken slug 已被占用（唯一约束冲突，插入未生效）
var ErrSlugTaken = errors.New("slug 已被占用")

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User       UserRepository
	Submission SubmissionRepository
	ReviewLog  ReviewLogRepository
	Prestasi   PrestasiRepository
	Calendar   CalendarRepository
	Lomba      LombaRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		User:       NewUserRepo(db),
		Submission: NewSubmissionRepo(db),
		ReviewLog:  NewReviewLogRepo(db),
		Prestasi:   NewPrestasiRepo(db),
		Calendar:   NewCalendarRepo(db),
		Lomba:      NewLombaRepo(db),
	}
}

// BeginTx 开启事务
// 单元测试中聚合由 mock 组装（db 为 nil），此时返回 nil 事务，调用方需判空
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 聚合
// tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
