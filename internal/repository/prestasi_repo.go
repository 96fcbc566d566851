package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sitaurs/apm-portal-sub000/internal/model"
	pkgerrors "github.com/sitaurs/apm-portal-sub000/pkg/errors"
)

// PrestasiFilter 成就列表筛选条件
type PrestasiFilter struct {
	Slug               string
	Tingkat            string
	Kategori           string
	Tahun              int
	Q                  string
	Featured           *bool
	IncludeUnpublished bool
}

// PrestasiRepository 已发布成就数据访问接口
type PrestasiRepository interface {
	// Create 以 ON CONFLICT (slug) DO NOTHING 插入；slug 冲突时返回 ErrSlugTaken 且不中断外层事务
	Create(ctx context.Context, p *model.Prestasi) error
	GetByID(ctx context.Context, id int64) (*model.Prestasi, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*model.Prestasi, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	// Update slug 唯一约束冲突时返回 ErrSlugTaken
	Update(ctx context.Context, p *model.Prestasi) error
	SetPublished(ctx context.Context, id int64, published bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter PrestasiFilter, offset, limit int) ([]model.Prestasi, int64, error)
}

type prestasiRepo struct {
	db *gorm.DB
}

// NewPrestasiRepo 创建 PrestasiRepository 实例
func NewPrestasiRepo(db *gorm.DB) PrestasiRepository {
	return &prestasiRepo{db: db}
}

func (r *prestasiRepo) Create(ctx context.Context, p *model.Prestasi) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).
		Create(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSlugTaken
	}
	return nil
}

func (r *prestasiRepo) GetByID(ctx context.Context, id int64) (*model.Prestasi, error) {
	var p model.Prestasi
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *prestasiRepo) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*model.Prestasi, error) {
	var p model.Prestasi
	db := r.db.WithContext(ctx).Where("slug = ?", slug)
	if publishedOnly {
		db = db.Where("is_published = ?", true)
	}
	if err := db.First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *prestasiRepo) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.Prestasi{}).
		Where("slug = ?", slug)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *prestasiRepo) Update(ctx context.Context, p *model.Prestasi) error {
	err := r.db.WithContext(ctx).Save(p).Error
	if pkgerrors.IsUniqueViolation(err) {
		return ErrSlugTaken
	}
	return err
}

// SetPublished 首次发布时写入 published_at，之后保持不变
func (r *prestasiRepo) SetPublished(ctx context.Context, id int64, published bool) error {
	updates := map[string]interface{}{
		"is_published": published,
		"updated_at":   gorm.Expr("NOW()"),
	}
	if published {
		updates["published_at"] = gorm.Expr("COALESCE(published_at, NOW())")
	}
	return r.db.WithContext(ctx).
		Model(&model.Prestasi{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *prestasiRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Prestasi{}).Error
}

func (r *prestasiRepo) List(ctx context.Context, filter PrestasiFilter, offset, limit int) ([]model.Prestasi, int64, error) {
	var list []model.Prestasi
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Prestasi{})

	if !filter.IncludeUnpublished {
		db = db.Where("is_published = ?", true)
	}
	if filter.Slug != "" {
		db = db.Where("slug = ?", filter.Slug)
	}
	if filter.Tingkat != "" {
		db = db.Where("tingkat = ?", filter.Tingkat)
	}
	if filter.Kategori != "" {
		db = db.Where("kategori = ?", filter.Kategori)
	}
	if filter.Tahun > 0 {
		db = db.Where("tahun = ?", filter.Tahun)
	}
	if filter.Featured != nil {
		db = db.Where("is_featured = ?", *filter.Featured)
	}
	if filter.Q != "" {
		p := containsPattern(filter.Q)
		db = db.Where("judul ILIKE ? OR nama_lomba ILIKE ?", p, p)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("published_at DESC NULLS LAST, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}
