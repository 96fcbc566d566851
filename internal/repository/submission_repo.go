package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sitaurs/apm-portal-sub000/internal/model"
)

// SubmissionFilter 提交列表筛选条件
type SubmissionFilter struct {
	Status       string
	DisplayState string
	Tahun        int
	Q            string
}

// SubmissionRepository 成就提交数据访问接口
type SubmissionRepository interface {
	// Create 连同成员/导师/材料一并写入
	Create(ctx context.Context, s *model.Submission) error
	GetByID(ctx context.Context, id int64) (*model.Submission, error)
	// ExistsByJudulNIM 同一 NIM 下标题（不区分大小写）是否已存在，excludeID 为 0 时不排除
	ExistsByJudulNIM(ctx context.Context, judul, nim string, excludeID int64) (bool, error)
	List(ctx context.Context, filter SubmissionFilter, offset, limit int) ([]model.Submission, int64, error)
	CountByDisplayState(ctx context.Context) (map[string]int64, error)
	// Update 仅更新主表字段，不触及子表
	Update(ctx context.Context, s *model.Submission) error
	// Delete 物理删除，子表由外键级联
	Delete(ctx context.Context, id int64) error
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

// publishedExistsSQL 提交是否已有已发布成就
const publishedExistsSQL = "EXISTS (SELECT 1 FROM prestasi p WHERE p.submission_id = prestasi_submissions.id AND p.is_published)"

func (r *submissionRepo) Create(ctx context.Context, s *model.Submission) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *submissionRepo) GetByID(ctx context.Context, id int64) (*model.Submission, error) {
	var s model.Submission
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("is_ketua DESC, id ASC") }).
		Preload("Pembimbing", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Prestasi").
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) ExistsByJudulNIM(ctx context.Context, judul, nim string, excludeID int64) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("lower(judul) = lower(?) AND submitter_nim = ?", judul, nim)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *submissionRepo) List(ctx context.Context, filter SubmissionFilter, offset, limit int) ([]model.Submission, int64, error) {
	var list []model.Submission
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Submission{})

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	switch filter.DisplayState {
	case model.DisplayPublished:
		db = db.Where(publishedExistsSQL)
	case model.DisplayPending:
		db = db.Where("status = ? AND NOT "+publishedExistsSQL, model.StatusPending)
	case model.DisplayRejected:
		db = db.Where("status = ? AND NOT "+publishedExistsSQL, model.StatusRejected)
	case model.DisplayApprovedUnpublished:
		db = db.Where("status = ? AND NOT "+publishedExistsSQL, model.StatusApproved)
	}
	if filter.Tahun > 0 {
		db = db.Where("tahun = ?", filter.Tahun)
	}
	if filter.Q != "" {
		p := containsPattern(filter.Q)
		db = db.Where("judul ILIKE ? OR nama_lomba ILIKE ? OR submitter_nama ILIKE ? OR submitter_nim ILIKE ?", p, p, p, p)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Prestasi").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *submissionRepo) CountByDisplayState(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		State string
		Count int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT CASE
			WHEN ` + publishedExistsSQL + ` THEN 'published'
			WHEN status = 'rejected' THEN 'rejected'
			WHEN status = 'approved' THEN 'approved_unpublished'
			ELSE 'pending'
		END AS state, COUNT(*) AS count
		FROM prestasi_submissions
		GROUP BY 1`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.State] = row.Count
	}
	return counts, nil
}

func (r *submissionRepo) Update(ctx context.Context, s *model.Submission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

func (r *submissionRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Submission{}).Error
}
