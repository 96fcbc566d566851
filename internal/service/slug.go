package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sitaurs/apm-portal-sub000/internal/model"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
)

// ErrSlugConflict slug 冲突且重试后仍无法分配
var ErrSlugConflict = errors.New("slug 已被占用")

const (
	slugMaxLen   = 200
	slugFallback = "prestasi"
)

// Slugify 标题归一化为 URL slug
// 小写、去除变音符号、非 [a-z0-9] 连续字符替换为 "-"、去掉首尾 "-"；结果为空时使用 "prestasi"
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(title)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > slugMaxLen {
		slug = strings.TrimRight(slug[:slugMaxLen], "-")
	}
	if slug == "" {
		return slugFallback
	}
	return slug
}

// SlugAllocator 为成就分配唯一 slug
// 先查重，冲突时追加毫秒时间戳；插入时若仍撞上唯一约束，换一个时间戳重试一次
type SlugAllocator struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewSlugAllocator 创建 SlugAllocator，now 为 nil 时使用 time.Now
func NewSlugAllocator(now func() time.Time, logger *zap.Logger) *SlugAllocator {
	if now == nil {
		now = time.Now
	}
	return &SlugAllocator{now: now, logger: logger}
}

// Allocate 由 source 生成 slug；已存在（排除 excludeID）时追加 "-<unix 毫秒>"
func (a *SlugAllocator) Allocate(ctx context.Context, repo repository.PrestasiRepository, source string, excludeID int64) (string, error) {
	slug, _, err := a.allocate(ctx, repo, source, excludeID)
	return slug, err
}

func (a *SlugAllocator) allocate(ctx context.Context, repo repository.PrestasiRepository, source string, excludeID int64) (string, int64, error) {
	base := Slugify(source)
	exists, err := repo.SlugExists(ctx, base, excludeID)
	if err != nil {
		return "", 0, err
	}
	if !exists {
		return base, 0, nil
	}
	slug, ms := a.suffixed(base, 0)
	return slug, ms, nil
}

// suffixed 追加毫秒后缀，保证严格大于 prev，总长度不超过 slugMaxLen
func (a *SlugAllocator) suffixed(base string, prev int64) (string, int64) {
	ms := a.now().UnixMilli()
	if ms <= prev {
		ms = prev + 1
	}
	suffix := "-" + strconv.FormatInt(ms, 10)
	if len(base)+len(suffix) > slugMaxLen {
		base = strings.TrimRight(base[:slugMaxLen-len(suffix)], "-")
	}
	return base + suffix, ms
}

// Insert 分配 slug 并插入成就；唯一约束冲突时重试一次，仍冲突返回 ErrSlugConflict
func (a *SlugAllocator) Insert(ctx context.Context, repo repository.PrestasiRepository, p *model.Prestasi, source string) error {
	slug, ms, err := a.allocate(ctx, repo, source, 0)
	if err != nil {
		return err
	}

	p.Slug = slug
	err = repo.Create(ctx, p)
	if !errors.Is(err, repository.ErrSlugTaken) {
		return err
	}

	a.logger.Warn("slug 插入冲突，重试一次", zap.String("slug", slug))
	p.Slug, _ = a.suffixed(Slugify(source), ms)
	err = repo.Create(ctx, p)
	if errors.Is(err, repository.ErrSlugTaken) {
		return ErrSlugConflict
	}
	return err
}

// Reserve 校验编辑指定的 slug（归一化后，排除自身），冲突不自动追加后缀
func (a *SlugAllocator) Reserve(ctx context.Context, repo repository.PrestasiRepository, requested string, selfID int64) (string, error) {
	slug := Slugify(requested)
	exists, err := repo.SlugExists(ctx, slug, selfID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrSlugConflict
	}
	return slug, nil
}
