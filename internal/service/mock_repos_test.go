package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/sitaurs/apm-portal-sub000/config"
	"github.com/sitaurs/apm-portal-sub000/internal/model"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
	pkgerrors "github.com/sitaurs/apm-portal-sub000/pkg/errors"
)

var errMockDB = errors.New("模拟数据库错误")

// fixedNow 测试统一使用的当前时间
var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

var adminActor = &Identity{ID: 1, Email: "admin@apm.test", Role: model.RoleAdmin}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	items     map[int64]*model.Submission
	nextID    int64
	childID   int64
	prestasi  *mockPrestasiRepo
	createErr error
	updateErr error
}

func newMockSubmissionRepo(prestasi *mockPrestasiRepo) *mockSubmissionRepo {
	return &mockSubmissionRepo{items: make(map[int64]*model.Submission), prestasi: prestasi}
}

func (m *mockSubmissionRepo) Create(_ context.Context, s *model.Submission) error {
	if m.createErr != nil {
		return m.createErr
	}
	// 与数据库部分唯一索引一致：ADMIN 不参与查重
	if s.SubmitterNIM != model.AdminSubmitterNIM {
		for _, x := range m.items {
			if x.SubmitterNIM == s.SubmitterNIM && strings.EqualFold(x.Judul, s.Judul) {
				return pkgerrors.ErrUniqueViolation
			}
		}
	}
	m.nextID++
	s.ID = m.nextID
	for i := range s.Members {
		m.childID++
		s.Members[i].ID, s.Members[i].SubmissionID = m.childID, s.ID
	}
	for i := range s.Pembimbing {
		m.childID++
		s.Pembimbing[i].ID, s.Pembimbing[i].SubmissionID = m.childID, s.ID
	}
	for i := range s.Documents {
		m.childID++
		s.Documents[i].ID, s.Documents[i].SubmissionID = m.childID, s.ID
	}
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id int64) (*model.Submission, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Prestasi = m.linkedPrestasi(id)
	return &cp, nil
}

func (m *mockSubmissionRepo) linkedPrestasi(id int64) *model.Prestasi {
	if m.prestasi == nil {
		return nil
	}
	for _, p := range m.prestasi.items {
		if p.SubmissionID != nil && *p.SubmissionID == id {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (m *mockSubmissionRepo) ExistsByJudulNIM(_ context.Context, judul, nim string, excludeID int64) (bool, error) {
	for _, s := range m.items {
		if s.ID == excludeID {
			continue
		}
		if s.SubmitterNIM == nim && strings.EqualFold(s.Judul, judul) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSubmissionRepo) List(_ context.Context, f repository.SubmissionFilter, offset, limit int) ([]model.Submission, int64, error) {
	var all []model.Submission
	for _, s := range m.items {
		cp := *s
		cp.Prestasi = m.linkedPrestasi(s.ID)
		if f.Status != "" && cp.Status != f.Status {
			continue
		}
		if f.DisplayState != "" && cp.DisplayState() != f.DisplayState {
			continue
		}
		if f.Tahun > 0 && cp.Tahun != f.Tahun {
			continue
		}
		if f.Q != "" && !strings.Contains(strings.ToLower(cp.Judul+" "+cp.NamaLomba+" "+cp.SubmitterNama+" "+cp.SubmitterNIM), strings.ToLower(f.Q)) {
			continue
		}
		all = append(all, cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Submission{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockSubmissionRepo) CountByDisplayState(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, s := range m.items {
		cp := *s
		cp.Prestasi = m.linkedPrestasi(s.ID)
		counts[cp.DisplayState()]++
	}
	return counts, nil
}

func (m *mockSubmissionRepo) Update(_ context.Context, s *model.Submission) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	cur, ok := m.items[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	// 只更新主表
	cp.Members, cp.Pembimbing, cp.Documents, cp.Prestasi = cur.Members, cur.Pembimbing, cur.Documents, nil
	m.items[s.ID] = &cp
	return nil
}

func (m *mockSubmissionRepo) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	// 外键 ON DELETE SET NULL
	if m.prestasi != nil {
		for _, p := range m.prestasi.items {
			if p.SubmissionID != nil && *p.SubmissionID == id {
				p.SubmissionID = nil
			}
		}
	}
	return nil
}

// ── Mock ReviewLogRepository ──

type mockReviewLogRepo struct {
	logs      []model.ReviewLog
	createErr error
}

func newMockReviewLogRepo() *mockReviewLogRepo { return &mockReviewLogRepo{} }

func (m *mockReviewLogRepo) Create(_ context.Context, l *model.ReviewLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	l.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, *l)
	return nil
}

func (m *mockReviewLogRepo) ListBySubmission(_ context.Context, submissionID int64) ([]model.ReviewLog, error) {
	var out []model.ReviewLog
	for _, l := range m.logs {
		if l.SubmissionID == submissionID {
			out = append(out, l)
		}
	}
	return out, nil
}

// ── Mock PrestasiRepository ──

type mockPrestasiRepo struct {
	items  map[int64]*model.Prestasi
	nextID int64
	// forceTaken 接下来 N 次 Create 模拟并发写入抢占 slug
	forceTaken  int
	createCalls int
	createErr   error
}

func newMockPrestasiRepo() *mockPrestasiRepo {
	return &mockPrestasiRepo{items: make(map[int64]*model.Prestasi)}
}

func (m *mockPrestasiRepo) Create(_ context.Context, p *model.Prestasi) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if m.forceTaken > 0 {
		m.forceTaken--
		return repository.ErrSlugTaken
	}
	for _, x := range m.items {
		if x.Slug == p.Slug {
			return repository.ErrSlugTaken
		}
		if p.SubmissionID != nil && x.SubmissionID != nil && *x.SubmissionID == *p.SubmissionID {
			return pkgerrors.ErrUniqueViolation
		}
	}
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockPrestasiRepo) GetByID(_ context.Context, id int64) (*model.Prestasi, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPrestasiRepo) GetBySlug(_ context.Context, slug string, publishedOnly bool) (*model.Prestasi, error) {
	for _, p := range m.items {
		if p.Slug == slug && (!publishedOnly || p.IsPublished) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPrestasiRepo) SlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	for _, p := range m.items {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPrestasiRepo) Update(_ context.Context, p *model.Prestasi) error {
	for _, x := range m.items {
		if x.ID != p.ID && x.Slug == p.Slug {
			return repository.ErrSlugTaken
		}
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockPrestasiRepo) SetPublished(_ context.Context, id int64, published bool) error {
	p, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsPublished = published
	if published && p.PublishedAt == nil {
		now := fixedNow
		p.PublishedAt = &now
	}
	return nil
}

func (m *mockPrestasiRepo) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

func (m *mockPrestasiRepo) List(_ context.Context, f repository.PrestasiFilter, offset, limit int) ([]model.Prestasi, int64, error) {
	var all []model.Prestasi
	for _, p := range m.items {
		if !f.IncludeUnpublished && !p.IsPublished {
			continue
		}
		if f.Slug != "" && p.Slug != f.Slug {
			continue
		}
		if f.Tingkat != "" && p.Tingkat != f.Tingkat {
			continue
		}
		if f.Tahun > 0 && p.Tahun != f.Tahun {
			continue
		}
		if f.Featured != nil && p.IsFeatured != *f.Featured {
			continue
		}
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Prestasi{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock CalendarRepository ──

type mockCalendarRepo struct {
	events        []*model.CalendarEvent
	createErr     error
	deactivateErr error
}

func newMockCalendarRepo() *mockCalendarRepo { return &mockCalendarRepo{} }

func (m *mockCalendarRepo) Create(_ context.Context, e *model.CalendarEvent) error {
	if m.createErr != nil {
		return m.createErr
	}
	e.ID = int64(len(m.events) + 1)
	cp := *e
	m.events = append(m.events, &cp)
	return nil
}

// linkHasPath 与仓储的 LIKE 模式一致：路径位于末尾，或后接 "/"、"?"、"#"
func linkHasPath(link, path string) bool {
	if strings.HasSuffix(link, path) {
		return true
	}
	for _, sep := range []string{"/", "?", "#"} {
		if strings.Contains(link, path+sep) {
			return true
		}
	}
	return false
}

func (m *mockCalendarRepo) DeactivateByLinkOrTitle(_ context.Context, linkPath, title string) (int64, error) {
	if m.deactivateErr != nil {
		return 0, m.deactivateErr
	}
	if linkPath == "" && title == "" {
		return 0, nil
	}
	var n int64
	for _, e := range m.events {
		if !e.IsActive {
			continue
		}
		byLink := linkPath != "" && e.Link != nil && linkHasPath(*e.Link, linkPath)
		byTitle := title != "" && strings.Contains(strings.ToLower(e.Title), strings.ToLower(title))
		if byLink || byTitle {
			e.IsActive = false
			n++
		}
	}
	return n, nil
}

func (m *mockCalendarRepo) ListActive(_ context.Context, from, to *time.Time, eventType string) ([]model.CalendarEvent, error) {
	var out []model.CalendarEvent
	for _, e := range m.events {
		if !e.IsActive {
			continue
		}
		if eventType != "" && e.Type != eventType {
			continue
		}
		if from != nil && e.StartDate.Before(*from) {
			continue
		}
		if to != nil && e.StartDate.After(*to) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *mockCalendarRepo) activeCount() int {
	n := 0
	for _, e := range m.events {
		if e.IsActive {
			n++
		}
	}
	return n
}

// ── Mock LombaRepository ──

type mockLombaRepo struct {
	items     map[int64]*model.Lomba
	deleteErr error
}

func newMockLombaRepo() *mockLombaRepo {
	return &mockLombaRepo{items: make(map[int64]*model.Lomba)}
}

func (m *mockLombaRepo) GetByID(_ context.Context, id int64) (*model.Lomba, error) {
	l, ok := m.items[id]
	if !ok || l.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockLombaRepo) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if l, ok := m.items[id]; ok {
		l.DeletedAt = gorm.DeletedAt{Time: fixedNow, Valid: true}
	}
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[int64]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = int64(len(m.users) + 1)
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

// ── Mock ReviewNotifier ──

type recordingNotifier struct {
	mu   sync.Mutex
	subs []model.Submission
}

func (n *recordingNotifier) NotifyReviewed(s *model.Submission) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, *s)
}

// ── 测试夹具 ──

type testRepos struct {
	repo       *repository.Repository
	submission *mockSubmissionRepo
	reviewLog  *mockReviewLogRepo
	prestasi   *mockPrestasiRepo
	calendar   *mockCalendarRepo
	lomba      *mockLombaRepo
	user       *mockUserRepo
}

func newTestRepos() *testRepos {
	prestasi := newMockPrestasiRepo()
	r := &testRepos{
		submission: newMockSubmissionRepo(prestasi),
		reviewLog:  newMockReviewLogRepo(),
		prestasi:   prestasi,
		calendar:   newMockCalendarRepo(),
		lomba:      newMockLombaRepo(),
		user:       newMockUserRepo(),
	}
	r.repo = &repository.Repository{
		User:       r.user,
		Submission: r.submission,
		ReviewLog:  r.reviewLog,
		Prestasi:   r.prestasi,
		Calendar:   r.calendar,
		Lomba:      r.lomba,
	}
	return r
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.BaseURL = "https://apm.example.ac.id"
	cfg.Pipeline.ReviewPolicy = string(ReviewPolicyOverwrite)
	cfg.Calendar.FeedName = "Kalender APM"
	cfg.Calendar.Timezone = "Asia/Jakarta"
	cfg.Storage.MaxUploadBytes = 1 << 20
	return cfg
}
