package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/service"
	"github.com/sitaurs/apm-portal-sub000/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	refreshToken  string
	logoutErr     error
	logoutJTI     string
	meResult      *dto.UserResponse
	meErr         error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, token string) (*dto.TokenResponse, error) {
	m.refreshToken = token
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ *service.Identity) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ *dto.ChangePasswordRequest, _ *service.Identity) error {
	return m.changePassErr
}

// ── Mock SubmissionService ──

type mockSubmissionService struct {
	submitResult  *dto.SubmissionResponse
	submitErr     error
	getResult     *dto.SubmissionResponse
	getErr        error
	listResult    []dto.SubmissionResponse
	listTotal     int64
	listErr       error
	listReq       *dto.SubmissionListRequest
	summaryResult *dto.SubmissionSummaryResponse
	summaryErr    error
	updateResult  *dto.SubmissionResponse
	updateErr     error
	reviewResult  *dto.SubmissionResponse
	reviewErr     error
	reviewActor   *service.Identity
	logsResult    []dto.ReviewLogResponse
	logsErr       error
	deleteErr     error
	deletedID     int64
}

func (m *mockSubmissionService) Submit(_ context.Context, _ *dto.SubmitRequest) (*dto.SubmissionResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockSubmissionService) GetByID(_ context.Context, _ int64, _ *service.Identity) (*dto.SubmissionResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockSubmissionService) List(_ context.Context, req *dto.SubmissionListRequest, _ *service.Identity) ([]dto.SubmissionResponse, int64, error) {
	m.listReq = req
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockSubmissionService) Summary(_ context.Context, _ *service.Identity) (*dto.SubmissionSummaryResponse, error) {
	return m.summaryResult, m.summaryErr
}
func (m *mockSubmissionService) Update(_ context.Context, _ int64, _ *dto.UpdateSubmissionRequest, _ *service.Identity) (*dto.SubmissionResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockSubmissionService) Review(_ context.Context, _ int64, _ *dto.ReviewRequest, reviewer *service.Identity) (*dto.SubmissionResponse, error) {
	m.reviewActor = reviewer
	return m.reviewResult, m.reviewErr
}
func (m *mockSubmissionService) ListReviewLogs(_ context.Context, _ int64, _ *service.Identity) ([]dto.ReviewLogResponse, error) {
	return m.logsResult, m.logsErr
}
func (m *mockSubmissionService) Delete(_ context.Context, id int64, _ *service.Identity) error {
	m.deletedID = id
	return m.deleteErr
}

// ── Mock PrestasiService ──

type mockPrestasiService struct {
	publishResult *dto.PublishResponse
	publishErr    error
	publishID     int64
	updateResult  *dto.PrestasiResponse
	updateErr     error
	setPubResult  *dto.PrestasiResponse
	setPubErr     error
	setPubValue   *bool
	deleteErr     error
	getResult     *dto.PrestasiResponse
	getErr        error
	listResult    []dto.PrestasiResponse
	listTotal     int64
	listErr       error
	publicResult  []dto.PrestasiResponse
	publicTotal   int64
	publicErr     error
	publicReq     *dto.PrestasiListRequest
	slugResult    *dto.PrestasiResponse
	slugErr       error
	requestedSlug string
}

func (m *mockPrestasiService) Publish(_ context.Context, id int64, _ *dto.PublishRequest, _ *service.Identity) (*dto.PublishResponse, error) {
	m.publishID = id
	return m.publishResult, m.publishErr
}
func (m *mockPrestasiService) Update(_ context.Context, _ int64, _ *dto.UpdatePrestasiRequest, _ *service.Identity) (*dto.PrestasiResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockPrestasiService) SetPublished(_ context.Context, _ int64, published bool, _ *service.Identity) (*dto.PrestasiResponse, error) {
	m.setPubValue = &published
	return m.setPubResult, m.setPubErr
}
func (m *mockPrestasiService) Delete(_ context.Context, _ int64, _ *service.Identity) error {
	return m.deleteErr
}
func (m *mockPrestasiService) GetByID(_ context.Context, _ int64, _ *service.Identity) (*dto.PrestasiResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockPrestasiService) ListAdmin(_ context.Context, _ *dto.PrestasiListRequest, _ *service.Identity) ([]dto.PrestasiResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockPrestasiService) ListPublic(_ context.Context, req *dto.PrestasiListRequest) ([]dto.PrestasiResponse, int64, error) {
	m.publicReq = req
	return m.publicResult, m.publicTotal, m.publicErr
}
func (m *mockPrestasiService) GetPublicBySlug(_ context.Context, slug string) (*dto.PrestasiResponse, error) {
	m.requestedSlug = slug
	return m.slugResult, m.slugErr
}

// ── Mock DirectEntryService ──

type mockDirectEntryService struct {
	result *dto.DirectEntryResponse
	err    error
}

func (m *mockDirectEntryService) CreateDirect(_ context.Context, _ *dto.DirectEntryRequest, _ *service.Identity) (*dto.DirectEntryResponse, error) {
	return m.result, m.err
}

// ── Mock CalendarService ──

type mockCalendarService struct {
	listResult []dto.CalendarEventResponse
	listErr    error
	feed       []byte
	feedErr    error
}

func (m *mockCalendarService) DeactivateFor(_ context.Context, _ service.CalendarSource) (int64, error) {
	return 0, nil
}
func (m *mockCalendarService) List(_ context.Context, _ *dto.CalendarListRequest) ([]dto.CalendarEventResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockCalendarService) Feed(_ context.Context) ([]byte, error) {
	return m.feed, m.feedErr
}

// ── Mock LombaService ──

type mockLombaService struct {
	err error
}

func (m *mockLombaService) Delete(_ context.Context, _ int64, _ *service.Identity) error {
	return m.err
}

// ── Mock MediaService ──

type mockMediaService struct {
	result     *dto.MediaResponse
	err        error
	folder     string
	public     bool
	uploadData []byte
}

func (m *mockMediaService) Upload(_ context.Context, folder string, file *service.UploadFile, public bool) (*dto.MediaResponse, error) {
	m.folder = folder
	m.public = public
	m.uploadData, _ = io.ReadAll(file.Reader)
	return m.result, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportSubmissions(_ context.Context, _ *dto.SubmissionListRequest, _ *service.Identity) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportPrestasi(_ context.Context, _ *service.Identity) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", int64(1))
	c.Set("email", "admin@apm.test")
	c.Set("role", "admin")
	c.Set("token_jti", "test-jti")
	c.Set("token_exp", time.Now().Add(15*time.Minute))
}

// authed 在调用处理函数前注入管理员身份
func authed(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func jsonRequest(method, target string, v interface{}) *http.Request {
	req := httptest.NewRequest(method, target, jsonBody(v))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("写入表单字段失败: %v", err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("创建文件字段失败: %v", err)
		}
		fw.Write(content)
	}
	mw.Close()

	req := httptest.NewRequest("POST", target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    1800,
		},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, jsonRequest("POST", "/auth/login", dto.LoginRequest{
		Email:    "admin@apm.test",
		Password: "Rahasia123",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" {
			found = true
			if c.Value != "test-refresh-token" {
				t.Errorf("expected cookie value test-refresh-token, got %s", c.Value)
			}
			if !c.HttpOnly {
				t.Error("refresh_token cookie 应为 HttpOnly")
			}
		}
	}
	if !found {
		t.Error("expected refresh_token cookie to be set")
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader("invalid json"))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, jsonRequest("POST", "/auth/login", dto.LoginRequest{
		Email:    "admin@apm.test",
		Password: "salah",
	}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_FromBody(t *testing.T) {
	mock := &mockAuthService{
		refreshResult: &dto.TokenResponse{AccessToken: "new-access", RefreshToken: "new-refresh"},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	w := serve(r, jsonRequest("POST", "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "old-refresh"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.refreshToken != "old-refresh" {
		t.Errorf("expected token from body, got %q", mock.refreshToken)
	}
}

func TestAuthHandler_RefreshToken_FromCookie(t *testing.T) {
	mock := &mockAuthService{
		refreshResult: &dto.TokenResponse{AccessToken: "new-access", RefreshToken: "new-refresh"},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "cookie-refresh"})
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.refreshToken != "cookie-refresh" {
		t.Errorf("expected token from cookie, got %q", mock.refreshToken)
	}
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	w := serve(r, jsonRequest("POST", "/auth/refresh", map[string]string{}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_RefreshToken_Revoked(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrTokenRevoked})

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	w := serve(r, jsonRequest("POST", "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "revoked"}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{meResult: &dto.UserResponse{ID: 1, Email: "admin@apm.test"}})

	r := gin.New()
	r.GET("/auth/me", authed(h.Me))
	w := serve(r, httptest.NewRequest("GET", "/auth/me", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.GET("/auth/me", h.Me)
	w := serve(r, httptest.NewRequest("GET", "/auth/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword_Mismatch(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{changePassErr: service.ErrPasswordMismatch})

	r := gin.New()
	r.PUT("/auth/password", authed(h.ChangePassword))
	w := serve(r, jsonRequest("PUT", "/auth/password", dto.ChangePasswordRequest{
		OldPassword: "salah-lama",
		NewPassword: "BaruSekali123",
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11005 {
		t.Errorf("expected code 11005, got %d", resp.Code)
	}
}

func TestAuthHandler_ChangePassword_TooShort(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.PUT("/auth/password", authed(h.ChangePassword))
	w := serve(r, jsonRequest("PUT", "/auth/password", dto.ChangePasswordRequest{
		OldPassword: "lama",
		NewPassword: "pendek",
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/logout", authed(h.Logout))
	w := serve(r, httptest.NewRequest("POST", "/auth/logout", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti, got %q", mock.logoutJTI)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" && c.MaxAge >= 0 {
			t.Error("expected refresh_token cookie to be cleared")
		}
	}
}

// ═══════════════════════════════════════════════════════════
// SubmissionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSubmissionHandler_Submit_Created(t *testing.T) {
	mock := &mockSubmissionService{
		submitResult: &dto.SubmissionResponse{ID: 7, Status: "pending", DisplayState: "pending"},
	}
	h := NewSubmissionHandler(mock)

	r := gin.New()
	r.POST("/submissions", h.Submit)
	w := serve(r, jsonRequest("POST", "/submissions", map[string]interface{}{
		"judul":         "Juara 1 Lomba Robot",
		"nama_lomba":    "KRI 2025",
		"tingkat":       "nasional",
		"peringkat":     "Juara 1",
		"submitter_nim": "2141720001",
	}))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestSubmissionHandler_Submit_ValidationDetails(t *testing.T) {
	mock := &mockSubmissionService{
		submitErr: &service.ValidationError{Fields: []string{"judul", "nama_lomba"}},
	}
	h := NewSubmissionHandler(mock)

	r := gin.New()
	r.POST("/submissions", h.Submit)
	w := serve(r, jsonRequest("POST", "/submissions", map[string]interface{}{}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Details != "judul, nama_lomba" {
		t.Errorf("expected field details, got %q", resp.Details)
	}
}

func TestSubmissionHandler_List_Pagination(t *testing.T) {
	mock := &mockSubmissionService{
		listResult: []dto.SubmissionResponse{{ID: 1}, {ID: 2}},
		listTotal:  45,
	}
	h := NewSubmissionHandler(mock)

	r := gin.New()
	r.GET("/admin/submissions", authed(h.List))
	w := serve(r, httptest.NewRequest("GET", "/admin/submissions?page=2&page_size=20&display_state=approved_unpublished", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.listReq == nil || mock.listReq.DisplayState != "approved_unpublished" {
		t.Error("display_state 筛选未传递给 Service")
	}

	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", body.Data.Pagination.TotalPages)
	}
}

func TestSubmissionHandler_InvalidID(t *testing.T) {
	h := NewSubmissionHandler(&mockSubmissionService{})

	r := gin.New()
	r.GET("/admin/submissions/:id", authed(h.Get))
	w := serve(r, httptest.NewRequest("GET", "/admin/submissions/abc", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSubmissionHandler_Review_PassesReviewer(t *testing.T) {
	mock := &mockSubmissionService{reviewResult: &dto.SubmissionResponse{ID: 3, Status: "approved"}}
	h := NewSubmissionHandler(mock)

	r := gin.New()
	r.POST("/admin/submissions/:id/review", authed(h.Review))
	w := serve(r, jsonRequest("POST", "/admin/submissions/3/review", dto.ReviewRequest{Status: "approved"}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.reviewActor == nil || mock.reviewActor.ID != 1 || mock.reviewActor.Role != "admin" {
		t.Errorf("审核人身份未传递: %+v", mock.reviewActor)
	}
}

func TestSubmissionHandler_Review_Unauthenticated(t *testing.T) {
	h := NewSubmissionHandler(&mockSubmissionService{})

	r := gin.New()
	r.POST("/admin/submissions/:id/review", h.Review)
	w := serve(r, jsonRequest("POST", "/admin/submissions/3/review", dto.ReviewRequest{Status: "approved"}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestSubmissionHandler_Delete(t *testing.T) {
	mock := &mockSubmissionService{}
	h := NewSubmissionHandler(mock)

	r := gin.New()
	r.DELETE("/admin/submissions/:id", authed(h.Delete))
	w := serve(r, httptest.NewRequest("DELETE", "/admin/submissions/42", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.deletedID != 42 {
		t.Errorf("expected id 42, got %d", mock.deletedID)
	}
}

func TestSubmissionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrSubmissionNotFound, 404, 20001},
		{"Duplicate", service.ErrSubmissionDuplicate, 409, 20002},
		{"Frozen", service.ErrSubmissionFrozen, 409, 20003},
		{"AlreadyReviewed", service.ErrSubmissionAlreadyReviewed, 409, 20004},
		{"Validation", &service.ValidationError{Fields: []string{"status"}}, 400, 10001},
		{"Unauthorized", service.ErrUnauthorized, 401, 10002},
		{"Forbidden", service.ErrForbidden, 403, 10003},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSubmissionHandler(&mockSubmissionService{reviewErr: tt.err})

			r := gin.New()
			r.POST("/admin/submissions/:id/review", authed(h.Review))
			w := serve(r, jsonRequest("POST", "/admin/submissions/1/review", dto.ReviewRequest{Status: "rejected"}))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// PrestasiHandler Tests
// ═══════════════════════════════════════════════════════════

func newPrestasiHandler(p *mockPrestasiService, d *mockDirectEntryService) *PrestasiHandler {
	if p == nil {
		p = &mockPrestasiService{}
	}
	if d == nil {
		d = &mockDirectEntryService{}
	}
	return NewPrestasiHandler(p, d)
}

func TestPrestasiHandler_Publish_Created(t *testing.T) {
	mock := &mockPrestasiService{
		publishResult: &dto.PublishResponse{Prestasi: dto.PrestasiResponse{ID: 9, Slug: "juara-1-lomba-robot"}},
	}
	h := newPrestasiHandler(mock, nil)

	r := gin.New()
	r.POST("/admin/submissions/:id/publish", authed(h.Publish))
	w := serve(r, jsonRequest("POST", "/admin/submissions/5/publish", dto.PublishRequest{}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.publishID != 5 {
		t.Errorf("expected submission id 5, got %d", mock.publishID)
	}
}

func TestPrestasiHandler_Publish_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"SubmissionNotFound", service.ErrSubmissionNotFound, 404, 21002},
		{"AlreadyPublished", service.ErrSubmissionAlreadyPublished, 409, 21003},
		{"NotApproved", service.ErrSubmissionNotApproved, 409, 21004},
		{"SlugConflict", service.ErrSlugConflict, 409, 21005},
		{"Validation", &service.ValidationError{Fields: []string{"tanggal_kalender"}}, 400, 10001},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newPrestasiHandler(&mockPrestasiService{publishErr: tt.err}, nil)

			r := gin.New()
			r.POST("/admin/submissions/:id/publish", authed(h.Publish))
			w := serve(r, jsonRequest("POST", "/admin/submissions/1/publish", dto.PublishRequest{}))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestPrestasiHandler_CreateDirect(t *testing.T) {
	d := &mockDirectEntryService{result: &dto.DirectEntryResponse{SubmissionID: 11}}
	h := newPrestasiHandler(nil, d)

	r := gin.New()
	r.POST("/admin/prestasi", authed(h.CreateDirect))
	w := serve(r, jsonRequest("POST", "/admin/prestasi", map[string]interface{}{"judul": "Juara"}))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestPrestasiHandler_CreateDirect_Forbidden(t *testing.T) {
	h := newPrestasiHandler(nil, &mockDirectEntryService{err: service.ErrForbidden})

	r := gin.New()
	r.POST("/admin/prestasi", authed(h.CreateDirect))
	w := serve(r, jsonRequest("POST", "/admin/prestasi", map[string]interface{}{}))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestPrestasiHandler_SetPublished_RequiresFlag(t *testing.T) {
	mock := &mockPrestasiService{}
	h := newPrestasiHandler(mock, nil)

	r := gin.New()
	r.PATCH("/admin/prestasi/:id/publish", authed(h.SetPublished))
	w := serve(r, jsonRequest("PATCH", "/admin/prestasi/1/publish", map[string]interface{}{}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.setPubValue != nil {
		t.Error("缺少 is_published 时不应调用 Service")
	}
}

func TestPrestasiHandler_SetPublished_False(t *testing.T) {
	mock := &mockPrestasiService{setPubResult: &dto.PrestasiResponse{ID: 1}}
	h := newPrestasiHandler(mock, nil)

	r := gin.New()
	r.PATCH("/admin/prestasi/:id/publish", authed(h.SetPublished))
	w := serve(r, jsonRequest("PATCH", "/admin/prestasi/1/publish", map[string]interface{}{"is_published": false}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.setPubValue == nil || *mock.setPubValue {
		t.Error("expected is_published=false to be passed")
	}
}

func TestPrestasiHandler_ListPublic_Filters(t *testing.T) {
	mock := &mockPrestasiService{publicResult: []dto.PrestasiResponse{{ID: 1}}, publicTotal: 1}
	h := newPrestasiHandler(mock, nil)

	r := gin.New()
	r.GET("/prestasi", h.ListPublic)
	w := serve(r, httptest.NewRequest("GET", "/prestasi?tingkat=nasional&tahun=2025&q=robot", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	req := mock.publicReq
	if req == nil || req.Tingkat != "nasional" || req.Tahun != 2025 || req.Q != "robot" {
		t.Errorf("筛选条件未正确绑定: %+v", req)
	}
	if req.IncludeUnpublished {
		t.Error("公开接口不应携带 IncludeUnpublished")
	}
}

func TestPrestasiHandler_ListPublic_IgnoresIncludeUnpublishedQuery(t *testing.T) {
	mock := &mockPrestasiService{}
	h := newPrestasiHandler(mock, nil)

	r := gin.New()
	r.GET("/prestasi", h.ListPublic)
	serve(r, httptest.NewRequest("GET", "/prestasi?IncludeUnpublished=true&include_unpublished=true", nil))

	if mock.publicReq != nil && mock.publicReq.IncludeUnpublished {
		t.Error("查询参数不应打开未发布成就")
	}
}

func TestPrestasiHandler_GetPublic_NotFound(t *testing.T) {
	mock := &mockPrestasiService{slugErr: service.ErrPrestasiNotFound}
	h := newPrestasiHandler(mock, nil)

	r := gin.New()
	r.GET("/prestasi/:slug", h.GetPublic)
	w := serve(r, httptest.NewRequest("GET", "/prestasi/juara-1-kri", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if mock.requestedSlug != "juara-1-kri" {
		t.Errorf("expected slug juara-1-kri, got %q", mock.requestedSlug)
	}
}

// ═══════════════════════════════════════════════════════════
// CalendarHandler / LombaHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCalendarHandler_Feed(t *testing.T) {
	feed := []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	h := NewCalendarHandler(&mockCalendarService{feed: feed})

	r := gin.New()
	r.GET("/calendar/feed.ics", h.Feed)
	w := serve(r, httptest.NewRequest("GET", "/calendar/feed.ics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("expected text/calendar, got %s", ct)
	}
	if !bytes.Equal(w.Body.Bytes(), feed) {
		t.Error("订阅内容应原样输出")
	}
}

func TestCalendarHandler_List_BadRange(t *testing.T) {
	h := NewCalendarHandler(&mockCalendarService{listErr: &service.ValidationError{Fields: []string{"from"}}})

	r := gin.New()
	r.GET("/calendar", h.List)
	w := serve(r, httptest.NewRequest("GET", "/calendar?from=kemarin", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestLombaHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"OK", nil, 200},
		{"NotFound", service.ErrLombaNotFound, 404},
		{"Forbidden", service.ErrForbidden, 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLombaHandler(&mockLombaService{err: tt.err})

			r := gin.New()
			r.DELETE("/admin/lomba/:id", authed(h.Delete))
			w := serve(r, httptest.NewRequest("DELETE", "/admin/lomba/3", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// MediaHandler Tests
// ═══════════════════════════════════════════════════════════

func TestMediaHandler_Upload(t *testing.T) {
	mock := &mockMediaService{result: &dto.MediaResponse{URL: "https://cdn.example/galeri/a.jpg"}}
	h := NewMediaHandler(mock)

	r := gin.New()
	r.POST("/admin/media", authed(h.Upload))
	w := serve(r, multipartRequest(t, "/admin/media", map[string]string{"folder": "galeri"}, "foto.jpg", []byte("jpeg-bytes")))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.folder != "galeri" || mock.public {
		t.Errorf("unexpected upload args: folder=%s public=%v", mock.folder, mock.public)
	}
	if string(mock.uploadData) != "jpeg-bytes" {
		t.Error("文件内容未传递给 Service")
	}
}

func TestMediaHandler_UploadPublic_ForcesDokumen(t *testing.T) {
	mock := &mockMediaService{result: &dto.MediaResponse{URL: "https://cdn.example/dokumen/a.pdf"}}
	h := NewMediaHandler(mock)

	r := gin.New()
	r.POST("/submissions/uploads", h.UploadPublic)
	w := serve(r, multipartRequest(t, "/submissions/uploads", map[string]string{"folder": "galeri"}, "bukti.pdf", []byte("%PDF-1.4")))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.folder != service.FolderDokumen || !mock.public {
		t.Errorf("公开上传应固定为 dokumen: folder=%s public=%v", mock.folder, mock.public)
	}
}

func TestMediaHandler_MissingFile(t *testing.T) {
	h := NewMediaHandler(&mockMediaService{})

	r := gin.New()
	r.POST("/admin/media", authed(h.Upload))
	w := serve(r, multipartRequest(t, "/admin/media", map[string]string{"folder": "galeri"}, "", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestMediaHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"Folder", service.ErrMediaFolderInvalid, 400, 24001},
		{"Type", service.ErrMediaTypeNotAllowed, 400, 24002},
		{"TooLarge", service.ErrMediaTooLarge, 413, 24003},
		{"Unavailable", service.ErrMediaUnavailable, 503, 24004},
		{"Upstream", service.ErrMediaUpstream, 502, 24005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMediaHandler(&mockMediaService{err: tt.err})

			r := gin.New()
			r.POST("/admin/media", authed(h.Upload))
			w := serve(r, multipartRequest(t, "/admin/media", map[string]string{"folder": "galeri"}, "a.jpg", []byte("x")))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Submissions(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "pengajuan_prestasi_20250310.xlsx",
	}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/admin/export/submissions", authed(h.ExportSubmissions))
	w := serve(r, httptest.NewRequest("GET", "/admin/export/submissions?status=approved", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "pengajuan_prestasi_20250310.xlsx") {
		t.Errorf("unexpected content disposition %s", cd)
	}
	if w.Body.String() != "excel content" {
		t.Error("响应体应为导出文件内容")
	}
}

func TestExportHandler_Prestasi_GenerateFail(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportGenerateFail})

	r := gin.New()
	r.GET("/admin/export/prestasi", authed(h.ExportPrestasi))
	w := serve(r, httptest.NewRequest("GET", "/admin/export/prestasi", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 25001 {
		t.Errorf("expected code 25001, got %d", resp.Code)
	}
}
