package dto

// ── 成就提交模块 DTO ──

// MemberInput 团队成员
type MemberInput struct {
	Nama     string  `json:"nama"     validate:"required,max=150"`
	NIM      string  `json:"nim"      validate:"required,max=30"`
	Prodi    *string `json:"prodi"    validate:"omitempty,max=150"`
	Angkatan *string `json:"angkatan" validate:"omitempty,max=10"`
	Whatsapp *string `json:"whatsapp" validate:"omitempty,max=30"`
	IsKetua  bool    `json:"is_ketua"`
}

// PembimbingInput 指导教师
type PembimbingInput struct {
	Nama     string  `json:"nama"     validate:"required,max=150"`
	NIDN     *string `json:"nidn"     validate:"omitempty,max=30"`
	Whatsapp *string `json:"whatsapp" validate:"omitempty,max=30"`
}

// DocumentInput 证明材料（仅保存外部托管后的 URL）
type DocumentInput struct {
	Tipe     string  `json:"tipe"      validate:"required,oneof=sertifikat laporan surat_tugas foto"`
	Label    *string `json:"label"     validate:"omitempty,max=255"`
	FileURL  string  `json:"file_url"  validate:"omitempty,max=2048"`
	FileName *string `json:"file_name" validate:"omitempty,max=255"`
}

// AchievementFields 成就事实字段（提交与管理员直录共用）
type AchievementFields struct {
	Judul     string  `json:"judul"      validate:"required,max=255"`
	NamaLomba string  `json:"nama_lomba" validate:"required,max=255"`
	Tingkat   string  `json:"tingkat"    validate:"omitempty,oneof=kampus kota provinsi wilayah nasional internasional"`
	Peringkat string  `json:"peringkat"  validate:"omitempty,max=100"`
	Tahun     int     `json:"tahun"`
	Tanggal   *string `json:"tanggal"    validate:"omitempty,datetime=2006-01-02"`
	Kategori  *string `json:"kategori"   validate:"omitempty,max=100"`
	Deskripsi *string `json:"deskripsi"`
}

// SubmitRequest 公开提交请求
type SubmitRequest struct {
	AchievementFields
	SubmitterNama     string            `json:"submitter_nama"     validate:"required,max=150"`
	SubmitterNIM      string            `json:"submitter_nim"      validate:"required,max=30"`
	SubmitterEmail    *string           `json:"submitter_email"    validate:"omitempty,email"`
	SubmitterWhatsapp *string           `json:"submitter_whatsapp" validate:"omitempty,max=30"`
	Members           []MemberInput     `json:"members"            validate:"omitempty,dive"`
	Pembimbing        []PembimbingInput `json:"pembimbing"         validate:"omitempty,dive"`
	Documents         []DocumentInput   `json:"documents"          validate:"omitempty,dive"`
}

// UpdateSubmissionRequest 修改待审核提交（仅 pending）
type UpdateSubmissionRequest struct {
	Judul             *string `json:"judul"              validate:"omitempty,min=1,max=255"`
	NamaLomba         *string `json:"nama_lomba"         validate:"omitempty,min=1,max=255"`
	Tingkat           *string `json:"tingkat"            validate:"omitempty,oneof=kampus kota provinsi wilayah nasional internasional"`
	Peringkat         *string `json:"peringkat"          validate:"omitempty,max=100"`
	Tahun             *int    `json:"tahun"`
	Tanggal           *string `json:"tanggal"            validate:"omitempty,datetime=2006-01-02"`
	Kategori          *string `json:"kategori"           validate:"omitempty,max=100"`
	Deskripsi         *string `json:"deskripsi"`
	SubmitterEmail    *string `json:"submitter_email"    validate:"omitempty,email"`
	SubmitterWhatsapp *string `json:"submitter_whatsapp" validate:"omitempty,max=30"`
}

// ReviewRequest 审核请求
type ReviewRequest struct {
	Status        string  `json:"status"         validate:"required,oneof=approved rejected"`
	ReviewerNotes *string `json:"reviewer_notes" validate:"omitempty,max=2000"`
}

// SubmissionListRequest 管理端提交列表筛选
type SubmissionListRequest struct {
	PaginationRequest
	Status       string `form:"status"`
	DisplayState string `form:"display_state"`
	Tahun        int    `form:"tahun"`
	Q            string `form:"q"`
}

// MemberResponse 团队成员
type MemberResponse struct {
	ID       int64   `json:"id"`
	Nama     string  `json:"nama"`
	NIM      string  `json:"nim"`
	Prodi    *string `json:"prodi,omitempty"`
	Angkatan *string `json:"angkatan,omitempty"`
	Whatsapp *string `json:"whatsapp,omitempty"`
	IsKetua  bool    `json:"is_ketua"`
}

// PembimbingResponse 指导教师
type PembimbingResponse struct {
	ID       int64   `json:"id"`
	Nama     string  `json:"nama"`
	NIDN     *string `json:"nidn,omitempty"`
	Whatsapp *string `json:"whatsapp,omitempty"`
}

// DocumentResponse 证明材料
type DocumentResponse struct {
	ID       int64   `json:"id"`
	Tipe     string  `json:"tipe"`
	Label    *string `json:"label,omitempty"`
	FileURL  string  `json:"file_url"`
	FileName *string `json:"file_name,omitempty"`
}

// SubmissionResponse 提交详情
type SubmissionResponse struct {
	ID                int64                `json:"id"`
	Judul             string               `json:"judul"`
	NamaLomba         string               `json:"nama_lomba"`
	Tingkat           string               `json:"tingkat"`
	Peringkat         string               `json:"peringkat"`
	Tahun             int                  `json:"tahun"`
	Tanggal           *string              `json:"tanggal,omitempty"`
	Kategori          *string              `json:"kategori,omitempty"`
	Deskripsi         *string              `json:"deskripsi,omitempty"`
	SubmitterNama     string               `json:"submitter_nama"`
	SubmitterNIM      string               `json:"submitter_nim"`
	SubmitterEmail    *string              `json:"submitter_email,omitempty"`
	SubmitterWhatsapp *string              `json:"submitter_whatsapp,omitempty"`
	Status            string               `json:"status"`
	DisplayState      string               `json:"display_state"`
	ReviewerNotes     *string              `json:"reviewer_notes,omitempty"`
	ReviewedAt        *string              `json:"reviewed_at,omitempty"`
	ReviewedBy        *int64               `json:"reviewed_by,omitempty"`
	Members           []MemberResponse     `json:"members"`
	Pembimbing        []PembimbingResponse `json:"pembimbing"`
	Documents         []DocumentResponse   `json:"documents"`
	Prestasi          *PrestasiBrief       `json:"prestasi,omitempty"`
	CreatedAt         string               `json:"created_at"`
	UpdatedAt         string               `json:"updated_at"`
}

// PrestasiBrief 提交关联的已发布成就摘要
type PrestasiBrief struct {
	ID          int64   `json:"id"`
	Slug        string  `json:"slug"`
	IsPublished bool    `json:"is_published"`
	PublishedAt *string `json:"published_at,omitempty"`
}

// SubmissionSummaryResponse 各展示状态计数
type SubmissionSummaryResponse struct {
	Pending             int64 `json:"pending"`
	Rejected            int64 `json:"rejected"`
	ApprovedUnpublished int64 `json:"approved_unpublished"`
	Published           int64 `json:"published"`
	Total               int64 `json:"total"`
}

// ReviewLogResponse 审核记录
type ReviewLogResponse struct {
	ID         int64   `json:"id"`
	FromStatus string  `json:"from_status"`
	ToStatus   string  `json:"to_status"`
	ReviewerID *int64  `json:"reviewer_id,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	CreatedAt  string  `json:"created_at"`
}
