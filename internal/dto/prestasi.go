package dto

// ── 成就发布模块 DTO ──

// PresentationFields 编辑提供的展示字段
type PresentationFields struct {
	Thumbnail        *string  `json:"thumbnail"         validate:"omitempty,url"`
	Galeri           []string `json:"galeri"            validate:"omitempty,dive,url"`
	Sertifikat       *string  `json:"sertifikat"        validate:"omitempty,url"`
	SertifikatPublic bool     `json:"sertifikat_public"`
	LinkBerita       *string  `json:"link_berita"       validate:"omitempty,url"`
	LinkPortofolio   *string  `json:"link_portofolio"   validate:"omitempty,url"`
	IsFeatured       bool     `json:"is_featured"`
}

// CalendarOption 发布时可选创建日历条目
type CalendarOption struct {
	AddToCalendar   bool    `json:"add_to_calendar"`
	TanggalKalender *string `json:"tanggal_kalender" validate:"omitempty,datetime=2006-01-02"`
}

// PublishRequest 从提交发布成就
type PublishRequest struct {
	PresentationFields
	CalendarOption
	// Slug 为空时由标题自动生成
	Slug *string `json:"slug" validate:"omitempty,max=200"`
}

// UpdatePrestasiRequest 编辑已发布成就（从不回写提交）
type UpdatePrestasiRequest struct {
	Slug             *string   `json:"slug"              validate:"omitempty,min=1,max=200"`
	Judul            *string   `json:"judul"             validate:"omitempty,min=1,max=255"`
	NamaLomba        *string   `json:"nama_lomba"        validate:"omitempty,min=1,max=255"`
	Tingkat          *string   `json:"tingkat"           validate:"omitempty,oneof=kampus kota provinsi wilayah nasional internasional"`
	Peringkat        *string   `json:"peringkat"         validate:"omitempty,max=100"`
	Tahun            *int      `json:"tahun"`
	Kategori         *string   `json:"kategori"          validate:"omitempty,max=100"`
	Deskripsi        *string   `json:"deskripsi"`
	Thumbnail        *string   `json:"thumbnail"         validate:"omitempty,url"`
	Galeri           *[]string `json:"galeri"            validate:"omitempty,dive,url"`
	Sertifikat       *string   `json:"sertifikat"        validate:"omitempty,url"`
	SertifikatPublic *bool     `json:"sertifikat_public"`
	LinkBerita       *string   `json:"link_berita"       validate:"omitempty,url"`
	LinkPortofolio   *string   `json:"link_portofolio"   validate:"omitempty,url"`
	IsPublished      *bool     `json:"is_published"`
	IsFeatured       *bool     `json:"is_featured"`
}

// SetPublishedRequest 切换发布状态
type SetPublishedRequest struct {
	IsPublished *bool `json:"is_published" binding:"required"`
}

// DirectEntryRequest 管理员直录（提交+成就一步完成）
type DirectEntryRequest struct {
	AchievementFields
	PresentationFields
	CalendarOption
	SubmitterEmail *string           `json:"submitter_email" validate:"omitempty,email"`
	Members        []MemberInput     `json:"members"         validate:"omitempty,dive"`
	Pembimbing     []PembimbingInput `json:"pembimbing"      validate:"omitempty,dive"`
	Documents      []DocumentInput   `json:"documents"       validate:"omitempty,dive"`
}

// PrestasiListRequest 成就列表筛选（公开与管理端共用）
type PrestasiListRequest struct {
	PaginationRequest
	Slug     string `form:"slug"`
	Tingkat  string `form:"tingkat"`
	Kategori string `form:"kategori"`
	Tahun    int    `form:"tahun"`
	Q        string `form:"q"`
	Featured *bool  `form:"featured"`
	// 仅管理端生效
	IncludeUnpublished bool `form:"-"`
}

// PrestasiResponse 成就详情
type PrestasiResponse struct {
	ID               int64    `json:"id"`
	Slug             string   `json:"slug"`
	Judul            string   `json:"judul"`
	NamaLomba        string   `json:"nama_lomba"`
	Tingkat          string   `json:"tingkat"`
	Peringkat        string   `json:"peringkat"`
	Tahun            int      `json:"tahun"`
	Kategori         *string  `json:"kategori,omitempty"`
	Deskripsi        *string  `json:"deskripsi,omitempty"`
	Thumbnail        *string  `json:"thumbnail,omitempty"`
	Galeri           []string `json:"galeri"`
	Sertifikat       *string  `json:"sertifikat,omitempty"`
	SertifikatPublic bool     `json:"sertifikat_public"`
	LinkBerita       *string  `json:"link_berita,omitempty"`
	LinkPortofolio   *string  `json:"link_portofolio,omitempty"`
	IsPublished      bool     `json:"is_published"`
	IsFeatured       bool     `json:"is_featured"`
	PublishedAt      *string  `json:"published_at,omitempty"`
	SubmissionID     *int64   `json:"submission_id,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// PublishResponse 发布结果
type PublishResponse struct {
	Prestasi        PrestasiResponse `json:"prestasi"`
	CalendarEventID *int64           `json:"calendar_event_id,omitempty"`
}

// DirectEntryResponse 管理员直录结果
type DirectEntryResponse struct {
	SubmissionID    int64            `json:"submission_id"`
	Prestasi        PrestasiResponse `json:"prestasi"`
	CalendarEventID *int64           `json:"calendar_event_id,omitempty"`
}
