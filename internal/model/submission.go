package model

import "time"

// Submission 成就提交 — 对应 prestasi_submissions
// 事实字段（judul/nama_lomba/...）仅在 pending 状态下可修改
type Submission struct {
	BaseModel
	Judul     string     `gorm:"type:varchar(255);not null"                 json:"judul"`
	NamaLomba string     `gorm:"type:varchar(255);not null"                 json:"nama_lomba"`
	Tingkat   string     `gorm:"type:varchar(20);not null;default:'kampus'" json:"tingkat"`
	Peringkat string     `gorm:"type:varchar(100);not null;default:''"      json:"peringkat"`
	Tahun     int        `gorm:"not null"                                   json:"tahun"`
	Tanggal   *time.Time `gorm:"type:date"                                  json:"tanggal,omitempty"`
	Kategori  *string    `gorm:"type:varchar(100)"                          json:"kategori,omitempty"`
	Deskripsi *string    `gorm:"type:text"                                  json:"deskripsi,omitempty"`

	SubmitterNama     string  `gorm:"type:varchar(150);not null" json:"submitter_nama"`
	SubmitterNIM      string  `gorm:"column:submitter_nim;type:varchar(30);not null" json:"submitter_nim"`
	SubmitterEmail    *string `gorm:"type:varchar(255)"          json:"submitter_email,omitempty"`
	SubmitterWhatsapp *string `gorm:"type:varchar(30)"           json:"submitter_whatsapp,omitempty"`

	Status        string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ReviewerNotes *string    `gorm:"type:text"                                   json:"reviewer_notes,omitempty"`
	ReviewedAt    *time.Time `                                                   json:"reviewed_at,omitempty"`
	ReviewedBy    *int64     `                                                   json:"reviewed_by,omitempty"`

	// 关联
	Members    []SubmissionMember     `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Pembimbing []SubmissionPembimbing `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"pembimbing,omitempty"`
	Documents  []SubmissionDocument   `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
	Prestasi   *Prestasi              `gorm:"foreignKey:SubmissionID"                             json:"prestasi,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "prestasi_submissions" }

// IsPending 是否仍处于待审核状态
func (s *Submission) IsPending() bool { return s.Status == StatusPending }

// DisplayState 管理端展示状态
// 已发布优先于审核状态：未经审核直接发布的提交同样显示为 published
func (s *Submission) DisplayState() string {
	if s.Prestasi != nil && s.Prestasi.IsPublished {
		return DisplayPublished
	}
	switch s.Status {
	case StatusRejected:
		return DisplayRejected
	case StatusApproved:
		return DisplayApprovedUnpublished
	default:
		return DisplayPending
	}
}

// SubmissionMember 团队成员 — 对应 prestasi_submission_members
type SubmissionMember struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"   json:"id"`
	SubmissionID int64   `gorm:"not null;index"             json:"submission_id"`
	Nama         string  `gorm:"type:varchar(150);not null" json:"nama"`
	NIM          string  `gorm:"column:nim;type:varchar(30);not null" json:"nim"`
	Prodi        *string `gorm:"type:varchar(150)"          json:"prodi,omitempty"`
	Angkatan     *string `gorm:"type:varchar(10)"           json:"angkatan,omitempty"`
	Whatsapp     *string `gorm:"type:varchar(30)"           json:"whatsapp,omitempty"`
	IsKetua      bool    `gorm:"not null;default:false"     json:"is_ketua"`
}

// TableName 指定表名
func (SubmissionMember) TableName() string { return "prestasi_submission_members" }

// SubmissionPembimbing 指导教师 — 对应 prestasi_submission_pembimbing
type SubmissionPembimbing struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"   json:"id"`
	SubmissionID int64   `gorm:"not null;index"             json:"submission_id"`
	Nama         string  `gorm:"type:varchar(150);not null" json:"nama"`
	NIDN         *string `gorm:"column:nidn;type:varchar(30)" json:"nidn,omitempty"`
	Whatsapp     *string `gorm:"type:varchar(30)"           json:"whatsapp,omitempty"`
}

// TableName 指定表名
func (SubmissionPembimbing) TableName() string { return "prestasi_submission_pembimbing" }

// SubmissionDocument 证明材料 — 对应 prestasi_submission_documents
type SubmissionDocument struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"  json:"id"`
	SubmissionID int64   `gorm:"not null;index"            json:"submission_id"`
	Tipe         string  `gorm:"type:varchar(20);not null" json:"tipe"`
	Label        *string `gorm:"type:varchar(255)"         json:"label,omitempty"`
	FileURL      string  `gorm:"column:file_url;type:text;not null" json:"file_url"`
	FileName     *string `gorm:"type:varchar(255)"         json:"file_name,omitempty"`
}

// TableName 指定表名
func (SubmissionDocument) TableName() string { return "prestasi_submission_documents" }

// ReviewLog 审核记录 — 对应 prestasi_submission_review_logs
type ReviewLog struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"            json:"id"`
	SubmissionID int64     `gorm:"not null;index"                      json:"submission_id"`
	FromStatus   string    `gorm:"type:varchar(20);not null"           json:"from_status"`
	ToStatus     string    `gorm:"type:varchar(20);not null"           json:"to_status"`
	ReviewerID   *int64    `                                           json:"reviewer_id,omitempty"`
	Notes        *string   `gorm:"type:text"                           json:"notes,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (ReviewLog) TableName() string { return "prestasi_submission_review_logs" }
