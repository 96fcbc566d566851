package model

import (
	"time"

	"gorm.io/datatypes"
)

// Prestasi 公开展示的成就 — 对应 prestasi
// 由提交投影而来（SubmissionID 非空）或由管理员直录
type Prestasi struct {
	BaseModel
	Slug      string  `gorm:"type:varchar(220);not null;uniqueIndex:uk_prestasi_slug" json:"slug"`
	Judul     string  `gorm:"type:varchar(255);not null"                               json:"judul"`
	NamaLomba string  `gorm:"type:varchar(255);not null"                               json:"nama_lomba"`
	Tingkat   string  `gorm:"type:varchar(20);not null"                                json:"tingkat"`
	Peringkat string  `gorm:"type:varchar(100);not null;default:''"                    json:"peringkat"`
	Tahun     int     `gorm:"not null"                                                 json:"tahun"`
	Kategori  *string `gorm:"type:varchar(100)"                                        json:"kategori,omitempty"`
	Deskripsi *string `gorm:"type:text"                                                json:"deskripsi,omitempty"`

	// 展示字段
	Thumbnail        *string                     `gorm:"type:text"                           json:"thumbnail,omitempty"`
	Galeri           datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"   json:"galeri"`
	Sertifikat       *string                     `gorm:"type:text"                           json:"sertifikat,omitempty"`
	SertifikatPublic bool                        `gorm:"not null;default:false"              json:"sertifikat_public"`
	LinkBerita       *string                     `gorm:"type:text"                           json:"link_berita,omitempty"`
	LinkPortofolio   *string                     `gorm:"type:text"                           json:"link_portofolio,omitempty"`

	IsPublished  bool       `gorm:"not null;default:false" json:"is_published"`
	IsFeatured   bool       `gorm:"not null;default:false" json:"is_featured"`
	PublishedAt  *time.Time `                              json:"published_at,omitempty"`
	SubmissionID *int64     `gorm:"index"                  json:"submission_id,omitempty"`
}

// TableName 指定表名
func (Prestasi) TableName() string { return "prestasi" }
