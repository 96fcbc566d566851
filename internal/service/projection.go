package service

import (
	"time"

	"gorm.io/datatypes"

	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/model"
)

// projectSubmission 由提交生成成就
// 事实字段复制自提交，展示字段来自编辑输入；发布与直录共用
func projectSubmission(s *model.Submission, pres *dto.PresentationFields, now time.Time) *model.Prestasi {
	p := &model.Prestasi{
		Judul:       s.Judul,
		NamaLomba:   s.NamaLomba,
		Tingkat:     s.Tingkat,
		Peringkat:   s.Peringkat,
		Tahun:       s.Tahun,
		Kategori:    s.Kategori,
		Deskripsi:   s.Deskripsi,
		Galeri:      datatypes.JSONSlice[string]{},
		IsPublished: true,
		PublishedAt: &now,
	}
	if s.ID > 0 {
		id := s.ID
		p.SubmissionID = &id
	}

	if pres != nil {
		p.Thumbnail = trimPtr(pres.Thumbnail)
		p.Sertifikat = trimPtr(pres.Sertifikat)
		p.SertifikatPublic = pres.SertifikatPublic
		p.LinkBerita = trimPtr(pres.LinkBerita)
		p.LinkPortofolio = trimPtr(pres.LinkPortofolio)
		p.IsFeatured = pres.IsFeatured
		for _, g := range pres.Galeri {
			if g != "" {
				p.Galeri = append(p.Galeri, g)
			}
		}
	}
	return p
}
