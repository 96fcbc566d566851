package service

import (
	"time"

	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/model"
)

const timeLayout = time.RFC3339

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timeLayout)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// toSubmissionResponse 转换提交详情
func toSubmissionResponse(s *model.Submission) *dto.SubmissionResponse {
	resp := &dto.SubmissionResponse{
		ID:                s.ID,
		Judul:             s.Judul,
		NamaLomba:         s.NamaLomba,
		Tingkat:           s.Tingkat,
		Peringkat:         s.Peringkat,
		Tahun:             s.Tahun,
		Tanggal:           formatDatePtr(s.Tanggal),
		Kategori:          s.Kategori,
		Deskripsi:         s.Deskripsi,
		SubmitterNama:     s.SubmitterNama,
		SubmitterNIM:      s.SubmitterNIM,
		SubmitterEmail:    s.SubmitterEmail,
		SubmitterWhatsapp: s.SubmitterWhatsapp,
		Status:            s.Status,
		DisplayState:      s.DisplayState(),
		ReviewerNotes:     s.ReviewerNotes,
		ReviewedAt:        formatTimePtr(s.ReviewedAt),
		ReviewedBy:        s.ReviewedBy,
		Members:           make([]dto.MemberResponse, 0, len(s.Members)),
		Pembimbing:        make([]dto.PembimbingResponse, 0, len(s.Pembimbing)),
		Documents:         make([]dto.DocumentResponse, 0, len(s.Documents)),
		CreatedAt:         s.CreatedAt.Format(timeLayout),
		UpdatedAt:         s.UpdatedAt.Format(timeLayout),
	}

	for _, m := range s.Members {
		resp.Members = append(resp.Members, dto.MemberResponse{
			ID: m.ID, Nama: m.Nama, NIM: m.NIM, Prodi: m.Prodi,
			Angkatan: m.Angkatan, Whatsapp: m.Whatsapp, IsKetua: m.IsKetua,
		})
	}
	for _, p := range s.Pembimbing {
		resp.Pembimbing = append(resp.Pembimbing, dto.PembimbingResponse{
			ID: p.ID, Nama: p.Nama, NIDN: p.NIDN, Whatsapp: p.Whatsapp,
		})
	}
	for _, d := range s.Documents {
		resp.Documents = append(resp.Documents, dto.DocumentResponse{
			ID: d.ID, Tipe: d.Tipe, Label: d.Label, FileURL: d.FileURL, FileName: d.FileName,
		})
	}
	if s.Prestasi != nil {
		resp.Prestasi = &dto.PrestasiBrief{
			ID:          s.Prestasi.ID,
			Slug:        s.Prestasi.Slug,
			IsPublished: s.Prestasi.IsPublished,
			PublishedAt: formatTimePtr(s.Prestasi.PublishedAt),
		}
	}
	return resp
}

// toPrestasiResponse 转换成就详情
// public 为 true 时，未公开的证书地址不返回
func toPrestasiResponse(p *model.Prestasi, public bool) dto.PrestasiResponse {
	galeri := []string(p.Galeri)
	if galeri == nil {
		galeri = []string{}
	}
	resp := dto.PrestasiResponse{
		ID:               p.ID,
		Slug:             p.Slug,
		Judul:            p.Judul,
		NamaLomba:        p.NamaLomba,
		Tingkat:          p.Tingkat,
		Peringkat:        p.Peringkat,
		Tahun:            p.Tahun,
		Kategori:         p.Kategori,
		Deskripsi:        p.Deskripsi,
		Thumbnail:        p.Thumbnail,
		Galeri:           galeri,
		Sertifikat:       p.Sertifikat,
		SertifikatPublic: p.SertifikatPublic,
		LinkBerita:       p.LinkBerita,
		LinkPortofolio:   p.LinkPortofolio,
		IsPublished:      p.IsPublished,
		IsFeatured:       p.IsFeatured,
		PublishedAt:      formatTimePtr(p.PublishedAt),
		SubmissionID:     p.SubmissionID,
		CreatedAt:        p.CreatedAt.Format(timeLayout),
		UpdatedAt:        p.UpdatedAt.Format(timeLayout),
	}
	if public {
		resp.SubmissionID = nil
		if !p.SertifikatPublic {
			resp.Sertifikat = nil
		}
	}
	return resp
}

func toCalendarEventResponse(e *model.CalendarEvent) dto.CalendarEventResponse {
	return dto.CalendarEventResponse{
		ID:        e.ID,
		Title:     e.Title,
		Type:      e.Type,
		Color:     e.Color,
		StartDate: e.StartDate.Format(dateLayout),
		EndDate:   formatDatePtr(e.EndDate),
		Link:      e.Link,
		IsActive:  e.IsActive,
	}
}

func toReviewLogResponse(l *model.ReviewLog) dto.ReviewLogResponse {
	return dto.ReviewLogResponse{
		ID:         l.ID,
		FromStatus: l.FromStatus,
		ToStatus:   l.ToStatus,
		ReviewerID: l.ReviewerID,
		Notes:      l.Notes,
		CreatedAt:  l.CreatedAt.Format(timeLayout),
	}
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Nama:      u.Nama,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(timeLayout),
	}
}
