package model

import "time"

// BaseModel 通用主键与时间戳（所有业务模型嵌入）
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"           json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ── 枚举 ──

// 成就级别
const (
	TingkatKampus        = "kampus"
	TingkatKota          = "kota"
	TingkatProvinsi      = "provinsi"
	TingkatWilayah       = "wilayah"
	TingkatNasional      = "nasional"
	TingkatInternasional = "internasional"
)

// TingkatValues 合法的成就级别
var TingkatValues = []string{
	TingkatKampus, TingkatKota, TingkatProvinsi,
	TingkatWilayah, TingkatNasional, TingkatInternasional,
}

// 提交状态
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// 管理端展示状态（由 status 与是否已发布推导）
const (
	DisplayPending             = "pending"
	DisplayRejected            = "rejected"
	DisplayApprovedUnpublished = "approved_unpublished"
	DisplayPublished           = "published"
)

// 证明材料类型
const (
	DocSertifikat = "sertifikat"
	DocLaporan    = "laporan"
	DocSuratTugas = "surat_tugas"
	DocFoto       = "foto"
)

// 日历条目类型
const (
	CalendarLomba    = "lomba"
	CalendarPrestasi = "prestasi"
	CalendarExpo     = "expo"
	CalendarLainnya  = "lainnya"
)

// 管理员角色
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// 管理员直录时使用的哨兵提交人
const (
	AdminSubmitterNama = "Admin"
	AdminSubmitterNIM  = "ADMIN"
)
