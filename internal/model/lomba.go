package model

import "gorm.io/gorm"

// Lomba 竞赛 — 对应 lomba（软删除）
type Lomba struct {
	BaseModel
	Slug      string         `gorm:"type:varchar(220);not null" json:"slug"`
	NamaLomba string         `gorm:"type:varchar(255);not null" json:"nama_lomba"`
	DeletedAt gorm.DeletedAt `gorm:"index"                      json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (Lomba) TableName() string { return "lomba" }
