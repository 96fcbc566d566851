package model

// User 管理员账号 — 对应 users
type User struct {
	BaseModel
	Nama         string `gorm:"type:varchar(150);not null"                json:"nama"`
	Email        string `gorm:"type:varchar(255);not null"                json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'admin'" json:"role"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
