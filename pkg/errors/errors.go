package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolationCode PostgreSQL 唯一约束冲突错误码
const uniqueViolationCode = "23505"

// ErrUniqueViolation 唯一约束冲突（slug、重复提交等）
var ErrUniqueViolation = errors.New("数据已存在，违反唯一约束")

// IsUniqueViolation 判断错误是否为唯一约束冲突
// 同时兼容 pgconn 原始错误与 gorm TranslateError 转换后的 ErrDuplicatedKey
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUniqueViolation) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return false
}

// ConstraintName 返回触发错误的约束名，非 PostgreSQL 错误时为空
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
