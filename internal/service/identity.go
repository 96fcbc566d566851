package service

import (
	"errors"

	"github.com/sitaurs/apm-portal-sub000/internal/model"
)

var (
	ErrUnauthorized = errors.New("未认证")
	ErrForbidden    = errors.New("无权限执行该操作")
)

// Identity 认证中间件注入的调用方身份
type Identity struct {
	ID    int64
	Email string
	Role  string
}

// IsAdmin 是否具有管理员角色
func (i *Identity) IsAdmin() bool {
	if i == nil {
		return false
	}
	return i.Role == model.RoleAdmin || i.Role == model.RoleSuperAdmin
}

// requireAdmin 身份缺失返回 ErrUnauthorized，非管理员返回 ErrForbidden
func requireAdmin(actor *Identity) error {
	if actor == nil || actor.ID == 0 {
		return ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
