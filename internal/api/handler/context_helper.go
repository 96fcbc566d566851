package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitaurs/apm-portal-sub000/internal/api/middleware"
	"github.com/sitaurs/apm-portal-sub000/internal/service"
	"github.com/sitaurs/apm-portal-sub000/pkg/response"
)

// MustGetIdentity 从 Gin 上下文中提取调用方身份。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetIdentity(c *gin.Context) (*service.Identity, bool) {
	v, exists := c.Get(middleware.ContextUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	id, ok := v.(int64)
	if !ok || id == 0 {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return &service.Identity{
		ID:    id,
		Email: c.GetString(middleware.ContextEmail),
		Role:  c.GetString(middleware.ContextRole),
	}, true
}

// tokenMeta 当前 Access Token 的 jti 与过期时间（注销用）
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.ContextTokenJTI)
	var exp time.Time
	if v, ok := c.Get(middleware.ContextTokenExp); ok {
		exp, _ = v.(time.Time)
	}
	return jti, exp
}

// parseIDParam 解析路径中的数字 ID，非法时写入 400
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "无效的 ID")
		return 0, false
	}
	return id, true
}

// bindJSON 绑定请求体，请求体超限返回 413，其余解析失败返回 400
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return false
		}
		response.BadRequest(c, 10001, "参数校验失败")
		return false
	}
	return true
}

// writeCommonError 处理各模块共享的错误类型，已处理时返回 true
func writeCommonError(c *gin.Context, err error) bool {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", strings.Join(ve.Fields, ", "))
	case errors.Is(err, service.ErrUnauthorized):
		response.Unauthorized(c, 10002, "未认证")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		return false
	}
	return true
}
