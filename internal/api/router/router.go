package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sitaurs/apm-portal-sub000/config"
	"github.com/sitaurs/apm-portal-sub000/internal/api/handler"
	"github.com/sitaurs/apm-portal-sub000/internal/api/middleware"
	"github.com/sitaurs/apm-portal-sub000/internal/model"
	"github.com/sitaurs/apm-portal-sub000/pkg/jwt"
)

// loginRateLimit 登录接口限流（每 IP 每 15 分钟）
const (
	loginRateLimit  = 10
	loginRateWindow = 15 * time.Minute
)

// Deps 路由层可选协作者，Redis 不可用时传 nil 接口
type Deps struct {
	Blacklist middleware.BlacklistChecker
	Limiter   middleware.RateLimiter
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	submitLimit := middleware.RateLimit(deps.Limiter, cfg.Pipeline.SubmitRateLimit, cfg.Pipeline.SubmitRateWindow, logger)
	adminOnly := middleware.RoleAuth(model.RoleAdmin, model.RoleSuperAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 公开提交（限流）
		v1.POST("/submissions", submitLimit, h.Submission.Submit)
		v1.POST("/submissions/uploads", submitLimit, h.Media.UploadPublic)

		// 公开展示
		v1.GET("/prestasi", h.Prestasi.ListPublic)
		v1.GET("/prestasi/:slug", h.Prestasi.GetPublic)
		v1.GET("/calendar", h.Calendar.List)
		v1.GET("/calendar/feed.ics", h.Calendar.Feed)

		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(deps.Limiter, loginRateLimit, loginRateWindow, logger), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, deps.Blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
		}

		// 管理端（角色在此拦截，Service 层再次校验）
		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(jwtMgr, deps.Blacklist, logger), adminOnly)
		{
			submissions := admin.Group("/submissions")
			{
				submissions.GET("", h.Submission.List)
				submissions.GET("/summary", h.Submission.Summary)
				submissions.GET("/:id", h.Submission.Get)
				submissions.PUT("/:id", h.Submission.Update)
				submissions.DELETE("/:id", h.Submission.Delete)
				submissions.POST("/:id/review", h.Submission.Review)
				submissions.GET("/:id/logs", h.Submission.ListReviewLogs)
				submissions.POST("/:id/publish", h.Prestasi.Publish)
			}

			prestasi := admin.Group("/prestasi")
			{
				prestasi.GET("", h.Prestasi.ListAdmin)
				prestasi.POST("", h.Prestasi.CreateDirect)
				prestasi.GET("/:id", h.Prestasi.Get)
				prestasi.PUT("/:id", h.Prestasi.Update)
				prestasi.PATCH("/:id/publish", h.Prestasi.SetPublished)
				prestasi.DELETE("/:id", h.Prestasi.Delete)
			}

			admin.DELETE("/lomba/:id", h.Lomba.Delete)
			admin.POST("/media", h.Media.Upload)

			export := admin.Group("/export")
			{
				export.GET("/submissions", h.Export.ExportSubmissions)
				export.GET("/prestasi", h.Export.ExportPrestasi)
			}
		}
	}

	return r
}
