package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sitaurs/apm-portal-sub000/config"
	"github.com/sitaurs/apm-portal-sub000/internal/api/handler"
	"github.com/sitaurs/apm-portal-sub000/internal/api/router"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
	"github.com/sitaurs/apm-portal-sub000/internal/service"
	"github.com/sitaurs/apm-portal-sub000/pkg/database"
	"github.com/sitaurs/apm-portal-sub000/pkg/jwt"
	applogger "github.com/sitaurs/apm-portal-sub000/pkg/logger"
	"github.com/sitaurs/apm-portal-sub000/pkg/mail"
	"github.com/sitaurs/apm-portal-sub000/pkg/redis"
	"github.com/sitaurs/apm-portal-sub000/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("review_policy", cfg.Pipeline.ReviewPolicy),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时限流与黑名单降级放行）
	// 接口变量只在连接成功时赋值，避免 nil 指针被包装成非 nil 接口
	var (
		rdb        *redis.Client
		blacklist  service.TokenBlacklist
		routerDeps router.Deps
	)
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，限流与 Token 黑名单功能将不可用", zap.Error(err))
		rdb = nil
	} else {
		blacklist = rdb
		routerDeps = router.Deps{Blacklist: rdb, Limiter: rdb}
	}

	// 5. 媒体托管（可选）
	deps := service.Deps{Blacklist: blacklist}
	if cfg.Storage.Enabled() {
		store, err := storage.NewOSSStore(&cfg.Storage, logger)
		if err != nil {
			logger.Warn("OSS 初始化失败，上传功能将不可用", zap.Error(err))
		} else {
			deps.Store = store
		}
	} else {
		logger.Info("未配置媒体托管，上传功能关闭")
	}

	// 6. 审核结果邮件（可选）
	if cfg.Mail.SendGridAPIKey != "" && cfg.Mail.FromEmail != "" {
		deps.Notifier = service.NewMailReviewNotifier(mail.NewSendGridMailer(&cfg.Mail), logger)
	}

	// 7. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 8. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, deps, logger)
	h := handler.NewHandler(svc)

	// 9. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, routerDeps, logger)

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if sqlDB != nil {
		sqlDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
