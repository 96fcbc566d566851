package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/sitaurs/apm-portal-sub000/config"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
	"github.com/sitaurs/apm-portal-sub000/pkg/database"
	applogger "github.com/sitaurs/apm-portal-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("APM_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	cli := commandLine{
		users: repository.NewUserRepo(db),
		migrate: func() error {
			return database.RunMigrations(sqlDB, logger)
		},
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("命令执行失败", zap.Error(err))
		}
		sqlDB.Close()
		os.Exit(1)
	}
}
