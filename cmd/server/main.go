package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/api"
	"github.com/studyloot/studyloot-backend/internal/note"
	"github.com/studyloot/studyloot-backend/internal/platform/backup"
	"github.com/studyloot/studyloot-backend/internal/platform/config"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/internal/platform/health"
	"github.com/studyloot/studyloot-backend/internal/platform/shutdown"
	"github.com/studyloot/studyloot-backend/internal/platform/startup"
	"github.com/studyloot/studyloot-backend/internal/platform/storage"
	"github.com/studyloot/studyloot-backend/pkg/lifecycle"
	"github.com/studyloot/studyloot-backend/pkg/token"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if _, err := config.LoadConfig(); err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}
	gin.SetMode(config.Cfg.Server.Mode)

	token.Configure(config.Cfg.Auth.Secret, config.Cfg.Auth.TokenTTL)
	database.InitDB(config.Cfg.Database.Sqlite)
	database.InitRedis(config.Cfg.Database.Redis)
	if err := storage.InitStorage(config.Cfg.Storage); err != nil {
		panic(fmt.Sprintf("无法初始化对象存储: %v", err))
	}

	// 阻塞式获取初始Run ID
	health.InitializeRunID()

	// 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 阻塞式执行一次启动后健康检查
	logrus.Info("正在执行启动后健康检查...")
	health.PerformCheck()

	// 异步启动后台的持续健康检查器
	go health.StartRedisHealthCheck()

	// 创建两阶段停机的生命周期管理器
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()

	// 启动计数处理器
	counterGracefulHandle, err := gracefulManager.NewServiceHandle("CounterProcessor")
	if err != nil {
		panic(fmt.Sprintf("无法创建CounterProcessor句柄: %v", err))
	}
	counterForcefulHandle, err := forcefulManager.NewServiceHandle("CounterProcessor")
	if err != nil {
		panic(fmt.Sprintf("无法创建CounterProcessor句柄: %v", err))
	}
	go note.StartCounterProcessor(counterGracefulHandle, counterForcefulHandle)

	// 启动计数落盘调度器
	flushHandle, err := gracefulManager.NewServiceHandle("FlushScheduler")
	if err != nil {
		panic(fmt.Sprintf("无法创建FlushScheduler句柄: %v", err))
	}
	go backup.StartFlushScheduler(flushHandle)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.Cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    config.Cfg.Server.Address,
		Handler: r,
	}

	go func() {
		logrus.Infof("服务器已准备就绪，开始监听 %s", config.Cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("无法启动HTTP服务器: " + err.Error())
		}
	}()

	// 阻塞等待停机信号并编排优雅停机
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
