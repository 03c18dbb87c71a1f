package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/api"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/config"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/fault"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/logger"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/seed"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

func main() {
	// 0. 统一加载 .env，便于集中管理 APP_* 环境变量
	loadEnvFile()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 1. 加载配置，APP_CONFIG_FILE 指定时必须存在
	cfg, err := config.Load(env, os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.String("env", env),
		zap.String("mode", cfg.Server.Mode),
	)

	// 3. 初始化内存数据并加载种子
	s := store.New(
		store.WithLogger(logger.Get().Named("store")),
		store.WithStrictApprovals(cfg.Mock.StrictApprovals),
		store.WithMaxPageSize(cfg.Mock.MaxPageSize),
	)
	if err := seed.Apply(s, cfg.Mock.SeedPath); err != nil {
		logger.Fatal("加载种子数据失败", zap.Error(err))
	}
	logger.Info("种子数据已加载", zap.Any("counts", s.Counts()))

	// 4. 预置故障预算
	faults := fault.New(logger.Get().Named("fault"))
	if err := presetFaults(faults, cfg.Mock.Faults); err != nil {
		logger.Fatal("预置故障失败", zap.Error(err))
	}

	// 5. 设置 Gin 模式
	gin.SetMode(cfg.Server.Mode)

	// 6. 创建路由
	router, err := api.SetupRouter(api.Deps{
		Store:  s,
		Faults: faults,
		Logger: logger.Get(),
		Config: cfg,
	})
	if err != nil {
		logger.Fatal("创建路由失败", zap.Error(err))
	}

	// 7. 创建 HTTP 服务器
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 8. 启动服务器（goroutine）
	go func() {
		logger.Info("HTTP 服务器启动", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	gracefulShutdown(server)
}

// presetFaults 写入配置文件中的故障预算
func presetFaults(faults *fault.Injector, presets []config.FaultConfig) error {
	for _, p := range presets {
		rule := fault.Rule{Capability: p.Capability, TenantID: p.TenantID, Key: p.Key, Count: p.Count}
		if err := faults.Configure(rule); err != nil {
			return fmt.Errorf("fault %q: %w", p.Capability, err)
		}
	}
	if len(presets) > 0 {
		logger.Info("已预置故障预算", zap.Int("rules", len(faults.Rules())))
	}
	return nil
}

// loadEnvFile 依次尝试加载当前目录及上级目录的 .env 文件
func loadEnvFile() {
	if path := resolveEnvPath(); path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Printf("加载环境变量文件 %s 失败: %v\n", path, err)
		} else {
			fmt.Printf("已加载环境变量文件: %s\n", path)
		}
	} else {
		fmt.Println("未找到 .env 文件，将仅使用系统环境变量和 config/* 配置")
	}
}

// resolveEnvPath 从当前工作目录、可执行文件目录向上查找 .env
func resolveEnvPath() string {
	for _, path := range collectEnvCandidates() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func collectEnvCandidates() []string {
	seen := make(map[string]struct{})
	var candidates []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		candidates = append(candidates, path)
	}

	traverse := func(start string) {
		dir := filepath.Clean(start)
		for i := 0; i < 4; i++ {
			if dir == "" || dir == string(filepath.Separator) || dir == "." {
				break
			}
			add(filepath.Join(dir, ".env"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if wd, err := os.Getwd(); err == nil {
		traverse(wd)
	}
	if exe, err := os.Executable(); err == nil {
		traverse(filepath.Dir(exe))
	}
	return candidates
}

// gracefulShutdown 优雅关闭
func gracefulShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	logger.Info("服务器已安全关闭")
}
