// Package main API Server 入口
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"marketplace/internal/apiserver/auth"
	"marketplace/internal/apiserver/server"
	"marketplace/internal/apiserver/upload"
	"marketplace/internal/config"
	"marketplace/internal/shared/infra"
	objstore "marketplace/internal/shared/minio"
	"marketplace/internal/shared/storage/dbutil"
	"marketplace/internal/shared/storage/mongostore"
	"marketplace/internal/shared/storage/repository"
	"marketplace/pkg/logging"
)

func main() {
	configDir := flag.String("config", "", "配置文件目录（默认按 APP_ENV 搜索）")
	flag.Parse()
	if *configDir != "" {
		config.SetConfigDir(*configDir)
	}

	// 加载配置（自动加载 .env，APP_ENV 切换配置文件）
	cfg := config.Load()

	logger := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    "stdout",
		Component: "api-server",
	})

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 关系库（身份、资料、商品、分类、收藏、角色、审计）
	driver, err := dbutil.ParseDriverType(cfg.DatabaseDriver)
	if err != nil {
		log.Fatalf("Invalid database driver: %v", err)
	}
	store, err := repository.Open(driver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", driver, err)
	}
	log.Printf("Connected to %s", driver)

	// Redis（角色/统计缓存、审计广播），未配置时退化为进程内实现
	infrastructure := infra.NewNoOpInfrastructure(store)
	if cfg.RedisURL != "" {
		redisInfra, err := infra.NewRedisInfra(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		infrastructure.Cache = redisInfra
		infrastructure.EventBus = redisInfra
		log.Println("Connected to Redis")
	} else {
		log.Println("Redis disabled, using in-process cache and event bus")
	}

	// MongoDB（展示站地产目录，可选）
	if cfg.SiteMongoURI != "" {
		properties, err := mongostore.NewStore(cfg.SiteMongoURI, cfg.SiteMongoDB)
		if err != nil {
			log.Printf("WARNING: site catalogue unavailable: %v", err)
		} else {
			infrastructure.Properties = properties
			log.Println("Connected to MongoDB (site catalogue)")
		}
	}
	defer infrastructure.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MinIO（商品图片，可选）
	var objects upload.Uploader
	if cfg.MinIO.Endpoint != "" {
		client, err := objstore.NewClient(cfg.MinIO)
		if err != nil {
			log.Printf("WARNING: image storage unavailable: %v", err)
		} else if err := client.EnsureBucket(ctx); err != nil {
			log.Printf("WARNING: image bucket %s unavailable: %v", client.Bucket(), err)
		} else {
			objects = client
			log.Printf("Image storage ready: bucket=%s", client.Bucket())
		}
	}

	authCfg := auth.Config{
		JWTSecret:       cfg.Auth.JWTSecret,
		AccessTokenTTL:  cfg.AccessTTL,
		RefreshTokenTTL: cfg.RefreshTTL,
	}
	if authCfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	policy := upload.DefaultPolicy()
	if cfg.Uploads.MaxBytes > 0 {
		policy.MaxBytes = cfg.Uploads.MaxBytes
	}

	h := server.NewHandler(server.Deps{
		Store:           infrastructure.Storage,
		Properties:      infrastructure.Properties,
		Cache:           infrastructure.Cache,
		EventBus:        infrastructure.EventBus,
		Objects:         objects,
		Auth:            authCfg,
		UploadPolicy:    policy,
		MaxImages:       cfg.Uploads.MaxImages,
		WhatsAppNumber:  cfg.Site.WhatsAppNumber,
		DefaultLanguage: cfg.Site.DefaultLanguage,
		Logger:          logger,
	})

	// 管理员引导：角色直接写库，需失效可能残留的角色缓存
	if err := auth.EnsureAdminUser(ctx, store, store, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}
	if cfg.Auth.AdminEmail != "" {
		if admin, err := store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(cfg.Auth.AdminEmail))); err == nil && admin != nil {
			h.Roles().Forget(ctx, admin.ID)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
