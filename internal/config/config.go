package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load 加载配置
//  1. 加载 .env.{env}（敏感信息）
//  2. 加载 {env}.yaml
//  3. 环境变量覆盖并构建最终配置
func Load() *Config {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	loadEnvFiles(env)

	yamlCfg := loadYAMLConfig()

	yamlCfg.Database.Password = firstEnv("DB_PASSWORD", "POSTGRES_PASSWORD")
	yamlCfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	yamlCfg.SiteDatabase.Password = os.Getenv("MONGO_PASSWORD")
	yamlCfg.MinIO.AccessKey = os.Getenv("MINIO_ROOT_USER")
	yamlCfg.MinIO.SecretKey = os.Getenv("MINIO_ROOT_PASSWORD")
	yamlCfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	yamlCfg.Auth.AdminEmail = os.Getenv("ADMIN_EMAIL")
	yamlCfg.Auth.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL(yamlCfg.Database, yamlCfg.Database.Password)
	}

	redisURL := ""
	if !yamlCfg.Redis.Disabled {
		redisURL = getEnv("REDIS_URL", buildRedisURL(yamlCfg.Redis))
	}

	cfg := &Config{
		Env:            env,
		DatabaseDriver: detectDatabaseDriver(yamlCfg.Database.Driver, databaseURL),
		DatabaseURL:    databaseURL,
		SiteMongoURI:   getEnv("SITE_MONGO_URI", buildMongoURI(yamlCfg.SiteDatabase)),
		SiteMongoDB:    yamlCfg.SiteDatabase.Name,
		RedisURL:       redisURL,
		APIPort:        getEnv("API_PORT", yamlCfg.APIServer.Port),
		Auth:           yamlCfg.Auth,
		AccessTTL:      parseDuration(yamlCfg.Auth.AccessTokenTTL, 15*time.Minute),
		RefreshTTL:     parseDuration(yamlCfg.Auth.RefreshTokenTTL, 7*24*time.Hour),
		MinIO:          yamlCfg.MinIO,
		Uploads:        yamlCfg.Uploads,
		Site:           yamlCfg.Site,
		Log:            yamlCfg.Log,
		ConfigFilePath: yamlCfg.loadedFrom,
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("WHATSAPP_NUMBER"); v != "" {
		cfg.Site.WhatsAppNumber = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("UPLOAD_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Uploads.MaxBytes = n
		}
	}

	return cfg
}

// defaultYAMLConfig 代码默认值
func defaultYAMLConfig() YAMLConfig {
	return YAMLConfig{
		APIServer: APIServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Path:    ":memory:",
			Host:    "localhost",
			Port:    5432,
			User:    "marketplace",
			Name:    "marketplace",
			SSLMode: "disable",
		},
		SiteDatabase: SiteDatabaseConfig{Name: "realestate"},
		Redis:        RedisConfig{Host: "localhost", Port: 6379, DB: 0},
		MinIO:        MinIOConfig{Bucket: "listing-images"},
		Auth:         AuthConfig{AccessTokenTTL: "15m", RefreshTokenTTL: "168h"},
		Uploads:      UploadConfig{MaxBytes: 5 * 1024 * 1024, MaxImages: 5},
		Site:         SiteConfig{WhatsAppNumber: "5581999999999", DefaultLanguage: "pt"},
		Log:          LogConfig{Level: "info", Format: "text"},
	}
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → {env}.yaml
func loadYAMLConfig() *yamlConfigInternal {
	cfg := &yamlConfigInternal{YAMLConfig: defaultYAMLConfig()}

	path := findConfigFile()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[config] read %s error: %v", path, err)
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg.YAMLConfig); err != nil {
		log.Printf("[config] parse %s error: %v", path, err)
		return cfg
	}
	cfg.loadedFrom = path
	return cfg
}

// parseDuration 解析时长，失败时返回默认值
func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
