// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/systemd 注入）
//  2. YAML 配置文件（{env}.yaml，如 dev.yaml、test.yaml、prod.yaml）
//  3. 代码硬编码默认值
//
// 凭据单一数据源：
//
//	密码/密钥只存在 .env 文件中（YAML 中不存储任何密码）。
//
// 配置路径确定策略：
//  1. --config 命令行参数（显式路径）
//  2. CONFIG_DIR 环境变量
//  3. 按 APP_ENV 选择默认路径：
//     - prod → /etc/marketplace/
//     - dev/test → ./configs/
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig 统一 YAML 配置文件结构
type YAMLConfig struct {
	APIServer    APIServerConfig    `yaml:"api_server"`    // API Server（端口）
	Database     DatabaseConfig     `yaml:"database"`      // 关系库（市场业务数据）
	SiteDatabase SiteDatabaseConfig `yaml:"site_database"` // 文档库（地产展示站）
	Redis        RedisConfig        `yaml:"redis"`         // Redis（角色/统计缓存 + 审计事件广播）
	MinIO        MinIOConfig        `yaml:"minio"`         // MinIO 图片存储
	Auth         AuthConfig         `yaml:"auth"`          // 认证
	Uploads      UploadConfig       `yaml:"uploads"`       // 图片上传限制
	Site         SiteConfig         `yaml:"site"`          // 展示站
	Log          LogConfig          `yaml:"log"`           // 日志
}

// AuthConfig 认证配置
// 注意：JWTSecret/AdminEmail/AdminPassword 只从环境变量读取，不存储在 YAML 中
type AuthConfig struct {
	JWTSecret       string `yaml:"-"`                 // 只从 JWT_SECRET 环境变量读取
	AccessTokenTTL  string `yaml:"access_token_ttl"`  // 例如 "15m"
	RefreshTokenTTL string `yaml:"refresh_token_ttl"` // 例如 "168h"
	AdminEmail      string `yaml:"-"`                 // 只从 ADMIN_EMAIL 环境变量读取
	AdminPassword   string `yaml:"-"`                 // 只从 ADMIN_PASSWORD 环境变量读取
}

// APIServerConfig API Server 配置
type APIServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "postgres" 或 "sqlite"（默认 sqlite）
	Path     string `yaml:"path"`   // SQLite 文件路径，":memory:" 为演示模式
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // 只从 DB_PASSWORD 环境变量读取
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// SiteDatabaseConfig 地产展示站 MongoDB 配置
type SiteDatabaseConfig struct {
	URI      string `yaml:"uri"` // 为空时展示站接口不可用
	Name     string `yaml:"name"`
	Password string `yaml:"-"` // 只从 MONGO_PASSWORD 环境变量读取
	User     string `yaml:"user"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"`   // 只从 REDIS_PASSWORD 环境变量读取
	URL      string `yaml:"url"` // 直接指定 URL（优先于 host/port/db）
	Disabled bool   `yaml:"disabled"`
}

// MinIOConfig MinIO 对象存储配置
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`   // 例如 localhost:9000
	AccessKey string `yaml:"-"`          // 只从 MINIO_ROOT_USER 环境变量读取
	SecretKey string `yaml:"-"`          // 只从 MINIO_ROOT_PASSWORD 环境变量读取
	UseSSL    bool   `yaml:"use_ssl"`    // 是否使用 HTTPS
	Bucket    string `yaml:"bucket"`     // 默认 listing-images
	PublicURL string `yaml:"public_url"` // 图片公开访问前缀，为空时按 endpoint 拼接
}

// UploadConfig 图片上传限制
type UploadConfig struct {
	MaxBytes  int64 `yaml:"max_bytes"`
	MaxImages int   `yaml:"max_images_per_listing"`
}

// SiteConfig 地产展示站配置
type SiteConfig struct {
	WhatsAppNumber  string `yaml:"whatsapp_number"`
	DefaultLanguage string `yaml:"default_language"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env            Environment
	DatabaseDriver string // "postgres" 或 "sqlite"
	DatabaseURL    string
	SiteMongoURI   string
	SiteMongoDB    string
	RedisURL       string // 为空表示不启用 Redis
	APIPort        string
	Auth           AuthConfig
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	MinIO          MinIOConfig
	Uploads        UploadConfig
	Site           SiteConfig
	Log            LogConfig
	ConfigFilePath string // 实际加载的配置文件路径
}

// yamlConfigInternal 内部包装，记录配置文件来源（不参与 YAML 序列化）
type yamlConfigInternal struct {
	YAMLConfig `yaml:",inline"`
	loadedFrom string
}
