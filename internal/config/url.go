package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// buildDatabaseURL 根据驱动类型构建数据库连接字符串
func buildDatabaseURL(db DatabaseConfig, password string) string {
	switch strings.ToLower(db.Driver) {
	case "postgres", "postgresql":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			db.User, password, db.Host, db.Port, db.Name, db.SSLMode)
	default: // sqlite
		if db.Path == "" || db.Path == ":memory:" {
			return ":memory:"
		}
		return fmt.Sprintf("file:%s?cache=shared&mode=rwc", db.Path)
	}
}

// detectDatabaseDriver 检测数据库驱动类型
// 优先级：YAML driver 字段 > DATABASE_URL 前缀自动检测 > 默认 sqlite
func detectDatabaseDriver(yamlDriver, databaseURL string) string {
	switch strings.ToLower(yamlDriver) {
	case "sqlite":
		return "sqlite"
	case "postgres", "postgresql":
		return "postgres"
	}
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// buildMongoURI 构建展示站 MongoDB 连接串，未配置 URI 时返回空
func buildMongoURI(db SiteDatabaseConfig) string {
	if db.URI == "" {
		return ""
	}
	if db.User != "" && db.Password != "" && strings.HasPrefix(db.URI, "mongodb://") {
		return fmt.Sprintf("mongodb://%s:%s@%s", db.User, db.Password, strings.TrimPrefix(db.URI, "mongodb://"))
	}
	return db.URI
}

// buildRedisURL 构建 Redis 连接字符串
// 如果 URL 字段非空，直接使用；否则从 host/port/db/password 构建
func buildRedisURL(redis RedisConfig) string {
	if redis.URL != "" {
		return redis.URL
	}
	if redis.Password != "" {
		return fmt.Sprintf("redis://:%s@%s:%d/%d", redis.Password, redis.Host, redis.Port, redis.DB)
	}
	return fmt.Sprintf("redis://%s:%d/%d", redis.Host, redis.Port, redis.DB)
}

var passwordRe = regexp.MustCompile(`(://[^:/]*:)([^@]+)(@)`)

// maskPassword 隐藏密码
func maskPassword(url string) string {
	return passwordRe.ReplaceAllString(url, "${1}***${3}")
}

// parseEnv 解析环境字符串
func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

// firstEnv 返回第一个非空的环境变量值
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// getEnv 获取环境变量，支持默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDemo 关系库为 SQLite 内存库时视为演示模式
func (c *Config) IsDemo() bool {
	return c.DatabaseDriver == "sqlite" && c.DatabaseURL == ":memory:"
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	redis := c.RedisURL
	if redis == "" {
		redis = "disabled"
	}
	return fmt.Sprintf("Config{Env: %s, Driver: %s, DB: %s, Redis: %s, Site: %s}",
		c.Env, c.DatabaseDriver, maskPassword(c.DatabaseURL), maskPassword(redis), maskPassword(c.SiteMongoURI))
}
