package auth

import (
	"context"
	"log"
	"net/http"
	"strings"

	"marketplace/internal/shared/model"
)

// RoleResolver 按用户 ID 解析有效角色
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (model.RoleName, error)
}

// 免认证路由白名单（前缀匹配）
var publicPrefixes = []string{
	"/api/v1/auth/register",
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
	"/api/v1/auth/password-strength",
	"/api/v1/site/",
	"/functions/v1/", // 函数自行校验 Authorization 并返回约定的错误体
	"/health",
	"/metrics",
	"/ws/", // WebSocket 通过 query token 认证
}

// 匿名可读的路由前缀（仅 GET），携带有效令牌时仍注入用户
var publicReadPrefixes = []string{
	"/api/v1/listings",
	"/api/v1/categories",
	"/api/v1/profiles/",
	"/api/v1/users/",
}

func isPublicRoute(method, path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if method == http.MethodGet {
		for _, prefix := range publicReadPrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
	}
	return false
}

// BearerToken 提取 Authorization: Bearer <token>，格式不符返回空字符串
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate 校验访问令牌并解析角色
func Authenticate(ctx context.Context, cfg Config, roles RoleResolver, token string) (*AuthUser, error) {
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		return nil, err
	}
	user := &AuthUser{ID: claims.Subject, Email: claims.Email, Role: model.RoleUser}
	if roles != nil {
		role, err := roles.RoleOf(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	return user, nil
}

// Middleware 创建 JWT 认证中间件
//
// 公开路由匿名放行；携带令牌的请求无论路由是否公开都会注入用户。
func Middleware(cfg Config, roles RoleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			public := r.Method == http.MethodOptions || isPublicRoute(r.Method, r.URL.Path)

			if r.Header.Get("Authorization") == "" {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			token := BearerToken(r)
			if token == "" {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, `{"error":"invalid authorization header"}`, http.StatusUnauthorized)
				return
			}

			user, err := Authenticate(r.Context(), cfg, roles, token)
			if err != nil {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				log.Printf("[auth] token rejected: %v", err)
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuthUser(r.Context(), user)))
		})
	}
}

// Privileged 管理后台路由中间件（admin 或 moderator）
func Privileged(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !GetAuthUser(r.Context()).IsPrivileged() {
			http.Error(w, `{"error":"admin access required"}`, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// AdminOnly 管理员专属路由中间件
func AdminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !GetAuthUser(r.Context()).IsAdmin() {
			http.Error(w, `{"error":"admin access required"}`, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
