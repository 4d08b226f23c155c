package server

import (
	"net"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/apiserver/activity"
	"marketplace/internal/apiserver/admin"
	"marketplace/internal/apiserver/auth"
	"marketplace/internal/apiserver/category"
	"marketplace/internal/apiserver/listing"
	"marketplace/internal/apiserver/profile"
	"marketplace/internal/apiserver/saved"
	"marketplace/internal/apiserver/site"
	"marketplace/internal/apiserver/upload"
	"marketplace/internal/apiserver/userdeletion"
	"marketplace/pkg/logging"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查 / 指标:
//   - GET /health
//   - GET /metrics
//
// 认证 (auth):
//   - POST /api/v1/auth/register | login | refresh | password-strength
//   - GET  /api/v1/auth/me, PUT /api/v1/auth/password
//
// 市场 (listing / category / profile / saved / upload):
//   - /api/v1/listings[/{id}[/contact]], /api/v1/users/{id}/listings
//   - /api/v1/categories[/{slug}], /api/v1/admin/categories[/{id}]
//   - /api/v1/profile, /api/v1/profiles/{userId}
//   - /api/v1/saved[/{listingId}]
//   - /api/v1/uploads[/{key...}]
//
// 管理后台 (admin / activity):
//   - /api/v1/admin/stats | users | listings | activities
//
// 函数:
//   - POST /functions/v1/delete-user
//
// 展示站 (site):
//   - /api/v1/site/translations/{lang}, /api/v1/site/properties[/{id}]
//   - /api/v1/admin/site/properties[/{id}[/status]]
//
// WebSocket:
//   - GET /ws/admin/activities - 审计实时推送
func (h *Handler) Router() http.Handler {
	d := h.deps
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", MetricsHandler())

	auth.NewHandler(d.Store, h.roles, d.Auth).RegisterRoutes(mux)
	listing.NewHandler(d.Store, h.recorder, d.MaxImages).RegisterRoutes(mux)
	category.NewHandler(d.Store, h.recorder).RegisterRoutes(mux)
	profile.NewHandler(d.Store).RegisterRoutes(mux)
	saved.NewHandler(d.Store).RegisterRoutes(mux)
	upload.NewHandler(d.Objects, d.UploadPolicy).RegisterRoutes(mux)

	admin.NewHandler(d.Store, d.Cache, h.roles, h.moderation, h.recorder).RegisterRoutes(mux)
	activityHandler := activity.NewHandler(d.Store, d.EventBus, d.Auth, h.roles)
	activityHandler.RegisterRoutes(mux)

	userdeletion.NewHandler(h.deletion, d.Auth).RegisterRoutes(mux)

	site.NewHandler(d.Properties, d.WhatsAppNumber, d.DefaultLanguage).RegisterRoutes(mux)

	// 中间件顺序：CORS -> 日志 -> 认证 -> 指标 -> 路由
	apiHandler := h.metrics.MetricsMiddleware(mux)
	authedHandler := auth.Middleware(d.Auth, h.roles)(apiHandler)
	loggedHandler := loggingMiddleware(h.logger, authedHandler)
	corsHandler := corsMiddleware(loggedHandler)

	// WebSocket 绕过 metrics 中间件（避免 http.Hijacker 问题）
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /ws/admin/activities", activityHandler.HandleWebSocket)
	topMux.Handle("/", corsHandler)

	return topMux
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Client-Info, Apikey")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware 结构化访问日志
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.HTTPRequestLog(r.Method, normalizePath(r.URL.Path), wrapped.statusCode, time.Since(start), clientIP(r))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
