// Package server 路由装配与公共中间件
//
// 各业务域的处理器位于 internal/apiserver 的独立子包，本包负责：
//   - 组装服务（角色、审计、审核、账号删除）并注入各处理器
//   - 认证 / CORS / 日志 / 指标中间件
//   - 健康检查与 Prometheus 指标端点
//   - WebSocket 路由（绕过指标中间件）
package server

import (
	"encoding/json"
	"net/http"

	"marketplace/internal/apiserver/activity"
	"marketplace/internal/apiserver/auth"
	"marketplace/internal/apiserver/moderation"
	"marketplace/internal/apiserver/roles"
	"marketplace/internal/apiserver/upload"
	"marketplace/internal/apiserver/userdeletion"
	"marketplace/internal/shared/cache"
	"marketplace/internal/shared/eventbus"
	"marketplace/internal/shared/storage"
	"marketplace/pkg/logging"
)

// Deps Handler 的外部依赖
//
// Properties / Objects 可为 nil：对应接口返回 503。
// Cache / EventBus 为 nil 时分别退化为 NoOp 缓存和进程内广播。
type Deps struct {
	Store      storage.PersistentStore
	Properties storage.PropertyStore
	Cache      cache.Cache
	EventBus   eventbus.EventBus
	Objects    upload.Uploader

	Auth         auth.Config
	UploadPolicy upload.Policy
	MaxImages    int

	WhatsAppNumber  string
	DefaultLanguage string

	Logger *logging.Logger
}

// Handler API 入口
type Handler struct {
	deps Deps

	roles      *roles.Service
	recorder   *activity.Recorder
	moderation *moderation.Service
	deletion   *userdeletion.Service

	metrics *Metrics
	logger  *logging.Logger
}

// NewHandler 创建 Handler 并组装领域服务
func NewHandler(deps Deps) *Handler {
	if deps.Cache == nil {
		deps.Cache = cache.NewNoOpCache()
	}
	if deps.EventBus == nil {
		deps.EventBus = eventbus.NewMemoryEventBus()
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default("api-server")
	}

	recorder := activity.NewRecorder(deps.Store, deps.EventBus)
	roleSvc := roles.NewService(deps.Store, deps.Cache, recorder)

	return &Handler{
		deps:       deps,
		roles:      roleSvc,
		recorder:   recorder,
		moderation: moderation.NewService(deps.Store, roleSvc, recorder),
		deletion:   userdeletion.NewService(deps.Store, roleSvc, recorder, deps.Logger),
		metrics:    defaultMetrics(),
		logger:     deps.Logger,
	}
}

// Roles 角色服务（启动时失效管理员角色缓存）
func (h *Handler) Roles() *roles.Service {
	return h.roles
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Health 健康检查接口
//
// 路由: GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
