package activity

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"marketplace/internal/apiserver/auth"
	"marketplace/internal/shared/eventbus"
	"marketplace/internal/shared/storage"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler 审计查询与实时推送
type Handler struct {
	store   storage.AdminActivityStore
	bus     eventbus.ActivityEventBus
	authCfg auth.Config
	roles   auth.RoleResolver
}

// NewHandler 创建审计处理器
func NewHandler(store storage.AdminActivityStore, bus eventbus.ActivityEventBus, authCfg auth.Config, roles auth.RoleResolver) *Handler {
	return &Handler{store: store, bus: bus, authCfg: authCfg, roles: roles}
}

// RegisterRoutes 注册 REST 路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/admin/activities", auth.Privileged(h.List))
}

// List 最近的审计记录
//
// 路由: GET /api/v1/admin/activities?limit=50
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	activities, err := h.store.ListAdminActivities(r.Context(), limit)
	if err != nil {
		log.Printf("[activity] ListAdminActivities error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"activities": activities, "count": len(activities)})
}

// HandleWebSocket 实时审计推送
//
// 路由: GET /ws/admin/activities?token=<access token>
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = auth.BearerToken(r)
	}
	user, err := auth.Authenticate(r.Context(), h.authCfg, h.roles, token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	if !user.IsPrivileged() {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	// 先订阅再升级，握手完成后发布的事件不会丢失
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := h.bus.SubscribeActivities(ctx)
	if err != nil {
		log.Printf("[activity] subscribe error: %v", err)
		writeError(w, http.StatusServiceUnavailable, "activity feed unavailable")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[activity] WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()
	log.Printf("[activity] WebSocket connected: admin=%s", user.ID)

	// 读协程：客户端断开时取消订阅
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(a)
			if err != nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("[activity] WebSocket write error: %v", err)
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
