// Package profile 用户资料接口
package profile

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"marketplace/internal/apiserver/auth"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"
)

// Handler 资料处理器
type Handler struct {
	store storage.ProfileStore
}

// NewHandler 创建资料处理器
func NewHandler(store storage.ProfileStore) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/profiles/{userId}", h.Get)
	mux.HandleFunc("GET /api/v1/profile", h.GetOwn)
	mux.HandleFunc("PUT /api/v1/profile", h.Upsert)
}

type profileRequest struct {
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// publicProfile 他人可见的资料（不含电话）
type publicProfile struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Get 查看用户资料，本人可见全部字段
//
// 路由: GET /api/v1/profiles/{userId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	p, err := h.store.GetProfile(r.Context(), userID)
	if err != nil {
		log.Printf("[profile] GetProfile error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if viewer := auth.GetAuthUser(r.Context()); viewer != nil && (viewer.ID == userID || viewer.IsPrivileged()) {
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeJSON(w, http.StatusOK, &publicProfile{UserID: p.UserID, FullName: p.FullName, Bio: p.Bio, AvatarURL: p.AvatarURL})
}

// GetOwn 当前用户资料
//
// 路由: GET /api/v1/profile
func (h *Handler) GetOwn(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	p, err := h.store.GetProfile(r.Context(), user.ID)
	if err != nil {
		log.Printf("[profile] GetProfile error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Upsert 创建或更新本人资料
//
// 路由: PUT /api/v1/profile
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if len([]rune(req.FullName)) < 2 {
		writeError(w, http.StatusBadRequest, "full_name must be at least 2 characters")
		return
	}

	p := &model.Profile{
		UserID:    user.ID,
		FullName:  req.FullName,
		Phone:     strings.TrimSpace(req.Phone),
		Bio:       strings.TrimSpace(req.Bio),
		AvatarURL: strings.TrimSpace(req.AvatarURL),
	}
	if err := h.store.UpsertProfile(r.Context(), p); err != nil {
		log.Printf("[profile] UpsertProfile error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	saved, err := h.store.GetProfile(r.Context(), user.ID)
	if err != nil || saved == nil {
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
