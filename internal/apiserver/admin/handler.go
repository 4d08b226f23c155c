// Package admin 管理后台接口（admin / moderator）
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"marketplace/internal/apiserver/activity"
	"marketplace/internal/apiserver/auth"
	"marketplace/internal/apiserver/moderation"
	"marketplace/internal/apiserver/roles"
	"marketplace/internal/shared/cache"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"
)

// Store 管理后台依赖的存储
type Store interface {
	storage.StatsStore
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetListing(ctx context.Context, id string) (*model.Listing, error)
	ListAllListings(ctx context.Context) ([]*model.Listing, error)
	DeleteListing(ctx context.Context, id string) error
}

// RoleAssigner 角色分配
type RoleAssigner interface {
	Assign(ctx context.Context, actorID, userID string, role model.RoleName) error
}

// Moderator 商品审核
type Moderator interface {
	SetStatus(ctx context.Context, actorID, listingID string, status model.ModerationStatus) (*model.Listing, error)
}

// Handler 管理后台处理器
type Handler struct {
	store      Store
	stats      cache.StatsCache
	roles      RoleAssigner
	moderation Moderator
	recorder   *activity.Recorder
}

// NewHandler 创建管理后台处理器，stats 为 nil 时不缓存统计
func NewHandler(store Store, stats cache.StatsCache, roles RoleAssigner, moderation Moderator, recorder *activity.Recorder) *Handler {
	if stats == nil {
		stats = cache.NewNoOpCache()
	}
	return &Handler{store: store, stats: stats, roles: roles, moderation: moderation, recorder: recorder}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/admin/stats", auth.Privileged(h.Stats))
	mux.HandleFunc("GET /api/v1/admin/users", auth.Privileged(h.Users))
	mux.HandleFunc("PUT /api/v1/admin/users/{id}/role", auth.Privileged(h.UpdateRole))
	mux.HandleFunc("GET /api/v1/admin/listings", auth.Privileged(h.Listings))
	mux.HandleFunc("PATCH /api/v1/admin/listings/{id}/moderation", auth.Privileged(h.Moderate))
	mux.HandleFunc("DELETE /api/v1/admin/listings/{id}", auth.Privileged(h.DeleteListing))
}

// Stats 后台统计（短时缓存）
//
// 路由: GET /api/v1/admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if cached, err := h.stats.GetAdminStats(ctx); err != nil {
		log.Printf("[admin] stats cache get error: %v", err)
	} else if cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	stats, err := h.store.GetAdminStats(ctx)
	if err != nil {
		log.Printf("[admin] GetAdminStats error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if err := h.stats.SetAdminStats(ctx, stats); err != nil {
		log.Printf("[admin] stats cache set error: %v", err)
	}
	writeJSON(w, http.StatusOK, stats)
}

// Users 用户列表（资料 + 角色）
//
// 路由: GET /api/v1/admin/users
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsersWithRoles(r.Context())
	if err != nil {
		log.Printf("[admin] ListUsersWithRoles error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users, "count": len(users)})
}

type roleRequest struct {
	Role model.RoleName `json:"role"`
}

// UpdateRole 设置用户角色
//
// 路由: PUT /api/v1/admin/users/{id}/role
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAuthUser(r.Context())
	userID := r.PathValue("id")

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "role must be user, moderator or admin")
		return
	}
	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		log.Printf("[admin] GetUserByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	err = h.roles.Assign(r.Context(), actor.ID, userID, req.Role)
	switch {
	case errors.Is(err, roles.ErrForbidden):
		writeError(w, http.StatusForbidden, "admin access required")
		return
	case errors.Is(err, roles.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "role must be user, moderator or admin")
		return
	case err != nil:
		log.Printf("[admin] Assign role error: %v", err)
		writeError(w, http.StatusInternalServerError, "operation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID, "role": string(req.Role)})
}

// Listings 全部商品，可按审核状态过滤
//
// 路由: GET /api/v1/admin/listings?moderation=pending
func (h *Handler) Listings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.store.ListAllListings(r.Context())
	if err != nil {
		log.Printf("[admin] ListAllListings error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}
	if status := model.ModerationStatus(r.URL.Query().Get("moderation")); status != "" {
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid moderation status")
			return
		}
		filtered := listings[:0]
		for _, l := range listings {
			if l.ModerationStatus == status {
				filtered = append(filtered, l)
			}
		}
		listings = filtered
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"listings": listings, "count": len(listings)})
}

type moderationRequest struct {
	Status model.ModerationStatus `json:"status"`
}

// Moderate 设置审核状态
//
// 路由: PATCH /api/v1/admin/listings/{id}/moderation
func (h *Handler) Moderate(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAuthUser(r.Context())
	var req moderationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	listing, err := h.moderation.SetStatus(r.Context(), actor.ID, r.PathValue("id"), req.Status)
	switch {
	case errors.Is(err, moderation.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "status must be pending, approved or rejected")
		return
	case errors.Is(err, moderation.ErrForbidden):
		writeError(w, http.StatusForbidden, "admin access required")
		return
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "listing not found")
		return
	case err != nil:
		log.Printf("[admin] SetStatus error: %v", err)
		writeError(w, http.StatusInternalServerError, "operation failed")
		return
	}
	h.invalidateStats(r.Context())
	writeJSON(w, http.StatusOK, listing)
}

// DeleteListing 删除任意商品
//
// 路由: DELETE /api/v1/admin/listings/{id}
func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAuthUser(r.Context())
	id := r.PathValue("id")

	l, err := h.store.GetListing(r.Context(), id)
	if err != nil {
		log.Printf("[admin] GetListing error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if l == nil {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}
	if err := h.store.DeleteListing(r.Context(), id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("[admin] DeleteListing error: %v", err)
		writeError(w, http.StatusInternalServerError, "operation failed")
		return
	}
	if h.recorder != nil {
		if _, err := h.recorder.Record(r.Context(), actor.ID, model.ActionListingDeleted, model.TargetListing, id,
			map[string]string{"title": l.Title, "owner_id": l.UserID}); err != nil {
			log.Printf("[admin] record activity error: %v", err)
		}
	}
	h.invalidateStats(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invalidateStats(ctx context.Context) {
	if err := h.stats.InvalidateAdminStats(ctx); err != nil {
		log.Printf("[admin] stats cache invalidate error: %v", err)
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
