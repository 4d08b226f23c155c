// Package saved 收藏接口
package saved

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"marketplace/internal/apiserver/auth"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"

	"github.com/google/uuid"
)

// Store 收藏接口依赖的存储
type Store interface {
	storage.SavedListingStore
	GetListing(ctx context.Context, id string) (*model.Listing, error)
}

// Handler 收藏处理器
type Handler struct {
	store Store
}

// NewHandler 创建收藏处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/saved", h.List)
	mux.HandleFunc("GET /api/v1/saved/{listingId}", h.Status)
	mux.HandleFunc("PUT /api/v1/saved/{listingId}", h.Save)
	mux.HandleFunc("DELETE /api/v1/saved/{listingId}", h.Unsave)
}

// List 当前用户的收藏，最新收藏在前
//
// 路由: GET /api/v1/saved
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	items, err := h.store.ListSavedListings(r.Context(), user.ID)
	if err != nil {
		log.Printf("[saved] ListSavedListings error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list saved listings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"saved": items, "count": len(items)})
}

// Status 是否已收藏
//
// 路由: GET /api/v1/saved/{listingId}
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	listingID := r.PathValue("listingId")
	ok, err := h.store.IsListingSaved(r.Context(), user.ID, listingID)
	if err != nil {
		log.Printf("[saved] IsListingSaved error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"listing_id": listingID, "saved": ok})
}

// Save 收藏商品（幂等）
//
// 路由: PUT /api/v1/saved/{listingId}
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "You must be logged in to save a listing")
		return
	}
	listingID := r.PathValue("listingId")
	l, err := h.store.GetListing(r.Context(), listingID)
	if err != nil {
		log.Printf("[saved] GetListing error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if l == nil || !(l.IsPublic() || l.UserID == user.ID || user.IsPrivileged()) {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}

	err = h.store.SaveListing(r.Context(), &model.SavedListing{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("[saved] SaveListing error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save listing")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"listing_id": listingID, "saved": true})
}

// Unsave 取消收藏（未收藏时同样成功）
//
// 路由: DELETE /api/v1/saved/{listingId}
func (h *Handler) Unsave(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "You must be logged in to unsave a listing")
		return
	}
	if err := h.store.UnsaveListing(r.Context(), user.ID, r.PathValue("listingId")); err != nil {
		log.Printf("[saved] UnsaveListing error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to unsave listing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
