// Package site 地产展示站接口：多语言文案与地产卡片
package site

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/apiserver/auth"
	"marketplace/internal/shared/i18n"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"
)

// Store 地产条目存储
type Store interface {
	ListActiveProperties(ctx context.Context) ([]*model.Property, error)
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	CreateProperty(ctx context.Context, property *model.Property) error
	UpdatePropertyStatus(ctx context.Context, id string, status model.PropertyStatus) error
	DeleteProperty(ctx context.Context, id string) error
}

// Handler 展示站处理器
type Handler struct {
	store       Store
	whatsapp    string
	defaultLang i18n.Lang
}

// NewHandler 创建处理器，store 为 nil 时地产接口返回 503
func NewHandler(store Store, whatsapp, defaultLang string) *Handler {
	return &Handler{store: store, whatsapp: whatsapp, defaultLang: i18n.Parse(defaultLang)}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/site/translations/{lang}", h.Translations)
	mux.HandleFunc("GET /api/v1/site/properties", h.ListProperties)
	mux.HandleFunc("GET /api/v1/site/properties/{id}", h.GetProperty)

	mux.HandleFunc("POST /api/v1/admin/site/properties", auth.AdminOnly(h.CreateProperty))
	mux.HandleFunc("PATCH /api/v1/admin/site/properties/{id}/status", auth.AdminOnly(h.UpdateStatus))
	mux.HandleFunc("DELETE /api/v1/admin/site/properties/{id}", auth.AdminOnly(h.DeleteProperty))
}

func (h *Handler) lang(r *http.Request) i18n.Lang {
	if v := r.URL.Query().Get("lang"); v != "" {
		return i18n.Parse(v)
	}
	return h.defaultLang
}

// Translations 整张翻译表
//
// 路由: GET /api/v1/site/translations/{lang}
func (h *Handler) Translations(w http.ResponseWriter, r *http.Request) {
	lang := i18n.Parse(r.PathValue("lang"))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lang":         lang,
		"html_lang":    i18n.HTMLLang(lang),
		"translations": i18n.Table(lang),
	})
}

// ListProperties 上架中的地产卡片，按创建时间倒序
//
// 路由: GET /api/v1/site/properties?lang=pt
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, i18n.T(lang, "load-error"))
		return
	}
	properties, err := h.store.ListActiveProperties(r.Context())
	if err != nil {
		log.Printf("[site] ListActiveProperties error: %v", err)
		writeError(w, http.StatusInternalServerError, i18n.T(lang, "load-error"))
		return
	}

	cards := make([]*Card, 0, len(properties))
	for _, p := range properties {
		cards = append(cards, BuildCard(p, lang, h.whatsapp))
	}
	resp := map[string]interface{}{"lang": lang, "properties": cards, "count": len(cards)}
	if len(cards) == 0 {
		resp["message"] = i18n.T(lang, "no-properties")
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProperty 单个上架中的地产卡片
//
// 路由: GET /api/v1/site/properties/{id}?lang=pt
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, i18n.T(lang, "load-error"))
		return
	}
	p, err := h.store.GetProperty(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[site] GetProperty error: %v", err)
		writeError(w, http.StatusInternalServerError, i18n.T(lang, "load-error"))
		return
	}
	if p == nil || p.Status != model.PropertyActive {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	writeJSON(w, http.StatusOK, BuildCard(p, lang, h.whatsapp))
}

// ============================================================================
// 管理接口
// ============================================================================

// CreateProperty 新建地产条目
//
// 路由: POST /api/v1/admin/site/properties
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "site database not configured")
		return
	}
	var p model.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// ID 与创建时间由服务端生成
	p.ID = ""
	p.CreatedAt = time.Time{}
	if msg := validateProperty(&p); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if err := h.store.CreateProperty(r.Context(), &p); err != nil {
		log.Printf("[site] CreateProperty error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create property")
		return
	}
	writeJSON(w, http.StatusCreated, &p)
}

type statusRequest struct {
	Status model.PropertyStatus `json:"status"`
}

// UpdateStatus 上架/下架
//
// 路由: PATCH /api/v1/admin/site/properties/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "site database not configured")
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != model.PropertyActive && req.Status != model.PropertyInactive {
		writeError(w, http.StatusBadRequest, "status must be active or inactive")
		return
	}
	err := h.store.UpdatePropertyStatus(r.Context(), r.PathValue("id"), req.Status)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		log.Printf("[site] UpdatePropertyStatus error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update property")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id"), "status": string(req.Status)})
}

// DeleteProperty 删除地产条目
//
// 路由: DELETE /api/v1/admin/site/properties/{id}
func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "site database not configured")
		return
	}
	err := h.store.DeleteProperty(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		log.Printf("[site] DeleteProperty error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete property")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateProperty(p *model.Property) string {
	switch {
	case p.TitlePT == "" && p.TitleDE == "" && p.TitleEN == "":
		return "at least one title is required"
	case strings.TrimSpace(p.Location) == "":
		return "location is required"
	case strings.TrimSpace(p.Type) == "":
		return "type is required"
	case p.SizeM2 <= 0:
		return "size_m2 must be positive"
	case p.Price < 0:
		return "price must not be negative"
	}
	if p.Status != "" && p.Status != model.PropertyActive && p.Status != model.PropertyInactive {
		return "status must be active or inactive"
	}
	switch p.VideoType {
	case "":
	case model.VideoYouTube:
		if YouTubeID(p.YouTubeURL) == "" {
			return "youtube_url must be a youtube.com/watch or youtu.be link"
		}
	case model.VideoUpload:
		if p.VideoURL == "" {
			return "video_url is required for uploaded videos"
		}
	default:
		return "video_type must be youtube or upload"
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
