// Package category 分类接口：公开读取与管理员维护
package category

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/apiserver/activity"
	"marketplace/internal/apiserver/auth"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"

	"github.com/google/uuid"
)

// Handler 分类处理器
type Handler struct {
	store    storage.CategoryStore
	recorder *activity.Recorder
}

// NewHandler 创建分类处理器
func NewHandler(store storage.CategoryStore, recorder *activity.Recorder) *Handler {
	return &Handler{store: store, recorder: recorder}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/categories", h.List)
	mux.HandleFunc("GET /api/v1/categories/{slug}", h.GetBySlug)

	mux.HandleFunc("POST /api/v1/admin/categories", auth.Privileged(h.Create))
	mux.HandleFunc("PUT /api/v1/admin/categories/{id}", auth.Privileged(h.Update))
	mux.HandleFunc("DELETE /api/v1/admin/categories/{id}", auth.Privileged(h.Delete))
}

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (req *categoryRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Slug = model.NormalizeSlug(req.Slug)
	if len([]rune(req.Name)) < 2 {
		return "name must be at least 2 characters"
	}
	if err := model.ValidateSlug(req.Slug); err != nil {
		return err.Error()
	}
	return ""
}

// List 按名称排序的分类
//
// 路由: GET /api/v1/categories
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("[category] ListCategories error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories, "count": len(categories)})
}

// GetBySlug 按 slug 获取分类
//
// 路由: GET /api/v1/categories/{slug}
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCategoryBySlug(r.Context(), model.NormalizeSlug(r.PathValue("slug")))
	if err != nil {
		log.Printf("[category] GetCategoryBySlug error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create 新建分类
//
// 路由: POST /api/v1/admin/categories
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	now := time.Now().UTC()
	c := &model.Category{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := h.store.CreateCategory(r.Context(), c)
	if errors.Is(err, storage.ErrDuplicate) {
		writeError(w, http.StatusConflict, "slug already exists")
		return
	}
	if err != nil {
		log.Printf("[category] CreateCategory error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	h.record(r, model.ActionCategoryCreated, c)
	writeJSON(w, http.StatusCreated, c)
}

// Update 修改分类
//
// 路由: PUT /api/v1/admin/categories/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[category] GetCategory error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	c.Name, c.Slug, c.Description = req.Name, req.Slug, req.Description

	err = h.store.UpdateCategory(r.Context(), c)
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		writeError(w, http.StatusConflict, "slug already exists")
		return
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "category not found")
		return
	case err != nil:
		log.Printf("[category] UpdateCategory error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update category")
		return
	}
	h.record(r, model.ActionCategoryUpdated, c)
	writeJSON(w, http.StatusOK, c)
}

// Delete 删除分类，仍被商品引用时返回 409
//
// 路由: DELETE /api/v1/admin/categories/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := h.store.GetCategory(r.Context(), id)
	if err != nil {
		log.Printf("[category] GetCategory error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	err = h.store.DeleteCategory(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrCategoryInUse):
		writeError(w, http.StatusConflict, "category is still used by listings")
		return
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "category not found")
		return
	case err != nil:
		log.Printf("[category] DeleteCategory error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	h.record(r, model.ActionCategoryDeleted, c)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) record(r *http.Request, action model.ActivityAction, c *model.Category) {
	if h.recorder == nil {
		return
	}
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		return
	}
	if _, err := h.recorder.Record(r.Context(), user.ID, action, model.TargetCategory, c.ID,
		map[string]string{"name": c.Name, "slug": c.Slug}); err != nil {
		log.Printf("[category] record activity error: %v", err)
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
