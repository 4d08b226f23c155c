// Package listing 商品 REST 接口
//
// 可见性：active 且 approved 的商品对所有人可见；其余状态仅发布者与管理员/版主可见。
package listing

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"marketplace/internal/apiserver/activity"
	"marketplace/internal/apiserver/auth"
	"marketplace/internal/shared/messaging"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"

	"github.com/google/uuid"
)

// Store 商品接口依赖的存储
type Store interface {
	storage.ListingStore
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
}

// Handler 商品处理器
type Handler struct {
	store     Store
	recorder  *activity.Recorder
	maxImages int
}

// NewHandler 创建商品处理器，maxImages <= 0 时使用 model.MaxListingImages
func NewHandler(store Store, recorder *activity.Recorder, maxImages int) *Handler {
	if maxImages <= 0 {
		maxImages = model.MaxListingImages
	}
	return &Handler{store: store, recorder: recorder, maxImages: maxImages}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/listings", h.List)
	mux.HandleFunc("POST /api/v1/listings", h.Create)
	mux.HandleFunc("GET /api/v1/listings/{id}", h.Get)
	mux.HandleFunc("PUT /api/v1/listings/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/listings/{id}", h.Delete)
	mux.HandleFunc("GET /api/v1/listings/{id}/contact", h.Contact)
	mux.HandleFunc("GET /api/v1/users/{id}/listings", h.ListByUser)
}

type listingRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Price       float64             `json:"price"`
	Currency    string              `json:"currency"`
	Location    string              `json:"location"`
	CategoryID  string              `json:"category_id"`
	ImageURLs   []string            `json:"image_urls"`
	Status      model.ListingStatus `json:"status"`
}

func (req *listingRequest) normalize() {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		req.Currency = model.DefaultCurrency
	}
}

// validate 返回第一条校验错误，通过时返回空字符串
func (h *Handler) validate(req *listingRequest) string {
	switch {
	case len([]rune(req.Title)) < 3:
		return "title must be at least 3 characters"
	case len([]rune(req.Description)) < 10:
		return "description must be at least 10 characters"
	case req.Price < 0:
		return "price must not be negative"
	case len([]rune(req.Location)) < 2:
		return "location must be at least 2 characters"
	case req.CategoryID == "":
		return "category_id is required"
	case len(req.ImageURLs) > h.maxImages:
		return "at most " + strconv.Itoa(h.maxImages) + " images are allowed"
	case req.Status != "" && !req.Status.Valid():
		return "status must be active, sold or inactive"
	}
	return ""
}

// canView 公开商品或发布者/管理员/版主
func canView(user *auth.AuthUser, l *model.Listing) bool {
	if l.IsPublic() {
		return true
	}
	if user == nil {
		return false
	}
	return user.ID == l.UserID || user.IsPrivileged()
}

// canModify 发布者或管理员
func canModify(user *auth.AuthUser, l *model.Listing) bool {
	return user != nil && (user.ID == l.UserID || user.IsAdmin())
}

// ============================================================================
// Handlers
// ============================================================================

// List 公开商品列表
//
// 路由: GET /api/v1/listings?category=&q=&limit=&offset=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ListingFilter{
		CategoryID: q.Get("category"),
		Query:      strings.TrimSpace(q.Get("q")),
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	listings, err := h.store.ListPublicListings(r.Context(), filter)
	if err != nil {
		log.Printf("[listing] ListPublicListings error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"listings": nonNil(listings), "count": len(listings)})
}

// Get 商品详情
//
// 路由: GET /api/v1/listings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	l, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Create 发布商品，初始状态 active + pending
//
// 路由: POST /api/v1/listings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "You must be logged in to create a listing")
		return
	}
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.normalize()
	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !h.categoryExists(w, r, req.CategoryID) {
		return
	}

	now := time.Now().UTC()
	l := &model.Listing{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		Currency:         req.Currency,
		Location:         req.Location,
		CategoryID:       req.CategoryID,
		ImageURLs:        nonNilStrings(req.ImageURLs),
		UserID:           user.ID,
		Status:           model.ListingStatusActive,
		ModerationStatus: model.ModerationPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.store.CreateListing(r.Context(), l); err != nil {
		log.Printf("[listing] CreateListing error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create listing")
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// Update 编辑商品（不影响审核状态）
//
// 路由: PUT /api/v1/listings/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	l, ok := h.loadModifiable(w, r, user)
	if !ok {
		return
	}
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.normalize()
	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if req.CategoryID != l.CategoryID && !h.categoryExists(w, r, req.CategoryID) {
		return
	}

	l.Title = req.Title
	l.Description = req.Description
	l.Price = req.Price
	l.Currency = req.Currency
	l.Location = req.Location
	l.CategoryID = req.CategoryID
	l.ImageURLs = nonNilStrings(req.ImageURLs)
	if req.Status != "" {
		l.Status = req.Status
	}
	if err := h.store.UpdateListing(r.Context(), l); err != nil {
		log.Printf("[listing] UpdateListing error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update listing")
		return
	}

	updated, err := h.store.GetListing(r.Context(), l.ID)
	if err != nil || updated == nil {
		log.Printf("[listing] GetListing after update error: %v", err)
		writeJSON(w, http.StatusOK, l)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete 删除商品
//
// 路由: DELETE /api/v1/listings/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	l, ok := h.loadModifiable(w, r, user)
	if !ok {
		return
	}
	if err := h.store.DeleteListing(r.Context(), l.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("[listing] DeleteListing error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete listing")
		return
	}
	// 管理员删除他人商品需留痕
	if user.ID != l.UserID && h.recorder != nil {
		if _, err := h.recorder.Record(r.Context(), user.ID, model.ActionListingDeleted, model.TargetListing, l.ID,
			map[string]string{"title": l.Title, "owner_id": l.UserID}); err != nil {
			log.Printf("[listing] record activity error: %v", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Contact 联系卖家的聊天深链接
//
// 路由: GET /api/v1/listings/{id}/contact
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	l, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	profile, err := h.store.GetProfile(r.Context(), l.UserID)
	if err != nil {
		log.Printf("[listing] GetProfile error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if profile == nil || messaging.Digits(profile.Phone) == "" {
		writeError(w, http.StatusNotFound, "seller has no contact number")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"listing_id": l.ID,
		"seller":     profile.FullName,
		"url":        messaging.ListingInquiryLink(profile.Phone, l.Title),
	})
}

// ListByUser 用户的商品：本人和管理员/版主可见全部，他人只见公开商品
//
// 路由: GET /api/v1/users/{id}/listings
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	listings, err := h.store.ListListingsByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[listing] ListListingsByUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}
	viewer := auth.GetAuthUser(r.Context())
	if viewer == nil || (viewer.ID != userID && !viewer.IsPrivileged()) {
		visible := listings[:0]
		for _, l := range listings {
			if l.IsPublic() {
				visible = append(visible, l)
			}
		}
		listings = visible
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"listings": nonNil(listings), "count": len(listings)})
}

// ============================================================================
// 辅助函数
// ============================================================================

// loadVisible 读取商品，不可见时按不存在处理
func (h *Handler) loadVisible(w http.ResponseWriter, r *http.Request) (*model.Listing, bool) {
	l, err := h.store.GetListing(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[listing] GetListing error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if l == nil || !canView(auth.GetAuthUser(r.Context()), l) {
		writeError(w, http.StatusNotFound, "listing not found")
		return nil, false
	}
	return l, true
}

func (h *Handler) loadModifiable(w http.ResponseWriter, r *http.Request, user *auth.AuthUser) (*model.Listing, bool) {
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	l, err := h.store.GetListing(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[listing] GetListing error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if l == nil {
		writeError(w, http.StatusNotFound, "listing not found")
		return nil, false
	}
	if !canModify(user, l) {
		writeError(w, http.StatusForbidden, "not allowed to modify this listing")
		return nil, false
	}
	return l, true
}

func (h *Handler) categoryExists(w http.ResponseWriter, r *http.Request, id string) bool {
	c, err := h.store.GetCategory(r.Context(), id)
	if err != nil {
		log.Printf("[listing] GetCategory error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if c == nil {
		writeError(w, http.StatusBadRequest, "category does not exist")
		return false
	}
	return true
}

func nonNil(listings []*model.Listing) []*model.Listing {
	if listings == nil {
		return []*model.Listing{}
	}
	return listings
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
