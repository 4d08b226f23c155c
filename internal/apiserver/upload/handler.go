package upload

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/apiserver/auth"
)

// Uploader 对象存储
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Handler 图片上传处理器
type Handler struct {
	uploader Uploader
	policy   Policy
}

// NewHandler 创建处理器，uploader 为 nil 时上传接口返回 503
func NewHandler(uploader Uploader, policy Policy) *Handler {
	return &Handler{uploader: uploader, policy: policy}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/uploads", h.Upload)
	mux.HandleFunc("DELETE /api/v1/uploads/{key...}", h.Delete)
}

// Upload 上传单张图片
//
// 路由: POST /api/v1/uploads（multipart 字段 file）
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "You must be logged in to upload images")
		return
	}

	maxBytes := h.policy.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	// 额外 1 MiB 留给 multipart 头部，超限文件仍能解析出大小并给出明确错误
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes + 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, err := h.policy.Validate(header.Filename, contentType, header.Size)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "image storage not configured")
		return
	}

	key := ObjectKey(user.ID, ext, time.Now())
	url, err := h.uploader.Upload(r.Context(), key, file, header.Size, contentType)
	if err != nil {
		log.Printf("[upload] Upload %s error: %v", key, err)
		writeError(w, http.StatusBadGateway, "failed to upload image")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key, "url": url})
}

// Delete 删除自己上传的图片
//
// 路由: DELETE /api/v1/uploads/{key...}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	key := r.PathValue("key")
	if !strings.HasPrefix(key, user.ID+"/") && !user.IsAdmin() {
		writeError(w, http.StatusForbidden, "not allowed to delete this image")
		return
	}
	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "image storage not configured")
		return
	}
	if err := h.uploader.Delete(r.Context(), key); err != nil {
		log.Printf("[upload] Delete %s error: %v", key, err)
		writeError(w, http.StatusBadGateway, "failed to delete image")
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
