package userdeletion

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"marketplace/internal/apiserver/auth"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

// 错误响应体沿用函数约定的文案，状态码统一 400
var errorMessages = map[error]string{
	ErrInsufficientPrivileges: "Insufficient privileges",
	ErrUserIDRequired:         "User ID is required",
	ErrUserNotFound:           "User not found",
	ErrIdentityDelete:         "Failed to delete user from authentication system",
}

// Handler 删除用户函数
type Handler struct {
	svc     *Service
	authCfg auth.Config
}

// NewHandler 创建处理器
func NewHandler(svc *Service, authCfg auth.Config) *Handler {
	return &Handler{svc: svc, authCfg: authCfg}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("OPTIONS /functions/v1/delete-user", h.Preflight)
	mux.HandleFunc("POST /functions/v1/delete-user", h.Delete)
}

type deleteUserRequest struct {
	UserID string `json:"userId"`
}

// Preflight CORS 预检
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusOK)
}

// Delete 删除用户
//
// 路由: POST /functions/v1/delete-user
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	if r.Header.Get("Authorization") == "" {
		writeError(w, "Missing authorization header")
		return
	}
	claims, err := auth.ParseAccessToken(h.authCfg, auth.BearerToken(r))
	if err != nil {
		writeError(w, "Invalid authentication")
		return
	}

	// 请求体解析失败按缺少 userId 处理，权限校验优先
	var req deleteUserRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if _, err := h.svc.Delete(r.Context(), claims.Subject, req.UserID); err != nil {
		log.Printf("[userdeletion] delete %s by %s error: %v", req.UserID, claims.Subject, err)
		writeError(w, messageFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User deleted successfully",
	})
}

func messageFor(err error) string {
	for target, msg := range errorMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return "An unexpected error occurred"
}

func setCORS(w http.ResponseWriter) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}
