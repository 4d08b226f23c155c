package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"

	"github.com/google/uuid"
)

// Store 认证所需的存储接口
type Store interface {
	storage.UserStore
	storage.ProfileStore
}

// Handler 认证 HTTP 处理器
type Handler struct {
	store Store
	roles RoleResolver
	cfg   Config
}

// NewHandler 创建认证处理器
func NewHandler(store Store, roles RoleResolver, cfg Config) *Handler {
	return &Handler{store: store, roles: roles, cfg: cfg}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/register", h.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.Refresh)
	mux.HandleFunc("POST /api/v1/auth/password-strength", h.Strength)
	mux.HandleFunc("GET /api/v1/auth/me", h.Me)
	mux.HandleFunc("PUT /api/v1/auth/password", h.ChangePassword)
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type userView struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Status   string         `json:"status"`
	Role     model.RoleName `json:"role"`
	Profile  *model.Profile `json:"profile,omitempty"`
	JoinedAt time.Time      `json:"created_at"`
}

type authResponse struct {
	User         *userView `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// ============================================================================
// Handlers
// ============================================================================

// Register 用户注册：创建身份记录和资料
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		writeError(w, http.StatusBadRequest, "email, password, full_name are required")
		return
	}
	if !isValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if err := ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len([]rune(req.FullName)) < 2 {
		writeError(w, http.StatusBadRequest, "full_name must be at least 2 characters")
		return
	}

	existing, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[auth.register] GetUserByEmail error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	user, profile, err := createAccount(r.Context(), h.store, req.Email, req.Password, req.FullName)
	if errors.Is(err, storage.ErrDuplicate) {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		log.Printf("[auth.register] createAccount error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	resp, err := h.issueTokens(user, profile, model.RoleUser)
	if err != nil {
		log.Printf("[auth.register] issue tokens error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Printf("[auth] User registered: %s (%s)", user.Email, user.ID)
	writeJSON(w, http.StatusCreated, resp)
}

// Login 用户登录
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[auth.login] GetUserByEmail error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || !CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if user.Status == model.UserStatusDisabled {
		writeError(w, http.StatusForbidden, "account is disabled")
		return
	}

	profile, _ := h.store.GetProfile(r.Context(), user.ID)
	resp, err := h.issueTokens(user, profile, h.roleOf(r.Context(), user.ID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Printf("[auth] User logged in: %s", user.Email)
	writeJSON(w, http.StatusOK, resp)
}

// Refresh 刷新访问令牌
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	claims, err := ParseToken(h.cfg, req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	if claims.Type != tokenTypeRefresh {
		writeError(w, http.StatusUnauthorized, "invalid token type")
		return
	}

	// 查询用户确保仍然存在且有效
	user, err := h.store.GetUserByID(r.Context(), claims.Subject)
	if err != nil || user == nil {
		writeError(w, http.StatusUnauthorized, "user not found")
		return
	}
	if user.Status == model.UserStatusDisabled {
		writeError(w, http.StatusForbidden, "account is disabled")
		return
	}

	accessToken, err := GenerateAccessToken(h.cfg, user.ID, user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": accessToken,
	})
}

// Strength 密码强度评估
func (h *Handler) Strength(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	score, label := PasswordStrength(req.Password)
	writeJSON(w, http.StatusOK, map[string]interface{}{"score": score, "label": label})
}

// Me 获取当前用户信息（含角色与资料）
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	authUser := GetAuthUser(r.Context())
	if authUser == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), authUser.ID)
	if err != nil || user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	profile, err := h.store.GetProfile(r.Context(), user.ID)
	if err != nil {
		log.Printf("[auth.me] GetProfile error: %v", err)
	}

	writeJSON(w, http.StatusOK, newUserView(user, profile, authUser.Role))
}

// ChangePassword 修改密码
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	authUser := GetAuthUser(r.Context())
	if authUser == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "old_password and new_password are required")
		return
	}
	if err := ValidatePassword(req.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.GetUserByID(r.Context(), authUser.ID)
	if err != nil || user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if !CheckPassword(req.OldPassword, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "incorrect old password")
		return
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.store.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *Handler) roleOf(ctx context.Context, userID string) model.RoleName {
	if h.roles == nil {
		return model.RoleUser
	}
	role, err := h.roles.RoleOf(ctx, userID)
	if err != nil {
		log.Printf("[auth] resolve role for %s error: %v", userID, err)
		return model.RoleUser
	}
	return role
}

func (h *Handler) issueTokens(user *model.User, profile *model.Profile, role model.RoleName) (*authResponse, error) {
	accessToken, err := GenerateAccessToken(h.cfg, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := GenerateRefreshToken(h.cfg, user.ID)
	if err != nil {
		return nil, err
	}
	return &authResponse{
		User:         newUserView(user, profile, role),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func newUserView(user *model.User, profile *model.Profile, role model.RoleName) *userView {
	return &userView{
		ID:       user.ID,
		Email:    user.Email,
		Status:   string(user.Status),
		Role:     role,
		Profile:  profile,
		JoinedAt: user.CreatedAt,
	}
}

// createAccount 创建身份记录与资料；资料写入失败时删除刚创建的身份记录
func createAccount(ctx context.Context, store Store, email, password, fullName string) (*model.User, *model.Profile, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Status:       model.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}

	profile := &model.Profile{UserID: user.ID, FullName: fullName}
	if err := store.UpsertProfile(ctx, profile); err != nil {
		if delErr := store.DeleteUser(ctx, user.ID); delErr != nil {
			log.Printf("[auth] rollback user %s error: %v", user.ID, delErr)
		}
		return nil, nil, fmt.Errorf("create profile: %w", err)
	}
	return user, profile, nil
}

// ============================================================================
// Admin Bootstrap
// ============================================================================

// EnsureAdminUser 确保管理员用户存在并持有 admin 角色（启动时调用）
func EnsureAdminUser(ctx context.Context, store Store, roles storage.RoleStore, adminEmail, adminPassword string) error {
	if adminEmail == "" || adminPassword == "" {
		return nil
	}
	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))

	existing, err := store.GetUserByEmail(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}

	userID := ""
	if existing != nil {
		userID = existing.ID
		log.Printf("[auth] Admin user already exists: %s (%s)", adminEmail, userID)
	} else {
		user, _, err := createAccount(ctx, store, adminEmail, adminPassword, "Admin")
		if err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		userID = user.ID
		log.Printf("[auth] Created admin user: %s (%s)", adminEmail, userID)
	}

	role, err := roles.GetUserRole(ctx, userID)
	if err != nil {
		return fmt.Errorf("check admin role: %w", err)
	}
	if role != model.RoleAdmin {
		log.Printf("[auth] Upgrading user %s to admin role", adminEmail)
		if err := roles.UpsertUserRole(ctx, userID, model.RoleAdmin); err != nil {
			return fmt.Errorf("grant admin role: %w", err)
		}
	}
	return nil
}

// ============================================================================
// 工具函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
