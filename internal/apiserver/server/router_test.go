package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/apiserver/auth"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage/dbutil"
	"marketplace/internal/shared/storage/repository"
	"marketplace/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Admin12345"
)

type testServer struct {
	store   *repository.Store
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := repository.Open(dbutil.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, auth.EnsureAdminUser(context.Background(), store, store, adminEmail, adminPassword))

	authCfg := auth.DefaultConfig()
	authCfg.JWTSecret = "test-secret"

	h := NewHandler(Deps{
		Store:           store,
		Auth:            authCfg,
		WhatsAppNumber:  "+55 11 99999-0000",
		DefaultLanguage: "pt",
		Logger:          logging.NewWithWriter(logging.Config{Level: "error"}, io.Discard),
	})
	return &testServer{store: store, handler: h.Router()}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) token(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	require.NotEmpty(t, resp.AccessToken)
	return resp.User.ID, resp.AccessToken
}

func (s *testServer) login(t *testing.T, email, password string) (string, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return s.token(t, rec)
}

func (s *testServer) register(t *testing.T, email, name string) (string, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"email": email, "password": "Secret123", "full_name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return s.token(t, rec)
}

func publicCount(t *testing.T, s *testServer) int {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/v1/listings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Listings []json.RawMessage `json:"listings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return len(resp.Listings)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodOptions, "/api/v1/listings", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestAuthBoundary(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"public listings", http.MethodGet, "/api/v1/listings", http.StatusOK},
		{"public categories", http.MethodGet, "/api/v1/categories", http.StatusOK},
		{"own profile needs token", http.MethodGet, "/api/v1/profile", http.StatusUnauthorized},
		{"create listing needs token", http.MethodPost, "/api/v1/listings", http.StatusUnauthorized},
		{"saved needs token", http.MethodGet, "/api/v1/saved", http.StatusUnauthorized},
		{"admin stats needs token", http.MethodGet, "/api/v1/admin/stats", http.StatusUnauthorized},
		{"site translations public", http.MethodGet, "/api/v1/site/translations/de", http.StatusOK},
		{"site without catalogue", http.MethodGet, "/api/v1/site/properties", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, "", nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRoleComesFromStore(t *testing.T) {
	s := newTestServer(t)
	_, userToken := s.register(t, "bob@example.com", "Bob")
	_, adminToken := s.login(t, adminEmail, adminPassword)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/v1/admin/stats", userToken, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/admin/stats", adminToken, nil).Code)
}

func TestListingLifecycle(t *testing.T) {
	s := newTestServer(t)
	sellerID, sellerToken := s.register(t, "seller@example.com", "Sepp Seller")
	_, adminToken := s.login(t, adminEmail, adminPassword)

	rec := s.do(t, http.MethodPost, "/api/v1/admin/categories", adminToken, map[string]string{"name": "Bikes", "slug": "bikes"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cat model.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))

	rec = s.do(t, http.MethodPost, "/api/v1/listings", sellerToken, map[string]interface{}{
		"title": "Road bike", "description": "Carbon frame, 8 kg", "price": 800,
		"location": "Bern", "category_id": cat.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var l model.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l))
	assert.Equal(t, model.ModerationPending, l.ModerationStatus)

	// 待审核的商品不公开
	assert.Equal(t, 0, publicCount(t, s))
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/listings/"+l.ID, sellerToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/listings/"+l.ID, "", nil).Code)

	rec = s.do(t, http.MethodPatch, "/api/v1/admin/listings/"+l.ID+"/moderation", adminToken, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, publicCount(t, s))

	rec = s.do(t, http.MethodGet, "/api/v1/admin/activities", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var acts struct {
		Activities []*model.AdminActivity `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acts))
	actions := []model.ActivityAction{}
	for _, a := range acts.Activities {
		actions = append(actions, a.Action)
	}
	assert.Contains(t, actions, model.ActionCategoryCreated)
	assert.Contains(t, actions, model.ActionListingModeration)

	// 删除卖家账号后商品随之消失
	rec = s.do(t, http.MethodPost, "/functions/v1/delete-user", adminToken, map[string]string{"userId": sellerID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, publicCount(t, s))

	u, err := s.store.GetUserByID(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/api/v1/listings", "/api/v1/listings"},
		{"/api/v1/listings/abc-123", "/api/v1/listings/{id}"},
		{"/api/v1/listings/abc-123/contact", "/api/v1/listings/{id}/contact"},
		{"/api/v1/users/u1/listings", "/api/v1/users/{id}/listings"},
		{"/api/v1/admin/users/u1/role", "/api/v1/admin/users/{id}/role"},
		{"/api/v1/admin/listings/l1/moderation", "/api/v1/admin/listings/{id}/moderation"},
		{"/api/v1/categories/bikes", "/api/v1/categories/{id}"},
		{"/api/v1/site/translations/de", "/api/v1/site/translations/{lang}"},
		{"/api/v1/uploads/u1/1700000000000-abcd1234.png", "/api/v1/uploads/{key}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.path), tt.path)
	}
}
