package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace/internal/apiserver/auth"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage/dbutil"
	"marketplace/internal/shared/storage/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*repository.Store, *http.ServeMux) {
	t.Helper()
	store, err := repository.Open(dbutil.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	now := time.Now().UTC()
	require.NoError(t, store.CreateUser(context.Background(), &model.User{ID: "u1", Email: "u1@example.com",
		PasswordHash: "x", Status: model.UserStatusActive, CreatedAt: now, UpdatedAt: now}))

	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return store, mux
}

func call(mux *http.ServeMux, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req = req.WithContext(auth.WithAuthUser(req.Context(), &auth.AuthUser{ID: userID, Role: model.RoleUser}))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestUpsertAndGet(t *testing.T) {
	_, mux := setup(t)

	rec := call(mux, http.MethodPut, "/api/v1/profile", "u1", map[string]string{"full_name": "A"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(mux, http.MethodPut, "/api/v1/profile", "u1",
		map[string]string{"full_name": " Anna Muster ", "phone": "+41 79 000 00 00", "bio": "Velofan"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p model.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Anna Muster", p.FullName)
	firstID := p.ID

	rec = call(mux, http.MethodPut, "/api/v1/profile", "u1", map[string]string{"full_name": "Anna M."})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, firstID, p.ID, "更新保留原记录")
	assert.Equal(t, "Anna M.", p.FullName)

	rec = call(mux, http.MethodGet, "/api/v1/profile", "u1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGet_HidesPhoneFromOthers(t *testing.T) {
	store, mux := setup(t)
	require.NoError(t, store.UpsertProfile(context.Background(),
		&model.Profile{UserID: "u1", FullName: "Anna", Phone: "+41 79 000 00 00"}))

	rec := call(mux, http.MethodGet, "/api/v1/profiles/u1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "+41")

	rec = call(mux, http.MethodGet, "/api/v1/profiles/u1", "u1", nil)
	assert.Contains(t, rec.Body.String(), "+41")

	rec = call(mux, http.MethodGet, "/api/v1/profiles/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequiresLogin(t *testing.T) {
	_, mux := setup(t)
	assert.Equal(t, http.StatusUnauthorized, call(mux, http.MethodPut, "/api/v1/profile", "", map[string]string{"full_name": "Anna"}).Code)
	assert.Equal(t, http.StatusUnauthorized, call(mux, http.MethodGet, "/api/v1/profile", "", nil).Code)
}
