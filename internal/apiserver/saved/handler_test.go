package saved

import (
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

	ctx := context.Background()
	now := time.Now().UTC()
	for _, id := range []string{"seller", "buyer"} {
		require.NoError(t, store.CreateUser(ctx, &model.User{ID: id, Email: id + "@example.com", PasswordHash: "x",
			Status: model.UserStatusActive, CreatedAt: now, UpdatedAt: now}))
	}
	require.NoError(t, store.CreateCategory(ctx, &model.Category{ID: "c1", Name: "Bikes", Slug: "bikes", CreatedAt: now, UpdatedAt: now}))
	for _, l := range []struct {
		id         string
		moderation model.ModerationStatus
	}{{"public", model.ModerationApproved}, {"pending", model.ModerationPending}} {
		require.NoError(t, store.CreateListing(ctx, &model.Listing{
			ID: l.id, Title: "Road bike", Description: "Fast and light bike", Currency: model.DefaultCurrency,
			Location: "Bern", CategoryID: "c1", UserID: "seller", Status: model.ListingStatusActive,
			ModerationStatus: l.moderation, CreatedAt: now, UpdatedAt: now,
		}))
	}

	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return store, mux
}

func call(mux *http.ServeMux, method, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req = req.WithContext(auth.WithAuthUser(req.Context(), &auth.AuthUser{ID: userID, Role: model.RoleUser}))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func savedCount(t *testing.T, mux *http.ServeMux, userID string) int {
	t.Helper()
	rec := call(mux, http.MethodGet, "/api/v1/saved", userID)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Count
}

func TestSaveIsIdempotent(t *testing.T) {
	_, mux := setup(t)

	assert.Equal(t, http.StatusOK, call(mux, http.MethodPut, "/api/v1/saved/public", "buyer").Code)
	assert.Equal(t, http.StatusOK, call(mux, http.MethodPut, "/api/v1/saved/public", "buyer").Code)
	assert.Equal(t, 1, savedCount(t, mux, "buyer"))

	rec := call(mux, http.MethodGet, "/api/v1/saved/public", "buyer")
	assert.JSONEq(t, `{"listing_id":"public","saved":true}`, rec.Body.String())
}

func TestSaveThenUnsave(t *testing.T) {
	_, mux := setup(t)

	require.Equal(t, http.StatusOK, call(mux, http.MethodPut, "/api/v1/saved/public", "buyer").Code)
	assert.Equal(t, http.StatusNoContent, call(mux, http.MethodDelete, "/api/v1/saved/public", "buyer").Code)
	assert.Equal(t, 0, savedCount(t, mux, "buyer"))

	rec := call(mux, http.MethodGet, "/api/v1/saved/public", "buyer")
	assert.JSONEq(t, `{"listing_id":"public","saved":false}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, call(mux, http.MethodDelete, "/api/v1/saved/public", "buyer").Code, "未收藏时取消同样成功")
}

func TestSaveHiddenListing(t *testing.T) {
	_, mux := setup(t)

	assert.Equal(t, http.StatusNotFound, call(mux, http.MethodPut, "/api/v1/saved/pending", "buyer").Code)
	assert.Equal(t, http.StatusOK, call(mux, http.MethodPut, "/api/v1/saved/pending", "seller").Code)
	assert.Equal(t, http.StatusNotFound, call(mux, http.MethodPut, "/api/v1/saved/missing", "buyer").Code)
	assert.Equal(t, http.StatusUnauthorized, call(mux, http.MethodPut, "/api/v1/saved/public", "").Code)
}
