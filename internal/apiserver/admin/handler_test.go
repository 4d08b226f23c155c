package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"marketplace/internal/apiserver/activity"
	"marketplace/internal/apiserver/auth"
	"marketplace/internal/apiserver/moderation"
	"marketplace/internal/apiserver/roles"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage/dbutil"
	"marketplace/internal/shared/storage/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStats 内存统计缓存
type memoryStats struct {
	mu          sync.Mutex
	stats       *model.AdminStats
	sets        int
	invalidated int
}

func (m *memoryStats) GetAdminStats(_ context.Context) (*model.AdminStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats, nil
}

func (m *memoryStats) SetAdminStats(_ context.Context, stats *model.AdminStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = stats
	m.sets++
	return nil
}

func (m *memoryStats) InvalidateAdminStats(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = nil
	m.invalidated++
	return nil
}

type env struct {
	store *repository.Store
	stats *memoryStats
	mux   *http.ServeMux
}

var (
	adminUser = &auth.AuthUser{ID: "admin", Role: model.RoleAdmin}
	modUser   = &auth.AuthUser{ID: "mod", Role: model.RoleModerator}
	plainUser = &auth.AuthUser{ID: "alice", Role: model.RoleUser}
)

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := repository.Open(dbutil.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Now().UTC()
	for _, id := range []string{"admin", "mod", "alice"} {
		require.NoError(t, store.CreateUser(ctx, &model.User{ID: id, Email: id + "@example.com", PasswordHash: "x",
			Status: model.UserStatusActive, CreatedAt: now, UpdatedAt: now}))
		require.NoError(t, store.UpsertProfile(ctx, &model.Profile{UserID: id, FullName: id}))
	}
	require.NoError(t, store.UpsertUserRole(ctx, "admin", model.RoleAdmin))
	require.NoError(t, store.UpsertUserRole(ctx, "mod", model.RoleModerator))
	require.NoError(t, store.CreateCategory(ctx, &model.Category{ID: "c1", Name: "Bikes", Slug: "bikes", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.CreateListing(ctx, &model.Listing{
		ID: "l1", UserID: "alice", CategoryID: "c1", Title: "Road bike", Description: "Carbon frame",
		Price: 800, Currency: model.DefaultCurrency, Location: "Bern", ImageURLs: []string{},
		Status: model.ListingStatusActive, ModerationStatus: model.ModerationPending,
		CreatedAt: now, UpdatedAt: now,
	}))

	recorder := activity.NewRecorder(store, nil)
	roleSvc := roles.NewService(store, nil, recorder)
	stats := &memoryStats{}
	mux := http.NewServeMux()
	NewHandler(store, stats, roleSvc, moderation.NewService(store, roleSvc, recorder), recorder).RegisterRoutes(mux)
	return &env{store: store, stats: stats, mux: mux}
}

func (e *env) do(t *testing.T, method, path string, user *auth.AuthUser, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != nil {
		req = req.WithContext(auth.WithAuthUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func TestRoutesRequirePrivilege(t *testing.T) {
	e := newEnv(t)
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/admin/stats"},
		{http.MethodGet, "/api/v1/admin/users"},
		{http.MethodGet, "/api/v1/admin/listings"},
		{http.MethodDelete, "/api/v1/admin/listings/l1"},
	}
	for _, p := range paths {
		rec := e.do(t, p.method, p.path, plainUser, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, p.path)
	}
}

func TestStatsUsesCache(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/admin/stats", modUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats model.AdminStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, model.AdminStats{TotalUsers: 3, TotalListings: 1, ActiveListings: 1, PendingListings: 1, TotalCategories: 1}, stats)
	assert.Equal(t, 1, e.stats.sets)

	// 缓存命中时不再回源
	e.stats.stats = &model.AdminStats{TotalUsers: 99}
	rec = e.do(t, http.MethodGet, "/api/v1/admin/stats", modUser, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 99, stats.TotalUsers)
	assert.Equal(t, 1, e.stats.sets)
}

func TestUsersWithRoles(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/api/v1/admin/users", adminUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Users []*model.UserWithRole `json:"users"`
		Count int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	byUser := map[string]model.RoleName{}
	for _, u := range resp.Users {
		byUser[u.UserID] = u.Role
	}
	assert.Equal(t, model.RoleAdmin, byUser["admin"])
	assert.Equal(t, model.RoleModerator, byUser["mod"])
	assert.Equal(t, model.RoleUser, byUser["alice"])
}

func TestUpdateRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	rec := e.do(t, http.MethodPut, "/api/v1/admin/users/alice/role", adminUser, map[string]string{"role": "moderator"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	role, err := e.store.GetUserRole(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, role)

	acts, err := e.store.ListAdminActivities(ctx, 10)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, model.ActionRoleUpdated, acts[0].Action)
	assert.Equal(t, "alice", acts[0].TargetID)

	rec = e.do(t, http.MethodPut, "/api/v1/admin/users/alice/role", adminUser, map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/v1/admin/users/ghost/role", adminUser, map[string]string{"role": "user"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModerateListing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	rec := e.do(t, http.MethodPatch, "/api/v1/admin/listings/l1/moderation", modUser, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var l model.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l))
	assert.Equal(t, model.ModerationApproved, l.ModerationStatus)
	assert.Equal(t, 1, e.stats.invalidated)

	stored, err := e.store.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, model.ModerationApproved, stored.ModerationStatus)
	require.NotNil(t, stored.ModeratedBy)
	assert.Equal(t, "mod", *stored.ModeratedBy)

	tests := []struct {
		name   string
		id     string
		status string
		want   int
	}{
		{"invalid status", "l1", "maybe", http.StatusBadRequest},
		{"missing listing", "nope", "rejected", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPatch, "/api/v1/admin/listings/"+tt.id+"/moderation", modUser, map[string]string{"status": tt.status})
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestListingsFilter(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/admin/listings?moderation=pending", adminUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	rec = e.do(t, http.MethodGet, "/api/v1/admin/listings?moderation=approved", adminUser, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)

	rec = e.do(t, http.MethodGet, "/api/v1/admin/listings?moderation=bogus", adminUser, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteListing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	rec := e.do(t, http.MethodDelete, "/api/v1/admin/listings/l1", adminUser, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	l, err := e.store.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Nil(t, l)

	acts, err := e.store.ListAdminActivities(ctx, 10)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, model.ActionListingDeleted, acts[0].Action)

	rec = e.do(t, http.MethodDelete, "/api/v1/admin/listings/l1", adminUser, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
