package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace/internal/apiserver/activity"
	"marketplace/internal/apiserver/auth"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage/dbutil"
	"marketplace/internal/shared/storage/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	store *repository.Store
	mux   *http.ServeMux
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := repository.Open(dbutil.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Now().UTC()
	for _, id := range []string{"seller", "buyer", "admin"} {
		require.NoError(t, store.CreateUser(ctx, &model.User{ID: id, Email: id + "@example.com", PasswordHash: "x",
			Status: model.UserStatusActive, CreatedAt: now, UpdatedAt: now}))
	}
	require.NoError(t, store.UpsertProfile(ctx, &model.Profile{UserID: "seller", FullName: "Sepp", Phone: "+41 79 123 45 67"}))
	require.NoError(t, store.CreateCategory(ctx, &model.Category{ID: "c1", Name: "Bikes", Slug: "bikes", CreatedAt: now, UpdatedAt: now}))

	mux := http.NewServeMux()
	NewHandler(store, activity.NewRecorder(store, nil), 0).RegisterRoutes(mux)
	return &env{store: store, mux: mux}
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

var (
	seller = &auth.AuthUser{ID: "seller", Role: model.RoleUser}
	buyer  = &auth.AuthUser{ID: "buyer", Role: model.RoleUser}
	mod    = &auth.AuthUser{ID: "mod", Role: model.RoleModerator}
	admin  = &auth.AuthUser{ID: "admin", Role: model.RoleAdmin}
)

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"title": "Road bike", "description": "Carbon frame, 8 kg", "price": 800,
		"location": "Bern", "category_id": "c1", "image_urls": []string{"https://img/1.png"},
	}
}

func (e *env) create(t *testing.T) *model.Listing {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/listings", seller, validBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var l model.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l))
	return &l
}

func (e *env) publicIDs(t *testing.T) []string {
	t.Helper()
	rec := e.do(t, http.MethodGet, "/api/v1/listings", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Listings []*model.Listing `json:"listings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	ids := []string{}
	for _, l := range resp.Listings {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestCreate_Defaults(t *testing.T) {
	e := newEnv(t)
	l := e.create(t)
	assert.Equal(t, model.ListingStatusActive, l.Status)
	assert.Equal(t, model.ModerationPending, l.ModerationStatus)
	assert.Equal(t, model.DefaultCurrency, l.Currency)
	assert.Equal(t, "seller", l.UserID)
}

func TestCreate_Validation(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name   string
		mutate func(b map[string]interface{})
		status int
	}{
		{"标题过短", func(b map[string]interface{}) { b["title"] = "ab" }, http.StatusBadRequest},
		{"描述过短", func(b map[string]interface{}) { b["description"] = "short" }, http.StatusBadRequest},
		{"负价格", func(b map[string]interface{}) { b["price"] = -1 }, http.StatusBadRequest},
		{"地点过短", func(b map[string]interface{}) { b["location"] = "B" }, http.StatusBadRequest},
		{"缺少分类", func(b map[string]interface{}) { b["category_id"] = "" }, http.StatusBadRequest},
		{"分类不存在", func(b map[string]interface{}) { b["category_id"] = "nope" }, http.StatusBadRequest},
		{"图片过多", func(b map[string]interface{}) {
			b["image_urls"] = []string{"1", "2", "3", "4", "5", "6"}
		}, http.StatusBadRequest},
		{"五张图片", func(b map[string]interface{}) {
			b["image_urls"] = []string{"1", "2", "3", "4", "5"}
		}, http.StatusCreated},
		{"免费", func(b map[string]interface{}) { b["price"] = 0 }, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validBody()
			tt.mutate(body)
			rec := e.do(t, http.MethodPost, "/api/v1/listings", seller, body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec := e.do(t, http.MethodPost, "/api/v1/listings", nil, validBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVisibilityFollowsModeration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.create(t)
	path := "/api/v1/listings/" + l.ID

	assert.NotContains(t, e.publicIDs(t), l.ID)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, path, buyer, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, path, seller, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, path, mod, nil).Code)

	require.NoError(t, e.store.UpdateModerationStatus(ctx, l.ID, model.ModerationApproved, "mod", time.Now()))
	assert.Contains(t, e.publicIDs(t), l.ID)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, path, nil, nil).Code)

	require.NoError(t, e.store.UpdateModerationStatus(ctx, l.ID, model.ModerationPending, "mod", time.Now()))
	assert.NotContains(t, e.publicIDs(t), l.ID)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, path, seller, nil).Code, "发布者仍可见")

	rec := e.do(t, http.MethodGet, "/api/v1/users/seller/listings", seller, nil)
	assert.Contains(t, rec.Body.String(), l.ID)
	rec = e.do(t, http.MethodGet, "/api/v1/users/seller/listings", buyer, nil)
	assert.NotContains(t, rec.Body.String(), l.ID)
	rec = e.do(t, http.MethodGet, "/api/v1/users/seller/listings", nil, nil)
	assert.NotContains(t, rec.Body.String(), l.ID)
}

func TestListByUser_PrivilegedSeesSameAsDetail(t *testing.T) {
	e := newEnv(t)
	l := e.create(t)

	for _, viewer := range []*auth.AuthUser{mod, admin} {
		require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/listings/"+l.ID, viewer, nil).Code)

		rec := e.do(t, http.MethodGet, "/api/v1/users/seller/listings", viewer, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Listings []*model.Listing `json:"listings"`
			Count    int              `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Count, viewer.Role)
		assert.Equal(t, l.ID, resp.Listings[0].ID)
		assert.Equal(t, model.ModerationPending, resp.Listings[0].ModerationStatus)
	}
}

func TestUpdate_KeepsModeration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.create(t)
	require.NoError(t, e.store.UpdateModerationStatus(ctx, l.ID, model.ModerationApproved, "mod", time.Now()))

	body := validBody()
	body["title"] = "Road bike, barely used"
	body["status"] = "sold"

	rec := e.do(t, http.MethodPut, "/api/v1/listings/"+l.ID, buyer, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/v1/listings/"+l.ID, seller, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := e.store.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Road bike, barely used", got.Title)
	assert.Equal(t, model.ListingStatusSold, got.Status)
	assert.Equal(t, model.ModerationApproved, got.ModerationStatus)

	body["status"] = "archived"
	rec = e.do(t, http.MethodPut, "/api/v1/listings/"+l.ID, seller, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDelete_OwnerOrAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	l := e.create(t)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodDelete, "/api/v1/listings/"+l.ID, buyer, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodDelete, "/api/v1/listings/"+l.ID, mod, nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/v1/listings/"+l.ID, seller, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/api/v1/listings/"+l.ID, seller, nil).Code)

	activities, err := e.store.ListAdminActivities(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, activities, "本人删除不记审计")

	l = e.create(t)
	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/v1/listings/"+l.ID, admin, nil).Code)
	activities, err = e.store.ListAdminActivities(ctx, 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, model.ActionListingDeleted, activities[0].Action)
}

func TestContact(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.create(t)
	require.NoError(t, e.store.UpdateModerationStatus(ctx, l.ID, model.ModerationApproved, "mod", time.Now()))

	rec := e.do(t, http.MethodGet, "/api/v1/listings/"+l.ID+"/contact", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://wa.me/41791234567?text=Hallo%21%20Ich%20interessiere%20mich%20f%C3%BCr%20Ihre%20Anzeige%3A%20Road%20bike", resp["url"])
	assert.Equal(t, "Sepp", resp["seller"])
}

func TestList_SearchAndCategory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.create(t)
	require.NoError(t, e.store.UpdateModerationStatus(ctx, l.ID, model.ModerationApproved, "mod", time.Now()))

	rec := e.do(t, http.MethodGet, "/api/v1/listings?q=CARBON", nil, nil)
	assert.Contains(t, rec.Body.String(), l.ID)
	rec = e.do(t, http.MethodGet, "/api/v1/listings?q=sofa", nil, nil)
	assert.NotContains(t, rec.Body.String(), l.ID)
	rec = e.do(t, http.MethodGet, "/api/v1/listings?category=other", nil, nil)
	assert.JSONEq(t, `{"listings":[],"count":0}`, rec.Body.String())
}
