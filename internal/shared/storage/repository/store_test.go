// Package repository SQLite 集成测试
//
// 使用 SQLite 内存数据库验证 repository 层存储接口。
package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"
	"marketplace/internal/shared/storage/dbutil"
	sqlitedriver "marketplace/internal/shared/storage/driver/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore 创建用于测试的 SQLite 内存数据库 Store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, s *Store, id, email, name string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &model.User{
		ID: id, Email: email, PasswordHash: "hash", Status: model.UserStatusActive,
		CreatedAt: baseTime, UpdatedAt: baseTime,
	}))
	require.NoError(t, s.UpsertProfile(ctx, &model.Profile{UserID: id, FullName: name}))
}

func seedCategory(t *testing.T, s *Store, id, slug string) {
	t.Helper()
	require.NoError(t, s.CreateCategory(context.Background(), &model.Category{
		ID: id, Name: "Cat " + slug, Slug: slug, CreatedAt: baseTime, UpdatedAt: baseTime,
	}))
}

func seedListing(t *testing.T, s *Store, id, userID, categoryID, title string, offset time.Duration) *model.Listing {
	t.Helper()
	l := &model.Listing{
		ID: id, Title: title, Description: "a long enough description", Price: 100,
		Currency: model.DefaultCurrency, Location: "Zürich", CategoryID: categoryID,
		ImageURLs: []string{"https://img/1.png"}, UserID: userID,
		Status: model.ListingStatusActive, ModerationStatus: model.ModerationPending,
		CreatedAt: baseTime.Add(offset), UpdatedAt: baseTime.Add(offset),
	}
	require.NoError(t, s.CreateListing(context.Background(), l))
	return l
}

// ============================================================================
// Open / Dialect
// ============================================================================

func TestOpen(t *testing.T) {
	s, err := Open(dbutil.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, dbutil.DriverSQLite, s.Dialect().DriverType())

	_, err = Open(dbutil.DriverType("oracle"), "x")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND name = ?",
		d.Rebind("SELECT * FROM t WHERE id = $1 AND name = $2"))
}

// ============================================================================
// User / Profile
// ============================================================================

func TestUser_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "Anna")

	u, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)

	missing, err := s.GetUserByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = s.CreateUser(ctx, &model.User{ID: "u2", Email: "a@example.com", PasswordHash: "x",
		Status: model.UserStatusActive, CreatedAt: baseTime, UpdatedAt: baseTime})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	require.NoError(t, s.UpdateUserPassword(ctx, "u1", "newhash"))
	u, _ = s.GetUserByID(ctx, "u1")
	assert.Equal(t, "newhash", u.PasswordHash)
	assert.ErrorIs(t, s.UpdateUserPassword(ctx, "nope", "x"), storage.ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestProfile_UpsertKeepsIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "Anna")

	first, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, first)

	require.NoError(t, s.UpsertProfile(ctx, &model.Profile{UserID: "u1", FullName: "Anna Muster", Phone: "+41"}))
	p, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, p.ID)
	assert.Equal(t, "Anna Muster", p.FullName)
	assert.Equal(t, "+41", p.Phone)

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	require.NoError(t, s.DeleteProfileByUser(ctx, "u1"))
	p, err = s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

// ============================================================================
// Listing 可见性
// ============================================================================

func TestListing_PublicVisibilityFollowsModeration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "Anna")
	seedCategory(t, s, "c1", "bikes")
	seedListing(t, s, "l1", "u1", "c1", "Road bike", 0)

	public := func() []*model.Listing {
		out, err := s.ListPublicListings(ctx, model.ListingFilter{})
		require.NoError(t, err)
		return out
	}

	assert.Empty(t, public(), "待审核商品不公开")

	require.NoError(t, s.UpdateModerationStatus(ctx, "l1", model.ModerationApproved, "admin1", baseTime))
	got := public()
	require.Len(t, got, 1)
	assert.Equal(t, "Cat bikes", got[0].CategoryName)
	assert.Equal(t, "Anna", got[0].SellerName)
	require.NotNil(t, got[0].ModeratedBy)
	assert.Equal(t, "admin1", *got[0].ModeratedBy)
	require.NotNil(t, got[0].ModeratedAt)
	assert.True(t, got[0].ModeratedAt.Equal(baseTime))
	assert.Equal(t, []string{"https://img/1.png"}, got[0].ImageURLs)

	require.NoError(t, s.UpdateModerationStatus(ctx, "l1", model.ModerationPending, "admin1", baseTime.Add(time.Minute)))
	assert.Empty(t, public())

	own, err := s.ListListingsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, model.ModerationPending, own[0].ModerationStatus)

	assert.ErrorIs(t, s.UpdateModerationStatus(ctx, "nope", model.ModerationApproved, "a", baseTime), storage.ErrNotFound)
}

func TestListing_InactiveHiddenEvenWhenApproved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "Anna")
	seedCategory(t, s, "c1", "bikes")
	l := seedListing(t, s, "l1", "u1", "c1", "Road bike", 0)
	require.NoError(t, s.UpdateModerationStatus(ctx, "l1", model.ModerationApproved, "admin1", baseTime))

	l.Status = model.ListingStatusSold
	require.NoError(t, s.UpdateListing(ctx, l))

	out, err := s.ListPublicListings(ctx, model.ListingFilter{})
	require.NoError(t, err)
	assert.Empty(t, out)

	got, err := s.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, model.ListingStatusSold, got.Status)
	assert.Equal(t, model.ModerationApproved, got.ModerationStatus, "编辑不重置审核状态")
}

func TestListing_FilterSearchAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "Anna")
	seedCategory(t, s, "c1", "bikes")
	seedCategory(t, s, "c2", "books")
	seedListing(t, s, "l1", "u1", "c1", "Old Road Bike", 0)
	seedListing(t, s, "l2", "u1", "c1", "Mountain bike", time.Hour)
	seedListing(t, s, "l3", "u1", "c2", "Go in 100% Action", 2*time.Hour)
	for _, id := range []string{"l1", "l2", "l3"} {
		require.NoError(t, s.UpdateModerationStatus(ctx, id, model.ModerationApproved, "admin1", baseTime))
	}

	all, err := s.ListPublicListings(ctx, model.ListingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "l3", all[0].ID, "最新的在前")

	bikes, err := s.ListPublicListings(ctx, model.ListingFilter{CategoryID: "c1"})
	require.NoError(t, err)
	assert.Len(t, bikes, 2)

	found, err := s.ListPublicListings(ctx, model.ListingFilter{Query: "BIKE"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	percent, err := s.ListPublicListings(ctx, model.ListingFilter{Query: "100%"})
	require.NoError(t, err)
	require.Len(t, percent, 1)
	assert.Equal(t, "l3", percent[0].ID)

	page, err := s.ListPublicListings(ctx, model.ListingFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "l2", page[0].ID)

	byLocation, err := s.ListPublicListings(ctx, model.ListingFilter{Query: "zürich"})
	require.NoError(t, err)
	assert.Len(t, byLocation, 3)
}

func TestListing_DeleteAndMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "Anna")
	seedCategory(t, s, "c1", "bikes")
	seedListing(t, s, "l1", "u1", "c1", "Road bike", 0)

	got, err := s.GetListing(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.DeleteListing(ctx, "l1"))
	assert.ErrorIs(t, s.DeleteListing(ctx, "l1"), storage.ErrNotFound)
}

// ============================================================================
// Category
// ============================================================================

func TestCategory_DeleteBlockedWhileReferenced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "Anna")
	seedCategory(t, s, "c1", "bikes")
	seedListing(t, s, "l1", "u1", "c1", "Road bike", 0)

	n, err := s.CountListingsInCategory(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, s.DeleteCategory(ctx, "c1"), storage.ErrCategoryInUse)
	c, err := s.GetCategory(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, c)

	require.NoError(t, s.DeleteListing(ctx, "l1"))
	require.NoError(t, s.DeleteCategory(ctx, "c1"))
	assert.ErrorIs(t, s.DeleteCategory(ctx, "c1"), storage.ErrNotFound)
}

func TestCategory_SlugUniqueAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCategory(t, s, "c1", "bikes")

	err := s.CreateCategory(ctx, &model.Category{ID: "c2", Name: "Other", Slug: "bikes",
		CreatedAt: baseTime, UpdatedAt: baseTime})
	assert.True(t, errors.Is(err, storage.ErrDuplicate))

	c, err := s.GetCategoryBySlug(ctx, "bikes")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "c1", c.ID)

	c.Name = "Bicycles"
	require.NoError(t, s.UpdateCategory(ctx, c))
	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bicycles", list[0].Name)
}

// ============================================================================
// Saved listings
// ============================================================================

func TestSaved_IdempotentAndCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "Anna")
	seedUser(t, s, "u2", "b@example.com", "Ben")
	seedCategory(t, s, "c1", "bikes")
	seedListing(t, s, "l1", "u1", "c1", "Road bike", 0)

	require.NoError(t, s.SaveListing(ctx, &model.SavedListing{UserID: "u2", ListingID: "l1"}))
	require.NoError(t, s.SaveListing(ctx, &model.SavedListing{UserID: "u2", ListingID: "l1"}))

	saved, err := s.ListSavedListings(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.NotNil(t, saved[0].Listing)
	assert.Equal(t, "Road bike", saved[0].Listing.Title)

	ok, err := s.IsListingSaved(ctx, "u2", "l1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.UnsaveListing(ctx, "u2", "l1"))
	require.NoError(t, s.UnsaveListing(ctx, "u2", "l1"))
	ok, _ = s.IsListingSaved(ctx, "u2", "l1")
	assert.False(t, ok)

	require.NoError(t, s.SaveListing(ctx, &model.SavedListing{UserID: "u2", ListingID: "l1"}))
	require.NoError(t, s.DeleteListing(ctx, "l1"))
	saved, err = s.ListSavedListings(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, saved, "删除商品级联删除收藏")
}

// ============================================================================
// Roles / Activities / Stats
// ============================================================================

func TestRole_DefaultAndReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "Anna")

	role, err := s.GetUserRole(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, role)

	require.NoError(t, s.UpsertUserRole(ctx, "u1", model.RoleModerator))
	require.NoError(t, s.UpsertUserRole(ctx, "u1", model.RoleAdmin))
	role, err = s.GetUserRole(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role)

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM user_roles WHERE user_id = ?`, "u1").Scan(&n))
	assert.Equal(t, 1, n, "每个用户只有一条角色记录")

	require.NoError(t, s.DeleteUserRoles(ctx, "u1"))
	role, _ = s.GetUserRole(ctx, "u1")
	assert.Equal(t, model.RoleUser, role)
}

func TestActivity_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, action := range []model.ActivityAction{model.ActionCategoryCreated, model.ActionRoleUpdated, model.ActionListingDeleted} {
		a := model.NewAdminActivity("", "admin1", action, model.TargetCategory, "t", map[string]int{"n": i})
		a.CreatedAt = baseTime.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.CreateAdminActivity(ctx, a))
	}

	list, err := s.ListAdminActivities(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.ActionListingDeleted, list[0].Action)
	assert.JSONEq(t, `{"n":2}`, string(list[0].Details))
	assert.Equal(t, model.ActionRoleUpdated, list[1].Action)
}

func TestStats_CountsAndUsersWithRoles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "Anna")
	seedUser(t, s, "u2", "b@example.com", "Ben")
	seedCategory(t, s, "c1", "bikes")
	seedListing(t, s, "l1", "u1", "c1", "Road bike", 0)
	l2 := seedListing(t, s, "l2", "u1", "c1", "City bike", time.Minute)
	require.NoError(t, s.UpdateModerationStatus(ctx, "l1", model.ModerationApproved, "admin1", baseTime))
	l2.Status = model.ListingStatusInactive
	require.NoError(t, s.UpdateListing(ctx, l2))
	require.NoError(t, s.UpsertUserRole(ctx, "u2", model.RoleAdmin))

	stats, err := s.GetAdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.AdminStats{
		TotalUsers: 2, TotalListings: 2, ActiveListings: 1, PendingListings: 1, TotalCategories: 1,
	}, *stats)

	users, err := s.ListUsersWithRoles(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	roles := map[string]model.RoleName{}
	for _, u := range users {
		roles[u.Email] = u.Role
	}
	assert.Equal(t, model.RoleUser, roles["a@example.com"])
	assert.Equal(t, model.RoleAdmin, roles["b@example.com"])
}

// ============================================================================
// 删除用户的依赖顺序
// ============================================================================

func TestDeleteUser_BlockedByDependents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com", "Anna")
	seedCategory(t, s, "c1", "bikes")
	seedListing(t, s, "l1", "u1", "c1", "Road bike", 0)
	require.NoError(t, s.UpsertUserRole(ctx, "u1", model.RoleModerator))

	assert.Error(t, s.DeleteUser(ctx, "u1"), "仍有依赖记录时外键拒绝删除")

	require.NoError(t, s.DeleteSavedListingsByUser(ctx, "u1"))
	require.NoError(t, s.DeleteListingsByUser(ctx, "u1"))
	require.NoError(t, s.DeleteUserRoles(ctx, "u1"))
	require.NoError(t, s.DeleteProfileByUser(ctx, "u1"))
	require.NoError(t, s.DeleteUser(ctx, "u1"))

	u, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, u)
}
