package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lnwboom/office-assets/database"
	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
)

func TestUserRepositoryDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "alice", Email: "alice@x.com"}))

	err := repo.Create(ctx, &models.User{Username: "alice", Email: "other@x.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	assert.Equal(t, database.UsernameIndex, repository.DuplicateIndex(err))

	err = repo.Create(ctx, &models.User{Username: "bob", Email: "alice@x.com"})
	assert.Equal(t, database.EmailIndex, repository.DuplicateIndex(err))
}

func TestUserRepositoryListHidesPasswords(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	require.NoError(t, repo.Create(ctx, &models.User{Username: "a", Email: "a@x", PasswordHash: "h", Status: models.UserPending}))
	require.NoError(t, repo.Create(ctx, &models.User{Username: "b", Email: "b@x", PasswordHash: "h", Status: models.UserActive}))

	users, err := repo.List(ctx, repository.UserFilter{Status: models.UserPending})

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a", users[0].Username)
	assert.Empty(t, users[0].PasswordHash)
}

func TestAssetRepositoryListSortsAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewAssetRepository()
	day := func(d int) time.Time { return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC) }

	for i, code := range []string{"B", "C", "A"} {
		require.NoError(t, repo.Create(ctx, &models.Asset{Code: code, PurchaseDate: day(i + 1), CreatedAt: day(10 + i)}))
	}

	assets, err := repo.List(ctx, repository.AssetQuery{SortField: "code", Descending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, codes(assets))

	from, to := day(2), day(3)
	assets, err = repo.List(ctx, repository.AssetQuery{SortField: "purchaseDate", DateField: "purchaseDate", From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, codes(assets))
}

func TestAssetRepositoryConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewAssetRepository()
	asset := &models.Asset{Code: "LT001", Status: models.AssetInUse}
	require.NoError(t, repo.Create(ctx, asset))

	available := models.AssetAvailable
	inUse := models.AssetInUse
	_, err := repo.Update(ctx, asset.ID, repository.AssetUpdate{Status: &inUse, IfStatus: &available})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	holder := primitive.NewObjectID()
	updated, err := repo.Update(ctx, asset.ID, repository.AssetUpdate{CurrentHolder: &holder})
	require.NoError(t, err)
	assert.Equal(t, holder, *updated.CurrentHolder)

	other := primitive.NewObjectID()
	_, err = repo.Update(ctx, asset.ID, repository.AssetUpdate{ClearCurrentHolder: true, IfHolder: &other})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	updated, err = repo.Update(ctx, asset.ID, repository.AssetUpdate{ClearCurrentHolder: true, IfHolder: &holder})
	require.NoError(t, err)
	assert.Nil(t, updated.CurrentHolder)

	_, err = repo.Update(ctx, asset.ID, repository.AssetUpdate{Status: &available, IfHolder: &holder})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAssetRequestRepositoryTransition(t *testing.T) {
	ctx := context.Background()
	repo := NewAssetRequestRepository()
	req := &models.AssetRequest{Status: models.RequestPending}
	require.NoError(t, repo.Create(ctx, req))

	_, err := repo.Transition(ctx, req.ID, models.RequestApproved, repository.RequestTransition{To: models.RequestCompleted})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := repo.Transition(ctx, req.ID, models.RequestPending, repository.RequestTransition{To: models.RequestApproved})
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, got.Status)
}

func TestAuditLogRepositoryPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditLogRepository()
	for _, a := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Insert(ctx, &models.AuditLog{Action: a, EntityType: "asset"}))
	}

	logs, err := repo.List(ctx, repository.AuditFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "three", logs[0].Action)
	assert.Len(t, logs, 2)

	logs, err = repo.List(ctx, repository.AuditFilter{Skip: 5})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func codes(assets []models.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Code
	}
	return out
}
