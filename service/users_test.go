package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
)

func TestActivateRegisteredUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.seedUser(t, "root", "pw", models.RoleAdmin, models.UserActive)
	pending := env.seedUser(t, "paul", "pw", models.RoleUser, models.UserPending)

	_, err := env.auth.Login(ctx, "paul", "pw")
	require.ErrorIs(t, err, ErrAccountPending)

	updated, err := env.userSvc.Update(ctx, admin.Session(), pending.ID.Hex(), UpdateUserInput{Status: strPtr("ACTIVE")})
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, updated.Status)
	assert.Empty(t, updated.PasswordHash)

	_, err = env.auth.Login(ctx, "paul", "pw")
	assert.NoError(t, err)
}

func TestUpdateUserRules(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.seedUser(t, "root", "pw", models.RoleAdmin, models.UserActive)
	user := env.seedUser(t, "quinn", "pw", models.RoleUser, models.UserActive)

	_, err := env.userSvc.Update(ctx, admin.Session(), admin.ID.Hex(), UpdateUserInput{Role: strPtr("USER")})
	assert.ErrorIs(t, err, ErrValidation, "self change")

	_, err = env.userSvc.Update(ctx, admin.Session(), user.ID.Hex(), UpdateUserInput{Role: strPtr("OWNER")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.userSvc.Update(ctx, admin.Session(), user.ID.Hex(), UpdateUserInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.userSvc.Update(ctx, admin.Session(), primitive.NewObjectID().Hex(), UpdateUserInput{Status: strPtr("INACTIVE")})
	assert.ErrorIs(t, err, ErrNotFound)

	promoted, err := env.userSvc.Update(ctx, admin.Session(), user.ID.Hex(), UpdateUserInput{Role: strPtr("ADMIN")})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "rita", "pw", models.RoleUser, models.UserPending)
	env.seedUser(t, "sam", "pw", models.RoleUser, models.UserActive)

	users, err := env.userSvc.List(ctx, "", "PENDING")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "rita", users[0].Username)
	assert.Empty(t, users[0].PasswordHash)

	_, err = env.userSvc.List(ctx, "GOD", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "tom", "pw", models.RoleUser, models.UserActive)
	asset := env.seedAsset(t, "A1", models.AssetAvailable, nil)
	env.seedAsset(t, "A2", models.AssetInUse, nil)
	env.seedAsset(t, "A3", models.AssetBroken, nil)

	_, err := env.requestSv.Create(ctx, user.Session(), CreateRequestInput{AssetID: asset.ID.Hex(), RequestType: "REPORT_ISSUE", IssueDescription: "x"})
	require.NoError(t, err)

	summary, err := env.dashboard.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStats{Total: 3, InUse: 1, Available: 1, Broken: 1}, summary.Assets)
	assert.Equal(t, RequestStats{Total: 1, Pending: 1}, summary.Requests)
}

func TestDashboardSummaryError(t *testing.T) {
	env := newTestEnv(t)
	dash := NewDashboardService(&mockAssetRepository{
		AssetRepository: env.assets,
		countByStatusFunc: func(context.Context) (map[models.AssetStatus]int, error) {
			return nil, errors.New("aggregate failed")
		},
	}, env.requests)

	_, err := dash.Summary(context.Background())
	assert.ErrorContains(t, err, "aggregate failed")
}

func TestAuditRecorder(t *testing.T) {
	ctx := context.Background()

	t.Run("nil recorder is a no-op", func(t *testing.T) {
		var a *AuditRecorder
		assert.NotPanics(t, func() {
			a.record(ctx, adminSession(), auditEvent{action: ActionAssetCreate})
		})
	})

	t.Run("insert failure is logged not broadcast", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		hub := &fakeBroadcaster{}
		a := NewAuditRecorder(failingAuditRepository{}, hub, zap.New(core))

		a.record(ctx, adminSession(), auditEvent{action: ActionAssetDelete, entityID: "x"})

		assert.Empty(t, hub.actions())
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "audit insert failed", logs.All()[0].Message)
	})

	t.Run("list clamps limit", func(t *testing.T) {
		env := newTestEnv(t)
		for i := 0; i < 60; i++ {
			env.audit.record(ctx, adminSession(), auditEvent{action: ActionAssetUpdate, entityType: EntityAsset})
		}

		logs, err := env.audit.List(ctx, repository.AuditFilter{Limit: 1000})
		require.NoError(t, err)
		assert.Len(t, logs, 50)

		logs, err = env.audit.List(ctx, repository.AuditFilter{Limit: 5, Skip: 58})
		require.NoError(t, err)
		assert.Len(t, logs, 2)
	})
}
