package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
	"github.com/lnwboom/office-assets/repository/memory"
)

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type fakeIssuer struct {
	issued []models.Session
	err    error
}

func (f *fakeIssuer) Issue(s models.Session) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	f.issued = append(f.issued, s)
	return "token-" + s.ID, fixedNow.Add(time.Hour), nil
}

type published struct {
	entry models.AuditLog
	owner string
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []published
}

func (f *fakeBroadcaster) Publish(entry *models.AuditLog, owner string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{entry: *entry, owner: owner})
}

func (f *fakeBroadcaster) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.entry.Action
	}
	return out
}

// mockUserRepository overrides selected calls of an in-memory repository.
type mockUserRepository struct {
	repository.UserRepository
	createFunc          func(ctx context.Context, user *models.User) error
	updateLastLoginFunc func(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return m.UserRepository.Create(ctx, user)
}

func (m *mockUserRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	if m.updateLastLoginFunc != nil {
		return m.updateLastLoginFunc(ctx, id, at)
	}
	return m.UserRepository.UpdateLastLogin(ctx, id, at)
}

type mockAssetRepository struct {
	repository.AssetRepository
	countByStatusFunc func(ctx context.Context) (map[models.AssetStatus]int, error)
	updateFunc        func(ctx context.Context, id primitive.ObjectID, u repository.AssetUpdate) (*models.Asset, error)
}

func (m *mockAssetRepository) Update(ctx context.Context, id primitive.ObjectID, u repository.AssetUpdate) (*models.Asset, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, u)
	}
	return m.AssetRepository.Update(ctx, id, u)
}

func (m *mockAssetRepository) CountByStatus(ctx context.Context) (map[models.AssetStatus]int, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx)
	}
	return m.AssetRepository.CountByStatus(ctx)
}

type failingAuditRepository struct{}

func (failingAuditRepository) Insert(context.Context, *models.AuditLog) error {
	return errors.New("disk full")
}

func (failingAuditRepository) List(context.Context, repository.AuditFilter) ([]models.AuditLog, error) {
	return nil, errors.New("disk full")
}

type testEnv struct {
	users    *memory.UserRepository
	assets   *memory.AssetRepository
	requests *memory.AssetRequestRepository
	auditLog *memory.AuditLogRepository
	hub      *fakeBroadcaster
	issuer   *fakeIssuer

	audit     *AuditRecorder
	auth      *AuthService
	assetSvc  *AssetService
	requestSv *AssetRequestService
	userSvc   *UserService
	dashboard *DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	env := &testEnv{
		users:    memory.NewUserRepository(),
		assets:   memory.NewAssetRepository(),
		requests: memory.NewAssetRequestRepository(),
		auditLog: memory.NewAuditLogRepository(),
		hub:      &fakeBroadcaster{},
		issuer:   &fakeIssuer{},
	}
	now := func() time.Time { return fixedNow }

	env.audit = NewAuditRecorder(env.auditLog, env.hub, log)
	env.audit.now = now
	env.auth = NewAuthService(env.users, env.issuer, env.audit, log)
	env.auth.now = now
	env.assetSvc = NewAssetService(env.assets, env.requests, env.audit, log)
	env.assetSvc.now = now
	env.requestSv = NewAssetRequestService(env.requests, env.assets, env.audit, log)
	env.requestSv.now = now
	env.userSvc = NewUserService(env.users, env.audit)
	env.userSvc.now = now
	env.dashboard = NewDashboardService(env.assets, env.requests)
	return env
}

// seedUser stores a user with a cheap bcrypt hash of password.
func (e *testEnv) seedUser(t *testing.T, username, password string, role models.Role, status models.UserStatus) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        username + "@example.com",
		FullName:     username,
		Department:   "IT",
		Role:         role,
		Status:       status,
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) seedAsset(t *testing.T, code string, status models.AssetStatus, holder *primitive.ObjectID) *models.Asset {
	t.Helper()
	asset := &models.Asset{
		Code:          code,
		Name:          code + " device",
		Type:          "Laptop",
		Status:        status,
		PurchaseDate:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		CurrentHolder: holder,
		CreatedAt:     fixedNow,
		UpdatedAt:     fixedNow,
	}
	require.NoError(t, e.assets.Create(context.Background(), asset))
	return asset
}

func adminSession() models.Session {
	return models.Session{ID: primitive.NewObjectID().Hex(), Name: "Admin", Role: models.RoleAdmin}
}

func strPtr(s string) *string { return &s }
