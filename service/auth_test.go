package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lnwboom/office-assets/database"
	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
	"github.com/lnwboom/office-assets/utils"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	active := env.seedUser(t, "alice", "correct-horse", models.RoleUser, models.UserActive)
	env.seedUser(t, "bob", "pw-bob", models.RoleUser, models.UserInactive)
	env.seedUser(t, "carol", "pw-carol", models.RoleUser, models.UserPending)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"missing username", "", "x", ErrMissingFields},
		{"missing password", "alice", "", ErrMissingFields},
		{"unknown user", "nobody", "x", ErrInvalidCredentials},
		{"wrong password", "alice", "wrong", ErrInvalidCredentials},
		{"inactive", "bob", "pw-bob", ErrAccountInactive},
		{"pending", "carol", "pw-carol", ErrAccountPending},
		{"pending with wrong password", "carol", "nope", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Login(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, env.issuer.issued)

	t.Run("success", func(t *testing.T) {
		res, err := env.auth.Login(ctx, "  ALICE ", "correct-horse")
		require.NoError(t, err)

		assert.Equal(t, "token-"+active.ID.Hex(), res.Token)
		assert.Equal(t, fixedNow.Add(time.Hour), res.ExpiresAt)
		require.Len(t, env.issuer.issued, 1)
		assert.Equal(t, models.Session{ID: active.ID.Hex(), Name: "alice", Email: "alice@example.com", Role: models.RoleUser}, env.issuer.issued[0])

		stored, err := env.users.FindByID(ctx, active.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.LastLogin)
		assert.Equal(t, fixedNow, *stored.LastLogin)
	})
}

func TestLoginRepeatedFailuresDoNotLock(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "dave", "right", models.RoleUser, models.UserActive)

	for i := 0; i < 3; i++ {
		_, err := env.auth.Login(ctx, "dave", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	stored, err := env.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, stored.Status)
	assert.Nil(t, stored.LastLogin)

	_, err = env.auth.Login(ctx, "dave", "right")
	assert.NoError(t, err)
}

func TestLoginDoesNotIssueWhenLastLoginFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "erin", "pw", models.RoleUser, models.UserActive)
	env.auth.users = &mockUserRepository{
		UserRepository: env.users,
		updateLastLoginFunc: func(context.Context, primitive.ObjectID, time.Time) error {
			return errors.New("connection reset")
		},
	}

	_, err := env.auth.Login(ctx, "erin", "pw")

	require.Error(t, err)
	assert.Empty(t, env.issuer.issued)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user, err := env.auth.Register(ctx, RegisterInput{
		Username:   " Alice ",
		Password:   "s3cret!",
		Email:      "Alice@X.com",
		FullName:   "Alice A",
		Department: "Finance",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.UserPending, user.Status)
	assert.True(t, utils.CheckPasswordHash("s3cret!", user.PasswordHash))
	assert.Equal(t, []string{ActionUserRegister}, env.hub.actions())

	t.Run("duplicate username in other case", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{Username: "ALICE", Password: "p", Email: "other@x.com", FullName: "A", Department: "D"})
		assert.ErrorIs(t, err, ErrDuplicateUsername)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{Username: "alice2", Password: "p", Email: "ALICE@x.com", FullName: "A", Department: "D"})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{Username: "zed", Password: "p", Email: "z@x.com", FullName: "  "})
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{Username: "long", Password: strings.Repeat("a", 73), Email: "long@x.com", FullName: "L", Department: "D"})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = env.users.FindByUsername(ctx, "long")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("pending account cannot log in", func(t *testing.T) {
		_, err := env.auth.Login(ctx, "alice", "s3cret!")
		assert.ErrorIs(t, err, ErrAccountPending)
	})
}

func TestRegisterInsertRace(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for index, want := range map[string]error{
		database.UsernameIndex: ErrDuplicateUsername,
		database.EmailIndex:    ErrDuplicateEmail,
	} {
		env.auth.users = &mockUserRepository{
			UserRepository: env.users,
			createFunc: func(context.Context, *models.User) error {
				return &repository.DuplicateKeyError{Index: index, Err: repository.ErrDuplicateKey}
			},
		}
		_, err := env.auth.Register(ctx, RegisterInput{Username: "u", Password: "p", Email: "u@x.com", FullName: "U", Department: "D"})
		assert.ErrorIs(t, err, want, index)
	}
}
