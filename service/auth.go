// service/auth.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/database"
	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
	"github.com/lnwboom/office-assets/utils"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(s models.Session) (string, time.Time, error)
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type RegisterInput struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Department string `json:"department"`
}

type AuthService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	audit  *AuditRecorder
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, audit *AuditRecorder, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, audit: audit, log: log, now: time.Now}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// compareDummy burns the same bcrypt time as a real comparison so a missing
// user cannot be told apart from a wrong password.
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword("dummy-password-for-timing")
	})
	_ = utils.CheckPasswordHash(password, dummyHash)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = normalize(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		compareDummy(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case models.UserInactive:
		return nil, ErrAccountInactive
	case models.UserPending:
		return nil, ErrAccountPending
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now
	user.UpdatedAt = now

	token, expiresAt, err := s.tokens.Issue(user.Session())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = normalize(in.Username)
	in.Email = normalize(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Department = strings.TrimSpace(in.Department)
	if in.Username == "" || strings.TrimSpace(in.Password) == "" || in.Email == "" || in.FullName == "" || in.Department == "" {
		return nil, ErrMissingFields
	}
	if len(in.Password) > utils.MaxPasswordBytes {
		return nil, validationf("password must be at most %d bytes", utils.MaxPasswordBytes)
	}

	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		FullName:     in.FullName,
		Department:   in.Department,
		Role:         models.RoleUser,
		Status:       models.UserPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		switch repository.DuplicateIndex(err) {
		case database.UsernameIndex:
			return nil, ErrDuplicateUsername
		case database.EmailIndex:
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit.record(ctx, user.Session(), auditEvent{
		action:     ActionUserRegister,
		entityType: EntityUser,
		entityID:   user.ID.Hex(),
	})
	return user, nil
}
