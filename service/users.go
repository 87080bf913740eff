// service/users.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
)

type UpdateUserInput struct {
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

type UserService struct {
	users repository.UserRepository
	audit *AuditRecorder
	now   func() time.Time
}

func NewUserService(users repository.UserRepository, audit *AuditRecorder) *UserService {
	return &UserService{users: users, audit: audit, now: time.Now}
}

func (s *UserService) List(ctx context.Context, role, status string) ([]models.User, error) {
	f := repository.UserFilter{Role: models.Role(role), Status: models.UserStatus(status)}
	if role != "" && !f.Role.Valid() {
		return nil, validationf("unknown role %q", role)
	}
	if status != "" && !f.Status.Valid() {
		return nil, validationf("unknown status %q", status)
	}
	users, err := s.users.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Update changes another user's role or status; admins cannot change themselves.
func (s *UserService) Update(ctx context.Context, actor models.Session, id string, in UpdateUserInput) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if in.Role == nil && in.Status == nil {
		return nil, validationf("nothing to update")
	}
	if actor.ID == oid.Hex() {
		return nil, validationf("administrators cannot change their own role or status")
	}

	var role *models.Role
	if in.Role != nil {
		r := models.Role(*in.Role)
		if !r.Valid() {
			return nil, validationf("unknown role %q", *in.Role)
		}
		role = &r
	}
	var status *models.UserStatus
	if in.Status != nil {
		st := models.UserStatus(*in.Status)
		if !st.Valid() {
			return nil, validationf("unknown status %q", *in.Status)
		}
		status = &st
	}

	user, err := s.users.UpdateRoleStatus(ctx, oid, role, status, s.now().UTC())
	if err != nil {
		return nil, notFound("update user", err)
	}
	user.PasswordHash = ""

	s.audit.record(ctx, actor, auditEvent{
		action:     ActionUserUpdate,
		entityType: EntityUser,
		entityID:   user.ID.Hex(),
		owner:      user.ID.Hex(),
		details:    bson.M{"role": user.Role, "status": user.Status},
	})
	return user, nil
}
