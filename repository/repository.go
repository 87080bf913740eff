// repository/repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lnwboom/office-assets/models"
)

const opTimeout = 10 * time.Second

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// DuplicateKeyError reports which unique index rejected a write.
type DuplicateKeyError struct {
	Index string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key on index %q: %v", e.Index, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// DuplicateIndex returns the index name of a duplicate key error, or "".
func DuplicateIndex(err error) string {
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return dup.Index
	}
	return ""
}

// classify maps driver errors onto the repository sentinels.
func classify(err error, indexes ...string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		msg := err.Error()
		for _, idx := range indexes {
			if strings.Contains(msg, idx) {
				return &DuplicateKeyError{Index: idx, Err: err}
			}
		}
		return &DuplicateKeyError{Err: err}
	}
	return err
}

type UserFilter struct {
	Role   models.Role
	Status models.UserStatus
}

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	UpdateRoleStatus(ctx context.Context, id primitive.ObjectID, role *models.Role, status *models.UserStatus, at time.Time) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
}

// AssetQuery selects and orders assets. From and To are inclusive bounds on DateField.
type AssetQuery struct {
	SortField  string
	Descending bool
	DateField  string
	From       *time.Time
	To         *time.Time
}

// AssetUpdate holds the fields to set; nil pointers are left untouched.
type AssetUpdate struct {
	Code               *string
	Name               *string
	Type               *string
	Status             *models.AssetStatus
	Description        *string
	PurchaseDate       *time.Time
	CurrentHolder      *primitive.ObjectID
	ClearCurrentHolder bool
	LastInspectionDate *time.Time
	UpdatedAt          time.Time

	// IfStatus restricts the update to assets currently in that status.
	IfStatus *models.AssetStatus
	// IfHolder restricts the update to assets held by that user.
	IfHolder *primitive.ObjectID
}

type AssetRepository interface {
	List(ctx context.Context, q AssetQuery) ([]models.Asset, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Asset, error)
	Create(ctx context.Context, asset *models.Asset) error
	Update(ctx context.Context, id primitive.ObjectID, u AssetUpdate) (*models.Asset, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context) (map[models.AssetStatus]int, error)
}

type RequestFilter struct {
	Status      models.RequestStatus
	RequestType models.RequestType
	Asset       *primitive.ObjectID
	RequestedBy *primitive.ObjectID
}

// RequestTransition moves a request to a new status, setting the non-nil fields.
type RequestTransition struct {
	To               models.RequestStatus
	AdminNotes       *string
	ProcessedBy      *primitive.ObjectID
	ProcessedAt      *time.Time
	ActualReturnDate *time.Time
	UpdatedAt        time.Time
}

type AssetRequestRepository interface {
	Create(ctx context.Context, req *models.AssetRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AssetRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]models.AssetRequest, error)
	Exists(ctx context.Context, filter RequestFilter) (bool, error)
	// Transition applies t only if the request is still in status from.
	// A request that moved on in the meantime yields ErrNotFound.
	Transition(ctx context.Context, id primitive.ObjectID, from models.RequestStatus, t RequestTransition) (*models.AssetRequest, error)
	DeleteByAsset(ctx context.Context, asset primitive.ObjectID) (int64, error)
	CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error)
}

type AuditFilter struct {
	EntityType string
	Action     string
	Limit      int64
	Skip       int64
}

type AuditLogRepository interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]models.AuditLog, error)
}
