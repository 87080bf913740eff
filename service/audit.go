// service/audit.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/logger"
	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
)

// Audit actions.
const (
	ActionUserRegister   = "user_register"
	ActionUserUpdate     = "user_update"
	ActionAssetCreate    = "asset_create"
	ActionAssetUpdate    = "asset_update"
	ActionAssetDelete    = "asset_delete"
	ActionRequestCreate  = "request_create"
	ActionRequestProcess = "request_process"
	ActionRequestDone    = "request_complete"
)

// Audit entity types.
const (
	EntityUser    = "user"
	EntityAsset   = "asset"
	EntityRequest = "asset_request"
)

// Broadcaster pushes a recorded entry to live subscribers. owner is the user
// the entry concerns, or "" when only admins should see it.
type Broadcaster interface {
	Publish(entry *models.AuditLog, owner string)
}

// AuditRecorder writes the audit trail. A nil recorder records nothing.
type AuditRecorder struct {
	repo repository.AuditLogRepository
	hub  Broadcaster
	log  *zap.Logger
	now  func() time.Time
}

func NewAuditRecorder(repo repository.AuditLogRepository, hub Broadcaster, log *zap.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, hub: hub, log: log, now: time.Now}
}

type auditEvent struct {
	action     string
	entityType string
	entityID   string
	owner      string
	details    bson.M
}

// record is best-effort: failures are logged, never returned.
func (a *AuditRecorder) record(ctx context.Context, actor models.Session, ev auditEvent) {
	if a == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.ID,
		Username:   actor.Name,
		Action:     ev.action,
		EntityType: ev.entityType,
		EntityID:   ev.entityID,
		Details:    ev.details,
		CreatedAt:  a.now().UTC(),
	}
	if err := a.repo.Insert(ctx, entry); err != nil {
		logger.FromContext(ctx, a.log).Warn("audit insert failed",
			zap.String("action", ev.action),
			zap.String("entity_id", ev.entityID),
			zap.Error(err),
		)
		return
	}
	if a.hub != nil {
		a.hub.Publish(entry, ev.owner)
	}
}

// List returns audit entries newest first. Limit is clamped to 1..100 (default 50).
func (a *AuditRecorder) List(ctx context.Context, f repository.AuditFilter) ([]models.AuditLog, error) {
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	logs, err := a.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
