// service/asset_requests.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/logger"
	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
)

type CreateRequestInput struct {
	AssetID            string   `json:"assetId"`
	RequestType        string   `json:"requestType"`
	StartDate          string   `json:"startDate"`
	ExpectedReturnDate string   `json:"expectedReturnDate"`
	IssueDescription   string   `json:"issueDescription"`
	IssueImages        []string `json:"issueImages"`
}

type ListRequestsInput struct {
	Status      string
	RequestType string
	AssetID     string
}

type ProcessRequestInput struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"adminNotes"`
}

type CompleteRequestInput struct {
	AdminNotes *string `json:"adminNotes"`
}

type AssetRequestService struct {
	requests repository.AssetRequestRepository
	assets   repository.AssetRepository
	audit    *AuditRecorder
	log      *zap.Logger
	now      func() time.Time
}

func NewAssetRequestService(requests repository.AssetRequestRepository, assets repository.AssetRepository, audit *AuditRecorder, log *zap.Logger) *AssetRequestService {
	return &AssetRequestService{requests: requests, assets: assets, audit: audit, log: log, now: time.Now}
}

func actorID(actor models.Session) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(actor.ID)
	if err != nil {
		return primitive.NilObjectID, ErrUnauthorized
	}
	return oid, nil
}

func (s *AssetRequestService) Create(ctx context.Context, actor models.Session, in CreateRequestInput) (*models.AssetRequest, error) {
	requester, err := actorID(actor)
	if err != nil {
		return nil, err
	}

	reqType := models.RequestType(in.RequestType)
	if !reqType.Valid() {
		return nil, validationf("unknown requestType %q", in.RequestType)
	}

	now := s.now().UTC()
	req := &models.AssetRequest{
		RequestType:      reqType,
		RequestedBy:      requester,
		Status:           models.RequestPending,
		IssueDescription: strings.TrimSpace(in.IssueDescription),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.StartDate, err = parseOptionalDate("startDate", in.StartDate); err != nil {
		return nil, err
	}
	if req.ExpectedReturnDate, err = parseOptionalDate("expectedReturnDate", in.ExpectedReturnDate); err != nil {
		return nil, err
	}
	if missing := req.MissingFields(); len(missing) > 0 {
		return nil, validationf("missing %s", strings.Join(missing, ", "))
	}
	if reqType == models.RequestBorrow && req.ExpectedReturnDate.Before(*req.StartDate) {
		return nil, validationf("expectedReturnDate is before startDate")
	}
	for _, url := range in.IssueImages {
		if url = strings.TrimSpace(url); url != "" {
			req.IssueImages = append(req.IssueImages, models.IssueImage{URL: url, UploadedAt: now})
		}
	}

	assetID, err := parseID(in.AssetID)
	if err != nil {
		return nil, err
	}
	asset, err := s.assets.FindByID(ctx, assetID)
	if err != nil {
		return nil, notFound("find asset", err)
	}
	req.Asset = asset.ID

	switch reqType {
	case models.RequestBorrow:
		if asset.Status != models.AssetAvailable {
			return nil, fmt.Errorf("%w: asset is %s", ErrConflict, asset.Status)
		}
	case models.RequestReturn:
		if asset.CurrentHolder == nil || *asset.CurrentHolder != requester {
			return nil, fmt.Errorf("%w: asset is not held by the requester", ErrConflict)
		}
	}

	open, err := s.requests.Exists(ctx, repository.RequestFilter{
		Status:      models.RequestPending,
		RequestType: reqType,
		Asset:       &asset.ID,
		RequestedBy: &requester,
	})
	if err != nil {
		return nil, fmt.Errorf("check open requests: %w", err)
	}
	if open {
		return nil, fmt.Errorf("%w: an identical request is already pending", ErrConflict)
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.audit.record(ctx, actor, auditEvent{
		action:     ActionRequestCreate,
		entityType: EntityRequest,
		entityID:   req.ID.Hex(),
		owner:      actor.ID,
		details:    bson.M{"asset": asset.Code, "requestType": req.RequestType},
	})
	return req, nil
}

// List returns requests newest first. Non-admins only ever see their own.
func (s *AssetRequestService) List(ctx context.Context, actor models.Session, in ListRequestsInput) ([]models.AssetRequest, error) {
	var f repository.RequestFilter
	if in.Status != "" {
		f.Status = models.RequestStatus(in.Status)
		if !f.Status.Valid() {
			return nil, validationf("unknown status %q", in.Status)
		}
	}
	if in.RequestType != "" {
		f.RequestType = models.RequestType(in.RequestType)
		if !f.RequestType.Valid() {
			return nil, validationf("unknown requestType %q", in.RequestType)
		}
	}
	if in.AssetID != "" {
		assetID, err := primitive.ObjectIDFromHex(in.AssetID)
		if err != nil {
			return nil, validationf("assetId is not a valid id")
		}
		f.Asset = &assetID
	}
	if !actor.IsAdmin() {
		requester, err := actorID(actor)
		if err != nil {
			return nil, err
		}
		f.RequestedBy = &requester
	}

	reqs, err := s.requests.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}

func (s *AssetRequestService) Get(ctx context.Context, actor models.Session, id string) (*models.AssetRequest, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(ctx, oid)
	if err != nil {
		return nil, notFound("find request", err)
	}
	if !actor.IsAdmin() && req.RequestedBy.Hex() != actor.ID {
		return nil, ErrUnauthorized
	}
	return req, nil
}

// transition moves req from one status to another, reporting a concurrent
// change as ErrConflict.
func (s *AssetRequestService) transition(ctx context.Context, req *models.AssetRequest, from models.RequestStatus, t repository.RequestTransition) (*models.AssetRequest, error) {
	if req.Status != from {
		return nil, fmt.Errorf("%w: request is %s", ErrConflict, req.Status)
	}
	updated, err := s.requests.Transition(ctx, req.ID, from, t)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: request changed concurrently", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("transition request: %w", err)
	}
	return updated, nil
}

// Process approves or rejects a pending request. Approving a borrow hands the
// asset to the requester; approving an issue report sends it to maintenance.
func (s *AssetRequestService) Process(ctx context.Context, actor models.Session, id string, in ProcessRequestInput) (*models.AssetRequest, error) {
	admin, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	to := models.RequestStatus(in.Status)
	if to != models.RequestApproved && to != models.RequestRejected {
		return nil, validationf("status must be APPROVED or REJECTED")
	}

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(ctx, oid)
	if err != nil {
		return nil, notFound("find request", err)
	}

	approvedBorrow := to == models.RequestApproved && req.RequestType == models.RequestBorrow
	if approvedBorrow && req.Status == models.RequestPending {
		asset, err := s.assets.FindByID(ctx, req.Asset)
		if err != nil {
			return nil, notFound("find asset", err)
		}
		if asset.Status != models.AssetAvailable {
			return nil, fmt.Errorf("%w: asset is %s", ErrConflict, asset.Status)
		}
	}

	now := s.now().UTC()
	updated, err := s.transition(ctx, req, models.RequestPending, repository.RequestTransition{
		To:          to,
		AdminNotes:  in.AdminNotes,
		ProcessedBy: &admin,
		ProcessedAt: &now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	if to == models.RequestApproved {
		var u *repository.AssetUpdate
		switch req.RequestType {
		case models.RequestBorrow:
			inUse, available := models.AssetInUse, models.AssetAvailable
			requester := req.RequestedBy
			u = &repository.AssetUpdate{Status: &inUse, CurrentHolder: &requester, IfStatus: &available, UpdatedAt: now}
		case models.RequestReportIssue:
			maintenance := models.AssetMaintenance
			u = &repository.AssetUpdate{Status: &maintenance, UpdatedAt: now}
		}
		if u != nil {
			if err := s.updateAsset(ctx, updated, *u); err != nil {
				return nil, err
			}
		}
	}

	s.audit.record(ctx, actor, auditEvent{
		action:     ActionRequestProcess,
		entityType: EntityRequest,
		entityID:   updated.ID.Hex(),
		owner:      updated.RequestedBy.Hex(),
		details:    bson.M{"status": updated.Status, "requestType": updated.RequestType},
	})
	return updated, nil
}

// Complete closes an approved request and settles the asset.
func (s *AssetRequestService) Complete(ctx context.Context, actor models.Session, id string, in CompleteRequestInput) (*models.AssetRequest, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(ctx, oid)
	if err != nil {
		return nil, notFound("find request", err)
	}

	now := s.now().UTC()
	var u repository.AssetUpdate
	if req.Status == models.RequestApproved {
		asset, err := s.assets.FindByID(ctx, req.Asset)
		if err != nil {
			return nil, notFound("find asset", err)
		}
		if u, err = settle(req, asset, now); err != nil {
			return nil, err
		}
	}

	t := repository.RequestTransition{To: models.RequestCompleted, AdminNotes: in.AdminNotes, UpdatedAt: now}
	if req.RequestType == models.RequestBorrow || req.RequestType == models.RequestReturn {
		t.ActualReturnDate = &now
	}

	updated, err := s.transition(ctx, req, models.RequestApproved, t)
	if err != nil {
		return nil, err
	}
	if err := s.updateAsset(ctx, updated, u); err != nil {
		return nil, err
	}

	s.audit.record(ctx, actor, auditEvent{
		action:     ActionRequestDone,
		entityType: EntityRequest,
		entityID:   updated.ID.Hex(),
		owner:      updated.RequestedBy.Hex(),
		details:    bson.M{"requestType": updated.RequestType},
	})
	return updated, nil
}

// settle builds the asset write that closes req. Borrows and returns only
// release an asset still held by the requester; an issue report only ends a
// maintenance the asset is still in.
func settle(req *models.AssetRequest, asset *models.Asset, now time.Time) (repository.AssetUpdate, error) {
	u := repository.AssetUpdate{UpdatedAt: now}
	switch req.RequestType {
	case models.RequestBorrow, models.RequestReturn:
		if asset.CurrentHolder == nil || *asset.CurrentHolder != req.RequestedBy {
			return u, fmt.Errorf("%w: asset is no longer held by the requester", ErrConflict)
		}
		available := models.AssetAvailable
		holder := req.RequestedBy
		u.Status = &available
		u.ClearCurrentHolder = true
		u.IfHolder = &holder
	case models.RequestReportIssue:
		if asset.Status != models.AssetMaintenance {
			return u, fmt.Errorf("%w: asset is %s", ErrConflict, asset.Status)
		}
		status, maintenance := models.AssetAvailable, models.AssetMaintenance
		if asset.CurrentHolder != nil {
			status = models.AssetInUse
			holder := *asset.CurrentHolder
			u.IfHolder = &holder
		}
		u.Status = &status
		u.IfStatus = &maintenance
		u.LastInspectionDate = &now
	}
	return u, nil
}

func (s *AssetRequestService) updateAsset(ctx context.Context, req *models.AssetRequest, u repository.AssetUpdate) error {
	if _, err := s.assets.Update(ctx, req.Asset, u); err != nil {
		s.logAssetFailure(ctx, req, err)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: asset changed while request %s was settled", ErrConflict, req.ID.Hex())
		}
		return fmt.Errorf("update asset after request %s: %w", req.ID.Hex(), err)
	}
	return nil
}

// logAssetFailure records an asset write that failed after the request already moved.
func (s *AssetRequestService) logAssetFailure(ctx context.Context, req *models.AssetRequest, err error) {
	logger.FromContext(ctx, s.log).Error("asset update failed after request transition",
		zap.String("asset_request_id", req.ID.Hex()),
		zap.String("asset_id", req.Asset.Hex()),
		zap.String("request_status", string(req.Status)),
		zap.Error(err),
	)
}
