// service/assets.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/logger"
	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
	"github.com/lnwboom/office-assets/utils"
)

var sortableFields = map[string]bool{
	"createdAt":          true,
	"updatedAt":          true,
	"purchaseDate":       true,
	"code":               true,
	"name":               true,
	"type":               true,
	"status":             true,
	"lastInspectionDate": true,
}

type ListAssetsInput struct {
	SortField string
	SortOrder string
	StartDate string
	EndDate   string
	DateField string
}

type AssetList struct {
	Assets []models.Asset     `json:"assets"`
	Stats  models.AssetStats `json:"stats"`
}

type CreateAssetInput struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	Description  string `json:"description"`
	PurchaseDate string `json:"purchaseDate"`
}

// UpdateAssetInput carries only the supplied fields. An empty CurrentHolder
// clears the holder.
type UpdateAssetInput struct {
	Code               *string `json:"code"`
	Name               *string `json:"name"`
	Type               *string `json:"type"`
	Status             *string `json:"status"`
	Description        *string `json:"description"`
	PurchaseDate       *string `json:"purchaseDate"`
	CurrentHolder      *string `json:"currentHolder"`
	LastInspectionDate *string `json:"lastInspectionDate"`
}

type AssetService struct {
	assets   repository.AssetRepository
	requests repository.AssetRequestRepository
	audit    *AuditRecorder
	log      *zap.Logger
	now      func() time.Time
}

func NewAssetService(assets repository.AssetRepository, requests repository.AssetRequestRepository, audit *AuditRecorder, log *zap.Logger) *AssetService {
	return &AssetService{assets: assets, requests: requests, audit: audit, log: log, now: time.Now}
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(value)
	if err != nil {
		return nil, validationf("%s: %v", field, err)
	}
	return &t, nil
}

func (s *AssetService) List(ctx context.Context, in ListAssetsInput) (*AssetList, error) {
	q := repository.AssetQuery{
		SortField:  "createdAt",
		Descending: in.SortOrder == "desc",
		DateField:  "createdAt",
	}
	if in.SortField != "" {
		if !sortableFields[in.SortField] {
			return nil, validationf("sortField %q is not sortable", in.SortField)
		}
		q.SortField = in.SortField
	}
	switch in.DateField {
	case "", "createdAt":
	case "purchaseDate":
		q.DateField = in.DateField
	default:
		return nil, validationf("dateField must be createdAt or purchaseDate")
	}

	var err error
	if q.From, err = parseOptionalDate("startDate", in.StartDate); err != nil {
		return nil, err
	}
	if q.To, err = parseOptionalDate("endDate", in.EndDate); err != nil {
		return nil, err
	}

	assets, err := s.assets.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return &AssetList{Assets: assets, Stats: models.ComputeAssetStats(assets)}, nil
}

func (s *AssetService) Get(ctx context.Context, id string) (*models.Asset, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	asset, err := s.assets.FindByID(ctx, oid)
	if err != nil {
		return nil, notFound("find asset", err)
	}
	return asset, nil
}

func (s *AssetService) Create(ctx context.Context, actor models.Session, in CreateAssetInput) (*models.Asset, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"code", in.Code}, {"name", in.Name}, {"type", in.Type}, {"status", in.Status}, {"purchaseDate", in.PurchaseDate},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, validationf("missing %s", strings.Join(missing, ", "))
	}

	status := models.AssetStatus(in.Status)
	if !status.Valid() {
		return nil, validationf("unknown status %q", in.Status)
	}
	purchaseDate, err := utils.ParseDate(in.PurchaseDate)
	if err != nil {
		return nil, validationf("purchaseDate: %v", err)
	}

	now := s.now().UTC()
	asset := &models.Asset{
		Code:         in.Code,
		Name:         in.Name,
		Type:         in.Type,
		Status:       status,
		Description:  in.Description,
		PurchaseDate: purchaseDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}

	s.audit.record(ctx, actor, auditEvent{
		action:     ActionAssetCreate,
		entityType: EntityAsset,
		entityID:   asset.ID.Hex(),
		details:    bson.M{"code": asset.Code, "status": asset.Status},
	})
	return asset, nil
}

func (in UpdateAssetInput) toUpdate(now time.Time) (repository.AssetUpdate, error) {
	u := repository.AssetUpdate{UpdatedAt: now, Description: in.Description}

	for _, f := range []struct {
		name  string
		value *string
	}{{"code", in.Code}, {"name", in.Name}, {"type", in.Type}} {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return u, validationf("%s cannot be empty", f.name)
		}
	}
	u.Code, u.Name, u.Type = trimmed(in.Code), trimmed(in.Name), trimmed(in.Type)

	if in.Status != nil {
		status := models.AssetStatus(*in.Status)
		if !status.Valid() {
			return u, validationf("unknown status %q", *in.Status)
		}
		u.Status = &status
	}
	if in.PurchaseDate != nil {
		d, err := utils.ParseDate(*in.PurchaseDate)
		if err != nil {
			return u, validationf("purchaseDate: %v", err)
		}
		u.PurchaseDate = &d
	}
	if in.LastInspectionDate != nil {
		d, err := utils.ParseDate(*in.LastInspectionDate)
		if err != nil {
			return u, validationf("lastInspectionDate: %v", err)
		}
		u.LastInspectionDate = &d
	}
	if in.CurrentHolder != nil {
		if *in.CurrentHolder == "" {
			u.ClearCurrentHolder = true
		} else {
			holder, err := primitive.ObjectIDFromHex(*in.CurrentHolder)
			if err != nil {
				return u, validationf("currentHolder is not a valid id")
			}
			u.CurrentHolder = &holder
		}
	}
	return u, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func (s *AssetService) Update(ctx context.Context, actor models.Session, id string, in UpdateAssetInput) (*models.Asset, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	u, err := in.toUpdate(s.now().UTC())
	if err != nil {
		return nil, err
	}

	asset, err := s.assets.Update(ctx, oid, u)
	if err != nil {
		return nil, notFound("update asset", err)
	}

	s.audit.record(ctx, actor, auditEvent{
		action:     ActionAssetUpdate,
		entityType: EntityAsset,
		entityID:   asset.ID.Hex(),
		details:    bson.M{"code": asset.Code, "status": asset.Status},
	})
	return asset, nil
}

// Delete removes the asset and every request that references it.
func (s *AssetService) Delete(ctx context.Context, actor models.Session, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.assets.Delete(ctx, oid); err != nil {
		return notFound("delete asset", err)
	}

	removed, err := s.requests.DeleteByAsset(ctx, oid)
	if err != nil {
		logger.FromContext(ctx, s.log).Error("cascade delete of asset requests failed",
			zap.String("asset_id", id), zap.Error(err))
	}

	s.audit.record(ctx, actor, auditEvent{
		action:     ActionAssetDelete,
		entityType: EntityAsset,
		entityID:   id,
		details:    bson.M{"requestsRemoved": removed},
	})
	return nil
}
