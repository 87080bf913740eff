// Package memory holds map-backed repositories used by tests and local runs
// without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lnwboom/office-assets/database"
	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
)

var (
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.AssetRepository        = (*AssetRepository)(nil)
	_ repository.AssetRequestRepository = (*AssetRequestRepository)(nil)
	_ repository.AuditLogRepository     = (*AuditLogRepository)(nil)
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *UserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return &repository.DuplicateKeyError{Index: database.UsernameIndex, Err: repository.ErrDuplicateKey}
		}
		if u.Email == user.Email {
			return &repository.DuplicateKeyError{Index: database.EmailIndex, Err: repository.ErrDuplicateKey}
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = &at
	u.UpdatedAt = at
	r.users[id] = u
	return nil
}

func (r *UserRepository) UpdateRoleStatus(_ context.Context, id primitive.ObjectID, role *models.Role, status *models.UserStatus, at time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if role != nil {
		u.Role = *role
	}
	if status != nil {
		u.Status = *status
	}
	u.UpdatedAt = at
	r.users[id] = u
	return &u, nil
}

func (r *UserRepository) List(_ context.Context, f repository.UserFilter) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := []models.User{}
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		u.PasswordHash = ""
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

type AssetRepository struct {
	mu     sync.RWMutex
	assets map[primitive.ObjectID]models.Asset
}

func NewAssetRepository() *AssetRepository {
	return &AssetRepository{assets: make(map[primitive.ObjectID]models.Asset)}
}

func assetDate(a models.Asset, field string) time.Time {
	if field == "purchaseDate" {
		return a.PurchaseDate
	}
	return a.CreatedAt
}

// compareAssets orders a and b by field, returning -1, 0 or 1.
func compareAssets(a, b models.Asset, field string) int {
	cmpTime := func(x, y time.Time) int {
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		}
		return 0
	}
	optTime := func(t *time.Time) time.Time {
		if t == nil {
			return time.Time{}
		}
		return *t
	}
	switch field {
	case "code":
		return strings.Compare(a.Code, b.Code)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "type":
		return strings.Compare(a.Type, b.Type)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "updatedAt":
		return cmpTime(a.UpdatedAt, b.UpdatedAt)
	case "purchaseDate":
		return cmpTime(a.PurchaseDate, b.PurchaseDate)
	case "lastInspectionDate":
		return cmpTime(optTime(a.LastInspectionDate), optTime(b.LastInspectionDate))
	default:
		return cmpTime(a.CreatedAt, b.CreatedAt)
	}
}

func (r *AssetRepository) List(_ context.Context, q repository.AssetQuery) ([]models.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	assets := []models.Asset{}
	for _, a := range r.assets {
		d := assetDate(a, q.DateField)
		if q.From != nil && d.Before(*q.From) {
			continue
		}
		if q.To != nil && d.After(*q.To) {
			continue
		}
		assets = append(assets, a)
	}
	sort.SliceStable(assets, func(i, j int) bool {
		c := compareAssets(assets[i], assets[j], q.SortField)
		if c == 0 {
			c = strings.Compare(assets[i].ID.Hex(), assets[j].ID.Hex())
		}
		if q.Descending {
			return c > 0
		}
		return c < 0
	})
	return assets, nil
}

func (r *AssetRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *AssetRepository) codeTaken(code string, except primitive.ObjectID) bool {
	for id, a := range r.assets {
		if a.Code == code && id != except {
			return true
		}
	}
	return false
}

func (r *AssetRepository) Create(_ context.Context, asset *models.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codeTaken(asset.Code, primitive.NilObjectID) {
		return &repository.DuplicateKeyError{Index: database.CodeIndex, Err: repository.ErrDuplicateKey}
	}
	if asset.ID.IsZero() {
		asset.ID = primitive.NewObjectID()
	}
	r.assets[asset.ID] = *asset
	return nil
}

func (r *AssetRepository) Update(_ context.Context, id primitive.ObjectID, u repository.AssetUpdate) (*models.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok || (u.IfStatus != nil && a.Status != *u.IfStatus) {
		return nil, repository.ErrNotFound
	}
	if u.IfHolder != nil && (a.CurrentHolder == nil || *a.CurrentHolder != *u.IfHolder) {
		return nil, repository.ErrNotFound
	}
	if u.Code != nil {
		if r.codeTaken(*u.Code, id) {
			return nil, &repository.DuplicateKeyError{Index: database.CodeIndex, Err: repository.ErrDuplicateKey}
		}
		a.Code = *u.Code
	}
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Type != nil {
		a.Type = *u.Type
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.Description != nil {
		a.Description = *u.Description
	}
	if u.PurchaseDate != nil {
		a.PurchaseDate = *u.PurchaseDate
	}
	if u.LastInspectionDate != nil {
		a.LastInspectionDate = u.LastInspectionDate
	}
	if u.ClearCurrentHolder {
		a.CurrentHolder = nil
	} else if u.CurrentHolder != nil {
		holder := *u.CurrentHolder
		a.CurrentHolder = &holder
	}
	a.UpdatedAt = u.UpdatedAt
	r.assets[id] = a
	return &a, nil
}

func (r *AssetRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.assets, id)
	return nil
}

func (r *AssetRepository) CountByStatus(_ context.Context) (map[models.AssetStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[models.AssetStatus]int)
	for _, a := range r.assets {
		counts[a.Status]++
	}
	return counts, nil
}

type AssetRequestRepository struct {
	mu       sync.RWMutex
	requests map[primitive.ObjectID]models.AssetRequest
}

func NewAssetRequestRepository() *AssetRequestRepository {
	return &AssetRequestRepository{requests: make(map[primitive.ObjectID]models.AssetRequest)}
}

func matchRequest(req models.AssetRequest, f repository.RequestFilter) bool {
	if f.Status != "" && req.Status != f.Status {
		return false
	}
	if f.RequestType != "" && req.RequestType != f.RequestType {
		return false
	}
	if f.Asset != nil && req.Asset != *f.Asset {
		return false
	}
	if f.RequestedBy != nil && req.RequestedBy != *f.RequestedBy {
		return false
	}
	return true
}

func (r *AssetRequestRepository) Create(_ context.Context, req *models.AssetRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	r.requests[req.ID] = *req
	return nil
}

func (r *AssetRequestRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.AssetRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &req, nil
}

func (r *AssetRequestRepository) List(_ context.Context, f repository.RequestFilter) ([]models.AssetRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reqs := []models.AssetRequest{}
	for _, req := range r.requests {
		if matchRequest(req, f) {
			reqs = append(reqs, req)
		}
	}
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].ID.Hex() > reqs[j].ID.Hex()
		}
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
	return reqs, nil
}

func (r *AssetRequestRepository) Exists(_ context.Context, f repository.RequestFilter) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.requests {
		if matchRequest(req, f) {
			return true, nil
		}
	}
	return false, nil
}

func (r *AssetRequestRepository) Transition(_ context.Context, id primitive.ObjectID, from models.RequestStatus, t repository.RequestTransition) (*models.AssetRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != from {
		return nil, repository.ErrNotFound
	}
	req.Status = t.To
	req.UpdatedAt = t.UpdatedAt
	if t.AdminNotes != nil {
		req.AdminNotes = *t.AdminNotes
	}
	if t.ProcessedBy != nil {
		by := *t.ProcessedBy
		req.ProcessedBy = &by
	}
	if t.ProcessedAt != nil {
		req.ProcessedAt = t.ProcessedAt
	}
	if t.ActualReturnDate != nil {
		req.ActualReturnDate = t.ActualReturnDate
	}
	r.requests[id] = req
	return &req, nil
}

func (r *AssetRequestRepository) DeleteByAsset(_ context.Context, asset primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, req := range r.requests {
		if req.Asset == asset {
			delete(r.requests, id)
			n++
		}
	}
	return n, nil
}

func (r *AssetRequestRepository) CountByStatus(_ context.Context) (map[models.RequestStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[models.RequestStatus]int)
	for _, req := range r.requests {
		counts[req.Status]++
	}
	return counts, nil
}

type AuditLogRepository struct {
	mu   sync.RWMutex
	logs []models.AuditLog
}

func NewAuditLogRepository() *AuditLogRepository {
	return &AuditLogRepository{}
}

func (r *AuditLogRepository) Insert(_ context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *AuditLogRepository) List(_ context.Context, f repository.AuditFilter) ([]models.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	logs := []models.AuditLog{}
	// newest first
	for i := len(r.logs) - 1; i >= 0; i-- {
		l := r.logs[i]
		if f.EntityType != "" && f.EntityType != "all" && l.EntityType != f.EntityType {
			continue
		}
		if f.Action != "" && f.Action != "all" && l.Action != f.Action {
			continue
		}
		logs = append(logs, l)
	}
	if f.Skip > 0 {
		if f.Skip >= int64(len(logs)) {
			return []models.AuditLog{}, nil
		}
		logs = logs[f.Skip:]
	}
	if f.Limit > 0 && int64(len(logs)) > f.Limit {
		logs = logs[:f.Limit]
	}
	return logs, nil
}
