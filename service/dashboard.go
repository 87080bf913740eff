// service/dashboard.go
package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
)

type RequestStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Completed int `json:"completed"`
}

type DashboardSummary struct {
	Assets   models.AssetStats `json:"assets"`
	Requests RequestStats      `json:"requests"`
}

type DashboardService struct {
	assets   repository.AssetRepository
	requests repository.AssetRequestRepository
}

func NewDashboardService(assets repository.AssetRepository, requests repository.AssetRequestRepository) *DashboardService {
	return &DashboardService{assets: assets, requests: requests}
}

// Summary counts assets and requests by status concurrently.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	var (
		assetCounts   map[models.AssetStatus]int
		requestCounts map[models.RequestStatus]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if assetCounts, err = s.assets.CountByStatus(gctx); err != nil {
			return fmt.Errorf("count assets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if requestCounts, err = s.requests.CountByStatus(gctx); err != nil {
			return fmt.Errorf("count requests: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &DashboardSummary{}
	for status, n := range assetCounts {
		summary.Assets.Add(status, n)
	}
	r := &summary.Requests
	r.Pending = requestCounts[models.RequestPending]
	r.Approved = requestCounts[models.RequestApproved]
	r.Rejected = requestCounts[models.RequestRejected]
	r.Completed = requestCounts[models.RequestCompleted]
	r.Total = r.Pending + r.Approved + r.Rejected + r.Completed
	return summary, nil
}
