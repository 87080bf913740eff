package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pgregory.net/rapid"
)

func TestComputeAssetStats(t *testing.T) {
	assets := []Asset{
		{Status: AssetInUse},
		{Status: AssetInUse},
		{Status: AssetAvailable},
		{Status: AssetBroken},
		{Status: AssetMaintenance},
	}

	stats := ComputeAssetStats(assets)

	assert.Equal(t, AssetStats{Total: 5, InUse: 2, Available: 1, Broken: 1, Maintenance: 1}, stats)
}

func TestComputeAssetStatsEmpty(t *testing.T) {
	assert.Equal(t, AssetStats{}, ComputeAssetStats(nil))
}

func TestAssetStatsTotalIsSumOfBuckets(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		statuses := rapid.SliceOf(rapid.SampledFrom(AssetStatuses)).Draw(t, "statuses")
		assets := make([]Asset, len(statuses))
		for i, s := range statuses {
			assets[i] = Asset{Status: s}
		}

		stats := ComputeAssetStats(assets)

		if stats.Total != stats.InUse+stats.Available+stats.Broken+stats.Maintenance {
			t.Fatalf("total %d does not match buckets %+v", stats.Total, stats)
		}
		if stats.Total != len(assets) {
			t.Fatalf("total %d, want %d", stats.Total, len(assets))
		}
	})
}

func TestAssetStatsAddIgnoresUnknownStatus(t *testing.T) {
	var stats AssetStats
	stats.Add("LOST", 3)
	stats.Add(AssetBroken, 2)
	assert.Equal(t, AssetStats{Total: 2, Broken: 2}, stats)
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("ROOT").Valid())
	assert.True(t, UserPending.Valid())
	assert.False(t, UserStatus("BANNED").Valid())
	assert.True(t, AssetMaintenance.Valid())
	assert.False(t, AssetStatus("in_use").Valid())
	assert.True(t, RequestReportIssue.Valid())
	assert.False(t, RequestType("SELL").Valid())
	assert.True(t, RequestCompleted.Valid())
	assert.False(t, RequestStatus("CANCELLED").Valid())
}

func TestAssetRequestMissingFields(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		req  AssetRequest
		want []string
	}{
		{"borrow without dates", AssetRequest{RequestType: RequestBorrow}, []string{"startDate", "expectedReturnDate"}},
		{"borrow with dates", AssetRequest{RequestType: RequestBorrow, StartDate: &now, ExpectedReturnDate: &now}, nil},
		{"issue without description", AssetRequest{RequestType: RequestReportIssue}, []string{"issueDescription"}},
		{"issue with description", AssetRequest{RequestType: RequestReportIssue, IssueDescription: "cracked screen"}, nil},
		{"return needs nothing", AssetRequest{RequestType: RequestReturn}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.MissingFields())
		})
	}
}

func TestUserSession(t *testing.T) {
	id := primitive.NewObjectID()
	u := &User{ID: id, FullName: "Alice A", Email: "alice@x.com", Role: RoleUser}

	s := u.Session()

	assert.Equal(t, Session{ID: id.Hex(), Name: "Alice A", Email: "alice@x.com", Role: RoleUser}, s)
	assert.False(t, s.IsAdmin())
}
