// models/asset.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssetStatus string

const (
	AssetInUse       AssetStatus = "IN_USE"
	AssetAvailable   AssetStatus = "AVAILABLE"
	AssetBroken      AssetStatus = "BROKEN"
	AssetMaintenance AssetStatus = "MAINTENANCE"
)

// AssetStatuses lists every status; they partition the asset set.
var AssetStatuses = []AssetStatus{AssetInUse, AssetAvailable, AssetBroken, AssetMaintenance}

func (s AssetStatus) Valid() bool {
	for _, v := range AssetStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Asset struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Code               string              `bson:"code" json:"code"`
	Name               string              `bson:"name" json:"name"`
	Type               string              `bson:"type" json:"type"`
	Status             AssetStatus         `bson:"status" json:"status"`
	Description        string              `bson:"description" json:"description"`
	PurchaseDate       time.Time           `bson:"purchaseDate" json:"purchaseDate"`
	CurrentHolder      *primitive.ObjectID `bson:"currentHolder,omitempty" json:"currentHolder,omitempty"`
	LastInspectionDate *time.Time          `bson:"lastInspectionDate,omitempty" json:"lastInspectionDate,omitempty"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// AssetStats counts assets by status.
type AssetStats struct {
	Total       int `json:"total"`
	InUse       int `json:"inUse"`
	Available   int `json:"available"`
	Broken      int `json:"broken"`
	Maintenance int `json:"maintenance"`
}

// Add counts one asset with the given status. Unknown statuses are ignored so
// Total always equals the sum of the four buckets.
func (s *AssetStats) Add(status AssetStatus, n int) {
	switch status {
	case AssetInUse:
		s.InUse += n
	case AssetAvailable:
		s.Available += n
	case AssetBroken:
		s.Broken += n
	case AssetMaintenance:
		s.Maintenance += n
	default:
		return
	}
	s.Total += n
}

func ComputeAssetStats(assets []Asset) AssetStats {
	var stats AssetStats
	for _, a := range assets {
		stats.Add(a.Status, 1)
	}
	return stats
}
