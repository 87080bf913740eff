// models/asset_request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestType string

const (
	RequestBorrow      RequestType = "BORROW"
	RequestReturn      RequestType = "RETURN"
	RequestReportIssue RequestType = "REPORT_ISSUE"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestBorrow, RequestReturn, RequestReportIssue:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestApproved  RequestStatus = "APPROVED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCompleted RequestStatus = "COMPLETED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestCompleted:
		return true
	}
	return false
}

type IssueImage struct {
	URL        string    `bson:"url" json:"url"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

type AssetRequest struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Asset              primitive.ObjectID  `bson:"asset" json:"asset"`
	RequestType        RequestType         `bson:"requestType" json:"requestType"`
	RequestedBy        primitive.ObjectID  `bson:"requestedBy" json:"requestedBy"`
	Status             RequestStatus       `bson:"status" json:"status"`
	StartDate          *time.Time          `bson:"startDate,omitempty" json:"startDate,omitempty"`
	ExpectedReturnDate *time.Time          `bson:"expectedReturnDate,omitempty" json:"expectedReturnDate,omitempty"`
	ActualReturnDate   *time.Time          `bson:"actualReturnDate,omitempty" json:"actualReturnDate,omitempty"`
	IssueDescription   string              `bson:"issueDescription,omitempty" json:"issueDescription,omitempty"`
	IssueImages        []IssueImage        `bson:"issueImages,omitempty" json:"issueImages,omitempty"`
	AdminNotes         string              `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`
	ProcessedBy        *primitive.ObjectID `bson:"processedBy,omitempty" json:"processedBy,omitempty"`
	ProcessedAt        *time.Time          `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// MissingFields returns the fields required by the request type that are absent.
func (r *AssetRequest) MissingFields() []string {
	var missing []string
	switch r.RequestType {
	case RequestBorrow:
		if r.StartDate == nil {
			missing = append(missing, "startDate")
		}
		if r.ExpectedReturnDate == nil {
			missing = append(missing, "expectedReturnDate")
		}
	case RequestReportIssue:
		if r.IssueDescription == "" {
			missing = append(missing, "issueDescription")
		}
	}
	return missing
}
