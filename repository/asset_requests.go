// repository/asset_requests.go
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lnwboom/office-assets/database"
	"github.com/lnwboom/office-assets/models"
)

type MongoAssetRequestRepository struct {
	coll *mongo.Collection
}

func NewAssetRequestRepository(db *mongo.Database) *MongoAssetRequestRepository {
	return &MongoAssetRequestRepository{coll: db.Collection(database.AssetRequestsCollection)}
}

func requestFilter(f RequestFilter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.RequestType != "" {
		q["requestType"] = f.RequestType
	}
	if f.Asset != nil {
		q["asset"] = *f.Asset
	}
	if f.RequestedBy != nil {
		q["requestedBy"] = *f.RequestedBy
	}
	return q
}

func (r *MongoAssetRequestRepository) Create(ctx context.Context, req *models.AssetRequest) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, req)
	return classify(err)
}

func (r *MongoAssetRequestRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AssetRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var req models.AssetRequest
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, classify(err)
	}
	return &req, nil
}

func (r *MongoAssetRequestRepository) List(ctx context.Context, f RequestFilter) ([]models.AssetRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, requestFilter(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reqs := []models.AssetRequest{}
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *MongoAssetRequestRepository) Exists(ctx context.Context, f RequestFilter) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, requestFilter(f), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoAssetRequestRepository) Transition(ctx context.Context, id primitive.ObjectID, from models.RequestStatus, t RequestTransition) (*models.AssetRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"status": t.To, "updatedAt": t.UpdatedAt}
	if t.AdminNotes != nil {
		set["adminNotes"] = *t.AdminNotes
	}
	if t.ProcessedBy != nil {
		set["processedBy"] = *t.ProcessedBy
	}
	if t.ProcessedAt != nil {
		set["processedAt"] = *t.ProcessedAt
	}
	if t.ActualReturnDate != nil {
		set["actualReturnDate"] = *t.ActualReturnDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var req models.AssetRequest
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set}, opts).Decode(&req)
	if err != nil {
		return nil, classify(err)
	}
	return &req, nil
}

func (r *MongoAssetRequestRepository) DeleteByAsset(ctx context.Context, asset primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"asset": asset})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoAssetRequestRepository) CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[models.RequestStatus]int)
	for cursor.Next(ctx) {
		var row struct {
			Status models.RequestStatus `bson:"_id"`
			Count  int                  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.Count
	}
	return counts, cursor.Err()
}
