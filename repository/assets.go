// repository/assets.go
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

type MongoAssetRepository struct {
	coll *mongo.Collection
}

func NewAssetRepository(db *mongo.Database) *MongoAssetRepository {
	return &MongoAssetRepository{coll: db.Collection(database.AssetsCollection)}
}

func assetFilter(q AssetQuery) bson.M {
	filter := bson.M{}
	if q.From == nil && q.To == nil {
		return filter
	}
	field := q.DateField
	if field == "" {
		field = "createdAt"
	}
	bounds := bson.M{}
	if q.From != nil {
		bounds["$gte"] = *q.From
	}
	if q.To != nil {
		bounds["$lte"] = *q.To
	}
	filter[field] = bounds
	return filter
}

func (r *MongoAssetRepository) List(ctx context.Context, q AssetQuery) ([]models.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	sortField := q.SortField
	if sortField == "" {
		sortField = "createdAt"
	}
	dir := 1
	if q.Descending {
		dir = -1
	}
	// _id breaks ties so equal sort keys page deterministically.
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: dir}, {Key: "_id", Value: dir}})

	cursor, err := r.coll.Find(ctx, assetFilter(q), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assets := []models.Asset{}
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *MongoAssetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var asset models.Asset
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&asset); err != nil {
		return nil, classify(err)
	}
	return &asset, nil
}

func (r *MongoAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if asset.ID.IsZero() {
		asset.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, asset); err != nil {
		return classify(err, database.CodeIndex)
	}
	return nil
}

func assetUpdateDoc(u AssetUpdate) bson.M {
	set := bson.M{"updatedAt": u.UpdatedAt}
	if u.Code != nil {
		set["code"] = *u.Code
	}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Type != nil {
		set["type"] = *u.Type
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.PurchaseDate != nil {
		set["purchaseDate"] = *u.PurchaseDate
	}
	if u.LastInspectionDate != nil {
		set["lastInspectionDate"] = *u.LastInspectionDate
	}

	update := bson.M{}
	if u.ClearCurrentHolder {
		update["$unset"] = bson.M{"currentHolder": ""}
	} else if u.CurrentHolder != nil {
		set["currentHolder"] = *u.CurrentHolder
	}
	update["$set"] = set
	return update
}

func (r *MongoAssetRepository) Update(ctx context.Context, id primitive.ObjectID, u AssetUpdate) (*models.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"_id": id}
	if u.IfStatus != nil {
		filter["status"] = *u.IfStatus
	}
	if u.IfHolder != nil {
		filter["currentHolder"] = *u.IfHolder
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var asset models.Asset
	if err := r.coll.FindOneAndUpdate(ctx, filter, assetUpdateDoc(u), opts).Decode(&asset); err != nil {
		return nil, classify(err, database.CodeIndex)
	}
	return &asset, nil
}

func (r *MongoAssetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoAssetRepository) CountByStatus(ctx context.Context) (map[models.AssetStatus]int, error) {
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

	counts := make(map[models.AssetStatus]int)
	for cursor.Next(ctx) {
		var row struct {
			Status models.AssetStatus `bson:"_id"`
			Count  int                `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.Count
	}
	return counts, cursor.Err()
}
