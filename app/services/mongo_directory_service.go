package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parcel-tracker/app/models"
	"github.com/parcel-tracker/helpers/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const parcelsCollection = "parcels"

// MongoDirectoryService AddressDirectory lưu trên MongoDB
type MongoDirectoryService struct {
	db         *mongo.Database
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoDirectoryService tạo mới MongoDirectoryService và đảm bảo indexes
func NewMongoDirectoryService(db *mongo.Database, logger *zap.Logger) *MongoDirectoryService {
	collection := db.Collection(parcelsCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sub_district", Value: 1}, {Key: "village", Value: 1}, {Key: "address", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "sub_district", Value: 1}, {Key: "village", Value: 1}, {Key: "display_order", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "on_truck", Value: 1}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Không thể tạo indexes cho parcels", zap.Error(err))
	}

	return &MongoDirectoryService{
		db:         db,
		collection: collection,
		logger:     logger,
	}
}

// Fetch lấy record theo sub-district/village
func (mds *MongoDirectoryService) Fetch(ctx context.Context, subDistrict, village string) ([]models.AddressRecord, error) {
	filter := bson.M{}
	if subDistrict != "" {
		filter["sub_district"] = subDistrict
	}
	if village != "" {
		filter["village"] = village
	}

	// Mongo xếp null lên đầu khi sort tăng dần, nên sort cuối cùng làm ở SortRecords
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := mds.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "fetch", err)
	}
	defer cursor.Close(ctx)

	records := make([]models.AddressRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "fetch", fmt.Errorf("decode parcels: %w", err))
	}

	SortRecords(records)
	return records, nil
}

// FetchAll lấy toàn bộ record
func (mds *MongoDirectoryService) FetchAll(ctx context.Context) ([]models.AddressRecord, error) {
	return mds.Fetch(ctx, "", "")
}

// Get lấy record theo id
func (mds *MongoDirectoryService) Get(ctx context.Context, id string) (*models.AddressRecord, error) {
	var record models.AddressRecord
	err := mds.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, newCollaboratorError(CollaboratorStore, "get", err)
	}
	return &record, nil
}

// Create thêm record mới với display order kế tiếp
func (mds *MongoDirectoryService) Create(ctx context.Context, record *models.AddressRecord) (*models.AddressRecord, error) {
	count, err := mds.collection.CountDocuments(ctx, addressFilter(record))
	if err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "create", err)
	}
	if count > 0 {
		return nil, ErrDuplicateAddress
	}

	nextOrder, err := mds.nextDisplayOrder(ctx)
	if err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "create", err)
	}

	r := *record
	if r.ID == "" {
		r.ID = utils.GenerateUUID()
	}
	r.DisplayOrder = &nextOrder
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt

	if _, err := mds.collection.InsertOne(ctx, &r); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateAddress
		}
		return nil, newCollaboratorError(CollaboratorStore, "create", err)
	}

	mds.logger.Info("Đã thêm parcel",
		zap.String("record_id", r.ID),
		zap.String("sub_district", r.SubDistrict),
		zap.String("village", r.Village))
	return &r, nil
}

// Update cập nhật record
func (mds *MongoDirectoryService) Update(ctx context.Context, record *models.AddressRecord) (*models.AddressRecord, error) {
	update := bson.M{"$set": bson.M{
		"sub_district": record.SubDistrict,
		"village":      record.Village,
		"address":      record.Address,
		"parcel_count": record.ParcelCount,
		"on_truck":     record.OnTruck,
		"latitude":     record.Latitude,
		"longitude":    record.Longitude,
		"updated_at":   time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.AddressRecord
	err := mds.collection.FindOneAndUpdate(ctx, selectorFilter(record), update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateAddress
		}
		return nil, newCollaboratorError(CollaboratorStore, "update", err)
	}
	return &updated, nil
}

// Delete xóa record
func (mds *MongoDirectoryService) Delete(ctx context.Context, record *models.AddressRecord) error {
	result, err := mds.collection.DeleteOne(ctx, selectorFilter(record))
	if err != nil {
		return newCollaboratorError(CollaboratorStore, "delete", err)
	}
	if result.DeletedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Reorder cập nhật display order bằng một bulk write
func (mds *MongoDirectoryService) Reorder(ctx context.Context, updates []models.OrderUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	writes := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.ID}).
			SetUpdate(bson.M{"$set": bson.M{"display_order": u.DisplayOrder, "updated_at": time.Now()}}))
	}

	result, err := mds.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, newCollaboratorError(CollaboratorStore, "reorder", err)
	}
	return int(result.MatchedCount), nil
}

// ApplyMutation áp dụng mutation, tăng count bằng $inc.
// SetParcelCount chỉ ghi đè khi record chưa lên xe, record đã lên xe thì cộng dồn.
func (mds *MongoDirectoryService) ApplyMutation(ctx context.Context, mutation *models.Mutation) (*models.AddressRecord, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.AddressRecord
	if mutation.SetParcelCount != nil {
		set := bson.M{
			"parcel_count": *mutation.SetParcelCount + mutation.ParcelCountDelta,
			"updated_at":   now,
		}
		if mutation.OnTruck != nil {
			set["on_truck"] = *mutation.OnTruck
		}

		filter := bson.M{"_id": mutation.RecordID, "on_truck": bson.M{"$ne": true}}
		err := mds.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
		if err == nil {
			return &updated, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newCollaboratorError(CollaboratorStore, "apply_mutation", err)
		}
		// Đã lên xe từ trước (scan đồng thời): cộng dồn
	}

	set := bson.M{"updated_at": now}
	if mutation.OnTruck != nil {
		set["on_truck"] = *mutation.OnTruck
	}
	update := bson.M{"$set": set}
	if inc := parcelCountIncrement(mutation); inc != 0 {
		update["$inc"] = bson.M{"parcel_count": inc}
	}

	err := mds.collection.FindOneAndUpdate(ctx, bson.M{"_id": mutation.RecordID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, newCollaboratorError(CollaboratorStore, "apply_mutation", err)
	}
	return &updated, nil
}

// ResetAll bỏ cờ lên xe cho toàn bộ record
func (mds *MongoDirectoryService) ResetAll(ctx context.Context) (int64, error) {
	result, err := mds.collection.UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{
		"on_truck":     false,
		"parcel_count": 0,
		"updated_at":   time.Now(),
	}})
	if err != nil {
		return 0, newCollaboratorError(CollaboratorStore, "reset", err)
	}
	return result.MatchedCount, nil
}

// Locations sub-district -> villages
func (mds *MongoDirectoryService) Locations(ctx context.Context) (models.Locations, error) {
	opts := options.Find().
		SetProjection(bson.M{"sub_district": 1, "village": 1}).
		SetSort(bson.D{{Key: "sub_district", Value: 1}, {Key: "village", Value: 1}})

	cursor, err := mds.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "locations", err)
	}
	defer cursor.Close(ctx)

	var pairs []models.AddressRecord
	if err := cursor.All(ctx, &pairs); err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "locations", err)
	}
	return BuildLocations(pairs), nil
}

// VillageNames mã village -> tên đầy đủ
func (mds *MongoDirectoryService) VillageNames(ctx context.Context) (map[string]string, error) {
	values, err := mds.collection.Distinct(ctx, "village", bson.M{})
	if err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "village_names", err)
	}

	villages := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			villages = append(villages, s)
		}
	}
	return BuildVillageNames(villages), nil
}

func (mds *MongoDirectoryService) nextDisplayOrder(ctx context.Context) (int, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "display_order", Value: -1}}).
		SetProjection(bson.M{"display_order": 1})

	var top models.AddressRecord
	err := mds.collection.FindOne(ctx, bson.M{"display_order": bson.M{"$ne": nil}}, opts).Decode(&top)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 1, nil
		}
		return 0, err
	}
	if top.DisplayOrder == nil {
		return 1, nil
	}
	return *top.DisplayOrder + 1, nil
}

func addressFilter(record *models.AddressRecord) bson.M {
	return bson.M{
		"sub_district": record.SubDistrict,
		"village":      record.Village,
		"address":      record.Address,
	}
}

func selectorFilter(record *models.AddressRecord) bson.M {
	if record.ID != "" {
		return bson.M{"_id": record.ID}
	}
	return addressFilter(record)
}
