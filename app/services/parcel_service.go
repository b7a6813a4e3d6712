package services

import (
	"context"
	"errors"
	"strings"

	"github.com/parcel-tracker/app/models"
	"github.com/parcel-tracker/internal/search"
	"go.uber.org/zap"
)

// ErrSearchDisabled chưa cấu hình Meilisearch
var ErrSearchDisabled = errors.New("tìm kiếm chưa được bật")

// DirectoryIndex index full-text của danh bạ
type DirectoryIndex interface {
	Search(ctx context.Context, query, subDistrict, village string, limit int) ([]search.AddressDoc, error)
	Reindex(records []models.AddressRecord) (int, error)
	Upsert(record *models.AddressRecord) error
	Remove(id string) error
}

// ParcelService quản lý danh bạ địa chỉ: CRUD, trạng thái lên xe, reset, location
type ParcelService struct {
	directory AddressDirectory
	cache     ICacheService
	index     DirectoryIndex
	logger    *zap.Logger
}

// NewParcelService tạo mới ParcelService. cache và index có thể nil.
func NewParcelService(directory AddressDirectory, cache ICacheService, index DirectoryIndex, logger *zap.Logger) *ParcelService {
	return &ParcelService{
		directory: directory,
		cache:     cache,
		index:     index,
		logger:    logger,
	}
}

// List lấy record theo sub-district/village, đã sắp xếp
func (ps *ParcelService) List(ctx context.Context, subDistrict, village string) ([]models.AddressRecord, error) {
	return ps.directory.Fetch(ctx, subDistrict, village)
}

// ListAll lấy toàn bộ record
func (ps *ParcelService) ListAll(ctx context.Context) ([]models.AddressRecord, error) {
	return ps.directory.FetchAll(ctx)
}

// Get lấy một record
func (ps *ParcelService) Get(ctx context.Context, id string) (*models.AddressRecord, error) {
	return ps.directory.Get(ctx, id)
}

// Create thêm địa chỉ mới
func (ps *ParcelService) Create(ctx context.Context, record *models.AddressRecord) (*models.AddressRecord, error) {
	record.SubDistrict = strings.TrimSpace(record.SubDistrict)
	record.Village = strings.TrimSpace(record.Village)
	record.Address = strings.TrimSpace(record.Address)

	created, err := ps.directory.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	ps.invalidate(ctx, created.SubDistrict)
	ps.upsertIndex(created)
	ps.logger.Info("Parcel created",
		zap.String("record_id", created.ID),
		zap.String("sub_district", created.SubDistrict),
		zap.String("village", created.Village))
	return created, nil
}

// Update cập nhật record
func (ps *ParcelService) Update(ctx context.Context, record *models.AddressRecord) (*models.AddressRecord, error) {
	updated, err := ps.directory.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	ps.invalidate(ctx, updated.SubDistrict)
	ps.upsertIndex(updated)
	return updated, nil
}

// Delete xóa record
func (ps *ParcelService) Delete(ctx context.Context, record *models.AddressRecord) error {
	target := record
	if record.ID != "" {
		existing, err := ps.directory.Get(ctx, record.ID)
		if err != nil {
			return err
		}
		target = existing
	}

	if err := ps.directory.Delete(ctx, record); err != nil {
		return err
	}

	ps.invalidate(ctx, target.SubDistrict)
	if ps.index != nil && target.ID != "" {
		if err := ps.index.Remove(target.ID); err != nil {
			ps.logger.Warn("Không xóa được document khỏi index", zap.String("record_id", target.ID), zap.Error(err))
		}
	}
	return nil
}

// Reorder cập nhật display order hàng loạt
func (ps *ParcelService) Reorder(ctx context.Context, updates []models.OrderUpdate) (int, error) {
	updated, err := ps.directory.Reorder(ctx, updates)
	if err != nil {
		return updated, err
	}
	ps.clearCache(ctx)
	return updated, nil
}

// UpdateStatus đặt trạng thái lên xe bằng tay. Lần đầu count = 1, quét lại thì count + 1,
// hủy chỉ bỏ cờ lên xe và giữ nguyên count.
func (ps *ParcelService) UpdateStatus(ctx context.Context, id string, onTruck, duplicate bool) (*models.AddressRecord, error) {
	mutation := &models.Mutation{RecordID: id, OnTruck: &onTruck}
	switch {
	case !onTruck:
	case duplicate:
		mutation.ParcelCountDelta = 1
	default:
		first := 1
		mutation.SetParcelCount = &first
	}

	updated, err := ps.directory.ApplyMutation(ctx, mutation)
	if err != nil {
		return nil, err
	}

	ps.invalidate(ctx, updated.SubDistrict)
	ps.upsertIndex(updated)
	ps.logger.Info("Parcel status updated",
		zap.String("record_id", id),
		zap.Bool("on_truck", onTruck),
		zap.Bool("duplicate", duplicate),
		zap.Int("parcel_count", updated.ParcelCount))
	return updated, nil
}

// Reset bỏ cờ lên xe và count của toàn bộ record
func (ps *ParcelService) Reset(ctx context.Context) (int64, error) {
	count, err := ps.directory.ResetAll(ctx)
	if err != nil {
		return 0, err
	}
	ps.clearCache(ctx)
	ps.logger.Info("Parcels reset", zap.Int64("count", count))
	return count, nil
}

// Locations sub-district -> villages
func (ps *ParcelService) Locations(ctx context.Context) (models.Locations, error) {
	return ps.directory.Locations(ctx)
}

// VillageNames mã village -> tên đầy đủ
func (ps *ParcelService) VillageNames(ctx context.Context) (map[string]string, error) {
	return ps.directory.VillageNames(ctx)
}

// Search tìm địa chỉ qua index full-text
func (ps *ParcelService) Search(ctx context.Context, query, subDistrict, village string, limit int) ([]search.AddressDoc, error) {
	if ps.index == nil {
		return nil, ErrSearchDisabled
	}
	docs, err := ps.index.Search(ctx, query, subDistrict, village, limit)
	if err != nil {
		return nil, newCollaboratorError(CollaboratorSearch, "search", err)
	}
	return docs, nil
}

// SyncIndex đồng bộ một record vào index, dùng bởi worker khi nhận scan event
func (ps *ParcelService) SyncIndex(ctx context.Context, id string) error {
	if ps.index == nil {
		return ErrSearchDisabled
	}
	record, err := ps.directory.Get(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		if err := ps.index.Remove(id); err != nil {
			return newCollaboratorError(CollaboratorSearch, "remove", err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	if err := ps.index.Upsert(record); err != nil {
		return newCollaboratorError(CollaboratorSearch, "upsert", err)
	}
	return nil
}

func (ps *ParcelService) upsertIndex(record *models.AddressRecord) {
	if ps.index == nil {
		return
	}
	if err := ps.index.Upsert(record); err != nil {
		ps.logger.Warn("Không cập nhật được index", zap.String("record_id", record.ID), zap.Error(err))
	}
}

func (ps *ParcelService) invalidate(ctx context.Context, subDistrict string) {
	if ps.cache == nil {
		return
	}
	if err := ps.cache.InvalidateArea(ctx, subDistrict); err != nil {
		ps.logger.Warn("Cache invalidate error", zap.String("sub_district", subDistrict), zap.Error(err))
	}
}

func (ps *ParcelService) clearCache(ctx context.Context) {
	if ps.cache == nil {
		return
	}
	if err := ps.cache.Clear(ctx); err != nil {
		ps.logger.Warn("Cache clear error", zap.Error(err))
	}
}
