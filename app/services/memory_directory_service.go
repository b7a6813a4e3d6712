package services

import (
	"context"
	"sync"
	"time"

	"github.com/parcel-tracker/app/models"
	"github.com/parcel-tracker/helpers/utils"
)

// MemoryDirectoryService AddressDirectory in-memory, dùng cho dev local và test
type MemoryDirectoryService struct {
	records []models.AddressRecord
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryDirectoryService tạo mới MemoryDirectoryService với dữ liệu ban đầu (có thể rỗng)
func NewMemoryDirectoryService(seed []models.AddressRecord) *MemoryDirectoryService {
	records := make([]models.AddressRecord, 0, len(seed))
	for _, r := range seed {
		if r.ID == "" {
			r.ID = utils.GenerateUUID()
		}
		records = append(records, r)
	}
	return &MemoryDirectoryService{records: records, now: time.Now}
}

// Fetch lấy record theo sub-district/village
func (mds *MemoryDirectoryService) Fetch(ctx context.Context, subDistrict, village string) ([]models.AddressRecord, error) {
	mds.mu.RLock()
	defer mds.mu.RUnlock()

	out := make([]models.AddressRecord, 0)
	for _, r := range mds.records {
		if subDistrict != "" && r.SubDistrict != subDistrict {
			continue
		}
		if village != "" && r.Village != village {
			continue
		}
		out = append(out, r)
	}
	SortRecords(out)
	return out, nil
}

// FetchAll lấy toàn bộ record
func (mds *MemoryDirectoryService) FetchAll(ctx context.Context) ([]models.AddressRecord, error) {
	return mds.Fetch(ctx, "", "")
}

// Get lấy record theo id
func (mds *MemoryDirectoryService) Get(ctx context.Context, id string) (*models.AddressRecord, error) {
	mds.mu.RLock()
	defer mds.mu.RUnlock()

	if i := mds.indexByID(id); i >= 0 {
		r := mds.records[i]
		return &r, nil
	}
	return nil, ErrRecordNotFound
}

// Create thêm record mới
func (mds *MemoryDirectoryService) Create(ctx context.Context, record *models.AddressRecord) (*models.AddressRecord, error) {
	mds.mu.Lock()
	defer mds.mu.Unlock()

	if mds.indexByAddress(record.SubDistrict, record.Village, record.Address) >= 0 {
		return nil, ErrDuplicateAddress
	}

	r := *record
	if r.ID == "" {
		r.ID = utils.GenerateUUID()
	}
	order := NextDisplayOrder(mds.records)
	r.DisplayOrder = &order
	r.CreatedAt = mds.now()
	r.UpdatedAt = r.CreatedAt
	mds.records = append(mds.records, r)
	return &r, nil
}

// Update cập nhật record
func (mds *MemoryDirectoryService) Update(ctx context.Context, record *models.AddressRecord) (*models.AddressRecord, error) {
	mds.mu.Lock()
	defer mds.mu.Unlock()

	i := mds.indexBySelector(record)
	if i < 0 {
		return nil, ErrRecordNotFound
	}

	r := &mds.records[i]
	r.SubDistrict = record.SubDistrict
	r.Village = record.Village
	r.Address = record.Address
	r.ParcelCount = record.ParcelCount
	r.OnTruck = record.OnTruck
	r.Latitude = record.Latitude
	r.Longitude = record.Longitude
	r.UpdatedAt = mds.now()
	out := *r
	return &out, nil
}

// Delete xóa record
func (mds *MemoryDirectoryService) Delete(ctx context.Context, record *models.AddressRecord) error {
	mds.mu.Lock()
	defer mds.mu.Unlock()

	i := mds.indexBySelector(record)
	if i < 0 {
		return ErrRecordNotFound
	}
	mds.records = append(mds.records[:i], mds.records[i+1:]...)
	return nil
}

// Reorder cập nhật display order
func (mds *MemoryDirectoryService) Reorder(ctx context.Context, updates []models.OrderUpdate) (int, error) {
	mds.mu.Lock()
	defer mds.mu.Unlock()

	updated := 0
	for _, u := range updates {
		if i := mds.indexByID(u.ID); i >= 0 {
			order := u.DisplayOrder
			mds.records[i].DisplayOrder = &order
			updated++
		}
	}
	return updated, nil
}

// ApplyMutation áp dụng mutation dưới lock.
// SetParcelCount chỉ ghi đè khi record chưa lên xe, record đã lên xe thì cộng dồn.
func (mds *MemoryDirectoryService) ApplyMutation(ctx context.Context, mutation *models.Mutation) (*models.AddressRecord, error) {
	mds.mu.Lock()
	defer mds.mu.Unlock()

	i := mds.indexByID(mutation.RecordID)
	if i < 0 {
		return nil, ErrRecordNotFound
	}

	r := &mds.records[i]
	if mutation.SetParcelCount != nil && !r.OnTruck {
		r.ParcelCount = *mutation.SetParcelCount + mutation.ParcelCountDelta
	} else {
		r.ParcelCount += parcelCountIncrement(mutation)
	}
	if mutation.OnTruck != nil {
		r.OnTruck = *mutation.OnTruck
	}
	r.UpdatedAt = mds.now()
	out := *r
	return &out, nil
}

// ResetAll bỏ cờ lên xe cho toàn bộ record
func (mds *MemoryDirectoryService) ResetAll(ctx context.Context) (int64, error) {
	mds.mu.Lock()
	defer mds.mu.Unlock()

	for i := range mds.records {
		mds.records[i].OnTruck = false
		mds.records[i].ParcelCount = 0
	}
	return int64(len(mds.records)), nil
}

// Locations sub-district -> villages
func (mds *MemoryDirectoryService) Locations(ctx context.Context) (models.Locations, error) {
	mds.mu.RLock()
	defer mds.mu.RUnlock()
	return BuildLocations(mds.records), nil
}

// VillageNames mã village -> tên đầy đủ
func (mds *MemoryDirectoryService) VillageNames(ctx context.Context) (map[string]string, error) {
	mds.mu.RLock()
	defer mds.mu.RUnlock()

	villages := make([]string, 0, len(mds.records))
	for _, r := range mds.records {
		villages = append(villages, r.Village)
	}
	return BuildVillageNames(villages), nil
}

func (mds *MemoryDirectoryService) indexByID(id string) int {
	for i := range mds.records {
		if mds.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (mds *MemoryDirectoryService) indexByAddress(subDistrict, village, address string) int {
	for i := range mds.records {
		r := &mds.records[i]
		if r.SameLocation(subDistrict, village) && r.Address == address {
			return i
		}
	}
	return -1
}

func (mds *MemoryDirectoryService) indexBySelector(record *models.AddressRecord) int {
	if record.ID != "" {
		return mds.indexByID(record.ID)
	}
	return mds.indexByAddress(record.SubDistrict, record.Village, record.Address)
}
