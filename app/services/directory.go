package services

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/parcel-tracker/app/models"
)

// AddressDirectory store của address record. Engine chỉ đọc snapshot, mọi thay đổi đi qua đây.
type AddressDirectory interface {
	// Fetch lấy record theo sub-district/village (rỗng = không lọc), đã lên xe trước,
	// sau đó theo display order tăng dần, null xếp cuối
	Fetch(ctx context.Context, subDistrict, village string) ([]models.AddressRecord, error)

	// FetchAll lấy toàn bộ record
	FetchAll(ctx context.Context) ([]models.AddressRecord, error)

	// Get lấy record theo id
	Get(ctx context.Context, id string) (*models.AddressRecord, error)

	// Create thêm record mới, trả ErrDuplicateAddress nếu trùng (sub-district, village, address)
	Create(ctx context.Context, record *models.AddressRecord) (*models.AddressRecord, error)

	// Update cập nhật record, xác định theo id hoặc (sub-district, village, address)
	Update(ctx context.Context, record *models.AddressRecord) (*models.AddressRecord, error)

	// Delete xóa record, xác định giống Update
	Delete(ctx context.Context, record *models.AddressRecord) error

	// Reorder cập nhật display order hàng loạt
	Reorder(ctx context.Context, updates []models.OrderUpdate) (int, error)

	// ApplyMutation áp dụng mutation từ scan. Tăng count là atomic ở store.
	ApplyMutation(ctx context.Context, mutation *models.Mutation) (*models.AddressRecord, error)

	// ResetAll bỏ cờ lên xe và đưa count về 0 cho toàn bộ record
	ResetAll(ctx context.Context) (int64, error)

	// Locations sub-district -> danh sách village
	Locations(ctx context.Context) (models.Locations, error)

	// VillageNames mã village -> tên đầy đủ
	VillageNames(ctx context.Context) (map[string]string, error)
}

var reVillageNumber = regexp.MustCompile(`\d+`)

// SortRecords sắp xếp record: đã lên xe trước, sau đó display order tăng dần (null cuối).
// Sort ổn định nên hòa thì giữ thứ tự đầu vào.
func SortRecords(records []models.AddressRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := &records[i], &records[j]
		if a.OnTruck != b.OnTruck {
			return a.OnTruck
		}
		switch {
		case a.DisplayOrder != nil && b.DisplayOrder != nil:
			return *a.DisplayOrder < *b.DisplayOrder
		case a.DisplayOrder != nil:
			return true
		default:
			return false
		}
	})
}

// BuildLocations gom cặp (sub-district, village) thành map, village sắp theo số đứng đầu
func BuildLocations(pairs []models.AddressRecord) models.Locations {
	locations := make(models.Locations)
	seen := make(map[string]bool)
	for _, p := range pairs {
		if p.SubDistrict == "" {
			continue
		}
		key := p.SubDistrict + "\x00" + p.Village
		if seen[key] {
			continue
		}
		seen[key] = true
		locations[p.SubDistrict] = append(locations[p.SubDistrict], p.Village)
	}

	for sub := range locations {
		villages := locations[sub]
		sort.SliceStable(villages, func(i, j int) bool {
			ni, nj := villageNumber(villages[i]), villageNumber(villages[j])
			if ni != nj {
				return ni < nj
			}
			return villages[i] < villages[j]
		})
	}
	return locations
}

// BuildVillageNames map mã village (phần trước khoảng trắng đầu tiên) -> tên đầy đủ.
// Mã trùng thì tên sau cùng theo thứ tự sắp xếp thắng.
func BuildVillageNames(villages []string) map[string]string {
	sorted := append([]string(nil), villages...)
	sort.Strings(sorted)

	names := make(map[string]string, len(sorted))
	for _, v := range sorted {
		if v == "" {
			continue
		}
		code := strings.SplitN(v, " ", 2)[0]
		names[code] = v
	}
	return names
}

// NextDisplayOrder display order lớn nhất + 1
func NextDisplayOrder(records []models.AddressRecord) int {
	highest := 0
	for i := range records {
		if records[i].DisplayOrder != nil && *records[i].DisplayOrder > highest {
			highest = *records[i].DisplayOrder
		}
	}
	return highest + 1
}

func villageNumber(village string) int {
	m := reVillageNumber.FindString(village)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// parcelCountIncrement lượng cộng thêm khi record đã lên xe: SetParcelCount cũng được cộng dồn
func parcelCountIncrement(mutation *models.Mutation) int {
	inc := mutation.ParcelCountDelta
	if mutation.SetParcelCount != nil {
		inc += *mutation.SetParcelCount
	}
	return inc
}

// snapshotKey cache key cho snapshot của một sub-district/village
func snapshotKey(subDistrict, village string) string {
	return areaKeyPrefix(subDistrict) + escapeKeyPart(village)
}

// areaKeyPrefix prefix của mọi snapshot trong một sub-district
func areaKeyPrefix(subDistrict string) string {
	return "snapshot:" + escapeKeyPart(subDistrict) + ":"
}

// escapeKeyPart mã hoá '%' và ':' để tên có dấu ':' không trùng prefix của sub-district khác
func escapeKeyPart(part string) string {
	return keyPartEscaper.Replace(part)
}

var keyPartEscaper = strings.NewReplacer("%", "%25", ":", "%3A")
