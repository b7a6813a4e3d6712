package models

import (
	"time"
)

// AddressRecord một địa chỉ giao hàng trong danh bạ (sub-district / village)
type AddressRecord struct {
	ID           string    `bson:"_id" json:"id" db:"id"`
	SubDistrict  string    `bson:"sub_district" json:"sub_district" db:"sub_district"` // Area
	Village      string    `bson:"village" json:"village" db:"village"`                // Sub-area
	Address      string    `bson:"address" json:"address" db:"address"`                // Free-text address line
	ParcelCount  int       `bson:"parcel_count" json:"parcel_count" db:"parcel_count"` // Shipped-count
	OnTruck      bool      `bson:"on_truck" json:"on_truck" db:"on_truck"`             // Loaded-flag
	DisplayOrder *int      `bson:"display_order,omitempty" json:"display_order,omitempty" db:"display_order"`
	Latitude     *string   `bson:"latitude,omitempty" json:"latitude,omitempty" db:"latitude"`
	Longitude    *string   `bson:"longitude,omitempty" json:"longitude,omitempty" db:"longitude"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at,omitempty" db:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at,omitempty" db:"updated_at"`
}

// HasGPS kiểm tra record có tọa độ không
func (r *AddressRecord) HasGPS() bool {
	return r.Latitude != nil && r.Longitude != nil && *r.Latitude != "" && *r.Longitude != ""
}

// SameLocation kiểm tra hai record có cùng sub-district và village
func (r *AddressRecord) SameLocation(subDistrict, village string) bool {
	return r.SubDistrict == subDistrict && r.Village == village
}

// Mutation thay đổi mà caller cần áp dụng lên store sau một lần scan
type Mutation struct {
	RecordID         string `json:"record_id"`
	OnTruck          *bool  `json:"on_truck,omitempty"`
	SetParcelCount   *int   `json:"set_parcel_count,omitempty"`   // First scan: set when not loaded, added when already loaded
	ParcelCountDelta int    `json:"parcel_count_delta,omitempty"` // Increment (duplicate scan)
}

// IsEmpty mutation không làm gì
func (m *Mutation) IsEmpty() bool {
	return m == nil || (m.OnTruck == nil && m.SetParcelCount == nil && m.ParcelCountDelta == 0)
}

// OrderUpdate cập nhật display_order cho một record
type OrderUpdate struct {
	ID           string `json:"id" binding:"required"`
	DisplayOrder int    `json:"display_order"`
}

// Locations sub-district -> danh sách village đã sắp xếp
type Locations map[string][]string
