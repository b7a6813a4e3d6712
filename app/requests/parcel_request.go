package requests

import "github.com/parcel-tracker/app/models"

// CreateParcelRequest request thêm địa chỉ vào danh bạ
type CreateParcelRequest struct {
	SubDistrict string  `json:"sub_district" binding:"required"` // Tambon
	Village     string  `json:"village" binding:"required"`      // Mu ban
	Address     string  `json:"address" binding:"required"`
	ParcelCount int     `json:"parcel_count,omitempty"`
	OnTruck     bool    `json:"on_truck,omitempty"`
	Latitude    *string `json:"latitude,omitempty"`
	Longitude   *string `json:"longitude,omitempty"`
}

// ToRecord chuyển sang model
func (r *CreateParcelRequest) ToRecord() *models.AddressRecord {
	return &models.AddressRecord{
		SubDistrict: r.SubDistrict,
		Village:     r.Village,
		Address:     r.Address,
		ParcelCount: r.ParcelCount,
		OnTruck:     r.OnTruck,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

// UpdateParcelRequest request cập nhật, xác định record theo id hoặc (sub_district, village, address)
type UpdateParcelRequest struct {
	ID          string  `json:"id,omitempty"`
	SubDistrict string  `json:"sub_district" binding:"required"`
	Village     string  `json:"village" binding:"required"`
	Address     string  `json:"address" binding:"required"`
	ParcelCount int     `json:"parcel_count"`
	OnTruck     bool    `json:"on_truck"`
	Latitude    *string `json:"latitude,omitempty"`
	Longitude   *string `json:"longitude,omitempty"`
}

// ToRecord chuyển sang model
func (r *UpdateParcelRequest) ToRecord() *models.AddressRecord {
	return &models.AddressRecord{
		ID:          r.ID,
		SubDistrict: r.SubDistrict,
		Village:     r.Village,
		Address:     r.Address,
		ParcelCount: r.ParcelCount,
		OnTruck:     r.OnTruck,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

// DeleteParcelRequest request xóa record
type DeleteParcelRequest struct {
	ID          string `json:"id,omitempty"`
	SubDistrict string `json:"sub_district,omitempty"`
	Village     string `json:"village,omitempty"`
	Address     string `json:"address,omitempty"`
}

// Valid có id hoặc đủ bộ ba
func (r *DeleteParcelRequest) Valid() bool {
	return r.ID != "" || (r.SubDistrict != "" && r.Village != "" && r.Address != "")
}

// UpdateStatusRequest request đặt trạng thái lên xe
type UpdateStatusRequest struct {
	OnTruck     *bool `json:"on_truck" binding:"required"`
	IsDuplicate bool  `json:"is_duplicate,omitempty"` // Quét lại: count + 1
}

// ReorderRequest request cập nhật display order
type ReorderRequest struct {
	Updates []models.OrderUpdate `json:"updates" binding:"required,min=1,dive"`
}

// InvalidateCacheRequest request xóa cache
type InvalidateCacheRequest struct {
	SubDistrict string `json:"sub_district,omitempty"` // Rỗng = xóa hết
}
