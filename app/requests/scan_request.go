package requests

import "github.com/parcel-tracker/internal/scanner"

// ScanTextRequest request scan từ text OCR
type ScanTextRequest struct {
	Text              string `json:"text"`
	ExpectedRouteCode string `json:"expected_route_code,omitempty"`
	SubDistrict       string `json:"sub_district" binding:"required"`
	Village           string `json:"village,omitempty"`
}

// ToInput chuyển sang input của engine
func (r *ScanTextRequest) ToInput() scanner.ScanInput {
	return scanner.ScanInput{
		Text:              r.Text,
		ExpectedRouteCode: r.ExpectedRouteCode,
		SubDistrict:       r.SubDistrict,
		Village:           r.Village,
	}
}

// ManualScanRequest request nhập địa chỉ bằng tay
type ManualScanRequest struct {
	Address           string `json:"address" binding:"required"`
	ExpectedRouteCode string `json:"expected_route_code,omitempty"`
	SubDistrict       string `json:"sub_district" binding:"required"`
	Village           string `json:"village,omitempty"`
}

// ToInput chuyển sang input của engine
func (r *ManualScanRequest) ToInput() scanner.ScanInput {
	return scanner.ScanInput{
		ManualAddress:     r.Address,
		ExpectedRouteCode: r.ExpectedRouteCode,
		SubDistrict:       r.SubDistrict,
		Village:           r.Village,
	}
}

// ImageScanForm field multipart đi kèm ảnh
type ImageScanForm struct {
	ExpectedRouteCode string `form:"expected_route_code"`
	SubDistrict       string `form:"sub_district" binding:"required"`
	Village           string `form:"village"`
}

// ToInput chuyển sang input của engine, text được điền sau khi OCR
func (r *ImageScanForm) ToInput() scanner.ScanInput {
	return scanner.ScanInput{
		ExpectedRouteCode: r.ExpectedRouteCode,
		SubDistrict:       r.SubDistrict,
		Village:           r.Village,
	}
}

// ListScansQuery query lọc scan log
type ListScansQuery struct {
	SubDistrict string `form:"sub_district"`
	Village     string `form:"village"`
	Outcome     string `form:"outcome"`
	Limit       int    `form:"limit"`
}
