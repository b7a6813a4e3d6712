package scanner

import (
	"github.com/parcel-tracker/app/models"
	"github.com/parcel-tracker/internal/matcher"
)

// OutcomeKind loại kết quả của một lần scan
type OutcomeKind string

const (
	OutcomeRouteMismatch      OutcomeKind = "route_mismatch"
	OutcomeNoAddressExtracted OutcomeKind = "no_address_extracted"
	OutcomeNotFound           OutcomeKind = "not_found"
	OutcomeCrossAreaWarning   OutcomeKind = "cross_area_warning"
	OutcomeNewMatch           OutcomeKind = "new_match"
	OutcomeDuplicateMatch     OutcomeKind = "duplicate_match"
)

// IsMatch NewMatch hoặc DuplicateMatch
func (k OutcomeKind) IsMatch() bool {
	return k == OutcomeNewMatch || k == OutcomeDuplicateMatch
}

// ScanInput dữ liệu đầu vào của một lần scan. Không có state ẩn: mọi thứ engine cần đều ở đây
// hoặc trong snapshot truyền kèm.
type ScanInput struct {
	Text              string `json:"text"`                          // Text thô từ OCR
	ManualAddress     string `json:"manual_address,omitempty"`      // Nhập tay, bỏ qua normalizer và extractor
	ExpectedRouteCode string `json:"expected_route_code,omitempty"` // Operator nhập
	SubDistrict       string `json:"sub_district"`
	Village           string `json:"village"`
}

// IsManual lần scan này dùng địa chỉ nhập tay
func (in ScanInput) IsManual() bool {
	return in.ManualAddress != ""
}

// ScanOutcome kết quả phân loại, kèm message hiển thị và mutation caller cần áp dụng
type ScanOutcome struct {
	Kind              OutcomeKind           `json:"kind"`
	Message           string                `json:"message"`
	RecordID          string                `json:"record_id,omitempty"`
	Record            *models.AddressRecord `json:"record,omitempty"`
	Mutation          *models.Mutation      `json:"mutation,omitempty"`
	Ordinal           int                   `json:"ordinal,omitempty"`
	Tier              matcher.MatchTier     `json:"tier,omitempty"`
	NormalizedText    string                `json:"normalized_text,omitempty"`
	ScannedAddress    string                `json:"scanned_address,omitempty"`
	ScannedRouteCode  string                `json:"scanned_route_code,omitempty"`
	ExpectedRouteCode string                `json:"expected_route_code,omitempty"`
	ActualSubDistrict string                `json:"actual_sub_district,omitempty"`
	ActualVillage     string                `json:"actual_village,omitempty"`
	Suggestions       []matcher.Suggestion  `json:"suggestions,omitempty"`
}

// WithOrdinal trả về bản sao outcome với ordinal mới và message tương ứng. Dùng sau khi caller
// re-fetch snapshot đã áp dụng mutation.
func (o ScanOutcome) WithOrdinal(ordinal int) ScanOutcome {
	if !o.Kind.IsMatch() || ordinal <= 0 {
		return o
	}
	o.Ordinal = ordinal
	switch o.Kind {
	case OutcomeDuplicateMatch:
		o.Message = msgDuplicate(ordinal)
	case OutcomeNewMatch:
		address := o.ScannedAddress
		if o.Record != nil {
			address = o.Record.Address
		}
		o.Message = msgNewMatch(address, ordinal)
	}
	return o
}
