package models

import (
	"time"
)

// ScanSource nguồn dữ liệu của một lần scan
type ScanSource string

const (
	ScanSourceText   ScanSource = "text"
	ScanSourceImage  ScanSource = "image"
	ScanSourceManual ScanSource = "manual"
)

// ScanLog bản ghi audit cho mỗi lần scan
type ScanLog struct {
	ID                string     `bson:"_id" json:"id"`
	Source            ScanSource `bson:"source" json:"source"`
	SubDistrict       string     `bson:"sub_district" json:"sub_district"`
	Village           string     `bson:"village" json:"village"`
	RawText           string     `bson:"raw_text" json:"raw_text"`
	ScannedAddress    string     `bson:"scanned_address,omitempty" json:"scanned_address,omitempty"`
	ScannedRouteCode  string     `bson:"scanned_route_code,omitempty" json:"scanned_route_code,omitempty"`
	ExpectedRouteCode string     `bson:"expected_route_code,omitempty" json:"expected_route_code,omitempty"`
	Outcome           string     `bson:"outcome" json:"outcome"`
	Message           string     `bson:"message" json:"message"`
	RecordID          string     `bson:"record_id,omitempty" json:"record_id,omitempty"`
	Ordinal           int        `bson:"ordinal,omitempty" json:"ordinal,omitempty"`
	ImageKey          string     `bson:"image_key,omitempty" json:"image_key,omitempty"` // Object key in the label archive
	ApplyError        string     `bson:"apply_error,omitempty" json:"apply_error,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
}
