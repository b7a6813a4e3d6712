package scanner

import (
	"github.com/parcel-tracker/app/models"
	"github.com/parcel-tracker/internal/matcher"
	"github.com/parcel-tracker/internal/normalizer"
)

// Classifier gộp kết quả kiểm tra route code và kết quả matching thành một ScanOutcome
type Classifier struct{}

// NewClassifier tạo mới Classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Precheck các bước không cần matching: thiếu address token, route code không khớp.
// Trả về (outcome, true) khi đã có kết luận.
func (c *Classifier) Precheck(input ScanInput, ext normalizer.Extraction) (ScanOutcome, bool) {
	outcome := ScanOutcome{
		ScannedAddress:    ext.AddressToken,
		ScannedRouteCode:  ext.RouteCode,
		ExpectedRouteCode: input.ExpectedRouteCode,
	}

	if !ext.HasAddress() {
		outcome.Kind = OutcomeNoAddressExtracted
		if input.IsManual() {
			outcome.Message = msgNoManualAddress()
		} else {
			outcome.Message = msgNoAddressFromImage()
		}
		return outcome, true
	}

	if ext.HasRouteCode() && hasRouteCode(input.ExpectedRouteCode) &&
		!RouteCodeMatches(ext.RouteCode, input.ExpectedRouteCode) {
		outcome.Kind = OutcomeRouteMismatch
		outcome.Message = msgRouteMismatch(ext.RouteCode, input.ExpectedRouteCode)
		return outcome, true
	}

	return outcome, false
}

// Classify phân loại theo thứ tự: NoAddressExtracted, RouteMismatch, NotFound,
// CrossAreaWarning, DuplicateMatch, NewMatch. primary là snapshot của sub-area hiện tại,
// dùng để tính ordinal.
func (c *Classifier) Classify(input ScanInput, ext normalizer.Extraction, primaryMatch, fallbackMatch *matcher.MatchResult, primary []models.AddressRecord) ScanOutcome {
	outcome, done := c.Precheck(input, ext)
	if done {
		return outcome
	}

	match := primaryMatch
	if match == nil {
		match = fallbackMatch
	}
	if match == nil {
		outcome.Kind = OutcomeNotFound
		outcome.Message = msgNotFound(ext.AddressToken)
		return outcome
	}

	record := match.Record
	outcome.Record = record
	outcome.RecordID = record.ID
	outcome.Tier = match.Tier

	if match.CrossArea {
		outcome.Kind = OutcomeCrossAreaWarning
		outcome.ActualSubDistrict = match.ActualSubDistrict
		outcome.ActualVillage = match.ActualVillage
		outcome.Message = msgCrossArea(record.Address, match.ActualSubDistrict, match.ActualVillage)
		return outcome
	}

	outcome.Ordinal = LoadedOrdinal(primary, record)

	if record.OnTruck {
		outcome.Kind = OutcomeDuplicateMatch
		outcome.Mutation = &models.Mutation{RecordID: record.ID, ParcelCountDelta: 1}
		outcome.Message = msgDuplicate(outcome.Ordinal)
		return outcome
	}

	loaded := true
	first := 1
	outcome.Kind = OutcomeNewMatch
	outcome.Mutation = &models.Mutation{RecordID: record.ID, OnTruck: &loaded, SetParcelCount: &first}
	outcome.Message = msgNewMatch(record.Address, outcome.Ordinal)
	return outcome
}
