package matcher

import (
	"regexp"
	"strings"

	"github.com/parcel-tracker/app/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MatchTier tầng của chính sách matching đã cho ra kết quả
type MatchTier string

const (
	TierLeadingRun MatchTier = "leading_run" // P1: dãy số/slash đầu địa chỉ khớp chính xác
	TierFirstToken MatchTier = "first_token" // P2: token đầu tiên khớp chính xác
	TierStartsWith MatchTier = "starts_with" // P3: địa chỉ đã làm sạch bắt đầu bằng token
	TierContains   MatchTier = "contains"    // P4: địa chỉ đã làm sạch chứa token
	TierName       MatchTier = "name"        // token dạng tên, khớp chuỗi con
	TierNameWord   MatchTier = "name_word"   // một từ trong token khớp chuỗi con
)

const (
	minNumericLength    = 2
	minStartsWithLength = 3
	minContainsLength   = 4
)

// MatchResult kết quả matching một token với tập candidate
type MatchResult struct {
	Record            *models.AddressRecord `json:"record"`
	Tier              MatchTier             `json:"tier"`
	CrossArea         bool                  `json:"cross_area"`
	ActualSubDistrict string                `json:"actual_sub_district,omitempty"`
	ActualVillage     string                `json:"actual_village,omitempty"`
}

// AddressMatcher resolve address token theo chính sách first-match có thứ tự.
// Không bao giờ chấm điểm "best match": hòa thì theo thứ tự của candidate set.
type AddressMatcher struct {
	reNonDigitSlash *regexp.Regexp
	reLeadingRun    *regexp.Regexp
	reWordSplit     *regexp.Regexp
}

// NewAddressMatcher tạo mới AddressMatcher
func NewAddressMatcher() *AddressMatcher {
	return &AddressMatcher{
		reNonDigitSlash: regexp.MustCompile(`[^0-9/]`),
		reLeadingRun:    regexp.MustCompile(`^[0-9/]+`),
		reWordSplit:     regexp.MustCompile(`[\s,]+`),
	}
}

// CleanToken giữ lại chữ số và dấu "/"
func (am *AddressMatcher) CleanToken(s string) string {
	return am.reNonDigitSlash.ReplaceAllString(s, "")
}

// IsNumericToken token có đi theo nhánh số không
func (am *AddressMatcher) IsNumericToken(token string) bool {
	clean := am.CleanToken(token)
	return len(clean) >= minNumericLength && clean[0] != '0'
}

// Match tìm record khớp token trong candidates. subDistrict/village là vị trí đang chọn,
// dùng để đánh dấu cross-area; village rỗng nghĩa là chọn cả sub-district. Trả về nil nếu không khớp.
func (am *AddressMatcher) Match(candidates []models.AddressRecord, token, subDistrict, village string) *MatchResult {
	idx, tier := am.find(candidates, token)
	if idx < 0 {
		return nil
	}

	record := candidates[idx]
	result := &MatchResult{Record: &record, Tier: tier}
	if isCrossArea(&record, subDistrict, village) {
		result.CrossArea = true
		result.ActualSubDistrict = record.SubDistrict
		result.ActualVillage = record.Village
	}
	return result
}

// isCrossArea record nằm ngoài vị trí đang chọn. Trường rỗng không ràng buộc.
func isCrossArea(record *models.AddressRecord, subDistrict, village string) bool {
	if subDistrict != "" && record.SubDistrict != subDistrict {
		return true
	}
	return village != "" && record.Village != village
}

// find trả về index của record khớp và tầng đã match, -1 nếu không có
func (am *AddressMatcher) find(candidates []models.AddressRecord, token string) (int, MatchTier) {
	clean := am.CleanToken(token)

	switch {
	case len(clean) >= minNumericLength && clean[0] != '0':
		return am.findNumeric(candidates, clean)
	case clean == "":
		return am.findName(candidates, token)
	default:
		return -1, ""
	}
}

func (am *AddressMatcher) findNumeric(candidates []models.AddressRecord, clean string) (int, MatchTier) {
	// Chỉ xét địa chỉ bắt đầu bằng số hoặc "/"
	restricted := make([]int, 0, len(candidates))
	for i := range candidates {
		if am.leadingRun(candidates[i].Address) != "" {
			restricted = append(restricted, i)
		}
	}

	// P1
	for _, i := range restricted {
		if am.leadingRun(candidates[i].Address) == clean {
			return i, TierLeadingRun
		}
	}

	// P2
	for _, i := range restricted {
		if am.CleanToken(firstToken(candidates[i].Address)) == clean {
			return i, TierFirstToken
		}
	}

	// P3
	if len(clean) >= minStartsWithLength {
		for _, i := range restricted {
			if strings.HasPrefix(am.CleanToken(candidates[i].Address), clean) {
				return i, TierStartsWith
			}
		}
	}

	// P4: tìm trên toàn bộ danh sách, không giới hạn
	if len(clean) >= minContainsLength {
		for i := range candidates {
			if strings.Contains(am.CleanToken(candidates[i].Address), clean) {
				return i, TierContains
			}
		}
	}

	return -1, ""
}

func (am *AddressMatcher) findName(candidates []models.AddressRecord, token string) (int, MatchTier) {
	needle := foldCase(strings.TrimSpace(token))
	if needle == "" {
		return -1, ""
	}

	for i := range candidates {
		if strings.Contains(foldCase(candidates[i].Address), needle) {
			return i, TierName
		}
	}

	words := make([]string, 0, 4)
	for _, w := range am.reWordSplit.Split(needle, -1) {
		if w != "" {
			words = append(words, w)
		}
	}
	for i := range candidates {
		addr := foldCase(candidates[i].Address)
		for _, w := range words {
			if strings.Contains(addr, w) {
				return i, TierNameWord
			}
		}
	}

	return -1, ""
}

// leadingRun dãy số/slash ở đầu địa chỉ (đã trim)
func (am *AddressMatcher) leadingRun(address string) string {
	return am.reLeadingRun.FindString(strings.TrimSpace(address))
}

// firstToken phần đầu tiên của địa chỉ, cắt tại khoảng trắng hoặc dấu phẩy
func firstToken(address string) string {
	s := strings.TrimSpace(address)
	if i := strings.IndexFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
	}); i >= 0 {
		return s[:i]
	}
	return s
}

// foldCase so sánh không phân biệt hoa thường. cases.Caser không dùng chung giữa goroutine được,
// nên tạo mới mỗi lần.
func foldCase(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
