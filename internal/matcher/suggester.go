package matcher

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/mozillazg/go-unidecode"
	"github.com/parcel-tracker/app/models"
	"github.com/xrash/smetrics"
)

const (
	defaultSuggestionLimit = 3
	shortQueryLength       = 10
	shortQueryMinScore     = 0.8 // Token ngắn cần độ chính xác cao hơn
	longQueryMinScore      = 0.6
	numericMinScore        = 0.5 // Số nhà: chấp nhận sai tối đa một nửa ký tự
)

// Suggestion gợi ý địa chỉ gần giống khi không tìm thấy (chỉ mang tính tham khảo,
// không bao giờ được dùng để tự động match)
type Suggestion struct {
	RecordID    string  `json:"record_id"`
	Address     string  `json:"address"`
	SubDistrict string  `json:"sub_district"`
	Village     string  `json:"village"`
	Score       float64 `json:"score"`
}

// Suggester tính gợi ý fuzzy cho token không match được
type Suggester struct {
	matcher *AddressMatcher
	limit   int
}

// NewSuggester tạo mới Suggester. limit <= 0 dùng giá trị mặc định.
func NewSuggester(matcher *AddressMatcher, limit int) *Suggester {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	return &Suggester{matcher: matcher, limit: limit}
}

// Suggest trả về tối đa limit gợi ý, xếp theo điểm giảm dần, hòa thì theo thứ tự candidate
func (s *Suggester) Suggest(candidates []models.AddressRecord, token string) []Suggestion {
	token = strings.TrimSpace(token)
	if token == "" || len(candidates) == 0 {
		return nil
	}

	numeric := s.matcher.IsNumericToken(token)
	query := s.matcher.CleanToken(token)
	if !numeric {
		query = foldForFuzzy(token)
	}
	if query == "" {
		return nil
	}

	suggestions := make([]Suggestion, 0, s.limit)
	for i := range candidates {
		rec := &candidates[i]

		var score float64
		if numeric {
			score = numericScore(query, s.matcher.leadingRun(rec.Address))
		} else {
			score = nameScore(query, foldForFuzzy(rec.Address))
		}
		if !passesThreshold(query, score, numeric) {
			continue
		}

		suggestions = append(suggestions, Suggestion{
			RecordID:    rec.ID,
			Address:     rec.Address,
			SubDistrict: rec.SubDistrict,
			Village:     rec.Village,
			Score:       math.Round(score*1000) / 1000,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > s.limit {
		suggestions = suggestions[:s.limit]
	}
	return suggestions
}

// numericScore điểm edit distance giữa token số và dãy số đầu địa chỉ
func numericScore(query, run string) float64 {
	if run == "" {
		return 0
	}
	dist := levenshtein.ComputeDistance(query, run)
	maxLen := math.Max(float64(len(query)), float64(len(run)))
	return 1.0 - float64(dist)/maxLen
}

// nameScore Jaro-Winkler lớn nhất giữa token và địa chỉ hoặc từng từ trong địa chỉ
func nameScore(query, address string) float64 {
	best := smetrics.JaroWinkler(query, address, 0.7, 4)
	for _, word := range strings.FieldsFunc(address, isWordSeparator) {
		if sc := smetrics.JaroWinkler(query, word, 0.7, 4); sc > best {
			best = sc
		}
	}
	return best
}

func passesThreshold(query string, score float64, numeric bool) bool {
	if numeric {
		return score >= numericMinScore
	}
	if len(query) <= shortQueryLength {
		return score > shortQueryMinScore
	}
	return score > longQueryMinScore
}

func foldForFuzzy(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

func isWordSeparator(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == '\n'
}
