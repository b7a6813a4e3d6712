package scanner

import (
	"strings"

	"github.com/parcel-tracker/app/models"
	"github.com/parcel-tracker/internal/matcher"
	"github.com/parcel-tracker/internal/normalizer"
)

const manualRule = "manual"

// Scanner engine matching nhãn: normalize -> extract -> kiểm tra route code -> match
// (sub-area trước, sau đó toàn area) -> phân loại. Không I/O, không state, dùng chung
// giữa goroutine được.
type Scanner struct {
	normalizer *normalizer.TextNormalizer
	extractor  *normalizer.PatternExtractor
	matcher    *matcher.AddressMatcher
	suggester  *matcher.Suggester
	classifier *Classifier
}

// NewScanner tạo Scanner với bảng pattern embedded
func NewScanner() (*Scanner, error) {
	extractor, err := normalizer.NewPatternExtractor()
	if err != nil {
		return nil, err
	}
	return NewScannerWith(normalizer.NewTextNormalizer(), extractor, matcher.NewAddressMatcher(), 0), nil
}

// NewScannerWith tạo Scanner từ các thành phần cho trước. suggestionLimit <= 0 dùng mặc định.
func NewScannerWith(tn *normalizer.TextNormalizer, pe *normalizer.PatternExtractor, am *matcher.AddressMatcher, suggestionLimit int) *Scanner {
	return &Scanner{
		normalizer: tn,
		extractor:  pe,
		matcher:    am,
		suggester:  matcher.NewSuggester(am, suggestionLimit),
		classifier: NewClassifier(),
	}
}

// Scan xử lý một lần scan trên snapshot caller cung cấp. primary là record của sub-area
// đang chọn, fallback là record của cả area. Kết quả chỉ phụ thuộc vào tham số.
func (s *Scanner) Scan(input ScanInput, primary, fallback []models.AddressRecord) ScanOutcome {
	var normalized string
	var ext normalizer.Extraction

	if input.IsManual() {
		// Nhập tay đi thẳng vào matcher, không có route code để kiểm tra
		ext = normalizer.Extraction{AddressToken: strings.TrimSpace(input.ManualAddress), AddressRule: manualRule}
		if ext.AddressToken == "" {
			ext.AddressRule = ""
		}
	} else {
		normalized = s.normalizer.Normalize(input.Text)
		ext = s.extractor.Extract(normalized)
	}

	outcome, done := s.classifier.Precheck(input, ext)
	if done {
		outcome.NormalizedText = normalized
		return outcome
	}

	primaryMatch := s.matcher.Match(primary, ext.AddressToken, input.SubDistrict, input.Village)
	var fallbackMatch *matcher.MatchResult
	if primaryMatch == nil {
		fallbackMatch = s.matcher.Match(fallback, ext.AddressToken, input.SubDistrict, input.Village)
	}

	outcome = s.classifier.Classify(input, ext, primaryMatch, fallbackMatch, primary)
	outcome.NormalizedText = normalized
	if outcome.Kind == OutcomeNotFound {
		outcome.Suggestions = s.suggester.Suggest(fallbackOrPrimary(primary, fallback), ext.AddressToken)
	}
	return outcome
}

// Normalize expose bước normalize cho CLI và API debug
func (s *Scanner) Normalize(raw string) string {
	return s.normalizer.Normalize(raw)
}

// Extract normalize rồi trích xuất token
func (s *Scanner) Extract(raw string) (string, normalizer.Extraction) {
	normalized := s.normalizer.Normalize(raw)
	return normalized, s.extractor.Extract(normalized)
}

func fallbackOrPrimary(primary, fallback []models.AddressRecord) []models.AddressRecord {
	if len(fallback) > 0 {
		return fallback
	}
	return primary
}
