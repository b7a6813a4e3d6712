package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
)

// Extraction kết quả trích xuất từ text đã normalize
type Extraction struct {
	AddressToken string `json:"address_token,omitempty"`
	AddressRule  string `json:"address_rule,omitempty"` // Rule đã sinh ra address token
	RouteCode    string `json:"route_code,omitempty"`
	RouteRule    string `json:"route_rule,omitempty"`
}

// HasAddress có address token không
func (e Extraction) HasAddress() bool { return e.AddressToken != "" }

// HasRouteCode có route code không
func (e Extraction) HasRouteCode() bool { return e.RouteCode != "" }

// PatternExtractor trích xuất address token và route code theo bảng rule có thứ tự
type PatternExtractor struct {
	addressRules  []compiledRule
	numeric       NumericFallbackRule
	reNumeric     *regexp.Regexp
	routeRules    []compiledRule
	routeFallback *regexp.Regexp
}

// NewPatternExtractor tạo PatternExtractor từ bảng rule embedded
func NewPatternExtractor() (*PatternExtractor, error) {
	config, err := LoadRulesConfig()
	if err != nil {
		return nil, err
	}
	return NewPatternExtractorFromConfig(config)
}

// MustPatternExtractor như NewPatternExtractor nhưng panic khi bảng rule lỗi
func MustPatternExtractor() *PatternExtractor {
	pe, err := NewPatternExtractor()
	if err != nil {
		panic(err)
	}
	return pe
}

// NewPatternExtractorFromConfig compile bảng rule cho trước
func NewPatternExtractorFromConfig(config *RulesConfig) (*PatternExtractor, error) {
	addressRules, err := compileRules(config.AddressPatterns)
	if err != nil {
		return nil, err
	}
	routeRules, err := compileRules(config.RoutePatterns)
	if err != nil {
		return nil, err
	}
	reNumeric, err := regexp.Compile(config.NumericFallback.Regex)
	if err != nil {
		return nil, fmt.Errorf("compile numeric fallback: %w", err)
	}
	routeFallback, err := regexp.Compile(config.RouteFallback.Regex)
	if err != nil {
		return nil, fmt.Errorf("compile route fallback: %w", err)
	}

	return &PatternExtractor{
		addressRules:  addressRules,
		numeric:       config.NumericFallback,
		reNumeric:     reNumeric,
		routeRules:    routeRules,
		routeFallback: routeFallback,
	}, nil
}

// Extract trích xuất address token rồi route code. Không tìm được address token là
// kết quả bình thường (AddressToken rỗng), không phải lỗi.
func (pe *PatternExtractor) Extract(text string) Extraction {
	var ext Extraction
	ext.AddressToken, ext.AddressRule = pe.ExtractAddressToken(text)
	ext.RouteCode, ext.RouteRule = pe.ExtractRouteCode(text, ext.AddressToken)
	return ext
}

// ExtractAddressToken trả về token số nhà và tên rule đã match
func (pe *PatternExtractor) ExtractAddressToken(text string) (string, string) {
	for _, rule := range pe.addressRules {
		if m := rule.re.FindStringSubmatch(text); m != nil {
			return submatch(m), rule.name
		}
	}

	// Fallback: chọn trong các dãy số hợp lệ, ưu tiên đúng độ dài preferred, sau đó dài hơn
	best := ""
	for _, n := range pe.reNumeric.FindAllString(text, -1) {
		if !pe.validNumber(n) {
			continue
		}
		if best == "" || pe.betterNumber(n, best) {
			best = n
		}
	}
	if best == "" {
		return "", ""
	}
	return best, "numeric_fallback"
}

// ExtractRouteCode trả về route code; fallback là token chữ+số dài nhất khác address token
func (pe *PatternExtractor) ExtractRouteCode(text, addressToken string) (string, string) {
	for _, rule := range pe.routeRules {
		if m := rule.re.FindStringSubmatch(text); m != nil {
			return submatch(m), rule.name
		}
	}

	longest := ""
	for _, tok := range pe.routeFallback.FindAllString(text, -1) {
		if tok == addressToken {
			continue
		}
		// ">=" để token sau thắng khi bằng độ dài
		if len(tok) >= len(longest) {
			longest = tok
		}
	}
	if longest == "" {
		return "", ""
	}
	return longest, "route_fallback"
}

func (pe *PatternExtractor) validNumber(n string) bool {
	if len(n) < pe.numeric.MinLength || len(n) > pe.numeric.MaxLength {
		return false
	}
	v, err := strconv.Atoi(n)
	if err != nil {
		return false
	}
	return v > pe.numeric.MinValueExclusive && v < pe.numeric.MaxValueExclusive
}

// betterNumber a có ưu tiên hơn b không (bằng nhau thì giữ b, tức là cái xuất hiện trước)
func (pe *PatternExtractor) betterNumber(a, b string) bool {
	pref := pe.numeric.PreferredLength
	if len(a) == pref && len(b) != pref {
		return true
	}
	if len(b) == pref && len(a) != pref {
		return false
	}
	return len(a) > len(b)
}

func submatch(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}
