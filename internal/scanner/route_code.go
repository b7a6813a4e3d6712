package scanner

import (
	"strings"
	"unicode"
)

const routePrefixLength = 3

// NormalizeRouteCode uppercase và chỉ giữ A-Z, 0-9
func NormalizeRouteCode(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range strings.ToUpper(code) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RouteCodeMatches kiểm tra route code trên nhãn có khớp route code operator nhập không.
// Chấp nhận khi một chuỗi chứa chuỗi kia, hoặc 3 ký tự đầu của một bên là prefix của bên kia
// (cả hai dài ít nhất 3). Thiếu một trong hai thì không kiểm tra.
func RouteCodeMatches(scanned, expected string) bool {
	s := NormalizeRouteCode(scanned)
	e := NormalizeRouteCode(expected)
	if s == "" || e == "" {
		return true
	}
	if strings.Contains(s, e) || strings.Contains(e, s) {
		return true
	}
	if len(s) >= routePrefixLength && len(e) >= routePrefixLength {
		return strings.HasPrefix(e, s[:routePrefixLength]) || strings.HasPrefix(s, e[:routePrefixLength])
	}
	return false
}

// hasRouteCode operator có nhập route code hợp lệ không
func hasRouteCode(code string) bool {
	return strings.IndexFunc(code, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
