package normalizer

import (
	"regexp"
	"strings"
)

// ocrConfusions bảng thay thế ký tự OCR hay đọc nhầm (chữ -> số)
var ocrConfusions = []string{
	"O", "0", "o", "0",
	"l", "1", "I", "1", "|", "1",
	"S", "5", "s", "5",
	"Z", "2", "z", "2",
	"G", "9", "g", "9",
	"B", "8", "b", "8",
}

// TextNormalizer làm sạch text thô từ OCR. Không có state, dùng chung giữa goroutine được.
type TextNormalizer struct {
	confusions *strings.Replacer
	reSpaces   *regexp.Regexp
}

// NewTextNormalizer tạo mới TextNormalizer
func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{
		confusions: strings.NewReplacer(ocrConfusions...),
		reSpaces:   regexp.MustCompile(`\s+`),
	}
}

// Normalize chuẩn hóa text OCR:
//  1. thay ký tự nhầm lẫn (O->0, l/I/|->1, S->5, Z->2, G->9, B->8)
//  2. bỏ dấu ~
//  3. gộp khoảng trắng
//  4. uppercase
//  5. trim
//
// Uppercase có thể sinh ra ký tự nằm trong bảng (ví dụ "i" -> "I"), nên bảng được áp dụng
// lại sau bước 4 để Normalize(Normalize(x)) == Normalize(x).
func (tn *TextNormalizer) Normalize(raw string) string {
	s := tn.confusions.Replace(raw)
	s = strings.ReplaceAll(s, "~", "")
	s = tn.reSpaces.ReplaceAllString(s, " ")
	s = strings.ToUpper(s)
	s = tn.confusions.Replace(s)
	return strings.TrimSpace(s)
}

// NormalizeBatch normalize nhiều text cùng lúc
func (tn *TextNormalizer) NormalizeBatch(texts []string) []string {
	results := make([]string, len(texts))
	for i, t := range texts {
		results[i] = tn.Normalize(t)
	}
	return results
}
