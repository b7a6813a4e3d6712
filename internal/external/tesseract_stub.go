//go:build !tesseract

package external

import "context"

// TesseractRecognizer không khả dụng khi build không có tag tesseract
type TesseractRecognizer struct{}

// NewTesseractRecognizer luôn trả ErrRecognizerUnavailable, build với -tags tesseract để bật
func NewTesseractRecognizer(languages ...string) (*TesseractRecognizer, error) {
	return nil, ErrRecognizerUnavailable
}

// Name tên engine
func (r *TesseractRecognizer) Name() string { return "tesseract" }

// Recognize luôn lỗi
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	return "", ErrRecognizerUnavailable
}
