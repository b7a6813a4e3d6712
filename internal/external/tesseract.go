//go:build tesseract

package external

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer OCR local bằng tesseract (build với -tags tesseract, cần cgo và libtesseract)
type TesseractRecognizer struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewTesseractRecognizer tạo mới TesseractRecognizer
func NewTesseractRecognizer(languages ...string) (*TesseractRecognizer, error) {
	if len(languages) == 0 {
		languages = []string{"eng", "tha"}
	}
	return &TesseractRecognizer{languages: languages, clientFactory: gosseract.NewClient}, nil
}

// Name tên engine
func (r *TesseractRecognizer) Name() string { return "tesseract" }

// Recognize chạy OCR trên một ảnh. Mỗi lần gọi dùng client riêng.
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := r.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
