package external

import (
	"context"
	"errors"
)

// ErrEmptyImage ảnh rỗng
var ErrEmptyImage = errors.New("ảnh rỗng")

// ErrRecognizerUnavailable engine OCR không có trong bản build này
var ErrRecognizerUnavailable = errors.New("OCR engine không khả dụng")

// TextRecognizer chuyển ảnh nhãn thành text thô. Engine matching không quan tâm text đến từ đâu.
type TextRecognizer interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}
