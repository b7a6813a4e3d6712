package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultOCRSpaceEndpoint = "https://api.ocr.space/parse/image"

// OCRSpaceConfig cấu hình OCR.space
type OCRSpaceConfig struct {
	Endpoint string
	APIKey   string
	Language string
	Engine   int
	Timeout  time.Duration
}

// OCRSpaceRecognizer gọi OCR.space HTTP API
type OCRSpaceRecognizer struct {
	config OCRSpaceConfig
	client *http.Client
	logger *zap.Logger
}

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// NewOCRSpaceRecognizer tạo mới OCRSpaceRecognizer
func NewOCRSpaceRecognizer(config OCRSpaceConfig, logger *zap.Logger) *OCRSpaceRecognizer {
	if config.Endpoint == "" {
		config.Endpoint = defaultOCRSpaceEndpoint
	}
	if config.Language == "" {
		config.Language = "eng"
	}
	if config.Engine == 0 {
		config.Engine = 2
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &OCRSpaceRecognizer{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// Name tên engine
func (r *OCRSpaceRecognizer) Name() string { return "ocr_space" }

// Recognize gửi ảnh lên OCR.space và trả về text của kết quả đầu tiên
func (r *OCRSpaceRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}

	body, contentType, err := r.buildForm(image)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.Endpoint, body)
	if err != nil {
		return "", fmt.Errorf("tạo request OCR: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gọi OCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OCR API error: %d", resp.StatusCode)
	}

	var parsed ocrSpaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode OCR response: %w", err)
	}

	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("OCR failed: %s", firstErrorMessage(parsed.ErrorMessage))
	}

	text := ""
	if len(parsed.ParsedResults) > 0 {
		text = parsed.ParsedResults[0].ParsedText
	}

	r.logger.Debug("OCR.space trả kết quả", zap.Int("text_length", len(text)))
	return text, nil
}

func (r *OCRSpaceRecognizer) buildForm(image []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", "label.jpg")
	if err != nil {
		return nil, "", fmt.Errorf("tạo multipart: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", fmt.Errorf("ghi ảnh: %w", err)
	}

	fields := map[string]string{
		"apikey":            r.config.APIKey,
		"language":          r.config.Language,
		"isOverlayRequired": "false",
		"detectOrientation": "true",
		"scale":             "true",
		"OCREngine":         fmt.Sprint(r.config.Engine),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("ghi field %s: %w", k, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("đóng multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// firstErrorMessage ErrorMessage có thể là string hoặc mảng string
func firstErrorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown error"
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single
	}
	return strings.TrimSpace(string(raw))
}
