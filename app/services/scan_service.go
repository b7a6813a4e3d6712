package services

import (
	"context"
	"fmt"
	"time"

	"github.com/parcel-tracker/app/models"
	"github.com/parcel-tracker/helpers/utils"
	"github.com/parcel-tracker/internal/events"
	"github.com/parcel-tracker/internal/external"
	"github.com/parcel-tracker/internal/scanner"
	"go.uber.org/zap"
)

// ScanStats thống kê nhanh của sub-area sau lần scan
type ScanStats struct {
	TotalRecords  int `json:"total_records"`
	LoadedRecords int `json:"loaded_records"`
	TotalParcels  int `json:"total_parcels"` // Tổng parcel_count của record đã lên xe
}

// ScanResult kết quả trả về cho operator
type ScanResult struct {
	ScanID   string                 `json:"scan_id"`
	Outcome  scanner.ScanOutcome    `json:"outcome"`
	OCRText  string                 `json:"ocr_text,omitempty"`
	ImageKey string                 `json:"image_key,omitempty"`
	Records  []models.AddressRecord `json:"records"`
	Stats    ScanStats              `json:"stats"`
}

// ScanService điều phối một lần scan: lấy snapshot, chạy engine, áp dụng mutation,
// re-fetch rồi ghi log và phát event
type ScanService struct {
	scanner    *scanner.Scanner
	directory  AddressDirectory
	cache      ICacheService
	recognizer external.TextRecognizer
	scanLogs   ScanLogStore
	publisher  events.Publisher
	archive    LabelArchive
	logger     *zap.Logger
	now        func() time.Time
}

// ScanServiceOption tùy chọn cho ScanService
type ScanServiceOption func(*ScanService)

// WithCache dùng cache cho snapshot
func WithCache(cache ICacheService) ScanServiceOption {
	return func(ss *ScanService) { ss.cache = cache }
}

// WithRecognizer bật scan từ ảnh
func WithRecognizer(recognizer external.TextRecognizer) ScanServiceOption {
	return func(ss *ScanService) { ss.recognizer = recognizer }
}

// WithScanLogs ghi audit log
func WithScanLogs(store ScanLogStore) ScanServiceOption {
	return func(ss *ScanService) { ss.scanLogs = store }
}

// WithPublisher phát scan event
func WithPublisher(publisher events.Publisher) ScanServiceOption {
	return func(ss *ScanService) { ss.publisher = publisher }
}

// WithLabelArchive lưu ảnh nhãn
func WithLabelArchive(archive LabelArchive) ScanServiceOption {
	return func(ss *ScanService) { ss.archive = archive }
}

// NewScanService tạo mới ScanService
func NewScanService(engine *scanner.Scanner, directory AddressDirectory, logger *zap.Logger, opts ...ScanServiceOption) *ScanService {
	ss := &ScanService{
		scanner:   engine,
		directory: directory,
		scanLogs:  NewMemoryScanLogService(),
		publisher: events.NoopPublisher{},
		archive:   NoopLabelArchive{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(ss)
	}
	return ss
}

// ScanText scan từ text (OCR phía client hoặc text dán vào)
func (ss *ScanService) ScanText(ctx context.Context, input scanner.ScanInput) (*ScanResult, error) {
	input.ManualAddress = ""
	return ss.process(ctx, utils.GenerateUUID(), models.ScanSourceText, input, "")
}

// ScanManual scan bằng địa chỉ nhập tay
func (ss *ScanService) ScanManual(ctx context.Context, input scanner.ScanInput) (*ScanResult, error) {
	input.Text = ""
	return ss.process(ctx, utils.GenerateUUID(), models.ScanSourceManual, input, "")
}

// ScanImage OCR ảnh rồi scan. Lỗi OCR trả về CollaboratorError, không phải outcome.
func (ss *ScanService) ScanImage(ctx context.Context, image []byte, input scanner.ScanInput) (*ScanResult, error) {
	scanID := utils.GenerateUUID()

	text, err := ss.Recognize(ctx, image)
	if err != nil {
		return nil, err
	}

	imageKey, err := ss.archive.Put(ctx, scanID, image)
	if err != nil {
		ss.logger.Warn("Không lưu được ảnh nhãn", zap.String("scan_id", scanID), zap.Error(err))
	}

	input.Text = text
	input.ManualAddress = ""
	result, err := ss.process(ctx, scanID, models.ScanSourceImage, input, imageKey)
	if err != nil {
		return nil, err
	}
	result.OCRText = text
	return result, nil
}

// Recognize chỉ chạy OCR
func (ss *ScanService) Recognize(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", external.ErrEmptyImage
	}
	if ss.recognizer == nil {
		return "", newCollaboratorError(CollaboratorOCR, "recognize", external.ErrRecognizerUnavailable)
	}

	start := ss.now()
	text, err := ss.recognizer.Recognize(ctx, image)
	if err != nil {
		return "", newCollaboratorError(CollaboratorOCR, ss.recognizer.Name(), err)
	}

	ss.logger.Debug("OCR xong",
		zap.String("engine", ss.recognizer.Name()),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)))
	return text, nil
}

func (ss *ScanService) process(ctx context.Context, scanID string, source models.ScanSource, input scanner.ScanInput, imageKey string) (*ScanResult, error) {
	primary, err := ss.snapshot(ctx, input.SubDistrict, input.Village)
	if err != nil {
		return nil, err
	}

	var fallback []models.AddressRecord
	if input.Village != "" {
		fallback, err = ss.snapshot(ctx, input.SubDistrict, "")
		if err != nil {
			return nil, err
		}
	}

	outcome := ss.scanner.Scan(input, primary, fallback)
	records := primary

	if !outcome.Mutation.IsEmpty() {
		updated, err := ss.directory.ApplyMutation(ctx, outcome.Mutation)
		if err != nil {
			return nil, fmt.Errorf("áp dụng mutation cho %s: %w", outcome.RecordID, err)
		}

		ss.invalidate(ctx, input.SubDistrict)

		records, err = ss.directory.Fetch(ctx, input.SubDistrict, input.Village)
		if err != nil {
			return nil, err
		}
		ss.store(ctx, snapshotKey(input.SubDistrict, input.Village), records)

		outcome.Record = updated
		outcome = outcome.WithOrdinal(scanner.LoadedOrdinal(records, updated))
	}

	result := &ScanResult{
		ScanID:   scanID,
		Outcome:  outcome,
		ImageKey: imageKey,
		Records:  records,
		Stats:    computeStats(records),
	}

	ss.logger.Info("Scan processed",
		zap.String("scan_id", scanID),
		zap.String("source", string(source)),
		zap.String("outcome", string(outcome.Kind)),
		zap.String("record_id", outcome.RecordID),
		zap.Int("ordinal", outcome.Ordinal))

	ss.record(ctx, scanID, source, input, result)
	return result, nil
}

// snapshot lấy record của sub-district/village, ưu tiên cache
func (ss *ScanService) snapshot(ctx context.Context, subDistrict, village string) ([]models.AddressRecord, error) {
	key := snapshotKey(subDistrict, village)

	if ss.cache != nil {
		records, found, err := ss.cache.Get(ctx, key)
		if err != nil {
			ss.logger.Warn("Cache get error", zap.String("key", key), zap.Error(err))
		} else if found {
			return records, nil
		}
	}

	records, err := ss.directory.Fetch(ctx, subDistrict, village)
	if err != nil {
		return nil, err
	}
	ss.store(ctx, key, records)
	return records, nil
}

func (ss *ScanService) store(ctx context.Context, key string, records []models.AddressRecord) {
	if ss.cache == nil {
		return
	}
	if err := ss.cache.Set(ctx, key, records); err != nil {
		ss.logger.Warn("Cache set error", zap.String("key", key), zap.Error(err))
	}
}

func (ss *ScanService) invalidate(ctx context.Context, subDistrict string) {
	if ss.cache == nil {
		return
	}
	if err := ss.cache.InvalidateArea(ctx, subDistrict); err != nil {
		ss.logger.Warn("Cache invalidate error", zap.String("sub_district", subDistrict), zap.Error(err))
	}
}

// record ghi scan log và phát event. Lỗi ở đây chỉ log, mutation đã được áp dụng.
func (ss *ScanService) record(ctx context.Context, scanID string, source models.ScanSource, input scanner.ScanInput, result *ScanResult) {
	outcome := result.Outcome
	now := ss.now()

	raw := input.Text
	if source == models.ScanSourceManual {
		raw = input.ManualAddress
	}

	entry := &models.ScanLog{
		ID:                scanID,
		Source:            source,
		SubDistrict:       input.SubDistrict,
		Village:           input.Village,
		RawText:           raw,
		ScannedAddress:    outcome.ScannedAddress,
		ScannedRouteCode:  outcome.ScannedRouteCode,
		ExpectedRouteCode: outcome.ExpectedRouteCode,
		Outcome:           string(outcome.Kind),
		Message:           outcome.Message,
		RecordID:          outcome.RecordID,
		Ordinal:           outcome.Ordinal,
		ImageKey:          result.ImageKey,
		CreatedAt:         now,
	}
	if err := ss.scanLogs.Append(ctx, entry); err != nil {
		ss.logger.Warn("Không ghi được scan log", zap.String("scan_id", scanID), zap.Error(err))
	}

	event := &events.ScanEvent{
		EventID:        scanID,
		Source:         string(source),
		Outcome:        string(outcome.Kind),
		RecordID:       outcome.RecordID,
		SubDistrict:    input.SubDistrict,
		Village:        input.Village,
		ScannedAddress: outcome.ScannedAddress,
		Ordinal:        outcome.Ordinal,
		OccurredAt:     now,
	}
	if outcome.Kind.IsMatch() && outcome.Record != nil {
		event.OnTruck = outcome.Record.OnTruck
		event.ParcelCount = outcome.Record.ParcelCount
	}
	if err := ss.publisher.Publish(ctx, event); err != nil {
		ss.logger.Warn("Không publish được scan event",
			zap.String("scan_id", scanID),
			zap.Error(newCollaboratorError(CollaboratorBroker, "publish", err)))
	}
}

// ListScans lấy scan log
func (ss *ScanService) ListScans(ctx context.Context, filter ScanLogFilter) ([]models.ScanLog, error) {
	return ss.scanLogs.List(ctx, filter)
}

func computeStats(records []models.AddressRecord) ScanStats {
	stats := ScanStats{TotalRecords: len(records)}
	for i := range records {
		if records[i].OnTruck {
			stats.LoadedRecords++
			stats.TotalParcels += records[i].ParcelCount
		}
	}
	return stats
}
