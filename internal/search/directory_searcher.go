package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/parcel-tracker/app/models"
	"go.uber.org/zap"
)

// DirectorySearcher tìm kiếm full-text trong danh bạ địa chỉ bằng Meilisearch
type DirectorySearcher struct {
	client    meilisearch.ServiceManager
	logger    *zap.Logger
	indexName string
	timeout   time.Duration
}

// SearchConfig cấu hình cho Meilisearch
type SearchConfig struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// AddressDoc document lưu trong index
type AddressDoc struct {
	ID          string `json:"id"`
	SubDistrict string `json:"sub_district"`
	Village     string `json:"village"`
	Address     string `json:"address"`
	OnTruck     bool   `json:"on_truck"`
}

// NewDirectorySearcher tạo mới DirectorySearcher và kiểm tra kết nối
func NewDirectorySearcher(config SearchConfig, logger *zap.Logger) (*DirectorySearcher, error) {
	client := meilisearch.New(config.Host, meilisearch.WithAPIKey(config.APIKey))

	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("không thể kết nối Meilisearch: %w", err)
	}

	if config.IndexName == "" {
		config.IndexName = "parcels"
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	return &DirectorySearcher{
		client:    client,
		logger:    logger,
		indexName: config.IndexName,
		timeout:   config.Timeout,
	}, nil
}

// Search tìm địa chỉ, có thể lọc theo sub-district/village
func (ds *DirectorySearcher) Search(ctx context.Context, query, subDistrict, village string, limit int) ([]AddressDoc, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query không được để trống")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit: int64(limit),
	}
	if filter := BuildFilter(subDistrict, village); filter != "" {
		searchReq.Filter = filter
	}

	result, err := ds.client.Index(ds.indexName).Search(query, searchReq)
	if err != nil {
		return nil, fmt.Errorf("lỗi tìm kiếm Meilisearch: %w", err)
	}

	return ParseHits(result.Hits), nil
}

// ConfigureIndex cấu hình searchable/filterable attributes
func (ds *DirectorySearcher) ConfigureIndex() error {
	index := ds.client.Index(ds.indexName)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"address", "village", "sub_district"},
		FilterableAttributes: []string{"sub_district", "village", "on_truck"},
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  3,
				TwoTypos: 7,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("lỗi cấu hình index: %w", err)
	}

	ds.logger.Info("Đã cấu hình index Meilisearch", zap.Int64("task_uid", task.TaskUID))
	return nil
}

// Reindex xóa toàn bộ document và nạp lại từ danh sách record
func (ds *DirectorySearcher) Reindex(records []models.AddressRecord) (int, error) {
	index := ds.client.Index(ds.indexName)

	if _, err := index.DeleteAllDocuments(); err != nil {
		return 0, fmt.Errorf("lỗi xóa documents: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	documents := make([]AddressDoc, 0, len(records))
	for i := range records {
		documents = append(documents, ToDoc(&records[i]))
	}

	// Batch insert (chunks of 1000)
	batchSize := 1000
	for i := 0; i < len(documents); i += batchSize {
		end := i + batchSize
		if end > len(documents) {
			end = len(documents)
		}

		task, err := index.AddDocuments(documents[i:end], "id")
		if err != nil {
			return i, fmt.Errorf("lỗi thêm documents batch %d-%d: %w", i, end, err)
		}

		ds.logger.Info("Đã thêm batch documents",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	return len(documents), nil
}

// Upsert thêm hoặc cập nhật một record trong index
func (ds *DirectorySearcher) Upsert(record *models.AddressRecord) error {
	if _, err := ds.client.Index(ds.indexName).AddDocuments([]AddressDoc{ToDoc(record)}, "id"); err != nil {
		return fmt.Errorf("lỗi upsert document: %w", err)
	}
	return nil
}

// Remove xóa record khỏi index
func (ds *DirectorySearcher) Remove(id string) error {
	if _, err := ds.client.Index(ds.indexName).DeleteDocument(id); err != nil {
		return fmt.Errorf("lỗi xóa document: %w", err)
	}
	return nil
}

// ToDoc chuyển record sang document
func ToDoc(r *models.AddressRecord) AddressDoc {
	return AddressDoc{
		ID:          r.ID,
		SubDistrict: r.SubDistrict,
		Village:     r.Village,
		Address:     r.Address,
		OnTruck:     r.OnTruck,
	}
}

// BuildFilter filter Meilisearch theo sub-district/village
func BuildFilter(subDistrict, village string) string {
	var parts []string
	if subDistrict != "" {
		parts = append(parts, fmt.Sprintf("sub_district = %q", subDistrict))
	}
	if village != "" {
		parts = append(parts, fmt.Sprintf("village = %q", village))
	}
	return strings.Join(parts, " AND ")
}

// ParseHits parse hits của Meilisearch thành AddressDoc
func ParseHits(hits []interface{}) []AddressDoc {
	docs := make([]AddressDoc, 0, len(hits))
	for _, hit := range hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}

		doc := AddressDoc{}
		if id, ok := hitMap["id"].(string); ok {
			doc.ID = id
		}
		if sub, ok := hitMap["sub_district"].(string); ok {
			doc.SubDistrict = sub
		}
		if village, ok := hitMap["village"].(string); ok {
			doc.Village = village
		}
		if address, ok := hitMap["address"].(string); ok {
			doc.Address = address
		}
		if onTruck, ok := hitMap["on_truck"].(bool); ok {
			doc.OnTruck = onTruck
		}
		docs = append(docs, doc)
	}
	return docs
}
