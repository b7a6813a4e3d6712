package services

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// AdminService service quản lý admin functions
type AdminService struct {
	directory AddressDirectory
	cache     ICacheService
	index     DirectoryIndex
	scanLogs  ScanLogStore
	logger    *zap.Logger
	startTime time.Time
}

// ReindexResult kết quả rebuild index
type ReindexResult struct {
	DocumentsIndexed int   `json:"documents_indexed"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// SystemStats thống kê hệ thống
type SystemStats struct {
	Uptime        string                 `json:"uptime"`
	MemoryUsage   map[string]interface{} `json:"memory_usage"`
	Goroutines    int                    `json:"goroutines"`
	DatabaseStats DatabaseStats          `json:"database_stats"`
	Cache         *CacheStats            `json:"cache,omitempty"`
}

// DatabaseStats thống kê danh bạ
type DatabaseStats struct {
	Records       int `json:"records"`
	LoadedRecords int `json:"loaded_records"`
	TotalParcels  int `json:"total_parcels"`
	SubDistricts  int `json:"sub_districts"`
	Villages      int `json:"villages"`
	RecentScans   int `json:"recent_scans"` // Trong 24 giờ qua, tối đa 500
}

// NewAdminService tạo mới AdminService. cache, index, scanLogs có thể nil.
func NewAdminService(directory AddressDirectory, cache ICacheService, index DirectoryIndex, scanLogs ScanLogStore, logger *zap.Logger) *AdminService {
	return &AdminService{
		directory: directory,
		cache:     cache,
		index:     index,
		scanLogs:  scanLogs,
		logger:    logger,
		startTime: time.Now(),
	}
}

// CacheStats lấy thống kê cache
func (as *AdminService) CacheStats(ctx context.Context) (*CacheStats, error) {
	if as.cache == nil {
		return &CacheStats{}, nil
	}
	stats, err := as.cache.GetStats(ctx)
	if err != nil {
		return nil, newCollaboratorError(CollaboratorCache, "stats", err)
	}
	return stats, nil
}

// InvalidateCache xóa cache của một sub-district, rỗng = xóa hết
func (as *AdminService) InvalidateCache(ctx context.Context, subDistrict string) error {
	if as.cache == nil {
		return nil
	}

	var err error
	if subDistrict == "" {
		err = as.cache.Clear(ctx)
	} else {
		err = as.cache.InvalidateArea(ctx, subDistrict)
	}
	if err != nil {
		return newCollaboratorError(CollaboratorCache, "invalidate", err)
	}

	as.logger.Info("Cache invalidated", zap.String("sub_district", subDistrict))
	return nil
}

// Reindex nạp lại toàn bộ danh bạ vào Meilisearch
func (as *AdminService) Reindex(ctx context.Context) (*ReindexResult, error) {
	if as.index == nil {
		return nil, ErrSearchDisabled
	}
	startTime := time.Now()

	records, err := as.directory.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	indexed, err := as.index.Reindex(records)
	if err != nil {
		return nil, newCollaboratorError(CollaboratorSearch, "reindex", err)
	}

	processingTime := time.Since(startTime)
	as.logger.Info("Search index rebuilt",
		zap.Int("documents", indexed),
		zap.Duration("processing_time", processingTime))

	return &ReindexResult{
		DocumentsIndexed: indexed,
		ProcessingTimeMs: processingTime.Milliseconds(),
	}, nil
}

// GetSystemStats lấy thống kê hệ thống
func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	dbStats, err := as.getDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	memoryUsage := map[string]interface{}{
		"alloc_mb":       bToMb(m.Alloc),
		"total_alloc_mb": bToMb(m.TotalAlloc),
		"sys_mb":         bToMb(m.Sys),
		"num_gc":         m.NumGC,
	}

	stats := &SystemStats{
		Uptime:        time.Since(as.startTime).Round(time.Second).String(),
		MemoryUsage:   memoryUsage,
		Goroutines:    runtime.NumGoroutine(),
		DatabaseStats: *dbStats,
	}

	if as.cache != nil {
		if cacheStats, err := as.cache.GetStats(ctx); err == nil {
			stats.Cache = cacheStats
		} else {
			as.logger.Warn("Không lấy được cache stats", zap.Error(err))
		}
	}

	return stats, nil
}

// getDatabaseStats đếm record theo trạng thái
func (as *AdminService) getDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	records, err := as.directory.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DatabaseStats{Records: len(records)}
	subDistricts := make(map[string]bool)
	villages := make(map[string]bool)
	for i := range records {
		r := &records[i]
		subDistricts[r.SubDistrict] = true
		villages[r.SubDistrict+"\x00"+r.Village] = true
		if r.OnTruck {
			stats.LoadedRecords++
			stats.TotalParcels += r.ParcelCount
		}
	}
	stats.SubDistricts = len(subDistricts)
	stats.Villages = len(villages)

	if as.scanLogs != nil {
		recent, err := as.scanLogs.List(ctx, ScanLogFilter{Since: time.Now().Add(-24 * time.Hour), Limit: 500})
		if err != nil {
			as.logger.Warn("Không đếm được scan log", zap.Error(err))
		} else {
			stats.RecentScans = len(recent)
		}
	}

	return stats, nil
}

// Helper functions
func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
