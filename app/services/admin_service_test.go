package services

import (
	"context"
	"testing"
	"time"

	"github.com/parcel-tracker/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAdminService_Reindex(t *testing.T) {
	index := newFakeIndex()
	svc := NewAdminService(NewMemoryDirectoryService(seedRecords()), nil, index, nil, zap.NewNop())

	result, err := svc.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.DocumentsIndexed)
	assert.Len(t, index.docs, 4)

	noIndex := NewAdminService(NewMemoryDirectoryService(nil), nil, nil, nil, zap.NewNop())
	_, err = noIndex.Reindex(context.Background())
	assert.ErrorIs(t, err, ErrSearchDisabled)
}

func TestAdminService_SystemStats(t *testing.T) {
	ctx := context.Background()
	logs := NewMemoryScanLogService()
	require.NoError(t, logs.Append(ctx, &models.ScanLog{ID: "s1", Outcome: "new_match", CreatedAt: time.Now()}))
	require.NoError(t, logs.Append(ctx, &models.ScanLog{ID: "s0", Outcome: "not_found", CreatedAt: time.Now().Add(-48 * time.Hour)}))

	cache := NewLRUCacheService(8, time.Minute)
	svc := NewAdminService(NewMemoryDirectoryService(seedRecords()), cache, nil, logs, zap.NewNop())

	stats, err := svc.GetSystemStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, DatabaseStats{
		Records:       4,
		LoadedRecords: 2,
		TotalParcels:  3,
		SubDistricts:  1,
		Villages:      2,
		RecentScans:   1,
	}, stats.DatabaseStats)
	assert.NotNil(t, stats.Cache)
	assert.NotEmpty(t, stats.Uptime)
}

func TestAdminService_InvalidateCache(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCacheService(8, time.Minute)
	svc := NewAdminService(NewMemoryDirectoryService(nil), cache, nil, nil, zap.NewNop())

	require.NoError(t, cache.Set(ctx, snapshotKey("บางพลี", "หมู่ 3"), seedRecords()))
	require.NoError(t, cache.Set(ctx, snapshotKey("บางบ่อ", "หมู่ 1"), seedRecords()))

	require.NoError(t, svc.InvalidateCache(ctx, "บางพลี"))
	exists, _ := cache.Exists(ctx, snapshotKey("บางพลี", "หมู่ 3"))
	assert.False(t, exists)
	exists, _ = cache.Exists(ctx, snapshotKey("บางบ่อ", "หมู่ 1"))
	assert.True(t, exists)

	require.NoError(t, svc.InvalidateCache(ctx, ""))
	exists, _ = cache.Exists(ctx, snapshotKey("บางบ่อ", "หมู่ 1"))
	assert.False(t, exists)
}

func TestScanLogFilter(t *testing.T) {
	ctx := context.Background()
	logs := NewMemoryScanLogService()
	for i, outcome := range []string{"new_match", "not_found", "new_match"} {
		require.NoError(t, logs.Append(ctx, &models.ScanLog{
			ID:        string(rune('a' + i)),
			Village:   "หมู่ 3",
			Outcome:   outcome,
			CreatedAt: time.Now(),
		}))
	}

	matches, err := logs.List(ctx, ScanLogFilter{Outcome: "new_match"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "c", matches[0].ID)

	limited, err := logs.List(ctx, ScanLogFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
