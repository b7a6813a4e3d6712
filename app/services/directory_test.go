package services

import (
	"context"
	"testing"
	"time"

	"github.com/parcel-tracker/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatchMutation(id string) *models.Mutation {
	loaded := true
	return &models.Mutation{RecordID: id, OnTruck: &loaded, SetParcelCount: intPtr(1)}
}

func TestMemoryDirectoryService_ApplyMutation(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryDirectoryService(seedRecords())

	// Hai scan cùng đọc snapshot cũ, cả hai đều ra NewMatch
	first, err := directory.ApplyMutation(ctx, newMatchMutation("b"))
	require.NoError(t, err)
	assert.True(t, first.OnTruck)
	assert.Equal(t, 1, first.ParcelCount)

	second, err := directory.ApplyMutation(ctx, newMatchMutation("b"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.ParcelCount)

	dup, err := directory.ApplyMutation(ctx, &models.Mutation{RecordID: "b", ParcelCountDelta: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, dup.ParcelCount)

	// Đã huỷ thì lần load sau đếm lại từ đầu
	unloaded := false
	_, err = directory.ApplyMutation(ctx, &models.Mutation{RecordID: "b", OnTruck: &unloaded})
	require.NoError(t, err)
	reloaded, err := directory.ApplyMutation(ctx, newMatchMutation("b"))
	require.NoError(t, err)
	assert.True(t, reloaded.OnTruck)
	assert.Equal(t, 1, reloaded.ParcelCount)

	_, err = directory.ApplyMutation(ctx, newMatchMutation("missing"))
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSnapshotKey_SeparatorInNames(t *testing.T) {
	assert.NotEqual(t, snapshotKey("a:b", "x"), snapshotKey("a", "b:x"))
	assert.Equal(t, "snapshot:บางพลี:หมู่ 3", snapshotKey("บางพลี", "หมู่ 3"))

	ctx := context.Background()
	cache := NewLRUCacheService(16, time.Minute)
	require.NoError(t, cache.Set(ctx, snapshotKey("a:b", "x"), seedRecords()))
	require.NoError(t, cache.Set(ctx, snapshotKey("a", "b:x"), seedRecords()))
	require.NoError(t, cache.Set(ctx, snapshotKey("a%3Ab", "x"), seedRecords()))

	require.NoError(t, cache.InvalidateArea(ctx, "a"))

	exists, _ := cache.Exists(ctx, snapshotKey("a", "b:x"))
	assert.False(t, exists)
	exists, _ = cache.Exists(ctx, snapshotKey("a:b", "x"))
	assert.True(t, exists)
	exists, _ = cache.Exists(ctx, snapshotKey("a%3Ab", "x"))
	assert.True(t, exists)

	require.NoError(t, cache.InvalidateArea(ctx, "a:b"))
	exists, _ = cache.Exists(ctx, snapshotKey("a:b", "x"))
	assert.False(t, exists)
	exists, _ = cache.Exists(ctx, snapshotKey("a%3Ab", "x"))
	assert.True(t, exists)
}
