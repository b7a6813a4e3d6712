package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parcel-tracker/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestParcelService(index DirectoryIndex) (*ParcelService, *MemoryDirectoryService, *LRUCacheService) {
	directory := NewMemoryDirectoryService(seedRecords())
	cache := NewLRUCacheService(16, time.Minute)
	return NewParcelService(directory, cache, index, zap.NewNop()), directory, cache
}

func TestParcelService_List(t *testing.T) {
	svc, _, _ := newTestParcelService(nil)

	records, err := svc.List(context.Background(), "บางพลี", "หมู่ 3")
	require.NoError(t, err)
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	// Đã lên xe trước, sau đó theo display order
	assert.Equal(t, []string{"a", "c", "b"}, ids)
}

func TestParcelService_Create(t *testing.T) {
	ctx := context.Background()
	index := newFakeIndex()
	svc, _, cache := newTestParcelService(index)
	require.NoError(t, cache.Set(ctx, snapshotKey("บางพลี", "หมู่ 3"), seedRecords()))

	created, err := svc.Create(ctx, &models.AddressRecord{SubDistrict: " บางพลี ", Village: "หมู่ 3", Address: " 99/9 New Rd "})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "99/9 New Rd", created.Address)
	require.NotNil(t, created.DisplayOrder)
	assert.Equal(t, 4, *created.DisplayOrder)

	_, found, err := cache.Get(ctx, snapshotKey("บางพลี", "หมู่ 3"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Contains(t, index.docs, created.ID)

	_, err = svc.Create(ctx, &models.AddressRecord{SubDistrict: "บางพลี", Village: "หมู่ 3", Address: "99/9 New Rd"})
	assert.ErrorIs(t, err, ErrDuplicateAddress)
}

func TestParcelService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestParcelService(nil)

	loaded, err := svc.UpdateStatus(ctx, "b", true, false)
	require.NoError(t, err)
	assert.True(t, loaded.OnTruck)
	assert.Equal(t, 1, loaded.ParcelCount)

	again, err := svc.UpdateStatus(ctx, "b", true, true)
	require.NoError(t, err)
	assert.Equal(t, 2, again.ParcelCount)

	cancelled, err := svc.UpdateStatus(ctx, "b", false, false)
	require.NoError(t, err)
	assert.False(t, cancelled.OnTruck)
	assert.Equal(t, 2, cancelled.ParcelCount)

	_, err = svc.UpdateStatus(ctx, "missing", true, false)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestParcelService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	index := newFakeIndex()
	svc, directory, _ := newTestParcelService(index)

	updated, err := svc.Update(ctx, &models.AddressRecord{
		SubDistrict: "บางพลี",
		Village:     "หมู่ 3",
		Address:     "55 Soi",
		ParcelCount: 7,
		OnTruck:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "c", updated.ID)
	assert.Equal(t, 7, updated.ParcelCount)

	require.NoError(t, svc.Delete(ctx, &models.AddressRecord{ID: "c"}))
	_, err = directory.Get(ctx, "c")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.Equal(t, []string{"c"}, index.removed)

	err = svc.Delete(ctx, &models.AddressRecord{ID: "c"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestParcelService_ResetAndReorder(t *testing.T) {
	ctx := context.Background()
	svc, directory, _ := newTestParcelService(nil)

	updated, err := svc.Reorder(ctx, []models.OrderUpdate{{ID: "b", DisplayOrder: 0}, {ID: "zzz", DisplayOrder: 9}})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	count, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)

	all, err := directory.FetchAll(ctx)
	require.NoError(t, err)
	for _, r := range all {
		assert.False(t, r.OnTruck)
		assert.Zero(t, r.ParcelCount)
	}
	assert.Equal(t, "b", all[0].ID)
}

func TestParcelService_Locations(t *testing.T) {
	svc, _, _ := newTestParcelService(nil)

	locations, err := svc.Locations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"หมู่ 3", "หมู่ 5"}, locations["บางพลี"])
}

func TestParcelService_Search(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := newTestParcelService(nil)
	_, err := svc.Search(ctx, "55 Soi", "", "", 10)
	assert.ErrorIs(t, err, ErrSearchDisabled)

	index := newFakeIndex()
	svc, directory, _ := newTestParcelService(index)
	records, _ := directory.FetchAll(ctx)
	_, err = index.Reindex(records)
	require.NoError(t, err)

	docs, err := svc.Search(ctx, "55 Soi", "", "", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "c", docs[0].ID)

	index.err = errors.New("meili down")
	_, err = svc.Search(ctx, "55 Soi", "", "", 10)
	assert.True(t, IsCollaboratorError(err))
}

func TestParcelService_SyncIndex(t *testing.T) {
	ctx := context.Background()
	index := newFakeIndex()
	svc, _, _ := newTestParcelService(index)

	require.NoError(t, svc.SyncIndex(ctx, "b"))
	assert.Equal(t, "67/1 Main Rd", index.docs["b"].Address)

	require.NoError(t, svc.SyncIndex(ctx, "gone"))
	assert.Contains(t, index.removed, "gone")
}
