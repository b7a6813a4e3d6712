package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parcel-tracker/internal/external"
	"github.com/parcel-tracker/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScanService(t *testing.T, directory AddressDirectory, opts ...ScanServiceOption) *ScanService {
	engine, err := scanner.NewScanner()
	require.NoError(t, err)
	return NewScanService(engine, directory, zap.NewNop(), opts...)
}

func village3(text string) scanner.ScanInput {
	return scanner.ScanInput{Text: text, SubDistrict: "บางพลี", Village: "หมู่ 3"}
}

func TestScanService_NewMatchAppliesMutation(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryDirectoryService(seedRecords())
	publisher := &fakePublisher{}
	logs := NewMemoryScanLogService()
	svc := newTestScanService(t, directory, WithPublisher(publisher), WithScanLogs(logs))

	input := village3("to 67/l route 002a")
	input.ExpectedRouteCode = "002A"
	result, err := svc.ScanText(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, scanner.OutcomeNewMatch, result.Outcome.Kind)
	assert.Equal(t, "b", result.Outcome.RecordID)
	assert.Equal(t, 2, result.Outcome.Ordinal)
	require.NotNil(t, result.Outcome.Record)
	assert.True(t, result.Outcome.Record.OnTruck)
	assert.Equal(t, 1, result.Outcome.Record.ParcelCount)

	stored, err := directory.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, stored.OnTruck)
	assert.Equal(t, 1, stored.ParcelCount)

	assert.Len(t, result.Records, 3)
	assert.Equal(t, ScanStats{TotalRecords: 3, LoadedRecords: 3, TotalParcels: 4}, result.Stats)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "new_match", publisher.events[0].Outcome)
	assert.Equal(t, result.ScanID, publisher.events[0].EventID)
	assert.True(t, publisher.events[0].OnTruck)

	entries, err := svc.ListScans(ctx, ScanLogFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "text", string(entries[0].Source))
	assert.Equal(t, "b", entries[0].RecordID)
	assert.Equal(t, 2, entries[0].Ordinal)
}

func TestScanService_DuplicateIncrementsCount(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryDirectoryService(seedRecords())
	svc := newTestScanService(t, directory)

	result, err := svc.ScanText(ctx, village3("55"))
	require.NoError(t, err)

	assert.Equal(t, scanner.OutcomeDuplicateMatch, result.Outcome.Kind)
	assert.Equal(t, "c", result.Outcome.RecordID)
	assert.Equal(t, 2, result.Outcome.Ordinal)
	assert.Equal(t, 3, result.Outcome.Record.ParcelCount)
	assert.Contains(t, result.Outcome.Message, "ลำดับที่ 2")
}

func TestScanService_ScanTwice(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryDirectoryService(seedRecords())
	svc := newTestScanService(t, directory, WithCache(NewLRUCacheService(16, time.Minute)))

	first, err := svc.ScanText(ctx, village3("67/1"))
	require.NoError(t, err)
	assert.Equal(t, scanner.OutcomeNewMatch, first.Outcome.Kind)

	second, err := svc.ScanText(ctx, village3("67/1"))
	require.NoError(t, err)
	assert.Equal(t, scanner.OutcomeDuplicateMatch, second.Outcome.Kind)
	assert.Equal(t, first.Outcome.Ordinal, second.Outcome.Ordinal)
	assert.Equal(t, 2, second.Outcome.Record.ParcelCount)
}

func TestScanService_CrossAreaNoMutation(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryDirectoryService(seedRecords())
	svc := newTestScanService(t, directory)

	result, err := svc.ScanText(ctx, village3("88/9"))
	require.NoError(t, err)

	assert.Equal(t, scanner.OutcomeCrossAreaWarning, result.Outcome.Kind)
	assert.Equal(t, "หมู่ 5", result.Outcome.ActualVillage)
	assert.Zero(t, result.Outcome.Ordinal)

	stored, err := directory.Get(ctx, "d")
	require.NoError(t, err)
	assert.False(t, stored.OnTruck)
}

func TestScanService_Manual(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryDirectoryService(seedRecords())
	logs := NewMemoryScanLogService()
	svc := newTestScanService(t, directory, WithScanLogs(logs))

	result, err := svc.ScanManual(ctx, scanner.ScanInput{
		ManualAddress:     "67/1",
		ExpectedRouteCode: "999Z",
		SubDistrict:       "บางพลี",
		Village:           "หมู่ 3",
	})
	require.NoError(t, err)
	assert.Equal(t, scanner.OutcomeNewMatch, result.Outcome.Kind)

	entries, err := logs.List(ctx, ScanLogFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "manual", string(entries[0].Source))
	assert.Equal(t, "67/1", entries[0].RawText)
}

func TestScanService_ScanImage(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryDirectoryService(seedRecords())
	archive := &fakeArchive{}
	svc := newTestScanService(t, directory,
		WithRecognizer(&fakeRecognizer{text: "to 67/l route 002a"}),
		WithLabelArchive(archive))

	result, err := svc.ScanImage(ctx, []byte{0xff, 0xd8, 0xff}, village3(""))
	require.NoError(t, err)

	assert.Equal(t, scanner.OutcomeNewMatch, result.Outcome.Kind)
	assert.Equal(t, "to 67/l route 002a", result.OCRText)
	require.Len(t, archive.keys, 1)
	assert.Equal(t, archive.keys[0], result.ImageKey)
}

func TestScanService_OCRFailureIsCollaboratorError(t *testing.T) {
	ctx := context.Background()
	ocrErr := errors.New("quota exceeded")
	svc := newTestScanService(t, NewMemoryDirectoryService(seedRecords()),
		WithRecognizer(&fakeRecognizer{err: ocrErr}))

	_, err := svc.ScanImage(ctx, []byte("img"), village3(""))
	require.Error(t, err)
	assert.True(t, IsCollaboratorError(err))
	assert.ErrorIs(t, err, ocrErr)

	var ce *CollaboratorError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CollaboratorOCR, ce.Collaborator)
}

func TestScanService_NoRecognizer(t *testing.T) {
	svc := newTestScanService(t, NewMemoryDirectoryService(nil))

	_, err := svc.ScanImage(context.Background(), []byte("img"), village3(""))
	assert.ErrorIs(t, err, external.ErrRecognizerUnavailable)

	_, err = svc.Recognize(context.Background(), nil)
	assert.ErrorIs(t, err, external.ErrEmptyImage)
}

func TestScanService_StoreFailure(t *testing.T) {
	directory := failingDirectory{NewMemoryDirectoryService(seedRecords())}
	svc := newTestScanService(t, directory)

	_, err := svc.ScanText(context.Background(), village3("67/1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)

	var ce *CollaboratorError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CollaboratorStore, ce.Collaborator)
}

func TestScanService_PublishFailureDoesNotFailScan(t *testing.T) {
	svc := newTestScanService(t, NewMemoryDirectoryService(seedRecords()),
		WithPublisher(&fakePublisher{err: errors.New("broker down")}))

	result, err := svc.ScanText(context.Background(), village3("67/1"))
	require.NoError(t, err)
	assert.Equal(t, scanner.OutcomeNewMatch, result.Outcome.Kind)
}

func TestScanService_NotFoundLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryDirectoryService(seedRecords())
	svc := newTestScanService(t, directory)

	result, err := svc.ScanText(ctx, village3("999"))
	require.NoError(t, err)
	assert.Equal(t, scanner.OutcomeNotFound, result.Outcome.Kind)
	assert.Nil(t, result.Outcome.Mutation)

	for _, id := range []string{"a", "b", "c", "d"} {
		stored, err := directory.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, recordByID(seedRecords(), id).ParcelCount, stored.ParcelCount)
		assert.Equal(t, recordByID(seedRecords(), id).OnTruck, stored.OnTruck)
	}
}

func TestScanService_WholeSubDistrictLoadsParcel(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryDirectoryService(seedRecords())
	svc := newTestScanService(t, directory, WithCache(NewLRUCacheService(16, time.Minute)))

	result, err := svc.ScanText(ctx, scanner.ScanInput{Text: "67/1", SubDistrict: "บางพลี"})
	require.NoError(t, err)

	assert.Equal(t, scanner.OutcomeNewMatch, result.Outcome.Kind)
	assert.Equal(t, "b", result.Outcome.RecordID)

	stored, err := directory.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, stored.OnTruck)
	assert.Equal(t, 1, stored.ParcelCount)
	assert.Len(t, result.Records, 4)

	manual, err := svc.ScanManual(ctx, scanner.ScanInput{ManualAddress: "88/9", SubDistrict: "บางพลี"})
	require.NoError(t, err)
	assert.Equal(t, scanner.OutcomeNewMatch, manual.Outcome.Kind)
	assert.Equal(t, "d", manual.Outcome.RecordID)
}
