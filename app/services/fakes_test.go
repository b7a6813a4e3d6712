package services

import (
	"context"
	"errors"
	"sync"

	"github.com/parcel-tracker/app/models"
	"github.com/parcel-tracker/internal/events"
	"github.com/parcel-tracker/internal/search"
)

func intPtr(v int) *int { return &v }

func seedRecords() []models.AddressRecord {
	return []models.AddressRecord{
		{ID: "a", SubDistrict: "บางพลี", Village: "หมู่ 3", Address: "10/2 Rd", DisplayOrder: intPtr(1), OnTruck: true, ParcelCount: 1},
		{ID: "b", SubDistrict: "บางพลี", Village: "หมู่ 3", Address: "67/1 Main Rd", DisplayOrder: intPtr(2)},
		{ID: "c", SubDistrict: "บางพลี", Village: "หมู่ 3", Address: "55 Soi", DisplayOrder: intPtr(3), OnTruck: true, ParcelCount: 2},
		{ID: "d", SubDistrict: "บางพลี", Village: "หมู่ 5", Address: "88/9 Other", DisplayOrder: intPtr(1)},
	}
}

func recordByID(records []models.AddressRecord, id string) models.AddressRecord {
	for _, r := range records {
		if r.ID == id {
			return r
		}
	}
	return models.AddressRecord{}
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Name() string { return "fake" }

func (f *fakeRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	return f.text, f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.ScanEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event *events.ScanEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeArchive struct {
	keys []string
}

func (f *fakeArchive) Put(ctx context.Context, scanID string, image []byte) (string, error) {
	key := "labels/" + scanID + ".jpg"
	f.keys = append(f.keys, key)
	return key, nil
}

type fakeIndex struct {
	docs    map[string]search.AddressDoc
	err     error
	removed []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[string]search.AddressDoc)}
}

func (f *fakeIndex) Search(ctx context.Context, query, subDistrict, village string, limit int) ([]search.AddressDoc, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []search.AddressDoc
	for _, d := range f.docs {
		if d.Address == query {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeIndex) Reindex(records []models.AddressRecord) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.docs = make(map[string]search.AddressDoc)
	for i := range records {
		f.docs[records[i].ID] = search.ToDoc(&records[i])
	}
	return len(records), nil
}

func (f *fakeIndex) Upsert(record *models.AddressRecord) error {
	if f.err != nil {
		return f.err
	}
	f.docs[record.ID] = search.ToDoc(record)
	return nil
}

func (f *fakeIndex) Remove(id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.docs, id)
	f.removed = append(f.removed, id)
	return nil
}

var errStoreDown = errors.New("connection refused")

// failingDirectory directory mà ApplyMutation luôn lỗi
type failingDirectory struct {
	*MemoryDirectoryService
}

func (f failingDirectory) ApplyMutation(ctx context.Context, mutation *models.Mutation) (*models.AddressRecord, error) {
	return nil, newCollaboratorError(CollaboratorStore, "apply_mutation", errStoreDown)
}
