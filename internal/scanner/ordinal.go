package scanner

import (
	"sort"

	"github.com/parcel-tracker/app/models"
)

// LoadedOrdinal vị trí (bắt đầu từ 1) của record trong tập đã lên xe của snapshot,
// sắp theo display order (null xếp cuối, hòa thì theo thứ tự snapshot). Record được tính
// là đã lên xe kể cả khi snapshot chưa phản ánh điều đó.
func LoadedOrdinal(snapshot []models.AddressRecord, record *models.AddressRecord) int {
	if record == nil {
		return 0
	}

	type entry struct {
		order *int
		id    string
		pos   int
	}

	loaded := make([]entry, 0, len(snapshot)+1)
	found := false
	for i := range snapshot {
		rec := &snapshot[i]
		if rec.ID == record.ID {
			found = true
			loaded = append(loaded, entry{order: rec.DisplayOrder, id: rec.ID, pos: i})
			continue
		}
		if rec.OnTruck {
			loaded = append(loaded, entry{order: rec.DisplayOrder, id: rec.ID, pos: i})
		}
	}
	if !found {
		loaded = append(loaded, entry{order: record.DisplayOrder, id: record.ID, pos: len(snapshot)})
	}

	sort.SliceStable(loaded, func(i, j int) bool {
		a, b := loaded[i].order, loaded[j].order
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		default:
			return loaded[i].pos < loaded[j].pos
		}
	})

	for i, e := range loaded {
		if e.id == record.ID {
			return i + 1
		}
	}
	return 0
}

// LoadedCount số record đã lên xe trong snapshot
func LoadedCount(snapshot []models.AddressRecord) int {
	n := 0
	for i := range snapshot {
		if snapshot[i].OnTruck {
			n++
		}
	}
	return n
}
