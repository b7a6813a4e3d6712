package search

import (
	"testing"

	"github.com/parcel-tracker/app/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildFilter(t *testing.T) {
	assert.Equal(t, "", BuildFilter("", ""))
	assert.Equal(t, `sub_district = "บางพลี"`, BuildFilter("บางพลี", ""))
	assert.Equal(t, `sub_district = "บางพลี" AND village = "3 บ้านสวน"`, BuildFilter("บางพลี", "3 บ้านสวน"))
	assert.Equal(t, `village = "a\"b"`, BuildFilter("", `a"b`))
}

func TestParseHits(t *testing.T) {
	hits := []interface{}{
		map[string]interface{}{
			"id":           "r1",
			"sub_district": "บางพลี",
			"village":      "หมู่ 3",
			"address":      "67/1 Main Rd",
			"on_truck":     true,
		},
		"not a map",
		map[string]interface{}{"id": "r2", "address": "10"},
	}

	docs := ParseHits(hits)
	assert.Len(t, docs, 2)
	assert.Equal(t, AddressDoc{ID: "r1", SubDistrict: "บางพลี", Village: "หมู่ 3", Address: "67/1 Main Rd", OnTruck: true}, docs[0])
	assert.Equal(t, "r2", docs[1].ID)
	assert.False(t, docs[1].OnTruck)
}

func TestToDoc(t *testing.T) {
	doc := ToDoc(&models.AddressRecord{ID: "x", SubDistrict: "s", Village: "v", Address: "a", ParcelCount: 3})
	assert.Equal(t, AddressDoc{ID: "x", SubDistrict: "s", Village: "v", Address: "a"}, doc)
}
