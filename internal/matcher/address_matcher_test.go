package matcher

import (
	"testing"

	"github.com/parcel-tracker/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(village string, addresses ...string) []models.AddressRecord {
	out := make([]models.AddressRecord, len(addresses))
	for i, a := range addresses {
		out[i] = models.AddressRecord{
			ID:          village + "-" + a,
			SubDistrict: "บางพลี",
			Village:     village,
			Address:     a,
		}
	}
	return out
}

func TestAddressMatcher_PriorityOrdering(t *testing.T) {
	am := NewAddressMatcher()
	candidates := records("หมู่ 3", "6701 Soi A", "670 Moo 3", "67/1 Main")

	testCases := []struct {
		token    string
		expected string
		tier     MatchTier
	}{
		{token: "67/1", expected: "67/1 Main", tier: TierLeadingRun},
		{token: "670", expected: "670 Moo 3", tier: TierLeadingRun},
		{token: "6701", expected: "6701 Soi A", tier: TierLeadingRun},
	}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			result := am.Match(candidates, tc.token, "บางพลี", "หมู่ 3")
			require.NotNil(t, result)
			assert.Equal(t, tc.expected, result.Record.Address)
			assert.Equal(t, tc.tier, result.Tier)
			assert.False(t, result.CrossArea)
		})
	}
}

func TestAddressMatcher_StartsWithThreshold(t *testing.T) {
	am := NewAddressMatcher()
	candidates := records("หมู่ 3", "671/2 Main Rd")

	assert.Nil(t, am.Match(candidates, "67", "บางพลี", "หมู่ 3"))

	result := am.Match(candidates, "671", "บางพลี", "หมู่ 3")
	require.NotNil(t, result)
	assert.Equal(t, TierStartsWith, result.Tier)
}

func TestAddressMatcher_FirstToken(t *testing.T) {
	am := NewAddressMatcher()
	candidates := records("หมู่ 3", "12-3, Main Rd")

	result := am.Match(candidates, "123", "บางพลี", "หมู่ 3")
	require.NotNil(t, result)
	assert.Equal(t, TierFirstToken, result.Tier)
}

func TestAddressMatcher_ContainsUnrestricted(t *testing.T) {
	am := NewAddressMatcher()
	candidates := records("หมู่ 3", "Soi 5 No. 1234")

	result := am.Match(candidates, "1234", "บางพลี", "หมู่ 3")
	require.NotNil(t, result)
	assert.Equal(t, TierContains, result.Tier)

	// Dưới 4 ký tự không dùng contains
	assert.Nil(t, am.Match(candidates, "123", "บางพลี", "หมู่ 3"))
}

func TestAddressMatcher_NoMatchCases(t *testing.T) {
	am := NewAddressMatcher()
	candidates := records("หมู่ 3", "012 Rd", "12 Rd")

	assert.Nil(t, am.Match(candidates, "012", "บางพลี", "หมู่ 3"), "leading zero is not a numeric token")
	assert.Nil(t, am.Match(candidates, "5", "บางพลี", "หมู่ 3"), "single digit is too short")
	assert.Nil(t, am.Match(candidates, "", "บางพลี", "หมู่ 3"))
	assert.Nil(t, am.Match(nil, "12", "บางพลี", "หมู่ 3"))
}

func TestAddressMatcher_NamePath(t *testing.T) {
	am := NewAddressMatcher()
	candidates := records("หมู่ 3", "12 Ban Suan", "Wat Pho Road", "บ้านสวน หมู่ 3")

	result := am.Match(candidates, "wat pho", "บางพลี", "หมู่ 3")
	require.NotNil(t, result)
	assert.Equal(t, "Wat Pho Road", result.Record.Address)
	assert.Equal(t, TierName, result.Tier)

	result = am.Match(candidates, "temple, pho", "บางพลี", "หมู่ 3")
	require.NotNil(t, result)
	assert.Equal(t, "Wat Pho Road", result.Record.Address)
	assert.Equal(t, TierNameWord, result.Tier)

	result = am.Match(candidates, "บ้านสวน", "บางพลี", "หมู่ 3")
	require.NotNil(t, result)
	assert.Equal(t, "บ้านสวน หมู่ 3", result.Record.Address)
}

func TestAddressMatcher_CrossArea(t *testing.T) {
	am := NewAddressMatcher()
	candidates := append(records("หมู่ 3", "10 Rd"), records("หมู่ 5", "67/1 Rd")...)

	result := am.Match(candidates, "67/1", "บางพลี", "หมู่ 3")
	require.NotNil(t, result)
	assert.True(t, result.CrossArea)
	assert.Equal(t, "หมู่ 5", result.ActualVillage)
	assert.Equal(t, "บางพลี", result.ActualSubDistrict)
}

func TestAddressMatcher_FirstMatchWins(t *testing.T) {
	am := NewAddressMatcher()
	candidates := records("หมู่ 3", "67/1 A", "67/1 B")

	for i := 0; i < 5; i++ {
		result := am.Match(candidates, "67/1", "บางพลี", "หมู่ 3")
		require.NotNil(t, result)
		assert.Equal(t, "67/1 A", result.Record.Address)
	}
}

func TestAddressMatcher_ResultIsCopy(t *testing.T) {
	am := NewAddressMatcher()
	candidates := records("หมู่ 3", "67/1 A")

	result := am.Match(candidates, "67/1", "บางพลี", "หมู่ 3")
	require.NotNil(t, result)
	result.Record.OnTruck = true
	assert.False(t, candidates[0].OnTruck)
}

func TestAddressMatcher_CrossAreaScope(t *testing.T) {
	am := NewAddressMatcher()
	candidates := append(records("หมู่ 3", "10 Rd"), records("หมู่ 5", "67/1 Rd")...)
	candidates = append(candidates, models.AddressRecord{ID: "far", SubDistrict: "บางบ่อ", Village: "หมู่ 1", Address: "99/9 Far"})

	testCases := []struct {
		name        string
		token       string
		subDistrict string
		village     string
		crossArea   bool
	}{
		{name: "whole sub-district selected", token: "67/1", subDistrict: "บางพลี", village: "", crossArea: false},
		{name: "same village", token: "10", subDistrict: "บางพลี", village: "หมู่ 3", crossArea: false},
		{name: "other village", token: "67/1", subDistrict: "บางพลี", village: "หมู่ 3", crossArea: true},
		{name: "other sub-district without village", token: "99/9", subDistrict: "บางพลี", village: "", crossArea: true},
		{name: "nothing selected", token: "99/9", subDistrict: "", village: "", crossArea: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := am.Match(candidates, tc.token, tc.subDistrict, tc.village)
			require.NotNil(t, result)
			assert.Equal(t, tc.crossArea, result.CrossArea)
			if !tc.crossArea {
				assert.Empty(t, result.ActualVillage)
			}
		})
	}
}
