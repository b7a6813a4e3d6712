package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggester_Numeric(t *testing.T) {
	s := NewSuggester(NewAddressMatcher(), 0)
	candidates := records("หมู่ 3", "671 A", "681 B", "99 C")

	suggestions := s.Suggest(candidates, "672")
	require.Len(t, suggestions, 1)
	assert.Equal(t, "671 A", suggestions[0].Address)
	assert.InDelta(t, 0.667, suggestions[0].Score, 0.001)
}

func TestSuggester_Name(t *testing.T) {
	s := NewSuggester(NewAddressMatcher(), 0)
	candidates := records("หมู่ 3", "12 Ban Suan", "Wat Pho Road")

	suggestions := s.Suggest(candidates, "wat phoo")
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "Wat Pho Road", suggestions[0].Address)
}

func TestSuggester_LimitAndStableOrder(t *testing.T) {
	s := NewSuggester(NewAddressMatcher(), 2)
	candidates := records("หมู่ 3", "671 A", "673 B", "674 C")

	suggestions := s.Suggest(candidates, "672")
	require.Len(t, suggestions, 2)
	assert.Equal(t, "671 A", suggestions[0].Address)
	assert.Equal(t, "673 B", suggestions[1].Address)
}

func TestSuggester_Empty(t *testing.T) {
	s := NewSuggester(NewAddressMatcher(), 0)
	assert.Nil(t, s.Suggest(records("หมู่ 3", "671 A"), "  "))
	assert.Nil(t, s.Suggest(nil, "671"))
}
