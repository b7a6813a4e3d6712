package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextNormalizer_Normalize(t *testing.T) {
	n := NewTextNormalizer()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Confusion letters", input: "o O l I | s S z Z g G b B", expected: "0 0 1 1 1 5 5 2 2 9 9 8 8"},
		{name: "Tilde stripped", input: "12~3/4", expected: "123/4"},
		{name: "Whitespace collapsed and trimmed", input: "  67/1 \t\n ม.3   ", expected: "67/1 ม.3"},
		{name: "Uppercase", input: "route ax12", expected: "R0UTE AX12"},
		{name: "Lowercase i folded after uppercase", input: "i", expected: "1"},
		{name: "Thai text kept", input: "บ้านเลขที่ 99/12", expected: "บ้านเลขที่ 99/12"},
		{name: "Empty", input: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, n.Normalize(tc.input))
		})
	}
}

func TestTextNormalizer_Idempotent(t *testing.T) {
	n := NewTextNormalizer()

	inputs := []string{
		"",
		"   ",
		"67/1 MAIN RD",
		"Tracking: TH0123 ~ route 002a\n99/12 ม.3 ต.บางพลี",
		"i ı ǅ ß ~~ | l",
		"already 1234 clean",
		"x   y ",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestTextNormalizer_NormalizeBatch(t *testing.T) {
	n := NewTextNormalizer()
	out := n.NormalizeBatch([]string{"o1", " b "})
	assert.Equal(t, []string{"01", "8"}, out)
}
