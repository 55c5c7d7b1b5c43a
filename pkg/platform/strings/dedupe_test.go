package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil passes through", input: nil, expected: nil},
		{name: "empty passes through", input: []string{}, expected: []string{}},
		{
			name:     "references are trimmed",
			input:    []string{" doi:10.1021/jm020017n ", "doi:10.1602/neurorx.2.4.541"},
			expected: []string{"doi:10.1021/jm020017n", "doi:10.1602/neurorx.2.4.541"},
		},
		{
			name:     "repeats keep first position",
			input:    []string{"pmid:1", "pmid:2", " pmid:1", "pmid:3"},
			expected: []string{"pmid:1", "pmid:2", "pmid:3"},
		},
		{
			name:     "blanks dropped",
			input:    []string{"", "  ", "pmid:1"},
			expected: []string{"pmid:1"},
		},
		{
			name:     "case is significant",
			input:    []string{"DOI:x", "doi:x"},
			expected: []string{"DOI:x", "doi:x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList("  "))
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitList("a:9092, b:9092,,a:9092"))
}
