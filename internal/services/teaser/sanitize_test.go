package teaser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTables(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "текст без таблиц не меняется",
			input:    "Just a paragraph.\n\nAnother one.",
			expected: "Just a paragraph.\n\nAnother one.",
		},
		{
			name:     "строки таблицы удаляются",
			input:    "Intro\n| Metric | Value |\n|---|---|\n| P/E | 30 |\nOutro",
			expected: "Intro\nOutro",
		},
		{
			name:     "разделитель без ячеек удаляется",
			input:    "Before\n|:---|:---|\nAfter",
			expected: "Before\nAfter",
		},
		{
			name:     "вертикальная черта в середине строки сохраняется",
			input:    "Either A | or B",
			expected: "Either A | or B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripTables(tt.input))
		})
	}
}

func TestStripTables_Idempotent(t *testing.T) {
	input := "Intro\n| A | B |\n|---|---|\n| 1 | 2 |\nOutro"
	once := StripTables(input)
	twice := StripTables(once)
	assert.Equal(t, once, twice)
}
