package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemory_GetSet(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := NewMemory(clock)

	value := json.RawMessage(`{"ticker":"AAPL"}`)
	m.Set("report:AAPL", value)

	got, found := m.Get("report:AAPL", 24*time.Hour)
	assert.True(t, found)
	assert.Equal(t, value, got)
}

func TestMemory_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := NewMemory(clock)

	m.Set("report:TSLA", json.RawMessage(`{}`))

	tests := []struct {
		name    string
		advance time.Duration
		found   bool
	}{
		{name: "сразу после записи", advance: 0, found: true},
		{name: "за минуту до истечения", advance: 24*time.Hour - time.Minute, found: true},
		{name: "ровно через сутки", advance: 24 * time.Hour, found: false},
		{name: "после истечения", advance: 25 * time.Hour, found: false},
	}

	base := now
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = base.Add(tt.advance)
			_, found := m.Get("report:TSLA", 24*time.Hour)
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestMemory_ExpiredEntryIsPurged(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := NewMemory(clock)

	m.Set("report:NVDA", json.RawMessage(`{}`))
	assert.Equal(t, 1, m.Len())

	now = now.Add(48 * time.Hour)
	_, found := m.Get("report:NVDA", 24*time.Hour)
	assert.False(t, found)
	assert.Equal(t, 0, m.Len(), "просроченная запись должна удаляться при чтении")
}
