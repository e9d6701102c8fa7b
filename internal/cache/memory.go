package cache

import (
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	data json.RawMessage
	ts   time.Time
}

// Memory — локальный in-process уровень кеша. Запись валидна,
// пока её возраст меньше TTL; просроченные записи удаляются лениво
// при следующем чтении.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory создает локальный кеш. Часы задаются извне для тестируемости.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Get возвращает значение, если запись существует и её возраст меньше ttl.
func (m *Memory) Get(key string, ttl time.Duration) (json.RawMessage, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.now().Sub(entry.ts) >= ttl {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return entry.data, true
}

// Set сохраняет значение с текущей меткой времени.
func (m *Memory) Set(key string, value json.RawMessage) {
	m.mu.Lock()
	m.entries[key] = memoryEntry{data: value, ts: m.now()}
	m.mu.Unlock()
}

// Len возвращает количество записей, включая ещё не вычищенные просроченные.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
