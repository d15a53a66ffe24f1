package service

import (
	"sync"

	"github.com/smartread/smartread/internal/models"
)

// DefaultMaxLogs is the ring size when none is configured.
const DefaultMaxLogs = 100

// LogBuffer keeps the most recent call records, oldest first.
type LogBuffer struct {
	mu      sync.Mutex
	max     int
	entries []models.LogEntry
}

// NewLogBuffer creates a buffer holding at most max entries.
func NewLogBuffer(max int) *LogBuffer {
	if max <= 0 {
		max = DefaultMaxLogs
	}
	return &LogBuffer{max: max}
}

// Append records an entry, evicting the oldest once the buffer is full.
func (b *LogBuffer) Append(entry models.LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, entry)
	if over := len(b.entries) - b.max; over > 0 {
		b.entries = append(b.entries[:0:0], b.entries[over:]...)
	}
}

// Entries returns a copy of the retained entries.
func (b *LogBuffer) Entries() []models.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of retained entries.
func (b *LogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Clear drops every entry.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
}

// Stats summarizes the retained entries.
func (b *LogBuffer) Stats() models.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := models.Stats{
		TotalCalls:    len(b.entries),
		ProviderUsage: make(map[models.CloudProvider]int, len(models.Providers)),
	}
	for _, p := range models.Providers {
		stats.ProviderUsage[p] = 0
	}
	if stats.TotalCalls == 0 {
		return stats
	}

	var success int
	var totalTime int64
	for _, e := range b.entries {
		if e.Success {
			success++
		}
		totalTime += e.ProcessingTimeMs
		if e.Provider != "" {
			stats.ProviderUsage[e.Provider]++
		}
	}

	stats.SuccessRate = float64(success) / float64(stats.TotalCalls)
	stats.AverageProcessingTime = float64(totalTime) / float64(stats.TotalCalls)
	return stats
}
