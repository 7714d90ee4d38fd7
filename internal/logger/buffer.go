// internal/logger/buffer.go
package logger

import (
	"strings"
	"sync"
)

// LogBuffer is a fixed-size in-memory ring of log lines. It is an
// io.Writer, so it can stand in for the console while a full-screen UI owns
// the terminal.
type LogBuffer struct {
	mu           sync.Mutex
	ring         []string
	maxSize      int
	currentIndex int
	wrapped      bool

	totalEntries uint64
}

// NewLogBuffer creates a new log buffer with the specified size
func NewLogBuffer(maxSize int) *LogBuffer {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &LogBuffer{
		ring:    make([]string, maxSize),
		maxSize: maxSize,
	}
}

// Write stores every non-empty line of p.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		lb.ring[lb.currentIndex] = line
		lb.currentIndex = (lb.currentIndex + 1) % lb.maxSize
		if lb.currentIndex == 0 {
			lb.wrapped = true
		}
		lb.totalEntries++
	}
	return len(p), nil
}

// Sync is a no-op; lines are stored as soon as they are written.
func (lb *LogBuffer) Sync() error {
	return nil
}

// GetRecentLogs returns up to limit of the newest lines, oldest first. A
// non-positive limit returns everything held.
func (lb *LogBuffer) GetRecentLogs(limit int) []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.currentIndex
	start := 0
	if lb.wrapped {
		count = lb.maxSize
		start = lb.currentIndex
	}
	if limit > 0 && limit < count {
		start = (start + count - limit) % lb.maxSize
		count = limit
	}

	logs := make([]string, 0, count)
	for i := 0; i < count; i++ {
		logs = append(logs, lb.ring[(start+i)%lb.maxSize])
	}
	return logs
}

// GetStats returns the number of lines ever written.
func (lb *LogBuffer) GetStats() uint64 {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.totalEntries
}
