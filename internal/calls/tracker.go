package calls

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrInvalidArgument = errors.New("calls: invalid argument")

// Tracker counts calls currently active on a business line.
//
// Start and End are idempotent per callSID so provider webhook retries do not
// skew the count. Entries older than the tracker TTL are dropped, which bounds
// the damage from a missed status callback.
type Tracker interface {
	Start(ctx context.Context, line, callSID string) error
	End(ctx context.Context, line, callSID string) error
	ActiveCount(ctx context.Context, line string) (int, error)
}

const DefaultCallTTL = 4 * time.Hour

// MemoryTracker is an in-process Tracker for tests and single-instance runs.
type MemoryTracker struct {
	mu    sync.Mutex
	lines map[string]map[string]time.Time
	ttl   time.Duration
	Now   func() time.Time
}

func NewMemoryTracker(ttl time.Duration) *MemoryTracker {
	if ttl <= 0 {
		ttl = DefaultCallTTL
	}
	return &MemoryTracker{lines: map[string]map[string]time.Time{}, ttl: ttl, Now: time.Now}
}

func (m *MemoryTracker) Start(ctx context.Context, line, callSID string) error {
	if line == "" || callSID == "" {
		return ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	calls, ok := m.lines[line]
	if !ok {
		calls = map[string]time.Time{}
		m.lines[line] = calls
	}
	if _, exists := calls[callSID]; !exists {
		calls[callSID] = m.Now()
	}
	return nil
}

func (m *MemoryTracker) End(ctx context.Context, line, callSID string) error {
	if line == "" || callSID == "" {
		return ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines[line], callSID)
	if len(m.lines[line]) == 0 {
		delete(m.lines, line)
	}
	return nil
}

func (m *MemoryTracker) ActiveCount(ctx context.Context, line string) (int, error) {
	if line == "" {
		return 0, ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.Now().Add(-m.ttl)
	for sid, started := range m.lines[line] {
		if !started.After(cutoff) {
			delete(m.lines[line], sid)
		}
	}
	return len(m.lines[line]), nil
}
