package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBackend is an in-memory Backend for development and tests.
type MemoryBackend struct {
	mu     sync.RWMutex
	events []memoryEvent
}

type memoryEvent struct {
	id    string
	start time.Time
	end   time.Time
	title string
}

// NewMemoryBackend creates an empty in-memory calendar.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

var _ Backend = (*MemoryBackend)(nil)

// ListBusy returns every stored event overlapping [start, end), ordered by
// start time.
func (m *MemoryBackend) ListBusy(ctx context.Context, start, end time.Time) ([]BusyInterval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var busy []BusyInterval
	for _, ev := range m.events {
		if ev.start.Before(end) && ev.end.After(start) {
			busy = append(busy, BusyInterval{Start: ev.start, End: ev.end})
		}
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy, nil
}

// CreateEvent stores the event and returns a generated reference.
func (m *MemoryBackend) CreateEvent(ctx context.Context, start, end time.Time, title, description string) (CreatedEvent, error) {
	if err := ctx.Err(); err != nil {
		return CreatedEvent{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ev := memoryEvent{
		id:    uuid.NewString(),
		start: start,
		end:   end,
		title: title,
	}
	m.events = append(m.events, ev)
	return CreatedEvent{EventID: ev.id}, nil
}

// Seed inserts a busy interval directly. Test and demo helper.
func (m *MemoryBackend) Seed(start, end time.Time, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, memoryEvent{id: uuid.NewString(), start: start, end: end, title: title})
}
