package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwise-ai/bookwise/internal/calendar"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

// recordingBackend wraps the memory backend and counts CreateEvent calls.
type recordingBackend struct {
	*calendar.MemoryBackend
	creates  int
	listErr  error
	writeErr error
}

func (r *recordingBackend) ListBusy(ctx context.Context, start, end time.Time) ([]calendar.BusyInterval, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.MemoryBackend.ListBusy(ctx, start, end)
}

func (r *recordingBackend) CreateEvent(ctx context.Context, start, end time.Time, title, description string) (calendar.CreatedEvent, error) {
	r.creates++
	if r.writeErr != nil {
		return calendar.CreatedEvent{}, r.writeErr
	}
	return r.MemoryBackend.CreateEvent(ctx, start, end, title, description)
}

func newExecutorForTest(backend calendar.Backend) *Executor {
	return NewExecutor(backend, time.UTC, logging.New("error"))
}

func TestBookSuccess(t *testing.T) {
	be := &recordingBackend{MemoryBackend: calendar.NewMemoryBackend()}
	ex := newExecutorForTest(be)

	res, err := ex.Book(context.Background(), Request{
		Date:            "2025-06-26",
		Time:            "14:00",
		DurationMinutes: 60,
		Title:           "Meeting",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, be.creates)
	assert.NotEmpty(t, res.EventID)
	assert.Equal(t, "2025-06-26", res.Date)
	assert.Equal(t, "14:00", res.Time)
}

func TestBookConflictNeverWrites(t *testing.T) {
	be := &recordingBackend{MemoryBackend: calendar.NewMemoryBackend()}
	busyStart := time.Date(2025, 6, 26, 14, 0, 0, 0, time.UTC)
	be.Seed(busyStart, busyStart.Add(time.Hour), "existing")
	ex := newExecutorForTest(be)

	_, err := ex.Book(context.Background(), Request{
		Date:            "2025-06-26",
		Time:            "14:00",
		DurationMinutes: 60,
		Title:           "Meeting",
	})
	require.Error(t, err)
	assert.True(t, IsSlotConflict(err))
	assert.Equal(t, 0, be.creates, "CreateEvent must not be called on conflict")

	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "14:00", conflict.Time)
	assert.Equal(t, "2025-06-26", conflict.Date)
}

func TestBookPartialOverlapConflicts(t *testing.T) {
	be := &recordingBackend{MemoryBackend: calendar.NewMemoryBackend()}
	busyStart := time.Date(2025, 6, 26, 14, 30, 0, 0, time.UTC)
	be.Seed(busyStart, busyStart.Add(time.Hour), "existing")
	ex := newExecutorForTest(be)

	_, err := ex.Book(context.Background(), Request{
		Date: "2025-06-26", Time: "14:00", DurationMinutes: 60, Title: "Meeting",
	})
	assert.True(t, IsSlotConflict(err))
	assert.Equal(t, 0, be.creates)
}

func TestBookAdjacentSlotIsFree(t *testing.T) {
	be := &recordingBackend{MemoryBackend: calendar.NewMemoryBackend()}
	busyStart := time.Date(2025, 6, 26, 14, 0, 0, 0, time.UTC)
	be.Seed(busyStart, busyStart.Add(time.Hour), "existing")
	ex := newExecutorForTest(be)

	// Ends exactly when the busy interval starts.
	_, err := ex.Book(context.Background(), Request{
		Date: "2025-06-26", Time: "13:00", DurationMinutes: 60, Title: "Meeting",
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, be.creates)
}

func TestBookListBusyFailure(t *testing.T) {
	be := &recordingBackend{MemoryBackend: calendar.NewMemoryBackend(), listErr: errors.New("backend down")}
	ex := newExecutorForTest(be)

	_, err := ex.Book(context.Background(), Request{
		Date: "2025-06-26", Time: "14:00", DurationMinutes: 60, Title: "Meeting",
	})
	require.Error(t, err)
	assert.False(t, IsSlotConflict(err))
	assert.Equal(t, 0, be.creates)
}

func TestBookWriteFailure(t *testing.T) {
	be := &recordingBackend{MemoryBackend: calendar.NewMemoryBackend(), writeErr: errors.New("insert failed")}
	ex := newExecutorForTest(be)

	_, err := ex.Book(context.Background(), Request{
		Date: "2025-06-26", Time: "14:00", DurationMinutes: 60, Title: "Meeting",
	})
	require.Error(t, err)
	assert.False(t, IsSlotConflict(err))
}

func TestBookValidation(t *testing.T) {
	ex := newExecutorForTest(&recordingBackend{MemoryBackend: calendar.NewMemoryBackend()})

	_, err := ex.Book(context.Background(), Request{Date: "2025-06-26", DurationMinutes: 60})
	assert.Error(t, err, "missing time")

	_, err = ex.Book(context.Background(), Request{Date: "2025-06-26", Time: "14:00"})
	assert.Error(t, err, "missing duration")

	_, err = ex.Book(context.Background(), Request{Date: "nope", Time: "14:00", DurationMinutes: 30})
	assert.Error(t, err, "bad date")
}
