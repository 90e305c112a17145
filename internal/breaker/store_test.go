package breaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CountsWithinWindow(t *testing.T) {
	s := NewMemoryStore(0)

	s.RecordSuccess("svc", 5*time.Millisecond)
	s.RecordFailure("svc", 5*time.Millisecond)
	s.RecordFailure("svc", 5*time.Millisecond)

	assert.Equal(t, 1, s.SuccessCount("svc", time.Minute))
	assert.Equal(t, 2, s.FailureCount("svc", time.Minute))
}

func TestMemoryStore_WindowExcludesOldEvents(t *testing.T) {
	s := NewMemoryStore(0)

	s.RecordFailure("svc", 0)
	time.Sleep(20 * time.Millisecond)

	require.Equal(t, 0, s.FailureCount("svc", 5*time.Millisecond))
	require.Equal(t, 1, s.FailureCount("svc", time.Minute))
}

func TestMemoryStore_SeparateCircuitsAreIndependent(t *testing.T) {
	s := NewMemoryStore(0)

	s.RecordFailure("a", 0)
	s.RecordFailure("a", 0)
	s.RecordSuccess("b", 0)

	assert.Equal(t, 2, s.FailureCount("a", time.Minute))
	assert.Equal(t, 0, s.FailureCount("b", time.Minute))
	assert.Equal(t, 1, s.SuccessCount("b", time.Minute))
}

func TestMemoryStore_OverflowEvictsOldestBatch(t *testing.T) {
	s := NewMemoryStore(10)

	for i := 0; i < 25; i++ {
		s.RecordSuccess("svc", 0)
	}

	log := s.EventLog("svc", 0)
	assert.LessOrEqual(t, len(log), 10)
	assert.GreaterOrEqual(t, len(log), 1)
}

func TestMemoryStore_EventLogReturnsNewestLast(t *testing.T) {
	s := NewMemoryStore(0)

	s.RecordSuccess("svc", 1*time.Millisecond)
	s.RecordFailure("svc", 2*time.Millisecond)

	log := s.EventLog("svc", 0)
	require.Len(t, log, 2)
	assert.Equal(t, EventSuccess, log[0].Kind)
	assert.Equal(t, EventFailure, log[1].Kind)
}

func TestMemoryStore_EventLogRespectsLimit(t *testing.T) {
	s := NewMemoryStore(0)
	for i := 0; i < 5; i++ {
		s.RecordSuccess("svc", 0)
	}

	log := s.EventLog("svc", 2)
	assert.Len(t, log, 2)
}

func TestMemoryStore_ClearRemovesEvents(t *testing.T) {
	s := NewMemoryStore(0)
	s.RecordFailure("svc", 0)
	s.Clear("svc")

	assert.Equal(t, 0, s.FailureCount("svc", time.Minute))
}

func TestMemoryStore_ClearAllRemovesEveryCircuit(t *testing.T) {
	s := NewMemoryStore(0)
	s.RecordFailure("a", 0)
	s.RecordFailure("b", 0)
	s.ClearAll()

	assert.Equal(t, 0, s.FailureCount("a", time.Minute))
	assert.Equal(t, 0, s.FailureCount("b", time.Minute))
}

func TestMemoryStore_MonotonicTimeNeverGoesBackward(t *testing.T) {
	s := NewMemoryStore(0)
	t1 := s.MonotonicTime()
	time.Sleep(time.Millisecond)
	t2 := s.MonotonicTime()
	assert.GreaterOrEqual(t, t2, t1)
}

// Concurrent writers to the same circuit must never produce a log
// where a later-indexed event has an earlier timestamp than one
// before it: the timestamp sample and the insert have to serialize
// together.
func TestMemoryStore_ConcurrentRecordsStayTimestampOrdered(t *testing.T) {
	s := NewMemoryStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordSuccess("svc", 0)
		}()
	}
	wg.Wait()

	log := s.EventLog("svc", 0)
	require.Len(t, log, 50)
	for i := 1; i < len(log); i++ {
		require.GreaterOrEqual(t, log[i].Timestamp, log[i-1].Timestamp, "event %d is out of timestamp order", i)
	}
}

func TestNullStore_DropsWritesAndReportsZero(t *testing.T) {
	s := NewNullStore()
	s.RecordSuccess("svc", time.Millisecond)
	s.RecordFailure("svc", time.Millisecond)

	assert.Equal(t, 0, s.SuccessCount("svc", time.Minute))
	assert.Equal(t, 0, s.FailureCount("svc", time.Minute))
	assert.Empty(t, s.EventLog("svc", 0))
}
