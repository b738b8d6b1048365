package broadcast

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFired(t *testing.T, fired <-chan time.Time) time.Time {
	t.Helper()
	select {
	case at := <-fired:
		return at
	case <-time.After(time.Second):
		t.Fatal("job never fired")
		return time.Time{}
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var runs atomic.Int32
	fired := make(chan time.Time, 10)
	job := func() {
		runs.Add(1)
		fired <- time.Now()
	}

	assert.True(t, d.Schedule("roster", 0, job))
	for range 5 {
		assert.False(t, d.Schedule("roster", 0, job))
	}
	assert.True(t, d.Schedule("game:1", 0, job))
	assert.Equal(t, 2, d.Pending())

	waitFired(t, fired)
	waitFired(t, fired)
	assert.Equal(t, int32(2), runs.Load())
	assert.Eventually(t, func() bool { return d.Pending() == 0 }, time.Second, time.Millisecond)

	// once fired, the key can be scheduled again
	assert.True(t, d.Schedule("roster", 0, job))
	waitFired(t, fired)
}

func TestDebouncerRunsAgainForLaterChange(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	var runs atomic.Int32
	fired := make(chan time.Time, 10)
	job := func() {
		runs.Add(1)
		fired <- time.Now()
	}

	start := time.Now()
	require.True(t, d.Schedule("roster", 0, job))
	// visible only after the pending run, so it needs a run of its own
	assert.True(t, d.Schedule("roster", 60*time.Millisecond, job))
	// visible before the pending run
	assert.False(t, d.Schedule("roster", 0, job))

	first := waitFired(t, fired)
	assert.Less(t, first.Sub(start), 60*time.Millisecond)

	second := waitFired(t, fired)
	assert.GreaterOrEqual(t, second.Sub(start), 70*time.Millisecond)

	assert.Eventually(t, func() bool { return d.Pending() == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var runs atomic.Int32
	d.Schedule("roster", 0, func() { runs.Add(1) })
	d.Schedule("roster", time.Second, func() { runs.Add(1) })
	d.Stop()

	assert.False(t, d.Schedule("roster", 0, func() { runs.Add(1) }))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
