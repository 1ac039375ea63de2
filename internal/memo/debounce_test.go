package memo

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_LastCallWins(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Close()

	var got atomic.Int32
	done := make(chan struct{})
	for i := 1; i <= 5; i++ {
		v := int32(i)
		d.Schedule("tab", func() {
			got.Store(v)
			close(done)
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never ran")
	}
	assert.Equal(t, int32(5), got.Load())
	assert.False(t, d.Pending("tab"))
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	d := NewDebouncer(time.Hour)
	defer d.Close()

	var calls []string
	d.Schedule("b", func() { calls = append(calls, "b") })
	d.Schedule("a", func() { calls = append(calls, "a1") })
	d.Schedule("a", func() { calls = append(calls, "a2") })
	assert.True(t, d.Pending("a"))

	d.Flush()
	assert.Equal(t, []string{"a2", "b"}, calls)
	assert.False(t, d.Pending("a"))
}

func TestDebouncer_CancelAndClose(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var ran atomic.Bool
	d.Schedule("x", func() { ran.Store(true) })
	d.Cancel("x")
	d.Schedule("y", func() { ran.Store(true) })
	d.Close()

	time.Sleep(30 * time.Millisecond)
	assert.False(t, ran.Load())
	assert.False(t, d.Schedule("z", func() {}))
}
