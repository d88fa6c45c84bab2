package runflag

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlagSetClear(t *testing.T) {
	f := New()
	assert.False(t, f.IsSet())
	assert.False(t, f.Clear(), "clearing a cleared flag is a no-op")

	f.Set()
	f.Set()
	assert.True(t, f.IsSet())

	assert.True(t, f.Clear())
	assert.False(t, f.Clear())
	assert.False(t, f.IsSet())
}

func TestSleepReturnsFalseWhenCleared(t *testing.T) {
	f := New()
	assert.False(t, f.Sleep(time.Millisecond), "sleep on a cleared flag returns immediately")

	f.Set()
	assert.True(t, f.Sleep(time.Millisecond))
	assert.True(t, f.Sleep(0))
}

func TestClearWakesSleepers(t *testing.T) {
	f := New()
	f.Set()

	var wg sync.WaitGroup
	results := make([]bool, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.Sleep(time.Hour)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	start := time.Now()
	f.Clear()
	wg.Wait()

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []bool{false, false, false}, results)
}

func TestSetAfterClearStartsFreshCycle(t *testing.T) {
	f := New()
	f.Set()
	old := f.Done()
	f.Clear()

	select {
	case <-old:
	default:
		t.Fatal("done channel should be closed after Clear")
	}

	f.Set()
	select {
	case <-f.Done():
		t.Fatal("new cycle should not be done")
	default:
	}
}

func TestConcurrentWriters(t *testing.T) {
	f := New()
	f.Set()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); f.Clear() }()
		go func() { defer wg.Done(); _ = f.IsSet() }()
	}
	wg.Wait()
	assert.False(t, f.IsSet())
}
