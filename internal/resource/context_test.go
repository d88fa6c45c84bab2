package resource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsHooksInOrderOnce(t *testing.T) {
	cm := newContextManager()
	var order []string
	cm.OnShutdown(func(context.Context) error { order = append(order, "stop run"); return nil })
	cm.OnShutdown(func(context.Context) error { order = append(order, "close tui"); return nil })

	require.True(t, cm.IsActive())
	require.NoError(t, cm.Shutdown())
	require.NoError(t, cm.Shutdown())

	assert.False(t, cm.IsActive())
	assert.Equal(t, []string{"stop run", "close tui"}, order)
	assert.ErrorIs(t, cm.GetContext().Err(), context.Canceled)
}

func TestShutdownCollectsHookErrors(t *testing.T) {
	cm := newContextManager()
	boom := errors.New("boom")
	cm.OnShutdown(func(context.Context) error { return boom })
	cm.OnShutdown(func(context.Context) error { return nil })

	assert.ErrorIs(t, cm.Shutdown(), boom)
}

func TestShutdownTimesOut(t *testing.T) {
	cm := newContextManager()
	cm.SetCleanupTimeout(20 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)
	cm.OnShutdown(func(ctx context.Context) error {
		<-release
		return nil
	})

	start := time.Now()
	err := cm.Shutdown()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWithTimeoutDerivesFromRoot(t *testing.T) {
	cm := newContextManager()
	ctx, cancel := cm.WithTimeout(time.Hour)
	defer cancel()

	require.NoError(t, cm.Shutdown())
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("derived context was not cancelled")
	}
}
