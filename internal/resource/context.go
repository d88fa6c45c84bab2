package resource

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/utils"
)

// ShutdownHook runs once when the process is asked to stop
type ShutdownHook func(ctx context.Context) error

// ContextManager manages the application-wide context and the shutdown hooks
// that stop an active run on SIGINT or SIGTERM
type ContextManager struct {
	rootContext    context.Context
	cancelFunc     context.CancelFunc
	cleanupTimeout time.Duration
	hooks          []ShutdownHook
	shutdownOnce   sync.Once
	signals        chan os.Signal
	exit           func(code int)
	mu             sync.RWMutex
}

// NewContextManager creates a new context manager with signal handling
func NewContextManager() *ContextManager {
	cm := newContextManager()
	cm.setupSignalHandling()
	return cm
}

func newContextManager() *ContextManager {
	rootCtx, cancel := context.WithCancel(context.Background())
	return &ContextManager{
		rootContext:    rootCtx,
		cancelFunc:     cancel,
		cleanupTimeout: 10 * time.Second,
		exit:           os.Exit,
	}
}

// GetContext returns the root context for operations
func (cm *ContextManager) GetContext() context.Context {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.rootContext
}

// WithTimeout creates a context with timeout
func (cm *ContextManager) WithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cm.GetContext(), timeout)
}

// OnShutdown registers a hook. Hooks run in registration order.
func (cm *ContextManager) OnShutdown(hook ShutdownHook) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.hooks = append(cm.hooks, hook)
}

// SetCleanupTimeout sets the budget shared by all hooks
func (cm *ContextManager) SetCleanupTimeout(timeout time.Duration) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.cleanupTimeout = timeout
}

// IsActive returns whether the context manager is still active
func (cm *ContextManager) IsActive() bool {
	select {
	case <-cm.rootContext.Done():
		return false
	default:
		return true
	}
}

// setupSignalHandling stops the run on the first signal and exits on the second
func (cm *ContextManager) setupSignalHandling() {
	cm.signals = make(chan os.Signal, 2)
	signal.Notify(cm.signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-cm.signals
		logging.Info("Received shutdown signal, stopping", "signal", sig.String())
		go func() {
			if again, ok := <-cm.signals; ok {
				logging.Warn("Second signal, exiting immediately", "signal", again.String())
				cm.exit(int(utils.ExitCodeGeneral))
			}
		}()
		if err := cm.Shutdown(); err != nil {
			logging.Error("Shutdown completed with errors", "error", err)
		}
	}()
}

// Shutdown cancels the root context and runs the hooks once. Later calls return nil.
func (cm *ContextManager) Shutdown() error {
	var result error
	cm.shutdownOnce.Do(func() {
		cm.mu.Lock()
		cm.cancelFunc()
		hooks := append([]ShutdownHook(nil), cm.hooks...)
		timeout := cm.cleanupTimeout
		cm.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			errs := utils.NewMultiError("shutdown")
			for _, hook := range hooks {
				errs.Add(hook(ctx))
			}
			done <- errs.ErrorOrNil()
		}()

		select {
		case result = <-done:
		case <-ctx.Done():
			logging.Warn("Shutdown hooks timed out", "timeout", timeout)
			result = ctx.Err()
		}
	})
	return result
}

// Close stops listening for signals
func (cm *ContextManager) Close() {
	if cm.signals != nil {
		signal.Stop(cm.signals)
	}
}
