// Package events implements the Events Manager: the sole owner of the
// mapping from escrow contract address to its in-flight Chain Watcher
// task. It spawns and cancels those tasks and auto-cancels them in
// response to the Notifier's terminal-job stream.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/l-adic/ttc-monitor/internal/ttcerr"
)

// gracePeriod bounds how long Cancel waits for cooperative shutdown
// before giving up and returning anyway (§5: "forces abort").
const gracePeriod = 10 * time.Second

// Task is anything the Events Manager can supervise: a Chain Watcher
// bound to one contract address for its whole run.
type Task interface {
	Run(ctx context.Context, fromBlock uint64) error
}

// TaskFactory builds the Task to run for addr. Called once per Monitor
// call; the manager does not reuse tasks across calls.
type TaskFactory func(addr common.Address) Task

// AddressStream is the subset of notify.Notifier the manager consumes.
type AddressStream interface {
	Addresses() <-chan common.Address
}

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager is the Events Manager. The handle mapping is guarded by a
// single lock whose hold duration is always O(1) and never spans I/O;
// tasks never reach back into the manager.
type Manager struct {
	newTask TaskFactory

	mu      sync.Mutex
	handles map[common.Address]*handle
}

// NewManager constructs a Manager that builds watch tasks via newTask.
func NewManager(newTask TaskFactory) *Manager {
	return &Manager{newTask: newTask, handles: make(map[common.Address]*handle)}
}

// Monitor spawns a watch task for addr starting at fromBlock. Fails with
// ttcerr.ErrAlreadyMonitored if addr already has a live task.
func (m *Manager) Monitor(addr common.Address, fromBlock uint64) error {
	m.mu.Lock()
	if _, exists := m.handles[addr]; exists {
		m.mu.Unlock()
		return fmt.Errorf("events: monitor %s: %w", addr, ttcerr.ErrAlreadyMonitored)
	}
	taskCtx, cancel := context.WithCancel(context.Background())
	h := &handle{cancel: cancel, done: make(chan struct{})}
	m.handles[addr] = h
	m.mu.Unlock()

	task := m.newTask(addr)
	go m.run(taskCtx, addr, fromBlock, task, h)
	return nil
}

func (m *Manager) run(ctx context.Context, addr common.Address, fromBlock uint64, task Task, h *handle) {
	defer close(h.done)
	if err := task.Run(ctx, fromBlock); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("events: watch task ended with error", "address", addr, "err", err)
	}
	m.mu.Lock()
	if cur, ok := m.handles[addr]; ok && cur == h {
		delete(m.handles, addr)
	}
	m.mu.Unlock()
}

// Cancel requests cooperative shutdown of addr's task, waiting up to
// gracePeriod for it to exit before giving up. A missing entry is a
// no-op: Cancel always returns, it never reports failure.
func (m *Manager) Cancel(addr common.Address) {
	m.mu.Lock()
	h, ok := m.handles[addr]
	if ok {
		delete(m.handles, addr)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	h.cancel()
	select {
	case <-h.done:
	case <-time.After(gracePeriod):
		log.Warn("events: task did not exit within grace period, abandoning", "address", addr)
	}
}

// Monitoring reports whether addr currently has a live task. Exposed
// for tests and diagnostics; not part of the external RPC surface.
func (m *Manager) Monitoring(addr common.Address) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.handles[addr]
	return ok
}

// Run subscribes to stream and cancels each received address's task,
// so a completed or errored job never leaves a dangling watcher. Each
// cancellation runs in its own goroutine so one slow shutdown cannot
// delay the processing of unrelated notifications.
func (m *Manager) Run(ctx context.Context, stream AddressStream) {
	for {
		select {
		case <-ctx.Done():
			return
		case addr, ok := <-stream.Addresses():
			if !ok {
				return
			}
			go m.Cancel(addr)
		}
	}
}
