// Package notify subscribes to the store's change channel and exposes an
// unbounded in-process stream of the addresses whose job just reached a
// terminal status. It is the bridge between the database trigger
// described in the store's migrations and the Events Manager, which uses
// the stream to cancel finished monitoring tasks.
package notify

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/lib/pq"
)

// Channel is the Postgres channel the jobs table trigger publishes on.
const Channel = "job_channel"

// Notifier delivers one common.Address per terminal job transition. The
// stream is unbounded: dropping an address would be a correctness
// violation (a finished job's watcher would never be cancelled), so
// consumers must drain Addresses promptly.
type Notifier struct {
	listener *pq.Listener

	mu      sync.Mutex
	addrCh  chan common.Address
	closeCh chan struct{}
}

// New creates a Notifier that listens on Channel over connString. It
// does not start listening until Start is called.
func New(connString string) *Notifier {
	n := &Notifier{
		addrCh:  make(chan common.Address),
		closeCh: make(chan struct{}),
	}
	n.listener = pq.NewListener(connString, 10*time.Second, time.Minute, n.logListenerEvent)
	return n
}

func (n *Notifier) logListenerEvent(ev pq.ListenerEventType, err error) {
	if err != nil {
		log.Warn("store notifier: listener event", "event", ev, "err", err)
	}
}

// Addresses returns the channel of addresses whose job reached a
// terminal status. The channel is closed when Close is called.
func (n *Notifier) Addresses() <-chan common.Address {
	return n.addrCh
}

// Start begins listening on Channel and forwarding notifications until
// ctx is cancelled or Close is called. On a transport error the
// subscription is restarted with bounded backoff; malformed payloads
// are logged and dropped rather than delivered.
func (n *Notifier) Start(ctx context.Context) error {
	if err := n.listener.Listen(Channel); err != nil {
		return err
	}
	go n.run(ctx)
	return nil
}

func (n *Notifier) run(ctx context.Context) {
	defer close(n.addrCh)
	defer n.listener.Close()

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // retry forever; the caller owns ctx cancellation

	// pending queues decoded addresses until the consumer receives them,
	// so a slow consumer never stalls reading from the listener.
	var pending []common.Address
	for {
		var out chan common.Address
		var next common.Address
		if len(pending) > 0 {
			out, next = n.addrCh, pending[0]
		}
		select {
		case <-ctx.Done():
			return
		case <-n.closeCh:
			return
		case out <- next:
			pending = pending[1:]
		case notification, ok := <-n.listener.Notify:
			if !ok {
				return
			}
			if notification == nil {
				// A nil notification signals a reconnect; re-check the
				// connection is healthy before continuing.
				if err := n.listener.Ping(); err != nil {
					n.waitBackoff(ctx, bo)
				}
				continue
			}
			addr, err := decodeAddress(notification.Extra)
			if err != nil {
				log.Error("store notifier: malformed payload, dropping", "payload", notification.Extra, "err", err)
				continue
			}
			bo.Reset()
			pending = append(pending, addr)
		}
	}
}

func (n *Notifier) waitBackoff(ctx context.Context, bo backoff.BackOff) {
	d := bo.NextBackOff()
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func decodeAddress(payload string) (common.Address, error) {
	b, err := hex.DecodeString(payload)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(b), nil
}

// Close stops the subscription and releases the underlying connection.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	select {
	case <-n.closeCh:
	default:
		close(n.closeCh)
	}
	return nil
}
