package chainwatch

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	gethevent "github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/l-adic/ttc-monitor/internal/escrow"
	"github.com/l-adic/ttc-monitor/internal/fingerprint"
)

type fakeEscrow struct {
	changes chan escrow.PhaseChange
	errCh   chan error
}

func newFakeEscrow() *fakeEscrow {
	return &fakeEscrow{changes: make(chan escrow.PhaseChange, 4), errCh: make(chan error, 1)}
}

func (f *fakeEscrow) CurrentPhase(ctx context.Context) (escrow.Phase, error) { return 0, nil }
func (f *fakeEscrow) TradeInitiatedAtBlock(ctx context.Context) (uint64, error) {
	return 0, nil
}
func (f *fakeEscrow) GetAllTokenPreferences(ctx context.Context) ([]escrow.TokenPreference, error) {
	return nil, nil
}
func (f *fakeEscrow) GetTokenFromHash(ctx context.Context, hash fingerprint.Fingerprint) (common.Address, *uint256.Int, error) {
	return common.Address{}, nil, nil
}
func (f *fakeEscrow) WatchPhaseChanged(ctx context.Context, fromBlock uint64, sink chan<- escrow.PhaseChange) (gethevent.Subscription, error) {
	return gethevent.NewSubscription(func(quit <-chan struct{}) error {
		for {
			select {
			case c := <-f.changes:
				select {
				case sink <- c:
				case <-quit:
					return nil
				}
			case err := <-f.errCh:
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

type fakeHeaders struct{ timestamp uint64 }

func (f *fakeHeaders) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: number, Time: f.timestamp}, nil
}

type fakeJobs struct {
	created bool
	addr    common.Address
	block   uint64
}

func (f *fakeJobs) CreateJob(ctx context.Context, addr common.Address, blockNumber uint64, blockTimestamp time.Time) error {
	f.created = true
	f.addr = addr
	f.block = blockNumber
	return nil
}

type fakeProver struct {
	invoked bool
	addr    common.Address
	err     error
}

func (f *fakeProver) ProveAsync(ctx context.Context, addr common.Address) error {
	f.invoked = true
	f.addr = addr
	return f.err
}

func TestWatcher_CreatesJobAndProvesOnTrade(t *testing.T) {
	es := newFakeEscrow()
	headers := &fakeHeaders{timestamp: 1_700_000_000}
	jobs := &fakeJobs{}
	prover := &fakeProver{}
	addr := common.HexToAddress("0x42")

	w := &Watcher{Address: addr, Escrow: es, Headers: headers, Jobs: jobs, Prover: prover}

	es.changes <- escrow.PhaseChange{NewPhase: escrow.PhaseRank, BlockNumber: 10}
	es.changes <- escrow.PhaseChange{NewPhase: escrow.PhaseTrade, BlockNumber: 12}

	err := w.Run(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, jobs.created)
	require.Equal(t, addr, jobs.addr)
	require.Equal(t, uint64(12), jobs.block)
	require.True(t, prover.invoked)
	require.Equal(t, addr, prover.addr)
}

func TestWatcher_PropagatesSubscriptionError(t *testing.T) {
	es := newFakeEscrow()
	addr := common.HexToAddress("0x42")
	w := &Watcher{Address: addr, Escrow: es, Headers: &fakeHeaders{}, Jobs: &fakeJobs{}, Prover: &fakeProver{}}

	boom := errors.New("boom")
	es.errCh <- boom

	err := w.Run(context.Background(), 1)
	require.Error(t, err)
}

func TestWatcher_ContextCancelled(t *testing.T) {
	es := newFakeEscrow()
	addr := common.HexToAddress("0x42")
	w := &Watcher{Address: addr, Escrow: es, Headers: &fakeHeaders{}, Jobs: &fakeJobs{}, Prover: &fakeProver{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Run(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
}
