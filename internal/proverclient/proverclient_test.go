package proverclient

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gethevent "github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/l-adic/ttc-monitor/internal/escrow"
	"github.com/l-adic/ttc-monitor/internal/fingerprint"
	"github.com/l-adic/ttc-monitor/internal/journal"
	"github.com/l-adic/ttc-monitor/internal/ttcerr"
)

type fakeEscrow struct{ phase escrow.Phase }

func (f *fakeEscrow) CurrentPhase(ctx context.Context) (escrow.Phase, error) { return f.phase, nil }
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
	return nil, errors.New("not used in this test")
}

type fakeJobs struct {
	mu          sync.Mutex
	inProgress  bool
	completedAt *time.Time
	errMsg      string
	proof       []byte
	seal        []byte
	setErr      error
}

func (f *fakeJobs) SetInProgress(ctx context.Context, addr common.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.inProgress = true
	return nil
}
func (f *fakeJobs) SetError(ctx context.Context, addr common.Address, msg string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errMsg = msg
	return nil
}
func (f *fakeJobs) CompleteProof(ctx context.Context, addr common.Address, j, seal []byte, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proof = j
	f.seal = seal
	f.completedAt = &at
	return nil
}

type fakeProverRPC struct {
	journal []byte
	seal    []byte
	err     error
}

func (f *fakeProverRPC) Prove(ctx context.Context, addr common.Address) ([]byte, []byte, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.journal, f.seal, nil
}
func (f *fakeProverRPC) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeProverRPC) ImageIDContract(ctx context.Context) (string, error) {
	return "img", nil
}

func validJournal(t *testing.T) []byte {
	t.Helper()
	b, err := journal.Encode(journal.Journal{
		Commitment:  journal.Commitment{ID: big.NewInt(1), Digest: common.HexToHash("0xaa")},
		TTCContract: common.HexToAddress("0x01"),
	})
	require.NoError(t, err)
	return b
}

func TestProve_Success(t *testing.T) {
	addr := common.HexToAddress("0x42")
	es := &fakeEscrow{phase: escrow.PhaseTrade}
	jobs := &fakeJobs{}
	prover := &fakeProverRPC{journal: validJournal(t), seal: []byte("seal")}

	c := &Client{
		EscrowFor: func(common.Address) (escrow.Client, error) { return es, nil },
		Jobs:      jobs,
		Prover:    prover,
	}

	err := c.Prove(context.Background(), addr)
	require.NoError(t, err)
	require.True(t, jobs.inProgress)
	require.NotNil(t, jobs.completedAt)
	require.Equal(t, []byte("seal"), jobs.seal)
	require.Empty(t, jobs.errMsg)
}

func TestProve_WrongPhaseRejected(t *testing.T) {
	addr := common.HexToAddress("0x42")
	es := &fakeEscrow{phase: escrow.PhaseRank}
	jobs := &fakeJobs{}
	c := &Client{
		EscrowFor: func(common.Address) (escrow.Client, error) { return es, nil },
		Jobs:      jobs,
		Prover:    &fakeProverRPC{},
	}

	err := c.Prove(context.Background(), addr)
	require.ErrorIs(t, err, ttcerr.ErrPhaseMismatch)
	require.False(t, jobs.inProgress)
}

func TestProve_ProverErrorMarksJobErrored(t *testing.T) {
	addr := common.HexToAddress("0x42")
	es := &fakeEscrow{phase: escrow.PhaseTrade}
	jobs := &fakeJobs{}
	c := &Client{
		EscrowFor: func(common.Address) (escrow.Client, error) { return es, nil },
		Jobs:      jobs,
		Prover:    &fakeProverRPC{err: errors.New("transport down")},
	}

	err := c.Prove(context.Background(), addr)
	require.NoError(t, err)
	require.True(t, jobs.inProgress)
	require.NotEmpty(t, jobs.errMsg)
	require.Nil(t, jobs.completedAt)
}

func TestProve_UndecodableJournalMarksJobErrored(t *testing.T) {
	addr := common.HexToAddress("0x42")
	es := &fakeEscrow{phase: escrow.PhaseTrade}
	jobs := &fakeJobs{}
	c := &Client{
		EscrowFor: func(common.Address) (escrow.Client, error) { return es, nil },
		Jobs:      jobs,
		Prover:    &fakeProverRPC{journal: []byte{0x01, 0x02}, seal: []byte("seal")},
	}

	err := c.Prove(context.Background(), addr)
	require.NoError(t, err)
	require.NotEmpty(t, jobs.errMsg)
	require.Nil(t, jobs.completedAt)
}

func TestProveAsync_SetsInProgressBeforeReturning(t *testing.T) {
	addr := common.HexToAddress("0x42")
	es := &fakeEscrow{phase: escrow.PhaseTrade}
	jobs := &fakeJobs{}
	block := make(chan struct{})
	prover := &blockingProverRPC{unblock: block}
	c := &Client{
		EscrowFor: func(common.Address) (escrow.Client, error) { return es, nil },
		Jobs:      jobs,
		Prover:    prover,
	}

	err := c.ProveAsync(context.Background(), addr)
	require.NoError(t, err)
	require.True(t, jobs.inProgress)

	close(block)
}

type blockingProverRPC struct{ unblock <-chan struct{} }

func (b *blockingProverRPC) Prove(ctx context.Context, addr common.Address) ([]byte, []byte, error) {
	<-b.unblock
	return nil, nil, errors.New("stop")
}
func (b *blockingProverRPC) HealthCheck(ctx context.Context) error { return nil }
func (b *blockingProverRPC) ImageIDContract(ctx context.Context) (string, error) {
	return "", nil
}
