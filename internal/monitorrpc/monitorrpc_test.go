package monitorrpc

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethevent "github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/l-adic/ttc-monitor/internal/escrow"
	"github.com/l-adic/ttc-monitor/internal/fingerprint"
	"github.com/l-adic/ttc-monitor/internal/store"
	"github.com/l-adic/ttc-monitor/internal/ttcerr"
)

type fakeEscrowClient struct {
	phase     escrow.Phase
	fromBlock uint64
}

func (f *fakeEscrowClient) CurrentPhase(ctx context.Context) (escrow.Phase, error) { return f.phase, nil }
func (f *fakeEscrowClient) TradeInitiatedAtBlock(ctx context.Context) (uint64, error) {
	return f.fromBlock, nil
}
func (f *fakeEscrowClient) GetAllTokenPreferences(ctx context.Context) ([]escrow.TokenPreference, error) {
	return nil, nil
}
func (f *fakeEscrowClient) GetTokenFromHash(ctx context.Context, hash fingerprint.Fingerprint) (common.Address, *uint256.Int, error) {
	return common.Address{}, nil, nil
}
func (f *fakeEscrowClient) WatchPhaseChanged(ctx context.Context, fromBlock uint64, sink chan<- escrow.PhaseChange) (gethevent.Subscription, error) {
	return nil, errors.New("not used")
}

type fakeEvents struct {
	monitored map[common.Address]uint64
	err       error
}

func (f *fakeEvents) Monitor(addr common.Address, fromBlock uint64) error {
	if f.err != nil {
		return f.err
	}
	if f.monitored == nil {
		f.monitored = make(map[common.Address]uint64)
	}
	f.monitored[addr] = fromBlock
	return nil
}

type fakeJobStore struct {
	job   store.Job
	jobOK bool
	proof store.Proof
	proOK bool
}

func (f *fakeJobStore) GetJob(ctx context.Context, addr common.Address) (store.Job, error) {
	if !f.jobOK {
		return store.Job{}, ttcerr.ErrNotFound
	}
	return f.job, nil
}
func (f *fakeJobStore) GetProof(ctx context.Context, addr common.Address) (store.Proof, error) {
	if !f.proOK {
		return store.Proof{}, ttcerr.ErrNotFound
	}
	return f.proof, nil
}

type fakeProver struct {
	healthErr error
	imageID   string
}

func (f *fakeProver) HealthCheck(ctx context.Context) error             { return f.healthErr }
func (f *fakeProver) ImageIDContract(ctx context.Context) (string, error) { return f.imageID, nil }

func TestWatchContract_DelegatesToEventsManager(t *testing.T) {
	addr := common.HexToAddress("0x01")
	es := &fakeEscrowClient{phase: escrow.PhaseRank, fromBlock: 7}
	ev := &fakeEvents{}
	api := &API{
		Escrow: func(common.Address) (escrow.Client, error) { return es, nil },
		Events: ev,
	}

	err := api.WatchContract(context.Background(), addr)
	require.NoError(t, err)
	require.Equal(t, uint64(7), ev.monitored[addr])
}

func TestWatchContract_PhaseTooLate(t *testing.T) {
	addr := common.HexToAddress("0x01")
	es := &fakeEscrowClient{phase: escrow.PhaseWithdraw}
	ev := &fakeEvents{}
	api := &API{
		Escrow: func(common.Address) (escrow.Client, error) { return es, nil },
		Events: ev,
	}

	err := api.WatchContract(context.Background(), addr)
	require.Error(t, err)
	var rpcErr *monitorError
	require.ErrorAs(t, err, &rpcErr)
	require.ErrorIs(t, rpcErr, ttcerr.ErrPhaseTooLate)
	require.Empty(t, ev.monitored)
}

func TestGetProofStatus_NotFound(t *testing.T) {
	api := &API{Jobs: &fakeJobStore{}}
	_, err := api.GetProofStatus(context.Background(), common.HexToAddress("0x01"))
	require.Error(t, err)
	var rpcErr *monitorError
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, -32001, rpcErr.ErrorCode())
}

func TestGetProofStatus_ReturnsStatus(t *testing.T) {
	errMsg := "boom"
	api := &API{Jobs: &fakeJobStore{jobOK: true, job: store.Job{Status: store.JobStatusErrored, Error: &errMsg}}}
	result, err := api.GetProofStatus(context.Background(), common.HexToAddress("0x01"))
	require.NoError(t, err)
	require.Equal(t, "errored", result.Status)
	require.Equal(t, "boom", result.Error)
}

func TestGetProof_ReturnsBytes(t *testing.T) {
	api := &API{Jobs: &fakeJobStore{proOK: true, proof: store.Proof{Journal: []byte("j"), Seal: []byte("s")}}}
	result, err := api.GetProof(context.Background(), common.HexToAddress("0x01"))
	require.NoError(t, err)
	require.Equal(t, []byte("j"), result.Journal)
	require.Equal(t, []byte("s"), result.Seal)
}

func TestHealthCheck_PassesThrough(t *testing.T) {
	api := &API{Prover: &fakeProver{healthErr: errors.New("down")}}
	err := api.HealthCheck(context.Background())
	require.Error(t, err)
}

func TestGetImageIdContract_PassesThrough(t *testing.T) {
	api := &API{Prover: &fakeProver{imageID: "abc123"}}
	id, err := api.GetImageIdContract(context.Background())
	require.NoError(t, err)
	require.Equal(t, "abc123", id)
}
