// Package monitorrpc exposes the system's external JSON-RPC 2.0
// surface: watchContract, getProofStatus, getProof, healthCheck, and
// getImageIdContract, registered under the "monitor" namespace via
// go-ethereum's rpc package (the same server machinery geth itself
// uses for its eth/debug/admin namespaces).
package monitorrpc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/l-adic/ttc-monitor/internal/escrow"
	"github.com/l-adic/ttc-monitor/internal/events"
	"github.com/l-adic/ttc-monitor/internal/store"
	"github.com/l-adic/ttc-monitor/internal/ttcerr"
)

// Namespace is the JSON-RPC namespace this service registers under;
// over the wire a method such as watchContract is addressed as
// "monitor_watchContract".
const Namespace = "monitor"

// JobStore is the subset of the store the RPC surface reads.
type JobStore interface {
	GetJob(ctx context.Context, addr common.Address) (store.Job, error)
	GetProof(ctx context.Context, addr common.Address) (store.Proof, error)
}

// EscrowFor resolves the escrow client bound to addr.
type EscrowFor func(addr common.Address) (escrow.Client, error)

// Prover is the subset of the Prover Client the healthCheck and
// getImageIdContract methods pass through to.
type Prover interface {
	HealthCheck(ctx context.Context) error
	ImageIDContract(ctx context.Context) (string, error)
}

// EventsManager is the subset of the Events Manager the RPC surface
// drives directly.
type EventsManager interface {
	Monitor(addr common.Address, fromBlock uint64) error
}

// API implements the monitor namespace's JSON-RPC methods. Its exported
// methods are registered verbatim by go-ethereum's rpc package: each
// becomes one JSON-RPC method, its first Go return value the JSON-RPC
// result, its second the JSON-RPC error.
type API struct {
	Jobs    JobStore
	Escrow  EscrowFor
	Events  EventsManager
	Prover  Prover
}

// GetProofStatusResult is the JSON-visible shape of getProofStatus's
// response.
type GetProofStatusResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GetProofResult is the JSON-visible shape of getProof's response.
type GetProofResult struct {
	Journal []byte `json:"journal"`
	Seal    []byte `json:"seal"`
}

// WatchContract begins monitoring addr: reads its current phase and
// trade-initiation block from the escrow, and if it has not yet
// reached Trade, delegates to the Events Manager.
func (a *API) WatchContract(ctx context.Context, address common.Address) error {
	es, err := a.Escrow(address)
	if err != nil {
		return rpcError(fmt.Errorf("resolve escrow client: %w", err))
	}
	phase, err := es.CurrentPhase(ctx)
	if err != nil {
		return rpcError(fmt.Errorf("read currentPhase: %w", err))
	}
	if phase >= escrow.PhaseTrade {
		return rpcError(fmt.Errorf("contract %s is already in phase %s: %w", address, phase, ttcerr.ErrPhaseTooLate))
	}
	fromBlock, err := es.TradeInitiatedAtBlock(ctx)
	if err != nil {
		return rpcError(fmt.Errorf("read tradeInitiatedAtBlock: %w", err))
	}
	if err := a.Events.Monitor(address, fromBlock); err != nil {
		return rpcError(err)
	}
	log.Info("monitorrpc: watching contract", "address", address, "fromBlock", fromBlock)
	return nil
}

// GetProofStatus never blocks: it returns the most recent committed
// job status.
func (a *API) GetProofStatus(ctx context.Context, address common.Address) (GetProofStatusResult, error) {
	job, err := a.Jobs.GetJob(ctx, address)
	if err != nil {
		return GetProofStatusResult{}, rpcError(err)
	}
	result := GetProofStatusResult{Status: string(job.Status)}
	if job.Error != nil {
		result.Error = *job.Error
	}
	return result, nil
}

// GetProof is strictly consistent with GetProofStatus: it succeeds iff
// the job's status is Completed.
func (a *API) GetProof(ctx context.Context, address common.Address) (GetProofResult, error) {
	proof, err := a.Jobs.GetProof(ctx, address)
	if err != nil {
		return GetProofResult{}, rpcError(err)
	}
	return GetProofResult{Journal: proof.Journal, Seal: proof.Seal}, nil
}

// HealthCheck passes through to the prover backend.
func (a *API) HealthCheck(ctx context.Context) error {
	if err := a.Prover.HealthCheck(ctx); err != nil {
		return rpcError(err)
	}
	return nil
}

// GetImageIdContract passes through to the prover backend.
func (a *API) GetImageIdContract(ctx context.Context) (string, error) {
	id, err := a.Prover.ImageIDContract(ctx)
	if err != nil {
		return "", rpcError(err)
	}
	return id, nil
}

// monitorError implements rpc.Error, giving every surfaced error the
// numeric code -32001 the design assigns to this service's error
// taxonomy (§7).
type monitorError struct{ err error }

func rpcError(err error) error {
	if err == nil {
		return nil
	}
	return &monitorError{err: err}
}

func (e *monitorError) Error() string  { return e.err.Error() }
func (e *monitorError) ErrorCode() int  { return -32001 }
func (e *monitorError) Unwrap() error   { return e.err }

// Server wraps a configured *rpc.Server and the http.Server serving it.
type Server struct {
	rpcServer *rpc.Server
	http      *http.Server
}

// NewServer constructs the JSON-RPC server, registering api under
// Namespace.
func NewServer(api *API) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName(Namespace, api); err != nil {
		return nil, fmt.Errorf("monitorrpc: register %s: %w", Namespace, err)
	}
	return &Server{rpcServer: srv}, nil
}

// ListenAndServe binds to addr (host:port) and serves JSON-RPC 2.0 over
// HTTP until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.rpcServer,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
