// Package proverclient issues proving requests to the external
// zero-knowledge prover and drives the corresponding job through the
// store's status transitions. It treats the prover as an untrusted
// peer: a response is only accepted once its journal decodes to the
// expected shape.
package proverclient

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/l-adic/ttc-monitor/internal/escrow"
	"github.com/l-adic/ttc-monitor/internal/journal"
	"github.com/l-adic/ttc-monitor/internal/ttcerr"
)

// ProverRPC is the part of the external prover backend's JSON-RPC
// surface this service calls: prove, healthCheck and getImageIdContract.
// The backend's proveAsync method is not called; Client.ProveAsync runs
// prove in the background instead.
type ProverRPC interface {
	Prove(ctx context.Context, addr common.Address) (journalBytes, seal []byte, err error)
	HealthCheck(ctx context.Context) error
	ImageIDContract(ctx context.Context) (string, error)
}

// JobStore is the subset of the store the Prover Client drives.
type JobStore interface {
	SetInProgress(ctx context.Context, addr common.Address) error
	// CompleteProof persists the proof bytes and transitions the job to
	// Completed as a single atomic write, so getProof and getProofStatus
	// never disagree about whether a job's proof is ready.
	CompleteProof(ctx context.Context, addr common.Address, journal, seal []byte, at time.Time) error
	SetError(ctx context.Context, addr common.Address, msg string, at time.Time) error
}

// EscrowFor resolves the escrow client bound to addr, used only to read
// currentPhase() for the assertInTradePhase precondition.
type EscrowFor func(addr common.Address) (escrow.Client, error)

// Client is the Prover Client described in §4.5.
type Client struct {
	EscrowFor EscrowFor
	Jobs      JobStore
	Prover    ProverRPC
}

// Prove synchronously proves addr's trade: verifies the Trade-phase
// precondition, writes InProgress, awaits the prover, and drives the
// job to its terminal state before returning.
func (c *Client) Prove(ctx context.Context, addr common.Address) error {
	if err := c.assertInTradePhase(ctx, addr); err != nil {
		return err
	}
	if err := c.Jobs.SetInProgress(ctx, addr); err != nil {
		return fmt.Errorf("proverclient: prove %s: %w", addr, err)
	}
	c.runProve(ctx, addr)
	return nil
}

// ProveAsync schedules addr's proof and returns as soon as the work is
// scheduled. It writes InProgress synchronously before returning — the
// job must never be observed as Created once ProveAsync has accepted
// it — then completes the prover round trip in the background on an
// independent context, since the caller's ctx ends when it returns.
func (c *Client) ProveAsync(ctx context.Context, addr common.Address) error {
	if err := c.assertInTradePhase(ctx, addr); err != nil {
		return err
	}
	if err := c.Jobs.SetInProgress(ctx, addr); err != nil {
		return fmt.Errorf("proverclient: proveAsync %s: %w", addr, err)
	}
	go c.runProve(context.Background(), addr)
	return nil
}

func (c *Client) assertInTradePhase(ctx context.Context, addr common.Address) error {
	es, err := c.EscrowFor(addr)
	if err != nil {
		return fmt.Errorf("proverclient: resolve escrow %s: %w", addr, err)
	}
	phase, err := es.CurrentPhase(ctx)
	if err != nil {
		return fmt.Errorf("proverclient: currentPhase %s: %w", addr, err)
	}
	if phase != escrow.PhaseTrade {
		return fmt.Errorf("proverclient: %s is in phase %s: %w", addr, phase, ttcerr.ErrPhaseMismatch)
	}
	return nil
}

func (c *Client) runProve(ctx context.Context, addr common.Address) {
	journalBytes, seal, err := c.Prover.Prove(ctx, addr)
	if err != nil {
		c.fail(ctx, addr, fmt.Sprintf("prover request failed: %v", err))
		return
	}
	if _, err := journal.Decode(journalBytes); err != nil {
		c.fail(ctx, addr, fmt.Sprintf("prover returned an undecodable journal: %v", err))
		return
	}
	if err := c.Jobs.CompleteProof(ctx, addr, journalBytes, seal, time.Now().UTC()); err != nil {
		c.fail(ctx, addr, fmt.Sprintf("persist proof and complete job failed: %v", err))
		return
	}
	log.Info("proverclient: job completed", "address", addr)
}

func (c *Client) fail(ctx context.Context, addr common.Address, msg string) {
	log.Error("proverclient: job errored", "address", addr, "reason", msg)
	if err := c.Jobs.SetError(ctx, addr, msg, time.Now().UTC()); err != nil {
		log.Error("proverclient: mark errored failed", "address", addr, "err", err)
	}
}
