// Package chainwatch implements the per-contract phase-change watch
// task: it subscribes to an escrow contract's phase-change log and,
// the first time the contract enters the Trade phase, records a job
// and hands the proving work to the Prover Client before exiting.
package chainwatch

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/l-adic/ttc-monitor/internal/escrow"
)

// ProverClient is the subset of the Prover Client the watcher needs:
// scheduling the async proof once a job exists.
type ProverClient interface {
	ProveAsync(ctx context.Context, addr common.Address) error
}

// JobCreator is the subset of the Store the watcher needs.
type JobCreator interface {
	CreateJob(ctx context.Context, addr common.Address, blockNumber uint64, blockTimestamp time.Time) error
}

// HeaderSource resolves a block number to its header, used to recover
// the block's wall-clock timestamp for the job row.
type HeaderSource interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// Watcher is bound to exactly one escrow contract address for its
// entire lifetime; the Events Manager owns one Watcher task per
// currently-monitored contract.
type Watcher struct {
	Address  common.Address
	Escrow   escrow.Client
	Headers  HeaderSource
	Jobs     JobCreator
	Prover   ProverClient
}

// Run subscribes to Address's phase-change log starting at fromBlock
// and blocks until the contract enters the Trade phase (in which case
// it creates the job, schedules the proof, and returns nil), ctx is
// cancelled, or the subscription fails.
func (w *Watcher) Run(ctx context.Context, fromBlock uint64) error {
	sink := make(chan escrow.PhaseChange)
	sub, err := w.Escrow.WatchPhaseChanged(ctx, fromBlock, sink)
	if err != nil {
		return fmt.Errorf("chainwatch: subscribe %s: %w", w.Address, err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("chainwatch: subscription %s: %w", w.Address, err)
		case change := <-sink:
			log.Info("chain watcher observed phase change", "address", w.Address, "phase", change.NewPhase, "block", change.BlockNumber)
			if change.NewPhase != escrow.PhaseTrade {
				continue
			}
			return w.onTrade(ctx, change.BlockNumber)
		}
	}
}

func (w *Watcher) onTrade(ctx context.Context, blockNumber uint64) error {
	header, err := w.Headers.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return fmt.Errorf("chainwatch: fetch header %d for %s: %w", blockNumber, w.Address, err)
	}
	ts := time.Unix(int64(header.Time), 0).UTC()

	if err := w.Jobs.CreateJob(ctx, w.Address, blockNumber, ts); err != nil {
		return fmt.Errorf("chainwatch: create job %s: %w", w.Address, err)
	}
	if err := w.Prover.ProveAsync(ctx, w.Address); err != nil {
		return fmt.Errorf("chainwatch: schedule proof %s: %w", w.Address, err)
	}
	log.Info("chain watcher created job and scheduled proof", "address", w.Address, "block", blockNumber)
	return nil
}
