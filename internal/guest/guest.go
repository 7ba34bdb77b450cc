// Package guest implements the program that runs inside the
// zero-knowledge execution environment: it reads the escrow's token
// preferences at a pinned block, runs the solver, and commits the
// resulting reallocation as a journal. It is the only consumer of
// internal/ttc that runs inside the proving backend rather than the
// monitor service; everything here is deterministic given its inputs,
// matching the guest's requirement to reproduce bit-for-bit what the
// on-chain verifier expects.
package guest

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/l-adic/ttc-monitor/internal/escrow"
	"github.com/l-adic/ttc-monitor/internal/fingerprint"
	"github.com/l-adic/ttc-monitor/internal/journal"
	"github.com/l-adic/ttc-monitor/internal/ttc"
	"github.com/l-adic/ttc-monitor/internal/ttcerr"
)

// ChainReader is the subset of the escrow contract the guest reads, each
// call pinned to a specific block so the guest's output is a pure
// function of (contract, block).
type ChainReader interface {
	GetAllTokenPreferences(ctx context.Context, blockNumber uint64) ([]escrow.TokenPreference, error)
	GetTokenFromHash(ctx context.Context, blockNumber uint64, hash fingerprint.Fingerprint) (collection common.Address, tokenID *uint256.Int, err error)
}

// Program is bound to one escrow contract for the duration of a single
// run; it has no other state and performs no writes.
type Program struct {
	Reader      ChainReader
	TTCContract common.Address
}

// Run fetches the committed block's token preferences, solves them, and
// projects the allocation onto a Journal carrying commitment. commitment
// is opaque to this package, supplied by the execution environment.
func (p *Program) Run(ctx context.Context, blockNumber uint64, commitment journal.Commitment) (journal.Journal, error) {
	tokens, err := p.Reader.GetAllTokenPreferences(ctx, blockNumber)
	if err != nil {
		return journal.Journal{}, fmt.Errorf("guest: getAllTokenPreferences at block %d: %w", blockNumber, err)
	}

	entries := make([]ttc.Entry[fingerprint.Fingerprint], len(tokens))
	ownerOf := make(map[fingerprint.Fingerprint]common.Address, len(tokens))
	for i, t := range tokens {
		f := t.Fingerprint()
		if err := p.verifyFingerprint(ctx, blockNumber, f, t); err != nil {
			return journal.Journal{}, err
		}
		ownerOf[f] = t.Owner
		entries[i] = ttc.Entry[fingerprint.Fingerprint]{Participant: f, Prefs: t.Preferences}
	}

	prefs, err := ttc.NewPreferences(entries)
	if err != nil {
		return journal.Journal{}, fmt.Errorf("guest: build preferences: %w", err)
	}

	allocation, err := ttc.Solve(prefs)
	if err != nil {
		return journal.Journal{}, fmt.Errorf("guest: solve: %w", err)
	}

	reallocs := make([]journal.TokenReallocation, 0, allocation.Len())
	for _, f := range prefs.Participants() {
		assigned, ok := allocation.Assignment(f)
		if !ok {
			continue
		}
		owner, ok := ownerOf[f]
		if !ok {
			return journal.Journal{}, fmt.Errorf("guest: no owner recorded for participant %s", f)
		}
		reallocs = append(reallocs, journal.TokenReallocation{TokenHash: assigned, NewOwner: owner})
	}

	log.Info("guest: solved reallocation", "contract", p.TTCContract, "block", blockNumber, "tokens", len(tokens), "cycles", len(allocation.Cycles()))

	return journal.Journal{
		Commitment:    commitment,
		TTCContract:   p.TTCContract,
		Reallocations: reallocs,
	}, nil
}

// verifyFingerprint cross-checks a locally computed fingerprint against
// the escrow's own reverse index, catching any divergence between this
// package's fingerprint.Of and the contract's on-chain hashing before it
// can corrupt a committed reallocation.
func (p *Program) verifyFingerprint(ctx context.Context, blockNumber uint64, f fingerprint.Fingerprint, t escrow.TokenPreference) error {
	collection, tokenID, err := p.Reader.GetTokenFromHash(ctx, blockNumber, f)
	if err != nil {
		return fmt.Errorf("guest: getTokenFromHash(%s) at block %d: %w", f, blockNumber, err)
	}
	if collection != t.Collection || tokenID.Cmp(t.TokenID) != 0 {
		return fmt.Errorf(
			"guest: fingerprint %s reverse-indexes to (%s, %s), expected (%s, %s): %w",
			f, collection, tokenID, t.Collection, t.TokenID, ttcerr.ErrInvalidReference,
		)
	}
	return nil
}
