// Package escrow is the client surface this system reads from and writes
// to the on-chain escrow contract. The escrow itself is an external
// collaborator: this package specifies only the read/write interface the
// rest of the system consumes, built on top of the generated contract
// binding in binding.go.
package escrow

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/l-adic/ttc-monitor/internal/fingerprint"
)

// Phase mirrors the escrow's five sequential modes. The numeric values
// are the contract's wire representation of currentPhase(); ordering
// matters, callers compare phases with <, >=.
type Phase uint8

const (
	PhaseDeposit Phase = iota
	PhaseRank
	PhaseTrade
	PhaseWithdraw
	PhaseCleanup
)

func (p Phase) String() string {
	switch p {
	case PhaseDeposit:
		return "Deposit"
	case PhaseRank:
		return "Rank"
	case PhaseTrade:
		return "Trade"
	case PhaseWithdraw:
		return "Withdraw"
	case PhaseCleanup:
		return "Cleanup"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// TokenPreference is one escrowed token's owner, identity, and ranked
// preferences as reported by the escrow. Preferences are fingerprints of
// other escrowed tokens, highest-preference first.
type TokenPreference struct {
	Owner       common.Address
	TokenID     *uint256.Int
	Collection  common.Address
	Preferences []fingerprint.Fingerprint
}

// Fingerprint computes the canonical identity of this entry's token.
func (p TokenPreference) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.Of(p.Collection, p.TokenID)
}

// PhaseChange is one observed PhaseChanged log, carrying enough context
// for the Chain Watcher to record a job without a second round-trip to
// the chain.
type PhaseChange struct {
	NewPhase    Phase
	BlockNumber uint64
}

// Client is the read/write surface the core consumes from a deployed
// escrow contract. Implementations must be safe for concurrent use by
// multiple Chain Watcher tasks, each bound to a distinct address, but a
// single Client value is always scoped to exactly one escrow address.
type Client interface {
	CurrentPhase(ctx context.Context) (Phase, error)
	TradeInitiatedAtBlock(ctx context.Context) (uint64, error)
	GetAllTokenPreferences(ctx context.Context) ([]TokenPreference, error)
	GetTokenFromHash(ctx context.Context, hash fingerprint.Fingerprint) (collection common.Address, tokenID *uint256.Int, err error)
	WatchPhaseChanged(ctx context.Context, fromBlock uint64, sink chan<- PhaseChange) (event.Subscription, error)
}

// contractClient is the production Client backed by a live contract
// binding over an RPC-connected backend.
type contractClient struct {
	address common.Address
	binding *TopTradingCycle
}

// NewClient binds to the escrow contract at address using backend (an
// *ethclient.Client or any other bind.ContractBackend, e.g. in tests).
func NewClient(address common.Address, backend bind.ContractBackend) (Client, error) {
	binding, err := NewTopTradingCycle(address, backend)
	if err != nil {
		return nil, fmt.Errorf("escrow: bind contract %s: %w", address, err)
	}
	return &contractClient{address: address, binding: binding}, nil
}

func (c *contractClient) CurrentPhase(ctx context.Context) (Phase, error) {
	phase, err := c.binding.CurrentPhase(&bind.CallOpts{Context: ctx})
	if err != nil {
		return 0, fmt.Errorf("escrow: currentPhase: %w", err)
	}
	return Phase(phase), nil
}

func (c *contractClient) TradeInitiatedAtBlock(ctx context.Context) (uint64, error) {
	block, err := c.binding.TradeInitiatedAtBlock(&bind.CallOpts{Context: ctx})
	if err != nil {
		return 0, fmt.Errorf("escrow: tradeInitiatedAtBlock: %w", err)
	}
	if !block.IsUint64() {
		return 0, fmt.Errorf("escrow: tradeInitiatedAtBlock overflows uint64: %s", block.String())
	}
	return block.Uint64(), nil
}

func (c *contractClient) GetAllTokenPreferences(ctx context.Context) ([]TokenPreference, error) {
	raw, err := c.binding.GetAllTokenPreferences(&bind.CallOpts{Context: ctx})
	if err != nil {
		return nil, fmt.Errorf("escrow: getAllTokenPreferences: %w", err)
	}
	out := make([]TokenPreference, len(raw))
	for i, r := range raw {
		prefs := make([]fingerprint.Fingerprint, len(r.Preferences))
		for j, p := range r.Preferences {
			prefs[j] = fingerprint.Fingerprint(p)
		}
		tokenID, overflow := uint256.FromBig(r.TokenId)
		if overflow {
			return nil, fmt.Errorf("escrow: tokenId %s overflows uint256", r.TokenId)
		}
		out[i] = TokenPreference{
			Owner:       r.Owner,
			TokenID:     tokenID,
			Collection:  r.Collection,
			Preferences: prefs,
		}
	}
	return out, nil
}

func (c *contractClient) GetTokenFromHash(ctx context.Context, hash fingerprint.Fingerprint) (common.Address, *uint256.Int, error) {
	res, err := c.binding.GetTokenFromHash(&bind.CallOpts{Context: ctx}, hash.Hash())
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("escrow: getTokenFromHash: %w", err)
	}
	tokenID, overflow := uint256.FromBig(res.TokenId)
	if overflow {
		return common.Address{}, nil, fmt.Errorf("escrow: tokenId %s overflows uint256", res.TokenId)
	}
	return res.Collection, tokenID, nil
}

func (c *contractClient) WatchPhaseChanged(ctx context.Context, fromBlock uint64, sink chan<- PhaseChange) (event.Subscription, error) {
	raw := make(chan *TopTradingCyclePhaseChanged)
	sub, err := c.binding.WatchPhaseChanged(&bind.WatchOpts{Context: ctx, Start: &fromBlock}, raw)
	if err != nil {
		return nil, fmt.Errorf("escrow: watchPhaseChanged: %w", err)
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case ev, ok := <-raw:
				if !ok {
					return nil
				}
				change := PhaseChange{NewPhase: Phase(ev.NewPhase), BlockNumber: ev.Raw.BlockNumber}
				select {
				case sink <- change:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				log.Warn("escrow phase-change subscription ended", "address", c.address, "err", err)
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}
