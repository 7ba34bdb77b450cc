package guest

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/l-adic/ttc-monitor/internal/escrow"
	"github.com/l-adic/ttc-monitor/internal/fingerprint"
)

// contractReader implements ChainReader directly against the generated
// contract binding, pinning every call to the block the guest was asked
// to reproduce rather than the chain head.
type contractReader struct {
	binding *escrow.TopTradingCycle
}

// NewContractReader binds to the escrow contract at address using
// backend (an *ethclient.Client, or an archive-node-backed equivalent:
// the guest reads historical state, so backend must serve calls pinned
// to an arbitrary past block).
func NewContractReader(address common.Address, backend bind.ContractBackend) (ChainReader, error) {
	binding, err := escrow.NewTopTradingCycle(address, backend)
	if err != nil {
		return nil, fmt.Errorf("guest: bind contract %s: %w", address, err)
	}
	return &contractReader{binding: binding}, nil
}

func (r *contractReader) GetAllTokenPreferences(ctx context.Context, blockNumber uint64) ([]escrow.TokenPreference, error) {
	opts := &bind.CallOpts{Context: ctx, BlockNumber: new(big.Int).SetUint64(blockNumber)}
	raw, err := r.binding.GetAllTokenPreferences(opts)
	if err != nil {
		return nil, fmt.Errorf("guest: getAllTokenPreferences at block %d: %w", blockNumber, err)
	}
	out := make([]escrow.TokenPreference, len(raw))
	for i, t := range raw {
		prefs := make([]fingerprint.Fingerprint, len(t.Preferences))
		for j, p := range t.Preferences {
			prefs[j] = fingerprint.Fingerprint(p)
		}
		tokenID, overflow := uint256.FromBig(t.TokenId)
		if overflow {
			return nil, fmt.Errorf("guest: tokenId %s overflows uint256", t.TokenId)
		}
		out[i] = escrow.TokenPreference{
			Owner:       t.Owner,
			TokenID:     tokenID,
			Collection:  t.Collection,
			Preferences: prefs,
		}
	}
	return out, nil
}

func (r *contractReader) GetTokenFromHash(ctx context.Context, blockNumber uint64, hash fingerprint.Fingerprint) (common.Address, *uint256.Int, error) {
	opts := &bind.CallOpts{Context: ctx, BlockNumber: new(big.Int).SetUint64(blockNumber)}
	res, err := r.binding.GetTokenFromHash(opts, hash.Hash())
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("guest: getTokenFromHash at block %d: %w", blockNumber, err)
	}
	tokenID, overflow := uint256.FromBig(res.TokenId)
	if overflow {
		return common.Address{}, nil, fmt.Errorf("guest: tokenId %s overflows uint256", res.TokenId)
	}
	return res.Collection, tokenID, nil
}
