package escrow

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/l-adic/ttc-monitor/internal/fingerprint"
)

func TestPhaseString(t *testing.T) {
	require.Equal(t, "Deposit", PhaseDeposit.String())
	require.Equal(t, "Rank", PhaseRank.String())
	require.Equal(t, "Trade", PhaseTrade.String())
	require.Equal(t, "Withdraw", PhaseWithdraw.String())
	require.Equal(t, "Cleanup", PhaseCleanup.String())
}

func TestPhaseOrdering(t *testing.T) {
	require.Less(t, PhaseDeposit, PhaseRank)
	require.Less(t, PhaseRank, PhaseTrade)
	require.Less(t, PhaseTrade, PhaseWithdraw)
	require.Less(t, PhaseWithdraw, PhaseCleanup)
}

func TestTokenPreferenceFingerprint(t *testing.T) {
	collection := common.HexToAddress("0x01")
	tp := TokenPreference{
		Owner:      common.HexToAddress("0x02"),
		TokenID:    uint256.NewInt(7),
		Collection: collection,
	}
	require.Equal(t, fingerprint.Of(collection, uint256.NewInt(7)), tp.Fingerprint())
}
