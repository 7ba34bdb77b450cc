package journal

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/l-adic/ttc-monitor/internal/fingerprint"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	original := Journal{
		Commitment: Commitment{
			ID:     big.NewInt(12345),
			Digest: common.HexToHash("0xdeadbeef"),
		},
		TTCContract: common.HexToAddress("0x00000000000000000000000000000000000042"),
		Reallocations: []TokenReallocation{
			{
				TokenHash: fingerprint.Of(common.HexToAddress("0x01"), uint256.NewInt(1)),
				NewOwner:  common.HexToAddress("0x03"),
			},
			{
				TokenHash: fingerprint.Of(common.HexToAddress("0x01"), uint256.NewInt(2)),
				NewOwner:  common.HexToAddress("0x04"),
			},
		},
	}

	encoded, err := Encode(original)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	require.Equal(t, original.TTCContract, decoded.TTCContract)
	require.Equal(t, original.Commitment.ID, decoded.Commitment.ID)
	require.Equal(t, original.Commitment.Digest, decoded.Commitment.Digest)
	require.Equal(t, original.Reallocations, decoded.Reallocations)
}

func TestEncodeDecode_EmptyReallocations(t *testing.T) {
	original := Journal{
		Commitment:    Commitment{ID: big.NewInt(1), Digest: common.HexToHash("0x01")},
		TTCContract:   common.HexToAddress("0x05"),
		Reallocations: nil,
	}

	encoded, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Empty(t, decoded.Reallocations)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
}
