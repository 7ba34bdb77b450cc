// Package journal implements the ABI-style wire format the zero-knowledge
// guest commits and the on-chain verifier inspects: a commitment to the
// chain state the guest read, the escrow contract address, and the
// reallocation itself as a list of (token fingerprint, new owner) pairs.
package journal

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/l-adic/ttc-monitor/internal/fingerprint"
)

// Commitment is the guest execution environment's attestation to the
// chain state it read. Its internal shape is owned by the proving
// backend (out of scope for this service, per the system's external
// collaborators); this system only needs to round-trip it through the
// journal unchanged.
type Commitment struct {
	ID     *big.Int
	Digest common.Hash
}

// TokenReallocation is one entry of the computed reallocation: the
// fingerprint of the token that moved, and the address it moved to.
type TokenReallocation struct {
	TokenHash fingerprint.Fingerprint
	NewOwner  common.Address
}

// Journal is the complete public output of the guest program.
type Journal struct {
	Commitment    Commitment
	TTCContract   common.Address
	Reallocations []TokenReallocation
}

var (
	commitmentComponents = []abi.ArgumentMarshaling{
		{Name: "id", Type: "uint256"},
		{Name: "digest", Type: "bytes32"},
	}
	reallocationComponents = []abi.ArgumentMarshaling{
		{Name: "tokenHash", Type: "bytes32"},
		{Name: "newOwner", Type: "address"},
	}

	commitmentType, _    = abi.NewType("tuple", "Commitment", commitmentComponents)
	reallocationsType, _ = abi.NewType("tuple[]", "TokenReallocation[]", reallocationComponents)

	journalArgs = abi.Arguments{
		{Name: "commitment", Type: commitmentType},
		{Name: "ttcContract", Type: abi.Type{T: abi.AddressTy}},
		{Name: "reallocations", Type: reallocationsType},
	}
)

type abiCommitment struct {
	Id     *big.Int
	Digest [32]byte
}

type abiReallocation struct {
	TokenHash [32]byte
	NewOwner  common.Address
}

// Encode ABI-packs j the way the guest program commits it and the
// on-chain verifier decodes it.
func Encode(j Journal) ([]byte, error) {
	reallocs := make([]abiReallocation, len(j.Reallocations))
	for i, r := range j.Reallocations {
		reallocs[i] = abiReallocation{TokenHash: r.TokenHash, NewOwner: r.NewOwner}
	}
	packed, err := journalArgs.Pack(
		abiCommitment{Id: j.Commitment.ID, Digest: j.Commitment.Digest},
		j.TTCContract,
		reallocs,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: abi.encode failed: %w", err)
	}
	return packed, nil
}

// Decode reverses Encode. It fails if data does not decode to the
// expected (Commitment, address, TokenReallocation[]) shape; the Prover
// Client uses exactly this failure mode to reject a malformed response
// from the untrusted external prover (the prover is a trust boundary;
// byte-level proof verification remains the on-chain verifier's job).
func Decode(data []byte) (Journal, error) {
	values, err := journalArgs.Unpack(data)
	if err != nil {
		return Journal{}, fmt.Errorf("journal: abi.decode failed: %w", err)
	}
	if len(values) != 3 {
		return Journal{}, fmt.Errorf("journal: expected 3 top-level values, got %d", len(values))
	}

	commitment, ok := values[0].(struct {
		Id     *big.Int `json:"id"`
		Digest [32]byte `json:"digest"`
	})
	if !ok {
		return Journal{}, fmt.Errorf("journal: unexpected commitment shape %T", values[0])
	}
	ttcContract, ok := values[1].(common.Address)
	if !ok {
		return Journal{}, fmt.Errorf("journal: unexpected ttcContract shape %T", values[1])
	}
	rawReallocs, ok := values[2].([]struct {
		TokenHash [32]byte       `json:"tokenHash"`
		NewOwner  common.Address `json:"newOwner"`
	})
	if !ok {
		return Journal{}, fmt.Errorf("journal: unexpected reallocations shape %T", values[2])
	}

	reallocs := make([]TokenReallocation, len(rawReallocs))
	for i, r := range rawReallocs {
		reallocs[i] = TokenReallocation{
			TokenHash: fingerprint.Fingerprint(r.TokenHash),
			NewOwner:  r.NewOwner,
		}
	}

	return Journal{
		Commitment:    Commitment{ID: commitment.Id, Digest: commitment.Digest},
		TTCContract:   ttcContract,
		Reallocations: reallocs,
	}, nil
}
