// Package fingerprint computes the canonical 32-byte identity used
// throughout the system to refer to an escrowed token: the keccak-256 of
// its (collection address, token id) pair.
package fingerprint

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Fingerprint is the 32-byte keccak-256 hash of a (collection address,
// token id) pair: keccak256(collection[20] || tokenID_be[32]).
type Fingerprint [32]byte

// Of computes the fingerprint for a token identified by its collection
// address and token id.
func Of(collection common.Address, tokenID *uint256.Int) Fingerprint {
	var buf [52]byte
	copy(buf[:20], collection.Bytes())
	idBytes := tokenID.Bytes32()
	copy(buf[20:52], idBytes[:])
	return Fingerprint(crypto.Keccak256Hash(buf[:]))
}

// Hash returns the fingerprint as a go-ethereum common.Hash, the type the
// escrow ABI and journal encoding use for a bytes32.
func (f Fingerprint) Hash() common.Hash {
	return common.Hash(f)
}

// FromHash converts a common.Hash (as returned by the escrow's reverse
// lookup or decoded from a journal) back into a Fingerprint.
func FromHash(h common.Hash) Fingerprint {
	return Fingerprint(h)
}

func (f Fingerprint) String() string {
	return common.Hash(f).Hex()
}
