package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const HashLength = 32

// Hash is a 32 byte digest, rendered as 0x-prefixed hex.
type Hash [HashLength]byte

func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	b, err := hexutil.Decode(string(text))
	if err != nil {
		return err
	}
	if len(b) != HashLength {
		return fmt.Errorf("invalid hash length %d, expected %d", len(b), HashLength)
	}
	copy(h[:], b)
	return nil
}

func Keccak256(data ...[]byte) Hash {
	return Hash(crypto.Keccak256Hash(data...))
}
