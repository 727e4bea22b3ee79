package types

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

const PubkeyLength = 32

// Pubkey identifies an account, a payer or an index structure. The zero value
// means "unset".
type Pubkey [PubkeyLength]byte

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func (p Pubkey) Hex() string {
	return hexutil.Encode(p[:])
}

func (p Pubkey) Bytes() []byte {
	return p[:]
}

func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pubkey) UnmarshalText(text []byte) error {
	parsed, err := PubkeyFromString(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func PubkeyFromBytes(b []byte) (Pubkey, error) {
	var p Pubkey
	if len(b) != PubkeyLength {
		return p, fmt.Errorf("invalid pubkey length %d, expected %d", len(b), PubkeyLength)
	}
	copy(p[:], b)
	return p, nil
}

// PubkeyFromString accepts either a base58 string or a 0x-prefixed hex string.
func PubkeyFromString(s string) (Pubkey, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") {
		b, err := hexutil.Decode(s)
		if err != nil {
			return Pubkey{}, fmt.Errorf("invalid hex pubkey '%s': %w", s, err)
		}
		return PubkeyFromBytes(b)
	}
	b := base58.Decode(s)
	if len(b) == 0 && s != "" {
		return Pubkey{}, fmt.Errorf("invalid base58 pubkey '%s'", s)
	}
	return PubkeyFromBytes(b)
}

func MustPubkeyFromString(s string) Pubkey {
	p, err := PubkeyFromString(s)
	if err != nil {
		panic(err)
	}
	return p
}

// NewUniquePubkey derives a fresh, collision-free key from a random uuid.
func NewUniquePubkey() Pubkey {
	id := uuid.New()
	return Pubkey(crypto.Keccak256Hash(id[:]))
}
