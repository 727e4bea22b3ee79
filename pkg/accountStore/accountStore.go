package accountStore

import (
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/pkg/errors"
)

var ErrAccountNotFound = errors.New("account not found")

// Account is the raw state of a durable account.
type Account struct {
	Key   types.Pubkey
	Owner types.Pubkey
	Data  []byte
}

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	return &Account{
		Key:   a.Key,
		Owner: a.Owner,
		Data:  append([]byte(nil), a.Data...),
	}
}

func (a *Account) Len() int {
	return len(a.Data)
}

type AccountStore interface {
	// GetAccount returns nil, nil when the account does not exist.
	GetAccount(key types.Pubkey) (*Account, error)
	// PutAccounts writes every account or none of them.
	PutAccounts(accounts ...*Account) error
}

// GetAccounts loads keys in order and fails with ErrAccountNotFound on the
// first missing account.
func GetAccounts(store AccountStore, keys []types.Pubkey) ([]*Account, error) {
	accounts := make([]*Account, 0, len(keys))
	for _, key := range keys {
		acct, err := store.GetAccount(key)
		if err != nil {
			return nil, err
		}
		if acct == nil {
			return nil, errors.Wrapf(ErrAccountNotFound, "%s", key)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}
