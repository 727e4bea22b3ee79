package accountStore

import (
	"github.com/Layr-Labs/txcontext/pkg/types"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// StagedStore buffers writes on top of a base store. Reads see staged writes.
// Nothing reaches the base store until Commit.
type StagedStore struct {
	base   AccountStore
	staged *orderedmap.OrderedMap[types.Pubkey, *Account]
}

func NewStagedStore(base AccountStore) *StagedStore {
	return &StagedStore{
		base:   base,
		staged: orderedmap.New[types.Pubkey, *Account](),
	}
}

func (s *StagedStore) GetAccount(key types.Pubkey) (*Account, error) {
	if acct, ok := s.staged.Get(key); ok {
		return acct.Clone(), nil
	}
	return s.base.GetAccount(key)
}

func (s *StagedStore) PutAccounts(accounts ...*Account) error {
	for _, acct := range accounts {
		s.staged.Set(acct.Key, acct.Clone())
	}
	return nil
}

// Pending returns the number of staged accounts.
func (s *StagedStore) Pending() int {
	return s.staged.Len()
}

// Commit writes every staged account to the base store in staging order.
func (s *StagedStore) Commit() error {
	if s.staged.Len() == 0 {
		return nil
	}
	accounts := make([]*Account, 0, s.staged.Len())
	for pair := s.staged.Oldest(); pair != nil; pair = pair.Next() {
		accounts = append(accounts, pair.Value)
	}
	if err := s.base.PutAccounts(accounts...); err != nil {
		return err
	}
	s.Discard()
	return nil
}

func (s *StagedStore) Discard() {
	s.staged = orderedmap.New[types.Pubkey, *Account]()
}
