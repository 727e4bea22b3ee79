// Package scenario loads JSON descriptions of accounts and invocations and
// replays them through a dispatcher.
package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/contextBuffer"
	"github.com/Layr-Labs/txcontext/pkg/dispatcher"
	"github.com/Layr-Labs/txcontext/pkg/indexTree"
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/Layr-Labs/txcontext/pkg/verifier"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

type AccountKind string

const (
	AccountKind_StateTree    AccountKind = "stateTree"
	AccountKind_QueueWrapper AccountKind = "queueWrapper"
	AccountKind_Buffer       AccountKind = "buffer"
	AccountKind_Raw          AccountKind = "raw"
)

const defaultStateTreeSize = 64

var ErrInvalidScenario = errors.New("invalid scenario")

type Account struct {
	Key   types.Pubkey `json:"key"`
	Owner types.Pubkey `json:"owner"`
	Kind  AccountKind  `json:"kind"`
	// Root is the structure a queue wrapper or a buffer is bound to.
	Root     types.Pubkey `json:"root"`
	Capacity int          `json:"capacity"`
	DataHex  string       `json:"dataHex"`
}

type Invocation struct {
	Id       string              `json:"id"`
	Payer    types.Pubkey        `json:"payer"`
	Buffer   *types.Pubkey       `json:"buffer,omitempty"`
	Accounts []types.Pubkey      `json:"accounts"`
	Payload  *transition.Payload `json:"payload"`
	// ExpectError is the rejection reason the invocation must fail with. Empty
	// means it must succeed.
	ExpectError string `json:"expectError,omitempty"`
}

type Scenario struct {
	Name        string        `json:"name"`
	Accounts    []*Account    `json:"accounts"`
	Invocations []*Invocation `json:"invocations"`
}

func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening scenario file: %w", err)
	}
	defer f.Close()
	return ParseScenario(f)
}

func ParseScenario(r io.Reader) (*Scenario, error) {
	var s *Scenario
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(ErrInvalidScenario, err.Error())
	}
	if s == nil {
		return nil, errors.Wrap(ErrInvalidScenario, "empty document")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scenario) Validate() error {
	for i, acct := range s.Accounts {
		switch acct.Kind {
		case AccountKind_StateTree, AccountKind_QueueWrapper, AccountKind_Buffer, AccountKind_Raw:
		default:
			return errors.Wrapf(ErrInvalidScenario, "account %d has unknown kind '%s'", i, acct.Kind)
		}
	}
	for i, inv := range s.Invocations {
		if inv.Payload == nil {
			return errors.Wrapf(ErrInvalidScenario, "invocation %d has no payload", i)
		}
		if inv.ExpectError == "" {
			continue
		}
		if contextBuffer.ErrorForCode(inv.ExpectError) == nil && verifier.ErrorForCode(inv.ExpectError) == nil {
			return errors.Wrapf(ErrInvalidScenario, "invocation %d expects unknown error '%s'", i, inv.ExpectError)
		}
	}
	return nil
}

// BuildAccounts materializes the scenario accounts. Buffers are owned by
// programID regardless of the owner in the document.
func (s *Scenario) BuildAccounts(programID types.Pubkey, bufferCapacity int) ([]*accountStore.Account, error) {
	accounts := make([]*accountStore.Account, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		acct := &accountStore.Account{Key: a.Key, Owner: a.Owner}

		switch a.Kind {
		case AccountKind_StateTree:
			size := a.Capacity
			if size <= 0 {
				size = defaultStateTreeSize
			}
			acct.Data = indexTree.NewStateTreeAccountData(size)
		case AccountKind_QueueWrapper:
			acct.Data = indexTree.NewWrapperAccountData(a.Owner, a.Root)
		case AccountKind_Buffer:
			capacity := a.Capacity
			if capacity <= 0 {
				capacity = bufferCapacity
			}
			acct = contextBuffer.NewBufferAccount(a.Key, programID, capacity)
			if _, err := contextBuffer.InitBufferAccount(acct, programID, &contextBuffer.InitParams{AssociatedRoot: a.Root}, false); err != nil {
				return nil, errors.Wrapf(err, "buffer %s", a.Key)
			}
		case AccountKind_Raw:
			data, err := hexutil.Decode(a.DataHex)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidScenario, "account %s: %v", a.Key, err)
			}
			acct.Data = data
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// Seed writes the scenario accounts to store in one batch.
func (s *Scenario) Seed(store accountStore.AccountStore, programID types.Pubkey, bufferCapacity int) error {
	accounts, err := s.BuildAccounts(programID, bufferCapacity)
	if err != nil {
		return err
	}
	return store.PutAccounts(accounts...)
}

func (inv *Invocation) ToDispatcherInvocation() *dispatcher.Invocation {
	return &dispatcher.Invocation{
		Id:       inv.Id,
		Payer:    inv.Payer,
		Buffer:   inv.Buffer,
		Accounts: inv.Accounts,
		Payload:  inv.Payload,
	}
}
