package contextBuffer

import (
	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/pkg/errors"
)

// IndexAccessor resolves account slots and the roots behind them.
type IndexAccessor interface {
	ResolveSlot(accounts []*accountStore.Account, slot uint8) (*accountStore.Account, error)
	BackingRoot(acct *accountStore.Account) (types.Pubkey, error)
}

// ValidateAssociation checks that payload targets the index structure root is
// bound to. The first input decides; without inputs the first output does,
// looking through a queue wrapper if its slot holds one.
func ValidateAssociation(accessor IndexAccessor, payload *transition.Payload, accounts []*accountStore.Account, root types.Pubkey) error {
	var target types.Pubkey

	switch {
	case len(payload.Inputs) > 0:
		acct, err := accessor.ResolveSlot(accounts, payload.Inputs[0].MerkleContext.TreeSlot)
		if err != nil {
			return err
		}
		target = acct.Key
	case len(payload.Outputs) > 0:
		acct, err := accessor.ResolveSlot(accounts, payload.Outputs[0].TreeSlot)
		if err != nil {
			return err
		}
		target, err = accessor.BackingRoot(acct)
		if err != nil {
			return err
		}
	default:
		return ErrNoInputs
	}

	if target != root {
		return errors.Wrapf(ErrAssociatedRootMismatch, "payload targets %s, buffer is bound to %s", target, root)
	}
	return nil
}
