package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/txcontext/pkg/contextBuffer"
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/spf13/cobra"
)

type bufferView struct {
	Key            types.Pubkey        `json:"key"`
	State          string              `json:"state"`
	Payer          types.Pubkey        `json:"payer"`
	AssociatedRoot types.Pubkey        `json:"associatedRoot"`
	Capacity       int                 `json:"capacity"`
	Used           int                 `json:"used"`
	Entries        *transition.Payload `json:"entries"`
}

var inspectBufferCmd = &cobra.Command{
	Use:   "inspect-buffer",
	Short: "Print the decoded state of a context buffer account",
	RunE: func(cmd *cobra.Command, args []string) error {
		bindCommandFlags(cmd)

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		key, err := types.PubkeyFromString(rt.cfg.BufferCommandConfig.Key)
		if err != nil {
			return fmt.Errorf("invalid --buffer-key: %w", err)
		}
		acct, err := rt.store.GetAccount(key)
		if err != nil {
			return err
		}
		if acct == nil {
			return fmt.Errorf("buffer account %s not found", key)
		}

		buf, err := contextBuffer.LoadBuffer(acct, rt.programID)
		if err != nil {
			return err
		}

		used := contextBuffer.HeaderSize
		if !buf.IsEmpty() {
			used += len(transition.EncodeEntries(buf.Payload))
		}
		out, err := json.MarshalIndent(&bufferView{
			Key:            buf.Key,
			State:          buf.State().String(),
			Payer:          buf.Payer,
			AssociatedRoot: buf.AssociatedRoot,
			Capacity:       acct.Len(),
			Used:           used,
			Entries:        buf.Payload,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
