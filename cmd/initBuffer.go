package cmd

import (
	"fmt"

	"github.com/Layr-Labs/txcontext/pkg/contextBuffer"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initBufferCmd = &cobra.Command{
	Use:   "init-buffer",
	Short: "Create or re-initialize a context buffer account",
	RunE: func(cmd *cobra.Command, args []string) error {
		bindCommandFlags(cmd)

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()
		bc := rt.cfg.BufferCommandConfig

		if bc.Root == "" {
			return fmt.Errorf("--buffer-root is required")
		}
		root, err := types.PubkeyFromString(bc.Root)
		if err != nil {
			return err
		}

		key := types.NewUniquePubkey()
		if bc.Key != "" {
			if key, err = types.PubkeyFromString(bc.Key); err != nil {
				return err
			}
		}

		acct, err := rt.store.GetAccount(key)
		if err != nil {
			return err
		}
		if acct == nil {
			if bc.Reinit {
				return fmt.Errorf("no account %s to re-initialize", key)
			}
			acct = contextBuffer.NewBufferAccount(key, rt.programID, rt.cfg.BufferConfig.Capacity)
		}

		if _, err := contextBuffer.InitBufferAccount(acct, rt.programID, &contextBuffer.InitParams{AssociatedRoot: root}, bc.Reinit); err != nil {
			return fmt.Errorf("failed to initialize buffer: %w", err)
		}
		if err := rt.store.PutAccounts(acct); err != nil {
			return err
		}

		rt.logger.Sugar().Infow("Initialized context buffer",
			zap.String("buffer", key.String()),
			zap.String("associatedRoot", root.String()),
			zap.Int("capacity", acct.Len()),
			zap.Bool("reinit", bc.Reinit),
		)
		fmt.Println(key.String())
		return nil
	},
}
