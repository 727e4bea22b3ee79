package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Layr-Labs/txcontext/pkg/accountStore/leveldbAccountStore"
	"github.com/Layr-Labs/txcontext/pkg/scenario"
	"github.com/spf13/cobra"
)

var exportOutputsCmd = &cobra.Command{
	Use:   "export-outputs",
	Short: "Replay a scenario in memory and write every emitted output as csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		bindCommandFlags(cmd)

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()
		rt.grm = nil

		scratch, err := leveldbAccountStore.NewLevelDBAccountStore("", rt.logger)
		if err != nil {
			return err
		}
		defer scratch.Close()

		results, err := replayScenario(cmd.Context(), rt, scratch, false)
		if err != nil {
			return err
		}
		rows, err := scenario.OutputRows(results)
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if path := rt.cfg.ReplayConfig.OutputFile; path != "" {
			f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return fmt.Errorf("failed to open output file: %w", err)
			}
			defer f.Close()
			w = f
		}
		return scenario.WriteOutputsCSV(w, rows)
	},
}
