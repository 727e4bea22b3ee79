package cmd

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/txcontext/internal/config"
	"github.com/Layr-Labs/txcontext/internal/shutdown"
	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/scenario"
	"github.com/Layr-Labs/txcontext/pkg/transitionRecorder"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a scenario of invocations against the account store",
	RunE: func(cmd *cobra.Command, args []string) error {
		bindCommandFlags(cmd)

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		results, err := replayScenario(cmd.Context(), rt, nil, rt.cfg.ReplayConfig.ShowProgressBars)
		for _, step := range results {
			status := "ok"
			if !step.Passed {
				status = "FAILED"
			}
			outcome := step.Reason
			if step.Result != nil {
				outcome = string(step.Result.Outcome)
			}
			fmt.Printf("%3d  %-36s  %-24s  expected=%-24s %s\n", step.Index, step.InvocationId, outcome, step.Expected, status)
		}
		return err
	},
}

// replayScenario seeds and runs the configured scenario against store, which
// defaults to the configured account store. Transitions are recorded to
// postgres when that backend is selected.
func replayScenario(ctx context.Context, rt *runtime, store accountStore.AccountStore, showProgress bool) ([]*scenario.StepResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if rt.cfg.ReplayConfig.ScenarioFile == "" {
		return nil, fmt.Errorf("--%s is required", config.ScenarioFile)
	}
	s, err := scenario.LoadScenario(rt.cfg.ReplayConfig.ScenarioFile)
	if err != nil {
		return nil, err
	}
	if store == nil {
		store = rt.store
	}
	if err := s.Seed(store, rt.programID, rt.cfg.BufferConfig.Capacity); err != nil {
		return nil, fmt.Errorf("failed to seed accounts: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go shutdown.CancelOnSignal(ctx, shutdown.CreateGracefulShutdownChannel(), cancel, rt.logger)

	d, eb, err := rt.newDispatcher(ctx, store)
	if err != nil {
		return nil, err
	}
	if rt.grm != nil {
		done := transitionRecorder.NewTransitionRecorder(rt.grm, eb, rt.logger).Start(ctx)
		defer func() {
			cancel()
			<-done
		}()
	}

	var onStep func(*scenario.StepResult)
	if showProgress {
		bar := progressbar.Default(int64(len(s.Invocations)), "replaying")
		defer func() {
			// print a newline after the progress bar is done to make the output look nice
			fmt.Println()
		}()
		onStep = func(*scenario.StepResult) {
			_ = bar.Add(1)
		}
	}

	return scenario.NewRunner(d, rt.logger).Run(ctx, s, onStep)
}
