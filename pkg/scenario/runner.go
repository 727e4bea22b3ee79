package scenario

import (
	"context"

	"github.com/Layr-Labs/txcontext/pkg/dispatcher"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrExpectationFailed = errors.New("scenario expectations not met")

type StepResult struct {
	Index        int
	InvocationId string
	Result       *dispatcher.InvocationResult
	Err          error
	// Reason is the rejection reason of Err, if any.
	Reason   string
	Expected string
	Passed   bool
}

type Runner struct {
	dispatcher *dispatcher.Dispatcher
	logger     *zap.Logger
}

func NewRunner(d *dispatcher.Dispatcher, l *zap.Logger) *Runner {
	return &Runner{
		dispatcher: d,
		logger:     l,
	}
}

// Run invokes every step of s in order. A step passes when it fails with the
// expected reason, or succeeds when none is expected. onStep, if set, is called
// after each step.
func (r *Runner) Run(ctx context.Context, s *Scenario, onStep func(*StepResult)) ([]*StepResult, error) {
	results := make([]*StepResult, 0, len(s.Invocations))
	failed := 0

	for i, inv := range s.Invocations {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.dispatcher.Invoke(ctx, inv.ToDispatcherInvocation())

		step := &StepResult{
			Index:        i,
			InvocationId: inv.Id,
			Result:       res,
			Err:          err,
			Expected:     inv.ExpectError,
		}
		if res != nil {
			step.InvocationId = res.InvocationId
		}
		if err != nil {
			step.Reason = dispatcher.RejectionReason(err)
		}
		step.Passed = step.Reason == inv.ExpectError && (err != nil) == (inv.ExpectError != "")

		if !step.Passed {
			failed++
			r.logger.Sugar().Warnw("Scenario step did not match expectation",
				zap.Int("step", i),
				zap.String("expected", inv.ExpectError),
				zap.String("got", step.Reason),
				zap.Error(err),
			)
		}
		results = append(results, step)
		if onStep != nil {
			onStep(step)
		}
	}

	if failed > 0 {
		return results, errors.Wrapf(ErrExpectationFailed, "%d of %d steps failed", failed, len(results))
	}
	return results, nil
}
