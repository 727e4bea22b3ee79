package shutdown

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/Layr-Labs/txcontext/internal/logger"
	"github.com/stretchr/testify/assert"
)

func Test_CancelOnSignal(t *testing.T) {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	t.Run("Should cancel on SIGINT", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		signals := make(chan os.Signal, 1)
		signals <- syscall.SIGINT
		CancelOnSignal(ctx, signals, cancel, l)

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context was not cancelled")
		}
	})
	t.Run("Should return when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		CancelOnSignal(ctx, make(chan os.Signal, 1), func() { called = true }, l)
		assert.False(t, called)
	})
}
