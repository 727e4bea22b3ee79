package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGTERM, syscall.SIGINT)

	return gracefulShutdown
}

// CancelOnSignal calls cancel when signalChan delivers SIGTERM or SIGINT. It
// returns once either a signal arrived or ctx is done.
func CancelOnSignal(ctx context.Context, signalChan chan os.Signal, cancel context.CancelFunc, l *zap.Logger) {
	defer signal.Stop(signalChan)

	select {
	case sig := <-signalChan:
		switch sig {
		case syscall.SIGTERM, syscall.SIGINT:
			l.Sugar().Infof("caught signal %v, stopping", sig)
			cancel()
		}
	case <-ctx.Done():
	}
}
