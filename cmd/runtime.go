package cmd

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/txcontext/internal/config"
	"github.com/Layr-Labs/txcontext/internal/logger"
	"github.com/Layr-Labs/txcontext/internal/metrics"
	"github.com/Layr-Labs/txcontext/internal/metrics/prometheus"
	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/accountStore/leveldbAccountStore"
	"github.com/Layr-Labs/txcontext/pkg/accountStore/postgresAccountStore"
	"github.com/Layr-Labs/txcontext/pkg/dispatcher"
	"github.com/Layr-Labs/txcontext/pkg/eventBus"
	"github.com/Layr-Labs/txcontext/pkg/postgres"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/Layr-Labs/txcontext/pkg/verifier"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds what every command needs once config is loaded.
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	programID types.Pubkey
	store     accountStore.AccountStore
	grm       *gorm.DB
	closers   []func()
}

func newRuntime() (*runtime, error) {
	cfg := config.NewConfig()

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	programID, err := types.PubkeyFromString(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}

	rt := &runtime{
		cfg:       cfg,
		logger:    l,
		programID: programID,
	}
	if err := rt.openStore(); err != nil {
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) openStore() error {
	switch rt.cfg.StoreConfig.Backend {
	case config.StoreBackend_Postgres:
		grm, err := postgres.NewMigratedGorm(&rt.cfg.DatabaseConfig, rt.logger)
		if err != nil {
			return fmt.Errorf("failed to setup postgres: %w", err)
		}
		rt.grm = grm
		rt.store = postgresAccountStore.NewPostgresAccountStore(grm, rt.logger)
		rt.closers = append(rt.closers, func() {
			if db, err := grm.DB(); err == nil {
				_ = db.Close()
			}
		})
	default:
		store, err := leveldbAccountStore.NewLevelDBAccountStore(rt.cfg.StoreConfig.LevelDBPath, rt.logger)
		if err != nil {
			return fmt.Errorf("failed to open leveldb store: %w", err)
		}
		rt.store = store
		rt.closers = append(rt.closers, func() { _ = store.Close() })
	}
	return nil
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

func (rt *runtime) newMetricsSink(ctx context.Context) (*metrics.MetricsSink, error) {
	clients, err := metrics.InitMetricsSinksFromConfig(rt.cfg, rt.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup metrics sink: %w", err)
	}
	if rt.cfg.PrometheusConfig.Enabled {
		prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
			Port: rt.cfg.PrometheusConfig.Port,
		}, rt.logger).Start(ctx)
	}
	return metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, clients)
}

// newDispatcher builds a dispatcher over store, which defaults to the
// configured account store.
func (rt *runtime) newDispatcher(ctx context.Context, store accountStore.AccountStore) (*dispatcher.Dispatcher, *eventBus.EventBus, error) {
	if store == nil {
		store = rt.store
	}
	sink, err := rt.newMetricsSink(ctx)
	if err != nil {
		return nil, nil, err
	}
	eb := eventBus.NewEventBus(rt.logger)

	d := dispatcher.NewDispatcher(store, verifier.NewSumCheckVerifier(rt.logger), eb, sink, &dispatcher.DispatcherConfig{
		ProgramID:            rt.programID,
		OutputRegionCapacity: rt.cfg.BufferConfig.OutputRegionCapacity,
	}, rt.logger)
	return d, eb, nil
}
