package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/vsinha/mrpsim/pkg/application/services/simulation"
	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/infrastructure/config"
	"github.com/vsinha/mrpsim/pkg/infrastructure/logging"
	"github.com/vsinha/mrpsim/pkg/infrastructure/metrics"
	"github.com/vsinha/mrpsim/pkg/infrastructure/persistence/file"
	"github.com/vsinha/mrpsim/pkg/infrastructure/persistence/sqlite"
	"github.com/vsinha/mrpsim/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/mrpsim/pkg/infrastructure/repositories/jsoncatalog"
	"github.com/vsinha/mrpsim/pkg/interfaces/cli/commands"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, help, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	for _, warning := range cat.Audit().Warnings() {
		logger.Warn("catalog audit", zap.String("catalog", cfg.Catalog.Path), zap.String("finding", warning))
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	simCfg, err := cfg.Simulation()
	if err != nil {
		return err
	}

	runner, err := commands.NewRunner(commands.Config{
		Command:    cfg.Command(),
		Days:       cfg.Days,
		OrderID:    entities.OrderID(cfg.Order),
		ProductID:  entities.ProductID(cfg.Product),
		SupplierID: entities.SupplierID(cfg.Supplier),
		MaterialID: entities.ProductID(cfg.Material),
		Quantity:   entities.Quantity(cfg.Qty),
		Limit:      cfg.Limit,
		Addr:       cfg.HTTP.Addr,
		Format:     cfg.Output,
	}, commands.Dependencies{
		Catalog:   cat,
		SimConfig: simCfg,
		Options: []simulation.Option{
			simulation.WithLogger(logger),
			simulation.WithEventHandler(recorder),
		},
		Store:    store,
		Recorder: recorder,
		Gatherer: reg,
		Logger:   logger,
		Out:      os.Stdout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runner.Execute(ctx)
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	switch cfg.Catalog.Format {
	case "csv":
		return csv.NewLoader().LoadCatalog(cfg.Catalog.Path)
	default:
		return jsoncatalog.LoadFile(cfg.Catalog.Path)
	}
}

func openStore(cfg *config.Config) (simulation.StateStore, func(), error) {
	switch cfg.State.Kind {
	case "sqlite":
		store, err := sqlite.NewStore(cfg.State.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return file.NewStore(cfg.State.Path), func() {}, nil
	}
}
