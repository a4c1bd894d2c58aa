package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vsinha/mrpsim/pkg/application/dto"
	"github.com/vsinha/mrpsim/pkg/application/services/reporting"
	"github.com/vsinha/mrpsim/pkg/application/services/simulation"
	"github.com/vsinha/mrpsim/pkg/domain/catalog"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
	"github.com/vsinha/mrpsim/pkg/infrastructure/metrics"
	"github.com/vsinha/mrpsim/pkg/interfaces/api"
	"github.com/vsinha/mrpsim/pkg/interfaces/cli/output"
)

// Config holds the subcommand and its arguments
type Config struct {
	Command    string
	Days       int
	OrderID    entities.OrderID
	ProductID  entities.ProductID
	SupplierID entities.SupplierID
	MaterialID entities.ProductID
	Quantity   entities.Quantity
	Limit      int
	Addr       string
	Format     string
}

// Dependencies are the collaborators wired by main. Recorder and Gatherer
// are optional.
type Dependencies struct {
	Catalog   *catalog.Catalog
	SimConfig simulation.Config
	Options   []simulation.Option
	Store     simulation.StateStore
	Recorder  *metrics.Recorder
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
	Out       io.Writer
}

// Runner executes one subcommand against the persisted simulation
type Runner struct {
	config  Config
	deps    Dependencies
	logger  *zap.Logger
	printer *output.Printer
}

// shutdownTimeout bounds how long serve waits for in-flight requests
const shutdownTimeout = 5 * time.Second

// NewRunner creates a runner for the given command configuration
func NewRunner(config Config, deps Dependencies) (*Runner, error) {
	if deps.Catalog == nil || deps.Store == nil || deps.Out == nil {
		return nil, fmt.Errorf("%w: catalog, store and output writer are required", entities.ErrConfiguration)
	}
	if config.Format == "" {
		config.Format = output.FormatText
	}
	printer, err := output.New(deps.Out, config.Format, deps.Catalog)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{config: config, deps: deps, logger: logger, printer: printer}, nil
}

// Execute runs the configured subcommand
func (r *Runner) Execute(ctx context.Context) error {
	switch r.config.Command {
	case "", "help":
		r.showHelp()
		return nil
	case "init":
		return r.initRun(ctx)
	case "serve":
		return r.serve(ctx)
	}

	sim, err := r.load(ctx)
	if err != nil {
		return err
	}

	var cmdErr error
	switch r.config.Command {
	case "advance":
		cmdErr = r.advance(ctx, sim)
	case "release":
		cmdErr = r.release(sim)
	case "order":
		cmdErr = r.order(sim)
	case "purchase":
		cmdErr = r.purchase(sim)
	case "shortage":
		cmdErr = r.shortage(sim)
	case "critical-path":
		cmdErr = r.criticalPath(sim)
	case "status":
		cmdErr = r.status(sim)
	case "history":
		cmdErr = r.history(sim)
	case "events":
		cmdErr = r.events(sim)
	default:
		return fmt.Errorf("%w: unknown command %q", entities.ErrConfiguration, r.config.Command)
	}
	if cmdErr != nil {
		return cmdErr
	}

	// The snapshot is rewritten even for read-only commands so a freshly
	// bootstrapped run is kept for the next invocation.
	return simulation.Save(ctx, r.deps.Store, sim)
}

// load restores the saved run or bootstraps a new one
func (r *Runner) load(ctx context.Context) (*simulation.Simulator, error) {
	sim, warning, err := simulation.LoadOrBootstrap(ctx, r.deps.Store, r.deps.Catalog, r.deps.SimConfig, r.deps.Options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load simulation: %w", err)
	}
	if warning != nil {
		r.logger.Warn("starting a new run", zap.Error(warning))
	}
	if r.deps.Recorder != nil {
		r.deps.Recorder.SetDay(sim.Day())
	}
	r.logger.Debug("simulation loaded",
		zap.String("run_id", sim.RunID().String()),
		zap.Int("day", sim.Day()))
	return sim, nil
}

func (r *Runner) initRun(ctx context.Context) error {
	sim, err := simulation.Bootstrap(r.deps.Catalog, r.deps.SimConfig, r.deps.Options...)
	if err != nil {
		return fmt.Errorf("failed to bootstrap simulation: %w", err)
	}
	if err := simulation.Save(ctx, r.deps.Store, sim); err != nil {
		return err
	}
	return r.printer.Message(reporting.Summarize(sim),
		"Started run %s on day %d (%s) with %d orders", sim.RunID(), sim.Day(), sim.CurrentDate(), len(sim.Orders()))
}

func (r *Runner) advance(ctx context.Context, sim *simulation.Simulator) error {
	days := r.config.Days
	if days <= 0 {
		return fmt.Errorf("%w: --days must be positive, got %d", entities.ErrValidation, days)
	}

	results := make([]*dto.DayResult, 0, days)
	for i := 0; i < days; i++ {
		result, err := sim.AdvanceDay(sim.Config().Demand)
		if err != nil {
			return fmt.Errorf("day %d: %w", sim.Day()+1, err)
		}
		results = append(results, result)
		if err := simulation.Save(ctx, r.deps.Store, sim); err != nil {
			return err
		}
	}
	return r.printer.DayResults(results)
}

func (r *Runner) release(sim *simulation.Simulator) error {
	if r.config.OrderID <= 0 {
		return fmt.Errorf("%w: --order is required", entities.ErrValidation)
	}
	err := sim.ReleaseOrder(r.config.OrderID)
	var blocked *simulation.ReleaseBlockedError
	if errors.As(err, &blocked) {
		if report, reportErr := sim.ShortageReport(&r.config.OrderID); reportErr == nil {
			_ = r.printer.ShortageReport(report)
		}
		return err
	}
	if err != nil {
		return err
	}
	for _, o := range sim.Orders() {
		if o.ID == r.config.OrderID {
			return r.printer.Order(o)
		}
	}
	return nil
}

func (r *Runner) order(sim *simulation.Simulator) error {
	if r.config.ProductID <= 0 || r.config.Quantity <= 0 {
		return fmt.Errorf("%w: --product and --qty are required", entities.ErrValidation)
	}
	order, err := sim.CreateOrder(r.config.ProductID, r.config.Quantity)
	if err != nil {
		return err
	}
	return r.printer.Order(*order)
}

func (r *Runner) purchase(sim *simulation.Simulator) error {
	if r.config.SupplierID <= 0 || r.config.MaterialID <= 0 || r.config.Quantity <= 0 {
		return fmt.Errorf("%w: --supplier, --material and --qty are required", entities.ErrValidation)
	}
	po, err := sim.PlacePurchaseOrder(r.config.SupplierID, r.config.MaterialID, r.config.Quantity)
	if err != nil {
		return err
	}
	return r.printer.PurchaseOrder(*po)
}

func (r *Runner) shortage(sim *simulation.Simulator) error {
	var orderID *entities.OrderID
	if r.config.OrderID > 0 {
		orderID = &r.config.OrderID
	}
	report, err := sim.ShortageReport(orderID)
	if err != nil {
		return err
	}
	return r.printer.ShortageReport(report)
}

// criticalPath analyses one order, or every open order when --order is unset.
// --limit caps the materials shown per order.
func (r *Runner) criticalPath(sim *simulation.Simulator) error {
	if r.config.OrderID <= 0 {
		return r.printer.CriticalPaths(sim.CriticalPaths(r.config.Limit))
	}
	analysis, err := sim.CriticalPath(r.config.OrderID, r.config.Limit)
	if err != nil {
		return err
	}
	return r.printer.CriticalPaths([]*dto.CriticalPathAnalysis{analysis})
}

func (r *Runner) status(sim *simulation.Simulator) error {
	return r.printer.Status(output.Status{
		Summary:        reporting.Summarize(sim),
		Inventory:      sim.Inventory(),
		Orders:         sim.Orders(),
		PurchaseOrders: sim.PurchaseOrders(),
	})
}

func (r *Runner) history(sim *simulation.Simulator) error {
	return r.printer.History(output.History{
		Inventory:  sim.InventoryHistory(),
		Production: sim.ProductionLog(),
	})
}

func (r *Runner) events(sim *simulation.Simulator) error {
	events := sim.Events()
	if r.config.Limit > 0 && len(events) > r.config.Limit {
		events = events[len(events)-r.config.Limit:]
	}
	return r.printer.Events(events)
}

// serve runs the HTTP API until ctx is cancelled
func (r *Runner) serve(ctx context.Context) error {
	sim, err := r.load(ctx)
	if err != nil {
		return err
	}
	if err := simulation.Save(ctx, r.deps.Store, sim); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              r.config.Addr,
		Handler:           api.NewServer(sim, r.deps.Store, r.deps.Gatherer, r.logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server listening", zap.String("addr", r.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	r.logger.Info("http server stopped")
	return nil
}

func (r *Runner) showHelp() {
	fmt.Fprintf(r.deps.Out, `mrpsim - day-by-day MRP simulation of a small factory

USAGE:
    mrpsim [options] <command>

COMMANDS:
    init                                   Start a new run and overwrite saved state
    advance  --days <n>                    Simulate n days
    release  --order <id>                  Release a pending order to production
    order    --product <id> --qty <n>      Enter a manual customer order
    purchase --supplier <id> --material <id> --qty <n>
                                           Place a purchase order
    shortage [--order <id>]                Show material shortages and purchase suggestions
    critical-path [--order <id>] [--limit <n>]
                                           Show which materials hold up open orders
    status                                 Show day, inventory, orders and purchases
    history                                Show inventory and production per day
    events   [--limit <n>]                 Show the event log
    serve                                  Serve the HTTP API on --http-addr

Run 'mrpsim --help' for every option and its MRPSIM_ environment variable.
`)
}
