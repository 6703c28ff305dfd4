// Command webofworlds grows wormhole networks across a star catalog.
//
// Usage:
//
//	webofworlds [-config path] <command> [flags] [args]
//
// Commands:
//
//	import <csv>      load a HYG CSV catalog into the database
//	grow              grow every configured empire and store the runs
//	runs              list stored runs
//	export <run-id>   write a stored run as JSON or YAML
//	stars             write the catalog as CSV, optionally with a run's results
//	serve             serve stored runs over HTTP with live events
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"webofworlds/internal/config"
	"webofworlds/internal/graphdb"
	"webofworlds/internal/handler"
	"webofworlds/internal/hub"
	"webofworlds/internal/logging"
	"webofworlds/internal/repository/sqlite"
	"webofworlds/internal/service"
	"webofworlds/internal/watcher"
)

var errUsage = errors.New("usage: webofworlds [-config path] <import|grow|runs|export|stars|serve> [args]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "webofworlds:", err)
		os.Exit(1)
	}
}

// app holds everything a command needs
type app struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	repo       *sqlite.Repository
	bus        *service.EventBus
	graph      graphdb.Store
	catalogs   *service.CatalogService
	runs       *service.RunService
	sim        *service.SimulationService
	stdout     io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("webofworlds", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "config file path (default: search standard locations)")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		return errUsage
	}

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	a, err := open(ctx, cfg, path, stdout, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "import":
		return a.cmdImport(ctx, cmdArgs)
	case "grow":
		return a.cmdGrow(ctx, cmdArgs)
	case "runs":
		return a.cmdRuns(ctx)
	case "export":
		return a.cmdExport(ctx, cmdArgs)
	case "stars":
		return a.cmdStars(ctx, cmdArgs)
	case "serve":
		return a.cmdServe(ctx, cmdArgs)
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func open(ctx context.Context, cfg *config.Config, configPath string, stdout, stderr io.Writer) (*app, error) {
	logger := logging.NewWithWriter(cfg.Logging, stderr)
	slog.SetDefault(logger)

	if configPath != "" {
		logger.Debug("config loaded", "path", configPath)
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("database opened", "path", cfg.Database.Path)

	a := &app{
		cfg:        cfg,
		configPath: configPath,
		logger:     logger,
		repo:       repo,
		bus:        service.NewEventBus(),
		stdout:     stdout,
	}
	a.catalogs = service.NewCatalogService(repo, a.bus, logger)
	a.runs = service.NewRunService(repo, a.bus, logger)
	a.sim = service.NewSimulationService(repo, a.bus, logger)

	if cfg.Neo4j.Enabled {
		store, err := graphdb.Connect(ctx, cfg.Neo4j)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("connect graph database: %w", err)
		}
		a.graph = store
		exporter := graphdb.NewExporter(store, logger)
		a.sim.SetGraphExporter(exporter)
		a.runs.SetGraphExporter(exporter)
		logger.Info("graph export enabled", "uri", cfg.Neo4j.URI)
	}

	return a, nil
}

func (a *app) close() {
	if a.graph != nil {
		if err := a.graph.Close(context.Background()); err != nil {
			a.logger.Warn("graph close failed", "error", err)
		}
	}
	if err := a.repo.Close(); err != nil {
		a.logger.Warn("database close failed", "error", err)
	}
}

func (a *app) cmdImport(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("import needs one CSV path: %w", errUsage)
	}
	n, err := a.importFile(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "imported %d stars from %s\n", n, args[0])
	return nil
}

func (a *app) importFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return a.catalogs.ImportCSV(ctx, f)
}

func (a *app) cmdGrow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("grow", flag.ContinueOnError)
	empire := fs.String("empire", "", "grow only the named empire")
	if err := fs.Parse(args); err != nil {
		return err
	}

	empires := a.cfg.Empires
	if *empire != "" {
		empires = nil
		for _, e := range a.cfg.Empires {
			if e.Name == *empire {
				empires = append(empires, e)
			}
		}
		if len(empires) == 0 {
			return fmt.Errorf("no empire named %q in config", *empire)
		}
	}

	results, err := a.grow(ctx, a.cfg, empires)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMPIRE\tALGORITHM\tSIZE\tEXHAUSTED\tFURTHEST\tLAST ARRIVAL\tRUN")
	for _, res := range results {
		furthest, last := "-", "-"
		if v := res.Network.FurthestOutpost(res.Catalog); v != nil {
			star := res.Catalog.Star(v.Star)
			furthest = fmt.Sprintf("%s (%.1f ly)", star.Name, star.DistanceFromOrigin)
		}
		if v := res.Network.LastOutpost(); v != nil {
			last = fmt.Sprintf("%.1f", res.Network.StartDate+v.ArrivalTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\t%s\t%s\n",
			res.Run.Empire, res.Run.Algorithm, res.Run.Size, res.Run.Exhausted, furthest, last, res.Run.ID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if dir := a.cfg.Export.Dir; dir != "" {
		for _, res := range results {
			if err := a.exportToDir(ctx, dir, res.Run.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// grow loads the configured catalog, importing Catalog.Path first when the
// database is empty, and runs the empires over it
func (a *app) grow(ctx context.Context, cfg *config.Config, empires []config.EmpireConfig) ([]service.RunResult, error) {
	n, err := a.repo.CountStars(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 && cfg.Catalog.Path != "" {
		if _, err := a.importFile(ctx, cfg.Catalog.Path); err != nil {
			return nil, err
		}
	}

	cat, err := a.catalogs.Load(ctx, cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return a.sim.Run(ctx, cat, empires)
}

func (a *app) exportToDir(ctx context.Context, dir, id string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("run-%s.%s", id, a.cfg.Export.Format))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := a.runs.Export(ctx, id, a.cfg.Export.Format, f); err != nil {
		return err
	}
	a.logger.Info("run exported", "run", id, "path", path)
	return nil
}

func (a *app) cmdRuns(ctx context.Context) error {
	runs, err := a.runs.ListRuns(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tEMPIRE\tALGORITHM\tSTART\tSIZE\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%d\t%s\n",
			r.ID, r.Empire, r.Algorithm, r.StartDate, r.Size, r.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", a.cfg.Export.Format, "json or yaml")
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("export needs one run id: %w", errUsage)
	}

	return a.writeTo(*out, func(w io.Writer) error {
		return a.runs.Export(ctx, fs.Arg(0), *format, w)
	})
}

func (a *app) cmdStars(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stars", flag.ContinueOnError)
	runID := fs.String("run", "", "include arrival times and wormholes from this run")
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return a.writeTo(*out, func(w io.Writer) error {
		return a.catalogs.ExportCSV(ctx, *runID, w)
	})
}

func (a *app) writeTo(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(a.stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) cmdServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", a.cfg.Server.Addr, "HTTP listen address")
	grow := fs.Bool("grow", false, "grow the configured empires on startup")
	watch := fs.Bool("watch", false, "re-grow whenever the config file changes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// The hub stops with ctx and ends open streams, so Shutdown does not wait on them.
	sseHub := hub.New(a.logger)
	go sseHub.Run(ctx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	a.bus.Subscribe(eventChan)
	go func() {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(event)
			case <-ctx.Done():
				return
			}
		}
	}()

	trigger := make(chan struct{}, 1)
	go a.regrowLoop(ctx, trigger)
	if *grow {
		trigger <- struct{}{}
	}

	if *watch {
		if a.configPath == "" {
			return errors.New("serve -watch needs a config file")
		}
		w := watcher.New(a.configPath, func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		}, a.logger)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	router := handler.NewRouter(a.logger, handler.RouterDependencies{
		Runs:   handler.NewRunHandler(a.runs, a.cfg.Export.Format, a.logger),
		Events: sseHub,
		Health: a.health,
	})

	server := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", *addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}

// regrowLoop reloads the config and grows its empires once per trigger.
// Builds never overlap.
func (a *app) regrowLoop(ctx context.Context, trigger <-chan struct{}) {
	for {
		select {
		case <-trigger:
		case <-ctx.Done():
			return
		}

		cfg := a.cfg
		if a.configPath != "" {
			reloaded, _, err := config.LoadFromPath(a.configPath)
			if err != nil {
				a.logger.Error("config reload failed", "path", a.configPath, "error", err)
				continue
			}
			cfg = reloaded
		}

		results, err := a.grow(ctx, cfg, cfg.Empires)
		if err != nil {
			a.logger.Error("grow failed", "error", err)
			continue
		}
		a.logger.Info("grow finished", "runs", len(results))
	}
}

func (a *app) health(ctx context.Context) error {
	if _, err := a.repo.CountStars(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.graph != nil {
		if err := a.graph.Ping(ctx); err != nil {
			return fmt.Errorf("graph: %w", err)
		}
	}
	return nil
}
