package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hepframe/hepframe/internal/bench"
	corecfg "github.com/hepframe/hepframe/internal/core/config"
	"github.com/hepframe/hepframe/internal/core/storage"
	"github.com/hepframe/hepframe/internal/core/storage/memory"
	"github.com/hepframe/hepframe/internal/core/storage/postgres"
	"github.com/hepframe/hepframe/internal/metrics"
	"github.com/hepframe/hepframe/internal/migrations"
	"github.com/hepframe/hepframe/internal/render"
	"github.com/hepframe/hepframe/internal/report"
	"github.com/hepframe/hepframe/internal/runs"
	"github.com/hepframe/hepframe/internal/schema"
	schemaapi "github.com/hepframe/hepframe/internal/schema/api"
	"github.com/hepframe/hepframe/internal/schema/formats/protobuf"
	"github.com/hepframe/hepframe/internal/schema/formats/yaml"
	layoutstore "github.com/hepframe/hepframe/internal/schema/storage"
	"github.com/hepframe/hepframe/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	query := flag.Int("query", 1, "Benchmark query to run (1-8)")
	cores := flag.Int("cores", -1, "Worker count; 0 uses every CPU, -1 uses engine.concurrency")
	input := flag.String("input", "", "Dataset path or glob; defaults to dataset.input")
	reps := flag.Int("n", 0, "Repetitions; defaults to benchmark.repetitions")
	serve := flag.Bool("serve", false, "Serve the HTTP API instead of running one query")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler cancels the run or stops the server.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// 2. Initialize Run Storage
	var (
		db       *sql.DB
		runStore storage.RunStore
	)
	if cfg.Database.Type == "postgres" {
		db, err = postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		// 2.1. Run Database Migrations
		st, err := migrations.Apply(db, cfg.Database.AutoMigrate)
		if err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		if st.Fresh {
			slog.Error("Database has no benchmark_runs table; enable database.auto_migrate")
			os.Exit(1)
		}

		adapter, err := postgres.NewAdapter(db)
		if err != nil {
			slog.Error("Failed to initialize run store", "error", err)
			os.Exit(1)
		}
		defer adapter.Close()
		runStore = adapter
	} else {
		runStore = memory.NewRunStore()
	}

	// 3. Initialize Layout Registry
	var layoutRepo schema.Repository
	switch cfg.Layouts.Source {
	case "filesystem":
		layoutRepo = layoutstore.NewFileSystemRepository(cfg.Layouts.Path)
	default:
		layoutRepo = layoutstore.NewMemoryRepository()
	}
	registry := schema.NewRegistry(layoutRepo, cfg.Layouts.CacheSize)

	compilers := schema.NewCompilers()
	compilers.Register(schema.FormatProtobuf, protobuf.NewCompiler())
	compilers.Register(schema.FormatYaml, yaml.NewCompiler())

	// 4. Initialize Benchmark Runner
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engineMetrics, err := metrics.New(promRegistry)
	if err != nil {
		slog.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}

	benchLog, err := report.OpenLog(cfg.Benchmark.LogPath)
	if err != nil {
		slog.Error("Failed to open benchmark log", "path", cfg.Benchmark.LogPath, "error", err)
		os.Exit(1)
	}
	defer benchLog.Close()

	opts := []bench.Option{
		bench.WithRunStore(runStore),
		bench.WithLog(benchLog),
		bench.WithMetrics(engineMetrics),
		bench.WithDefaultInput(cfg.Dataset.Input),
		bench.WithSynthetic(cfg.Dataset.Synthetic, cfg.Dataset.Seed),
		bench.WithTimeout(cfg.Benchmark.TimeoutDuration()),
	}
	if cfg.Dataset.Layout != "" {
		def, err := registry.Get(ctx, cfg.Dataset.Layout, cfg.Dataset.LayoutVersion)
		if err != nil {
			slog.Error("Failed to load dataset layout", "layout", cfg.Dataset.Layout, "version", cfg.Dataset.LayoutVersion, "error", err)
			os.Exit(1)
		}
		layout, err := compilers.Compile(ctx, def)
		if err != nil {
			slog.Error("Failed to compile dataset layout", "layout", def.Ref().String(), "error", err)
			os.Exit(1)
		}
		opts = append(opts, bench.WithLayout(layout))
	}
	if cfg.Render.Enabled {
		opts = append(opts, bench.WithRender(cfg.Render.Dir, render.Options{Width: cfg.Render.Width, Height: cfg.Render.Height}))
	}
	if *serve {
		// inputs arrive from clients
		opts = append(opts, bench.WithRoot(cfg.Dataset.Root), bench.WithMaxCores(cfg.Engine.MaxConcurrency))
	}
	runner := bench.NewRunner(opts...)

	if !*serve {
		req := bench.Request{
			Query:       *query,
			Cores:       *cores,
			Input:       *input,
			Repetitions: *reps,
		}
		if req.Cores < 0 {
			req.Cores = cfg.Engine.Concurrency
		}
		if req.Repetitions == 0 {
			req.Repetitions = cfg.Benchmark.Repetitions
		}

		res, err := runner.Run(ctx, req)
		if err != nil {
			slog.Error("Benchmark run failed", "query", req.Query, "error", err)
			os.Exit(1)
		}
		fmt.Printf("Query%d cores=%d files=%d events=%d integral=%g %s\n",
			res.Query, res.Cores, res.Files, res.Events, res.Integral, res.Summary)
		return
	}

	// 5. Initialize Server
	runSvc := runs.NewService(runner, runStore, cfg.Benchmark.Repetitions, cfg.Server.MaxBodySizeMB)
	layoutSvc := schemaapi.NewService(registry, compilers)

	srvCfg := server.Config{
		Addr:     fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Mode:     cfg.Server.Mode,
		Gatherer: promRegistry,
	}
	if db != nil {
		srvCfg.DB = db
	}
	srv := server.New(srvCfg)
	runSvc.RegisterRoutes(srv.Engine)
	layoutSvc.RegisterRoutes(srv.Engine)

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}
