// Package main runs one paper-trading simulation against live or generated
// pump.fun listings and records every decision to the ledger.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"sol-memebot/internal/config"
	"sol-memebot/internal/ingestion"
	"sol-memebot/internal/ingestion/stub"
	"sol-memebot/internal/ledger"
	"sol-memebot/internal/observability"
	"sol-memebot/internal/simulation"
	"sol-memebot/internal/solana"
	"sol-memebot/internal/storage"
	chstore "sol-memebot/internal/storage/clickhouse"
	"sol-memebot/internal/storage/memory"
	"sol-memebot/internal/storage/migrations"
	pgstore "sol-memebot/internal/storage/postgres"
	"sol-memebot/internal/strategy"
)

// Listing sources selectable with --source.
const (
	sourceMoralis    = "moralis"
	sourcePumpPortal = "pumpportal"
	sourceStub       = "stub"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	minutes := flag.Int("minutes", 10, "Ingestion window in minutes (0 disables the deadline)")
	targetCount := flag.Int("target-count", 0, "Stop ingesting after this many observations (0 = no limit)")
	pollInterval := flag.Duration("poll-interval", 5*time.Second, "Delay between listing polls")
	preset := flag.String("preset", strategy.PresetDefault, "Strategy preset")
	paramsFile := flag.String("params-file", "", "YAML file overlaid on the preset")
	seed := flag.Int64("seed", 0, "Seed for execution randomness (0 = clock)")
	source := flag.String("source", sourceMoralis, "Listing source: moralis, pumpportal or stub")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	migrate := flag.Bool("migrate", false, "Apply embedded migrations before running")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickHouseDSN, "ClickHouse connection string (optional, enables snapshots)")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Prometheus metrics HTTP address (empty disables)")
	debug := flag.Bool("debug", false, "Enable development logging")

	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	params, err := loadParams(*preset, *paramsFile)
	if err != nil {
		logger.Fatal("load strategy parameters", zap.Error(err))
	}

	execCfg := simulation.DefaultExecutionConfig()
	execCfg.IngestDuration = time.Duration(*minutes) * time.Minute
	execCfg.TargetCount = *targetCount
	execCfg.PollInterval = *pollInterval

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := observability.NewMetrics(observability.DefaultNamespace, reg)

	var srv *http.Server
	if *metricsAddr != "" {
		srv = startHTTPServer(*metricsAddr, reg, logger)
	}

	res, err := run(ctx, runConfig{
		cfg:           cfg,
		params:        params,
		execCfg:       execCfg,
		seed:          *seed,
		source:        *source,
		useMemory:     *useMemory,
		migrate:       *migrate,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
	}, logger, m)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}

	if err != nil {
		logger.Error("simulation failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	printSummary(res)
}

type runConfig struct {
	cfg           config.Config
	params        strategy.Parameters
	execCfg       simulation.ExecutionConfig
	seed          int64
	source        string
	useMemory     bool
	migrate       bool
	postgresDSN   string
	clickhouseDSN string
}

// run wires stores and the listing source, then executes one simulation.
func run(ctx context.Context, rc runConfig, logger *zap.Logger, m *observability.Metrics) (*simulation.RunResult, error) {
	stores, cleanup, err := createStores(ctx, rc, logger)
	if err != nil {
		return nil, fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	src, closeSource, err := createSource(ctx, rc, logger, m)
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	defer closeSource()

	opts := simulation.RunnerOptions{
		Source:  src,
		Ledger:  stores.ledger,
		Ruggers: stores.ruggers,
		Params:  rc.params,
		Config:  rc.execCfg,
		Logger:  logger,
		Metrics: m,
	}
	if rc.seed != 0 {
		opts.Random = simulation.NewSeededSource(rc.seed)
	}

	runner, err := simulation.NewRunner(opts)
	if err != nil {
		return nil, err
	}

	logger.Info("starting simulation",
		zap.String("run_id", runner.RunID()),
		zap.String("preset", rc.params.Name),
		zap.String("source", rc.source),
		zap.Duration("ingest_duration", rc.execCfg.IngestDuration),
		zap.Int("target_count", rc.execCfg.TargetCount),
	)
	return runner.Run(ctx)
}

type simStores struct {
	ledger  *ledger.Ledger
	ruggers storage.RuggerStore
}

// createStores builds the ledger and rugger registry.
func createStores(ctx context.Context, rc runConfig, logger *zap.Logger) (*simStores, func(), error) {
	if rc.useMemory {
		l, _ := ledger.NewMemory()
		return &simStores{ledger: l, ruggers: memory.NewRuggerStore()}, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, rc.postgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if rc.migrate {
		applied, err := migrations.RunPostgresMigrations(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("postgres migrations applied", zap.Strings("versions", applied))
	}

	opts := ledger.Options{
		Observations: pgstore.NewObservationStore(pool),
		Trades:       pgstore.NewTradeStore(pool),
		Runs:         pgstore.NewRunStore(pool),
	}

	var chConn *chstore.Conn
	if rc.clickhouseDSN != "" {
		if rc.migrate {
			chConn, err = migrations.RunClickhouseMigrations(ctx, rc.clickhouseDSN)
		} else {
			chConn, err = chstore.NewConn(ctx, rc.clickhouseDSN)
		}
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		opts.Snapshots = chstore.NewSnapshotStore(chConn)
	}

	l, err := ledger.New(opts)
	if err != nil {
		pool.Close()
		if chConn != nil {
			_ = chConn.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		if chConn != nil {
			_ = chConn.Close()
		}
		pool.Close()
	}
	return &simStores{ledger: l, ruggers: pgstore.NewRuggerStore(pool)}, cleanup, nil
}

// createSource builds the data source selected by --source.
func createSource(ctx context.Context, rc runConfig, logger *zap.Logger, m *observability.Metrics) (ingestion.DataSource, func(), error) {
	noop := func() {}
	dex := ingestion.NewDexScreenerClient(rc.cfg.DexScreenerURL, nil)

	var moralis *ingestion.MoralisClient
	if rc.cfg.MoralisAPIKey != "" {
		moralis = ingestion.NewMoralisClient(ingestion.MoralisOptions{
			BaseURL: rc.cfg.MoralisBaseURL,
			APIKey:  rc.cfg.MoralisAPIKey,
		})
	}

	// On-chain metadata is preferred over Moralis when an RPC node is configured.
	var metadata ingestion.MetadataSource
	if rc.cfg.SolanaRPCURL != "" {
		metadata = ingestion.NewChainMetadataSource(solana.NewRPCClient(rc.cfg.SolanaRPCURL))
	} else if moralis != nil {
		metadata = moralis
	}

	switch rc.source {
	case sourceStub:
		seed := rc.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return stub.NewGeneratedSource(seed, 5), noop, nil

	case sourceMoralis:
		if moralis == nil {
			return nil, nil, errors.New("MORALIS_API_KEY is required for the moralis source")
		}
		return ingestion.NewScanner(ingestion.ScannerOptions{
			Listings: moralis,
			Holders:  moralis,
			Metadata: metadata,
			Pairs:    dex,
			Logger:   logger.Named("scanner"),
			Metrics:  m,
		}), noop, nil

	case sourcePumpPortal:
		ppCfg := ingestion.DefaultPumpPortalConfig()
		ppCfg.SOLUSDPrice = rc.params.SOLUSDPrice
		stream, err := ingestion.NewPumpPortalStream(ctx, rc.cfg.PumpPortalWSURL, &ppCfg, logger.Named("pumpportal"))
		if err != nil {
			return nil, nil, err
		}
		opts := ingestion.ScannerOptions{
			Listings: stream,
			Metadata: metadata,
			Pairs:    dex,
			Logger:   logger.Named("scanner"),
			Metrics:  m,
		}
		if moralis != nil {
			opts.Holders = moralis
		} else {
			logger.Warn("MORALIS_API_KEY not set, holder enrichment disabled")
		}
		return ingestion.NewScanner(opts), func() { _ = stream.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown source %q (valid: %s, %s, %s)", rc.source, sourceMoralis, sourcePumpPortal, sourceStub)
	}
}

func loadParams(preset, paramsFile string) (strategy.Parameters, error) {
	params, err := strategy.FromPreset(preset)
	if err != nil {
		return strategy.Parameters{}, err
	}
	if paramsFile == "" {
		return params, nil
	}
	return strategy.OverlayFile(params, paramsFile)
}

func newLogger(debug bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Named("simulate"), nil
}

// startHTTPServer serves health and Prometheus metrics in the background.
func startHTTPServer(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return srv
}

func printSummary(res *simulation.RunResult) {
	fmt.Println()
	fmt.Println("=== Simulation Complete ===")
	fmt.Printf("Run ID:         %s\n", res.RunID)
	fmt.Printf("Preset:         %s\n", res.Preset)
	fmt.Printf("Duration:       %s\n", res.FinishedAt.Sub(res.StartedAt).Round(time.Second))
	fmt.Printf("Observations:   %d\n", res.Observations)
	fmt.Printf("Buys:           %d\n", res.Buys)

	reasons := make([]string, 0, len(res.Sells))
	sells := 0
	for reason, n := range res.Sells {
		reasons = append(reasons, reason)
		sells += n
	}
	sort.Strings(reasons)
	fmt.Printf("Sells:          %d\n", sells)
	for _, reason := range reasons {
		fmt.Printf("  %-14s %d\n", reason+":", res.Sells[reason])
	}

	fmt.Printf("Open positions: %d\n", res.OpenPositions)
	fmt.Printf("Realized PnL:   %.2f USD\n", res.RealizedPnLUSD)
	fmt.Printf("SOL balance:    %.4f -> %.4f\n", res.StartingSOL, res.FinalSOL)
	fmt.Println()
	fmt.Printf("Report: go run ./cmd/report --run-id %s\n", res.RunID)
}
