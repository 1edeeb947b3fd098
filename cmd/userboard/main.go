// Command userboard runs the review analysis pipeline: it ingests an
// app-store review export, clusters the complaints, synthesizes
// personas, asks a model for feature proposals, simulates a user board
// discussion about them and writes the resulting artifacts.
//
// Usage:
//
//	userboard run --csv reviews.csv            # run the full pipeline
//	userboard run --config config.yaml        # with a config file
//	userboard show --id <run-id>              # inspect a stored run
//	userboard version                         # show version info
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/userboard/artifact"
	"github.com/BaSui01/userboard/config"
	"github.com/BaSui01/userboard/internal/metrics"
	"github.com/BaSui01/userboard/llm"
	"github.com/BaSui01/userboard/llm/cache"
	"github.com/BaSui01/userboard/llm/providers/openai"
	"github.com/BaSui01/userboard/llm/retry"
	"github.com/BaSui01/userboard/pipeline"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runPipeline(os.Args[2:])
	case "show":
		showRun(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runPipeline(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (YAML)")
	csvPath := fs.String("csv", "", "Path to the review CSV export (overrides config)")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *csvPath != "" {
		cfg.Input.CSVPath = *csvPath
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("starting userboard",
		zap.String("version", Version),
		zap.String("csv", cfg.Input.CSVPath),
	)

	provider, err := openai.New(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.RequestTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("provider setup failed", zap.Error(err))
	}

	collector := metrics.NewCollector("userboard", nil, logger)

	policy := retry.DefaultRetryPolicy()
	policy.MaxRetries = cfg.LLM.MaxRetries

	opts := []llm.ClientOption{
		llm.WithMetrics(collector),
		llm.WithRetryPolicy(policy),
	}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		opts = append(opts, llm.WithCache(cache.NewCompletionCache(rdb, cfg.Redis.TTL, logger)))
		logger.Info("completion cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	client := llm.NewClient(provider, llm.ClientConfig{
		Model:             cfg.LLM.Model,
		MaxTokens:         cfg.LLM.MaxTokens,
		Temperature:       float32(cfg.LLM.Temperature),
		RequestTimeout:    cfg.LLM.RequestTimeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
	}, logger, opts...)

	sink, err := artifact.NewFSWriter(cfg.Artifacts.Dir, logger)
	if err != nil {
		logger.Fatal("artifact directory setup failed", zap.Error(err))
	}

	store := openStore(cfg.Artifacts.SQLitePath, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(cfg.Input.CSVPath)
	if err != nil {
		logger.Fatal("cannot open review CSV", zap.Error(err))
	}
	defer f.Close()

	p := pipeline.New(cfg, client, sink, store, logger, collector)
	res, err := p.RunCSV(ctx, f)
	if err != nil {
		logger.Error("pipeline failed",
			zap.String("run_id", res.RunID),
			zap.String("cause", res.Cause),
		)
		os.Exit(1)
	}

	fmt.Printf("Run %s finished: %d reviews, %d clusters, %d personas, %d features, %d turns\n",
		res.RunID, len(res.Reviews), len(res.Clusters), len(res.Personas),
		len(res.Features), len(res.Transcript))
	for name, loc := range res.Artifacts {
		fmt.Printf("  %-18s %s\n", name, loc)
	}
}

func showRun(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.String("id", "", "Run ID to inspect")
	dbPath := fs.String("db", "userboard.db", "Path to the run database")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "show requires --id")
		os.Exit(1)
	}

	db, err := artifact.OpenSQLite(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open run database: %v\n", err)
		os.Exit(1)
	}
	store, err := artifact.NewStore(db, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open run store: %v\n", err)
		os.Exit(1)
	}

	run, artifacts, err := store.GetRun(*id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run not found: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  Status:   %s\n", run.Status)
	if run.Cause != "" {
		fmt.Printf("  Cause:    %s\n", run.Cause)
	}
	fmt.Printf("  Started:  %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Reviews:  %d, Clusters: %d, Personas: %d, Features: %d, Turns: %d\n",
		run.ReviewCount, run.ClusterCount, run.PersonaCount, run.FeatureCount, run.TurnCount)
	for _, a := range artifacts {
		fmt.Printf("  %-18s %s\n", a.Name, a.Location)
	}
}

// openStore treats a broken run database as a soft failure: the run
// still executes, it just leaves no record behind.
func openStore(path string, logger *zap.Logger) *artifact.Store {
	db, err := artifact.OpenSQLite(path)
	if err != nil {
		logger.Warn("run database not available, run history disabled", zap.Error(err))
		return nil
	}
	store, err := artifact.NewStore(db, logger)
	if err != nil {
		logger.Warn("run store setup failed, run history disabled", zap.Error(err))
		return nil
	}
	return store
}

func printVersion() {
	fmt.Printf("userboard %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`userboard - app review analysis and user board simulation

Usage:
  userboard <command> [options]

Commands:
  run       Run the full pipeline over a review CSV
  show      Inspect a stored run
  version   Show version information
  help      Show this help message

Options for 'run':
  --config <path>   Path to configuration file (YAML)
  --csv <path>      Path to the review CSV export

Options for 'show':
  --id <run-id>     Run ID to inspect
  --db <path>       Path to the run database

Examples:
  userboard run --csv reviews.csv
  userboard run --config config.yaml
  userboard show --id 7d1c9a2e-...`)
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapConfig zap.Config
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.TimeKey = "timestamp"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
