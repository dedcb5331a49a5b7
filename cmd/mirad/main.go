// Command mirad is Mira's daemon: the long-lived process that owns
// both databases, runs the background supervisor, and serves the hook
// IPC socket. Entry-point and command wiring follow the teacher's
// cmd/nerd/main.go shape (a cobra root command with PersistentPreRunE
// building the console logger, RunE loading config and doing the
// actual work).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ConaryLabs/mira/internal/behavior"
	"github.com/ConaryLabs/mira/internal/codestore"
	"github.com/ConaryLabs/mira/internal/config"
	"github.com/ConaryLabs/mira/internal/embedding"
	"github.com/ConaryLabs/mira/internal/ipc"
	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/memory"
	"github.com/ConaryLabs/mira/internal/mlog"
	"github.com/ConaryLabs/mira/internal/parser"
	"github.com/ConaryLabs/mira/internal/retrieval"
	"github.com/ConaryLabs/mira/internal/supervisor"
	"github.com/ConaryLabs/mira/internal/toolsurface"
)

var (
	homeDir    string
	configPath string
	verbose    bool

	// console is the CLI-facing logger: operator-readable startup/shutdown
	// lines on stderr, separate from mlog's per-category file logs.
	console *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mirad",
	Short: "Mira daemon: persistent intelligence core for the host coding agent",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("init console logger: %w", err)
		}
		console = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if console != nil {
			_ = console.Sync()
		}
	},
	RunE: runDaemon,
}

func init() {
	rootCmd.Flags().StringVar(&homeDir, "home", defaultHomeDir(), "Mira home directory (main.db, code.db, sessions/, socket)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to config.yaml (defaults to <home>/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level console output")
}

func defaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mira"
	}
	return filepath.Join(home, ".mira")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mirad:", err)
		os.Exit(1)
	}
}

// Daemon is the lifecycle-scoped owner of every long-lived handle: both
// database pools, the supervisor, and the tool registry. Nothing
// outside this struct holds a *mainstore.Store or *codestore.Store
// beyond the lifetime of Run.
type Daemon struct {
	mainStore   *mainstore.Store
	codeStore   *codestore.Store
	embedder    embedding.Embedder
	sup         *supervisor.Supervisor
	tools       *toolsurface.Registry
	indexer     *parser.Indexer
	watchers    []*parser.Watcher
	metrics     *supervisor.Metrics
	metricsAddr string
	listener    func(context.Context) error
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(homeDir, 0o700); err != nil {
		return fmt.Errorf("create home dir: %w", err)
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(homeDir, "config.yaml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := mlog.Initialize(homeDir, mlog.Config{DebugMode: cfg.Logging.DebugMode, Categories: cfg.Logging.Categories, Level: cfg.Logging.Level}); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	log := mlog.Get(mlog.CategoryBoot)
	log.Info("starting mirad, home=%s", homeDir)
	console.Info("starting mirad", zap.String("home", homeDir))

	d, err := buildDaemon(homeDir, cfg)
	if err != nil {
		console.Error("daemon init failed", zap.Error(err))
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.startWatchers(ctx); err != nil {
		return fmt.Errorf("start file watchers: %w", err)
	}

	console.Info("mirad ready")
	err = d.Run(ctx)
	console.Info("mirad stopped")
	return err
}

func buildDaemon(home string, cfg config.Config) (*Daemon, error) {
	log := mlog.Get(mlog.CategoryBoot)

	mainStore, err := mainstore.Open(filepath.Join(home, "main.db"))
	if err != nil {
		return nil, fmt.Errorf("open main store: %w", err)
	}
	codeStore, err := codestore.Open(filepath.Join(home, "code.db"))
	if err != nil {
		mainStore.Close()
		return nil, fmt.Errorf("open code store: %w", err)
	}

	embedCfg := embedding.Config{
		Provider:       cfg.Embedding.Provider,
		OllamaEndpoint: os.Getenv("MIRA_OLLAMA_ENDPOINT"),
		OllamaModel:    "embeddinggemma",
		GenAIAPIKey:    os.Getenv("MIRA_GENAI_API_KEY"),
		GenAIModel:     "gemini-embedding-001",
		Dimensions:     cfg.Embedding.Dimensions,
	}
	rawEmbedder, err := embedding.New(embedCfg)
	if err != nil {
		return nil, fmt.Errorf("construct embedder: %w", err)
	}
	var embedder embedding.Embedder
	var drainer *embedding.Drainer
	if rawEmbedder != nil {
		embedder = embedding.NewCircuitBreaker(rawEmbedder)
		drainer = embedding.NewDrainer(codeStore, embedder)
		log.Info("embedding provider %q active", embedder.Name())
	} else {
		log.Info("embedding disabled; semantic search and fast-lane drain are inactive")
	}

	fuzzy := retrieval.NewFuzzySearcher(codeStore, time.Duration(cfg.Fuzzy.TimeoutMs)*time.Millisecond, cfg.Fuzzy.CacheSize)
	codeRetriever := retrieval.NewCodeRetriever(codeStore, embedder, fuzzy, cfg.Scoring)
	factRetriever := retrieval.NewFactRetriever(mainStore, embedder, cfg.Scoring)

	memEngine := memory.NewEngine(mainStore)
	miner := behavior.NewMiner(mainStore)

	fast := supervisor.NewFastLane(mainStore, drainer, time.Duration(cfg.Background.FastLaneIntervalMillis)*time.Millisecond)
	tasks := append(
		supervisor.RetentionTasksFromConfig(cfg.Retention),
		supervisor.NewStaleSessionTask(miner),
	)
	slow := supervisor.NewSlowLane(mainStore, tasks,
		time.Duration(cfg.Background.SlowLaneIntervalSecs)*time.Second,
		time.Duration(cfg.Background.AdaptiveThresholdSecs)*time.Second,
		cfg.Background.MaxRestarts)
	metrics := supervisor.NewMetrics()
	sup := supervisor.New(fast, slow).WithMetrics(metrics)

	parserRegistry := parser.NewRegistry()
	indexer := parser.NewIndexer(codeStore, parserRegistry)

	taskRunner := toolsurface.NewTaskRunner()
	tools := toolsurface.NewRegistry(taskRunner)
	if err := toolsurface.RegisterMemoryActions(tools, memEngine, factRetriever); err != nil {
		return nil, err
	}
	if err := toolsurface.RegisterSessionActions(tools, mainStore); err != nil {
		return nil, err
	}
	if err := toolsurface.RegisterCodeActions(tools, codeRetriever); err != nil {
		return nil, err
	}
	if err := toolsurface.RegisterGoalActions(tools, mainStore); err != nil {
		return nil, err
	}
	if err := toolsurface.RegisterDocumentationActions(tools, mainStore); err != nil {
		return nil, err
	}
	if err := toolsurface.RegisterInsightsActions(tools, mainStore); err != nil {
		return nil, err
	}
	if err := toolsurface.RegisterRecipeActions(tools, mainStore); err != nil {
		return nil, err
	}
	if err := toolsurface.RegisterTeamActions(tools, mainStore); err != nil {
		return nil, err
	}
	if err := toolsurface.RegisterDiffActions(tools, codeStore); err != nil {
		return nil, err
	}
	if err := toolsurface.RegisterBundleActions(tools, codeRetriever, factRetriever); err != nil {
		return nil, err
	}
	if err := toolsurface.RegisterIndexActions(tools, taskRunner, mainStore, indexer); err != nil {
		return nil, err
	}
	if err := toolsurface.RegisterTasksActions(tools, taskRunner); err != nil {
		return nil, err
	}

	sockPath := ipc.SocketPath(cfg.IPC.SocketPath, "mira")

	return &Daemon{
		mainStore:   mainStore,
		codeStore:   codeStore,
		embedder:    embedder,
		sup:         sup,
		tools:       tools,
		indexer:     indexer,
		metrics:     metrics,
		metricsAddr: cfg.Metrics.Addr,
		listener:    func(ctx context.Context) error { return serveIPC(ctx, sockPath, tools) },
	}, nil
}

// startWatchers starts one incremental fsnotify watcher per already-
// known project, so a daemon restart resumes live indexing without
// requiring a fresh index.full call. A project whose on-disk root no
// longer exists is logged and skipped rather than failing the whole
// daemon. Watchers are stopped in Close.
func (d *Daemon) startWatchers(ctx context.Context) error {
	log := mlog.Get(mlog.CategoryParser)
	ids, err := d.mainStore.ListProjectIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		root, err := d.mainStore.ProjectPath(ctx, id)
		if err != nil {
			log.Warn("skip watcher for project %d: %v", id, err)
			continue
		}
		w, err := parser.NewWatcher(d.indexer, id, root)
		if err != nil {
			log.Warn("skip watcher for project %d (%s): %v", id, root, err)
			continue
		}
		if err := w.Start(ctx); err != nil {
			log.Warn("skip watcher for project %d (%s): %v", id, root, err)
			continue
		}
		d.watchers = append(d.watchers, w)
		log.Info("watching project %d at %s", id, root)
	}
	return nil
}

// Run blocks until ctx is cancelled, running the supervisor and the
// IPC listener concurrently and returning once both have stopped.
func (d *Daemon) Run(ctx context.Context) error {
	log := mlog.Get(mlog.CategoryBoot)
	waiters := 2
	errCh := make(chan error, 3)

	go func() { d.sup.Run(ctx); errCh <- nil }()
	go func() { errCh <- d.listener(ctx) }()
	if d.metricsAddr != "" {
		waiters++
		go func() { errCh <- d.metrics.ServeMetrics(ctx, d.metricsAddr) }()
	}

	<-ctx.Done()
	log.Info("shutdown signal received, waiting for in-flight work to complete")

	// Every goroutine observes ctx.Done() internally and returns
	// promptly; draining errCh once per goroutine bounds how long Run
	// waits for them.
	for i := 0; i < waiters; i++ {
		if err := <-errCh; err != nil && ctx.Err() == nil {
			return err
		}
	}
	return nil
}

func (d *Daemon) Close() {
	for _, w := range d.watchers {
		w.Stop()
	}
	if d.codeStore != nil {
		d.codeStore.Close()
	}
	if d.mainStore != nil {
		d.mainStore.Close()
	}
}
