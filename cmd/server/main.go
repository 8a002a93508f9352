// Command server is the process entrypoint: it loads configuration,
// constructs the engine's singletons, and blocks until a shutdown
// signal arrives. No HTTP mux is shipped here — spec.md scopes
// routing out of the core — but wiring every singleton into one
// runnable process is itself part of the external interface contract
// (SPEC_FULL.md §2), grounded on
// _examples/vasic-digital-SuperAgent/cmd/superagent/main.go's
// flag-parse / construct / signal-wait / shutdown shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dev.legalrag.engine/internal/agent"
	"dev.legalrag.engine/internal/citation"
	"dev.legalrag.engine/internal/config"
	"dev.legalrag.engine/internal/embedder"
	"dev.legalrag.engine/internal/health"
	"dev.legalrag.engine/internal/index"
	"dev.legalrag.engine/internal/llmgateway"
	"dev.legalrag.engine/internal/qa"
	"dev.legalrag.engine/internal/recommend"
	"dev.legalrag.engine/internal/retriever"
	"dev.legalrag.engine/internal/summary"
	"dev.legalrag.engine/internal/translator"
)

var (
	configFile = flag.String("config", "", "Path to configuration file (YAML) layered over the environment")
	version    = flag.Bool("version", false, "Show version information")
	help       = flag.Bool("help", false, "Show help message")

	embedderModelDir   = flag.String("embedder-model-dir", "models/embedder", "Directory holding the embedder's on-disk model artifacts")
	translatorModelDir = flag.String("translator-model-dir", "models/translator", "Directory holding the translator's on-disk model artifacts")
	embedderDimension  = flag.Int("embedder-dimension", 384, "Dimension of embedding vectors produced by the embedder")
	healthInterval     = flag.Duration("health-log-interval", time.Minute, "How often to log a health snapshot")
)

// engine bundles every constructed singleton for the process's
// lifetime; cmd/server owns this set, nothing downstream reaches back
// into it (spec §3 "Ownership").
type engine struct {
	cfg         *config.Config
	store       *index.Store
	embedder    *embedder.Embedder
	translator  *translator.Translator
	gateway     *llmgateway.Gateway
	retriever   *retriever.Retriever
	runtime     *agent.Runtime
	facade      *qa.Facade
	summarizer  *summary.Summarizer
	recommender *recommend.Recommender
	health      *health.Checker
}

func buildEngine(ctx context.Context, cfg *config.Config, logger *logrus.Entry) (*engine, error) {
	store := index.NewStore(cfg.DataDir, logger)
	if err := store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("index store: %w", err)
	}

	emb := embedder.New(*embedderModelDir, *embedderDimension, logger)
	if err := emb.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	tr := translator.New(*translatorModelDir, logger)
	if err := tr.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("translator: %w", err)
	}

	gw, err := llmgateway.New(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("llm gateway: %w", err)
	}

	hybridRetriever := retriever.New(store, emb)
	checkpoint := agent.NewCheckpointStore()
	runtime := agent.New(hybridRetriever, tr, gw, checkpoint, logger)
	facade := qa.New(runtime, logger)
	summarizer := summary.New(gw)
	recommender := recommend.New(hybridRetriever, gw)
	healthChecker := health.New(cfg.LLM, nil, store, emb)

	return &engine{
		cfg:         cfg,
		store:       store,
		embedder:    emb,
		translator:  tr,
		gateway:     gw,
		retriever:   hybridRetriever,
		runtime:     runtime,
		facade:      facade,
		summarizer:  summarizer,
		recommender: recommender,
		health:      healthChecker,
	}, nil
}

func run(logger *logrus.Entry) error {
	cfg, err := config.LoadFile(*configFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	traceID := uuid.New().String()
	logger.WithFields(logrus.Fields{
		"trace_id":     traceID,
		"llm_provider": cfg.LLM.Provider,
		"llm_model":    cfg.LLM.Model,
		"data_dir":     cfg.DataDir,
	}).Info("legalrag engine: singletons constructed")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			logger.Info("legalrag engine: shutdown signal received")
			return nil
		case <-ticker.C:
			status := eng.health.Check(ctx)
			logger.WithFields(logrus.Fields{
				"llm_provider":       status.LLMProvider,
				"llm_model":          status.LLMModel,
				"retriever_cached":   status.RetrieverCached,
				"embedder_cached":    status.EmbedderCached,
				"usable_collections": status.UsableCollections,
			}).Info("legalrag engine: health snapshot")
		}
	}
}

func showHelp() {
	fmt.Printf(`legalrag-engine - Hybrid Retrieval & RAG Orchestration Engine

Usage:
  server [options]

Options:
  -config string
        Path to configuration file (YAML) layered over the environment
  -embedder-model-dir string
        Directory holding the embedder's on-disk model artifacts (default "models/embedder")
  -translator-model-dir string
        Directory holding the translator's on-disk model artifacts (default "models/translator")
  -embedder-dimension int
        Dimension of embedding vectors produced by the embedder (default 384)
  -health-log-interval duration
        How often to log a health snapshot (default 1m0s)
  -version
        Show version information
  -help
        Show this help message

Environment:
  LLM_PROVIDER, LLM_MODEL, LLM_BASE_URL, NATIVE_LLM_API_KEY, OPENAI_COMPAT_API_KEY,
  DATA_DIR, ALLOWED_ORIGINS, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_SERVICE_NAME,
  TRANSLATION_TIMEOUT, RETRIEVAL_TIMEOUT, GENERATION_TIMEOUT
`)
}

func main() {
	flag.Parse()

	if *help {
		showHelp()
		return
	}
	if *version {
		fmt.Println("legalrag-engine (host " + citation.DocumentsHost + ")")
		return
	}

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logrus.NewEntry(logger)

	if err := run(entry); err != nil {
		entry.WithError(err).Fatal("legalrag engine: startup failed")
	}
}
