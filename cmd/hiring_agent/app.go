package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-coach/internal/blob"
	"github.com/jonathan/hiring-coach/internal/coaching"
	"github.com/jonathan/hiring-coach/internal/config"
	"github.com/jonathan/hiring-coach/internal/evaluation"
	"github.com/jonathan/hiring-coach/internal/ingestion"
	"github.com/jonathan/hiring-coach/internal/interview"
	"github.com/jonathan/hiring-coach/internal/llm"
	"github.com/jonathan/hiring-coach/internal/lock"
	"github.com/jonathan/hiring-coach/internal/logger"
	"github.com/jonathan/hiring-coach/internal/observability"
	"github.com/jonathan/hiring-coach/internal/queue"
	"github.com/jonathan/hiring-coach/internal/store"
)

// app holds the process-wide dependencies shared by the services.
type app struct {
	cfg    *config.Config
	store  *store.Store
	client llm.Client
	blobs  blob.Store
	broker *queue.Broker

	evaluation *evaluation.Service
	coaching   *coaching.Service
	interview  *interview.Service
}

// newApp connects the store, the collaborator and the optional blob store
// and broker, then builds the services over them.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	client, err := newLLMClient(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	a := &app{cfg: cfg, store: st, client: client}
	if cfg.Blob.Enabled() {
		minio, err := blob.NewMinIO(ctx, cfg.Blob)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.blobs = minio
	}
	if cfg.Queue.Enabled() {
		if a.broker, err = queue.Dial(cfg.Queue); err != nil {
			a.Close()
			return nil, err
		}
	}

	var evalOpts []evaluation.Option
	coachOpts := []coaching.Option{coaching.WithFetcher(jobFetcher(cfg.Fetch))}
	if a.blobs != nil {
		evalOpts = append(evalOpts, evaluation.WithBlobStore(a.blobs))
		coachOpts = append(coachOpts, coaching.WithBlobStore(a.blobs))
	}
	if a.broker != nil {
		evalOpts = append(evalOpts, evaluation.WithPublisher(a.broker))
	}
	if cfg.Auth.Enabled {
		passwords, err := config.NewPasswordConfig(cfg.Auth)
		if err != nil {
			a.Close()
			return nil, err
		}
		coachOpts = append(coachOpts, coaching.WithPasswords(passwords))
	}

	// Coaching and interviews both update users.
	userLocks := &lock.Keyed{}
	coachOpts = append(coachOpts, coaching.WithUserLocks(userLocks))

	a.evaluation = evaluation.NewService(st, evaluation.NewPipeline(client), evalOpts...)
	a.coaching = coaching.NewService(st, coaching.NewAnalyzer(client), coachOpts...)
	a.interview = interview.NewService(st, interview.NewGenerator(client), cfg.Interview, userLocks)
	return a, nil
}

// Close releases every connection the app opened.
func (a *app) Close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close broker")
		}
	}
	if err := a.store.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close store")
	}
	if err := a.client.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close collaborator client")
	}
}

// llmConfig converts the file/env configuration into a client configuration.
// Models not named in cfg keep the provider defaults.
func llmConfig(cfg config.LLMConfig) *llm.Config {
	out := llm.DefaultConfig()
	if cfg.Provider != "" {
		out.Provider = llm.Provider(cfg.Provider)
	}
	if cfg.Temperature > 0 {
		out.Temperature = cfg.Temperature
	}
	if d := cfg.Timeout(); d > 0 {
		out.Timeout = d
	}
	for tier, model := range cfg.Models {
		out = out.WithModel(llm.ModelTier(tier), model)
	}
	return out
}

func newLLMClient(ctx context.Context, cfg config.LLMConfig) (llm.Client, error) {
	client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create collaborator client: %w", err)
	}
	return client, nil
}

// jobFetcher applies the fetch settings to job posting retrieval.
func jobFetcher(cfg config.FetchConfig) coaching.Fetcher {
	return func(ctx context.Context, url string, useBrowser bool) (string, *ingestion.Metadata, error) {
		if cfg.TimeoutSeconds > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
			defer cancel()
		}
		return ingestion.FetchJobPosting(ctx, url, useBrowser || cfg.UseBrowser)
	}
}

// summary returns the verbose-mode printer, or nil when --verbose is off.
func summary(cmd *cobra.Command) *observability.Printer {
	if !verbose {
		return nil
	}
	return observability.NewPrinter(cmd.ErrOrStderr())
}

// readDocument returns the cleaned text of a local PDF, DOCX, text or
// markdown file.
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ingestion.Upload{Data: data, FileName: path}.Content()
}
