package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amrixahmad/questionsmith/internal/config"
	"github.com/amrixahmad/questionsmith/internal/events"
	"github.com/amrixahmad/questionsmith/internal/llm"
	"github.com/amrixahmad/questionsmith/internal/logging"
	"github.com/amrixahmad/questionsmith/internal/quizgen"
	"github.com/amrixahmad/questionsmith/internal/service"
	"github.com/amrixahmad/questionsmith/internal/store"
)

// app holds the dependencies a command runs with.
type app struct {
	cfg    config.Config
	logger logging.Logger
	store  *store.Store
	pub    events.Publisher
	svc    *service.Services
}

type appOptions struct {
	// withLLM builds a generator. Without a configured provider the
	// command still runs but generation is unavailable.
	withLLM bool
}

// newApp loads configuration, opens the store and wires services.
func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	driver, dsn, err := resolveDB(cmd, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	pub, err := events.NewFromConfig(cfg.Events, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("events: %w", err)
	}

	var gen quizgen.Generator
	if opts.withLLM {
		provider, err := llm.NewProvider(cmd.Context(), cfg.LLM, logger, st.EventRepo())
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Quiz generation will be unavailable.")
		} else {
			gen = quizgen.New(provider, quizgen.DefaultConfig())
		}
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  st,
		pub:    pub,
		svc:    service.New(st, gen, pub, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.pub.Close(); err != nil {
		a.logger.Warn("close event publisher", "error", err)
	}
	a.store.Close()
}
