package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/cs-buddy/internal/config"
	"github.com/zhouzirui/cs-buddy/internal/handler"
	"github.com/zhouzirui/cs-buddy/internal/model/persona"
	"github.com/zhouzirui/cs-buddy/internal/service/ai"
	"github.com/zhouzirui/cs-buddy/internal/service/chat"
)

type options struct {
	envFile  string
	addr     string
	logLevel string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "cs-buddy",
		Short:         "Serve the CS Buddy chat widget",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := run(ctx, opts); err != nil {
				log.Error().Err(err).Msg("cs-buddy exited")
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address, overrides PORT")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	setupLogging(zerolog.InfoLevel)

	if err := godotenv.Load(opts.envFile); err != nil {
		log.Warn().Err(err).Str("file", opts.envFile).Msg("failed to load .env file, continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if opts.addr != "" {
		if cfg.Server, err = config.ParseAddr(opts.addr); err != nil {
			return err
		}
	}
	if opts.logLevel != "" {
		if cfg.Log.Level, err = config.ParseLogLevel(opts.logLevel); err != nil {
			return err
		}
	}
	setupLogging(cfg.Log.Level)

	personaStore := persona.NewMemoryStore(persona.Seed())
	active, ok := persona.Resolve(personaStore, cfg.AI.PersonaID)
	if !ok {
		return errors.Errorf("unknown PERSONA_ID %q", cfg.AI.PersonaID)
	}

	deps := handler.Deps{
		Personas: personaStore,
		Persona:  active,
		Store:    chat.NewStore(cfg.Session.IdleTimeout, cfg.Session.SweepInterval),
	}

	backend, err := ai.NewBackend(ctx, cfg.AI)
	if err != nil {
		deps.ConfigErr = err
		log.Error().Err(err).Str("provider", string(cfg.AI.Provider)).Msg("chat backend unavailable, serving configuration error")
	} else {
		deps.Controller = chat.NewController(backend, active, ai.NewPersonaPromptManager())
		log.Info().Str("backend", backend.Name()).Str("persona", active.ID).Msg("chat backend initialized")
	}

	deps.Store.StartEvictionLoop(ctx)

	return startServer(ctx, cfg.Server, handler.NewRouter(deps))
}

func setupLogging(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("CS Buddy listening")
	if err := runServer(ctx, srv); err != nil {
		return errors.Wrap(err, "server error")
	}
	return nil
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
