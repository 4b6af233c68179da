package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/vkarpenko/ledgerbot/internal/bot"
	"github.com/vkarpenko/ledgerbot/internal/catalog"
	"github.com/vkarpenko/ledgerbot/internal/config"
	"github.com/vkarpenko/ledgerbot/internal/engine"
	"github.com/vkarpenko/ledgerbot/internal/flows"
	"github.com/vkarpenko/ledgerbot/internal/ledger"
	"github.com/vkarpenko/ledgerbot/internal/session"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the Telegram bot",
		Long: `Start the ledger bot: open the database, build the conversation
forms, and begin long-polling Telegram for updates.

Example:
  ledgerbot run --config ledgerbot.yaml
  LEDGERBOT_TOKEN=123:abc ledgerbot run --config ledgerbot.yaml --verbose`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runBot(opts *RunOptions) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	text, err := catalog.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load text catalog", err)
	}

	slog.Info("opening database", "path", cfg.Database.Path)
	led, err := ledger.Open(cfg.Database.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := led.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	sessions, err := buildSessionStore(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build session store", err)
	}

	registry, err := flows.NewRegistry(led, text)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build forms", err)
	}

	eng, err := engine.NewEngine(registry, sessions, engine.Tokens{
		Cancel: text.Tokens.Cancel,
		Back:   text.Tokens.Back,
		Skip:   text.Tokens.Skip,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build engine", err)
	}

	b, err := bot.New(cfg.Telegram.Token, eng, led, text)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create bot", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		sig := <-sigChan
		slog.Info("received signal, shutting down", "signal", sig)
		if stopErr := b.Stop(); stopErr != nil {
			slog.Error("error stopping bot", "error", stopErr)
		}
	}()

	if err := b.Run(); err != nil {
		return WrapExitError(ExitFailure, "bot error", err)
	}

	slog.Info("bot stopped gracefully")
	return nil
}

func buildSessionStore(cfg *config.Config) (session.Store, error) {
	ttl := time.Duration(cfg.Session.TTL)
	if ttl == 0 {
		ttl = session.DefaultTTL
	}

	switch cfg.Session.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Session.Redis.Addr})
		redisOpts := []session.RedisOption{session.WithRedisTTL(ttl)}
		if cfg.Session.Redis.Prefix != "" {
			redisOpts = append(redisOpts, session.WithRedisPrefix(cfg.Session.Redis.Prefix))
		}
		return session.NewRedisStore(client, redisOpts...), nil
	default:
		return session.NewMemoryStore(session.WithMemoryTTL(ttl)), nil
	}
}
