// Command lendingd serves the lending catalog REST API over a SQLite
// database with an in-process cache in front of it.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-lending-catalog/cache"
	"github.com/goliatone/go-lending-catalog/internal/httpapi"
	"github.com/goliatone/go-lending-catalog/lending"
	"github.com/goliatone/go-lending-catalog/pkg/di"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	addr          string
	dbPath        string
	memory        bool
	jwtSecret     string
	tokenTTL      time.Duration
	cacheCapacity int
	cacheTTL      time.Duration
	logJSON       bool

	noPossessionCheck bool
	noClamp           bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:           "lendingd",
		Short:         "Serve the library lending catalog API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&flags.dbPath, "db", "lending.db", "path to the SQLite database file")
	cmd.Flags().BoolVar(&flags.memory, "memory", false, "use the in-memory store instead of SQLite")
	cmd.Flags().StringVar(&flags.jwtSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "secret for signing bearer tokens; empty disables auth")
	cmd.Flags().DurationVar(&flags.tokenTTL, "token-ttl", 24*time.Hour, "issued token lifetime")
	cmd.Flags().IntVar(&flags.cacheCapacity, "cache-capacity", 0, "cache entry capacity; 0 uses the default")
	cmd.Flags().DurationVar(&flags.cacheTTL, "cache-ttl", 0, "cache entry lifetime; 0 uses the default")
	cmd.Flags().BoolVar(&flags.logJSON, "log-json", false, "emit JSON logs instead of text")
	cmd.Flags().BoolVar(&flags.noPossessionCheck, "no-possession-check", false, "accept returns from students not holding the book")
	cmd.Flags().BoolVar(&flags.noClamp, "no-clamp", false, "do not cap availability at quantity on return")

	return cmd
}

func run(ctx context.Context, flags serveFlags) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger(flags.logJSON)

	cfg := cache.DefaultConfig()
	if flags.cacheCapacity > 0 {
		cfg.Capacity = flags.cacheCapacity
	}
	if flags.cacheTTL > 0 {
		cfg.TTL = flags.cacheTTL
	}

	opts := lending.Options{
		RequirePossession: !flags.noPossessionCheck,
		ClampToQuantity:   !flags.noClamp,
	}

	var (
		container *di.Container
		err       error
	)
	if flags.memory {
		container, err = di.NewMemory(cfg, opts, log)
	} else {
		container, err = di.NewSQLite(ctx, flags.dbPath, cfg, opts, log)
	}
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	defer container.Close()

	if flags.jwtSecret == "" {
		log.Warn("no JWT secret configured, mutations run unauthenticated")
	}

	server := httpapi.New(container.Service(), httpapi.Config{
		JWTSecret: flags.jwtSecret,
		TokenTTL:  flags.tokenTTL,
	}, log)
	e := server.Echo()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", flags.addr, "store", storeName(flags.memory))
		errc <- e.Start(flags.addr)
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(json bool) *slog.Logger {
	if json {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func storeName(memory bool) string {
	if memory {
		return "memory"
	}
	return "sqlite"
}
