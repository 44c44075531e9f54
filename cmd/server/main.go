package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tuannm99/novakv"
	"github.com/tuannm99/novakv/internal"
	"github.com/tuannm99/novakv/internal/sql/executor"
	"github.com/tuannm99/novakv/internal/sql/planner"
	"github.com/tuannm99/novakv/server/novakvwire"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := internal.NewViper()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "novakv-server",
		Short: "Serve a single novakv table over TCP",
		Long: `novakv-server keeps one ordered in-memory table and answers SQL
INSERT and SELECT requests sent as length-prefixed JSON frames.

Settings come from flags, NOVAKV_* environment variables, an optional
YAML file and built-in defaults, in that order.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := internal.LoadConfigFrom(v, cfgPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "YAML config file")
	f.String("addr", "", "listen address (default 127.0.0.1:4433)")
	f.Int("read-limit", 0, "rows returned by SELECT (default 20)")
	f.Duration("idle-timeout", 0, "close connections idle for this long (0 disables)")
	f.String("log-level", "", "debug|info|warn|error")
	f.String("log-format", "", "text|json")

	bindFlags(v, f, map[string]string{
		"server.addr":         "addr",
		"engine.read_limit":   "read-limit",
		"server.idle_timeout": "idle-timeout",
		"log.level":           "log-level",
		"log.format":          "log-format",
	})
	return cmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func serve(ctx context.Context, cfg *internal.NovaKVConfig, logOut io.Writer) error {
	log := cfg.NewLogger(logOut)

	cols, err := cfg.TableColumns()
	if err != nil {
		return err
	}
	db, err := novakv.Open(cfg.Table.Name, cols)
	if err != nil {
		return fmt.Errorf("open table: %w", err)
	}
	defer func() { _ = db.Close() }()

	meta := db.Meta()
	log.Info("table ready",
		"table", meta.Name,
		"columns", len(meta.Columns),
		"read_limit", cfg.Engine.ReadLimit,
	)

	plans := planner.NewCache(cfg.Engine.PlanCacheSize)
	ex := executor.NewExecutor(db,
		executor.WithReadLimit(cfg.Engine.ReadLimit),
		executor.WithPlanCache(plans),
		executor.WithLogger(log),
	)

	err = novakvwire.Run(ctx, novakvwire.ServerConfig{
		Addr:         cfg.Server.Addr,
		MaxFrameSize: cfg.Server.MaxFrameSize,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Logger:       log,
	}, ex)

	meta = db.Meta()
	hits, misses := plans.Stats()
	log.Info("shutting down",
		"table", meta.Name,
		"rows", meta.Rows,
		"plan_cache_hits", hits,
		"plan_cache_misses", misses,
		"err", err,
	)
	return err
}
