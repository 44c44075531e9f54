package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tuannm99/novakv/sqlclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr       string
		timeout    time.Duration
		rwTimeout  time.Duration
		oneShotSQL string
		format     string
		rc         replConfig
	)

	dial := func(ctx context.Context) (*sqlclient.Client, error) {
		cli, err := sqlclient.DialContext(ctx, addr, timeout)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		cli.SetRWTimeout(rwTimeout)
		return cli, nil
	}

	cmd := &cobra.Command{
		Use:           "novakv",
		Short:         "Interactive client for novakv-server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			switch format {
			case "table", "json":
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want table|json)", format)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := dial(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = cli.Close() }()

			// one-shot mode
			if strings.TrimSpace(oneShotSQL) != "" {
				res, err := cli.ExecContext(cmd.Context(), oneShotSQL)
				if err != nil {
					return err
				}
				return renderResult(cmd.OutOrStdout(), res, format)
			}

			rc.format = format
			return runREPL(cmd.Context(), cli, cmd.OutOrStdout(), rc)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&addr, "addr", "127.0.0.1:4433", "server address")
	pf.DurationVar(&timeout, "timeout", 3*time.Second, "dial timeout")
	pf.DurationVar(&rwTimeout, "rw-timeout", 10*time.Second, "per-statement read/write timeout (0 disables)")
	pf.StringVarP(&format, "output", "o", "table", "result format (table|json)")

	f := cmd.Flags()
	f.StringVarP(&oneShotSQL, "command", "c", "", "execute one SQL statement and exit")
	f.StringVar(&rc.histPath, "history", defaultHistoryPath(), "history file path")
	f.IntVar(&rc.histMax, "history-max", 2000, "max history lines loaded into memory")

	cmd.AddCommand(newDemoCmd(dial, &format))
	return cmd
}
