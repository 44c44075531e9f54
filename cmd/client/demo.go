package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tuannm99/novakv/sqlclient"
)

type demoOptions struct {
	iterations int
	interval   time.Duration
	table      string
}

func newDemoCmd(dial func(context.Context) (*sqlclient.Client, error), format *string) *cobra.Command {
	opts := demoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Alternate INSERT and SELECT against the server",
		Long: `demo inserts key_0, key_1, ... into the table and reads the table
back after every insert, printing each result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := dial(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = cli.Close() }()
			return runDemo(cmd.Context(), cli, cmd.OutOrStdout(), opts, *format)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.iterations, "iterations", "n", 10, "number of INSERT/SELECT pairs (0 runs until interrupted)")
	f.DurationVar(&opts.interval, "interval", 0, "pause between pairs")
	f.StringVar(&opts.table, "table", "default_table", "table name")
	return cmd
}

func runDemo(ctx context.Context, cli *sqlclient.Client, w io.Writer, opts demoOptions, format string) error {
	for i := 0; opts.iterations <= 0 || i < opts.iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil
		}

		stmts := []string{
			fmt.Sprintf("INSERT INTO %s (id, counter) VALUES('key_%d', 0);", opts.table, i),
			fmt.Sprintf("SELECT * FROM %s;", opts.table),
		}
		for _, sql := range stmts {
			_, _ = fmt.Fprintf(w, "> %s\n", sql)
			res, err := cli.ExecContext(ctx, sql)
			if err != nil {
				return fmt.Errorf("%s: %w", sql, err)
			}
			if err := renderResult(w, res, format); err != nil {
				return err
			}
		}

		if opts.interval > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(opts.interval):
			}
		}
	}
	return nil
}
