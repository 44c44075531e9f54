package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tuannm99/novakv/internal/engine"
	"github.com/tuannm99/novakv/internal/sql/planner"
	"github.com/tuannm99/novakv/internal/table"
)

// DefaultReadLimit bounds every SELECT; clients cannot page.
const DefaultReadLimit = 20

type exchangeState uint8

const (
	stateAwaitingRequest exchangeState = iota
	stateParsed
	stateRouted
	stateResponded
)

func (s exchangeState) String() string {
	switch s {
	case stateAwaitingRequest:
		return "awaiting_request"
	case stateParsed:
		return "parsed"
	case stateRouted:
		return "routed"
	case stateResponded:
		return "responded"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Executor runs one request at a time against the shared table. It keeps
// no state between requests and is safe for concurrent use.
type Executor struct {
	DB engine.DatabaseOperation

	readLimit int
	plans     *planner.Cache
	log       *slog.Logger
}

type Option func(*Executor)

// WithReadLimit sets the number of keys returned by SELECT.
func WithReadLimit(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.readLimit = n
		}
	}
}

// WithPlanCache reuses parsed commands for repeated SQL text.
func WithPlanCache(c *planner.Cache) Option {
	return func(e *Executor) {
		e.plans = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

func NewExecutor(db engine.DatabaseOperation, opts ...Option) *Executor {
	e := &Executor{
		DB:        db,
		readLimit: DefaultReadLimit,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) ReadLimit() int { return e.readLimit }

// ExecSQL is the top-level entry: SQL string -> Result.
func (e *Executor) ExecSQL(ctx context.Context, sql string) (*Result, error) {
	state := stateAwaitingRequest

	cmd, err := e.plans.Parse(sql)
	if err != nil {
		e.log.DebugContext(ctx, "executor: unexpected query", "from", state, "err", err)
		return nil, err
	}
	state = stateParsed
	e.log.DebugContext(ctx, "executor: parsed", "state", state, "command", cmd.Kind())

	res, err := e.Execute(ctx, cmd)
	e.log.DebugContext(ctx, "executor: responded",
		"state", stateResponded,
		"command", cmd.Kind(),
		"ok", err == nil,
	)
	return res, err
}

// Execute routes an already parsed command.
func (e *Executor) Execute(ctx context.Context, cmd planner.Command) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.log.DebugContext(ctx, "executor: routed", "state", stateRouted, "command", fmt.Sprintf("%T", cmd))

	switch c := cmd.(type) {
	case *planner.Select:
		return e.execSelect(c)
	case *planner.Insert:
		return e.execInsert(c)
	case *planner.CreateTable:
		return e.echo(c), nil
	case *planner.Update:
		return e.echo(c), nil
	default:
		return nil, routingErr("dispatch", fmt.Errorf("%w %T", ErrUnknownCommand, cmd))
	}
}

func (e *Executor) execSelect(s *planner.Select) (*Result, error) {
	var res *Result
	err := e.DB.View(func(tbl *table.Table) error {
		if err := checkTable(tbl, s.Kind(), s.Name); err != nil {
			return err
		}

		idx, names, err := projection(tbl, s)
		if err != nil {
			return err
		}

		rows := tbl.Rows(e.readLimit)
		out := make([][]any, 0, len(rows))
		for _, row := range rows {
			vals := make([]any, len(idx))
			for i, j := range idx {
				vals[i] = row[j].Value()
			}
			out = append(out, vals)
		}

		res = &Result{
			Kind:         s.Kind(),
			Columns:      names,
			Rows:         out,
			AffectedRows: int64(len(out)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// projection resolves the selected column texts to positions in the row.
func projection(tbl *table.Table, s *planner.Select) ([]int, []string, error) {
	if s.IsWildcard() || len(s.Columns) == 0 {
		names := tbl.ColumnNames()
		idx := make([]int, len(names))
		for i := range idx {
			idx[i] = i
		}
		return idx, names, nil
	}

	idx := make([]int, 0, len(s.Columns))
	for _, col := range s.Columns {
		name := col
		// accept "<table>.<column>" for this table
		if q, c, ok := strings.Cut(col, "."); ok && strings.EqualFold(q, tbl.Name()) {
			name = c
		}
		i := tbl.ColumnIndex(name)
		if i < 0 {
			return nil, nil, routingErr(s.Kind(), fmt.Errorf("%w %q", ErrUnknownColumn, col))
		}
		idx = append(idx, i)
	}
	return idx, s.Columns, nil
}

func (e *Executor) execInsert(ins *planner.Insert) (*Result, error) {
	if len(ins.Values) == 0 {
		return nil, routingErr(ins.Kind(), ErrEmptyValues)
	}
	key := ins.Values[0]
	if !key.IsString() {
		return nil, routingErr(ins.Kind(), fmt.Errorf("%w, got %s", ErrNonStringKey, key))
	}
	if len(ins.Columns) > 0 && len(ins.Columns) != len(ins.Values) {
		return nil, routingErr(ins.Kind(), fmt.Errorf("%w: %d columns, %d values",
			ErrColumnMismatch, len(ins.Columns), len(ins.Values)))
	}

	err := e.DB.Update(func(tbl *table.Table) error {
		if err := checkTable(tbl, ins.Kind(), ins.Name); err != nil {
			return err
		}
		// values are positional, so named columns must follow the table order
		for i, col := range ins.Columns {
			if tbl.ColumnIndex(col) != i {
				return routingErr(ins.Kind(), fmt.Errorf("%w: column %d is %q, want %q",
					ErrColumnMismatch, i, col, columnName(tbl, i)))
			}
		}
		return tbl.Insert(key.Str, ins.Values)
	})
	if err != nil {
		return nil, err
	}
	return &Result{Kind: ins.Kind(), AffectedRows: 1}, nil
}

// echo answers commands that are recognized but not executed yet.
func (e *Executor) echo(cmd planner.Command) *Result {
	return &Result{
		Kind:    cmd.Kind(),
		Message: fmt.Sprintf("query: %s (not executed)", cmd),
	}
}

func checkTable(tbl *table.Table, kind, name string) error {
	if !strings.EqualFold(name, tbl.Name()) {
		return routingErr(kind, fmt.Errorf("%w %q", ErrUnknownTable, name))
	}
	return nil
}

func columnName(tbl *table.Table, i int) string {
	names := tbl.ColumnNames()
	if i < len(names) {
		return names[i]
	}
	return ""
}
