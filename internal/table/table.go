package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tuannm99/novakv/internal/record"
	"github.com/tuannm99/novakv/internal/store"
)

var ErrInvalidDefinition = errors.New("table: invalid definition")

// Table is a fixed column layout over one OrderedStore. Every row accepted
// into the store has one value per column, each compatible with its column.
type Table struct {
	name    string
	columns []record.Column
	schema  []record.Schema

	rows *store.OrderedStore
}

func New(name string, columns []record.Column) (*Table, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty table name", ErrInvalidDefinition)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: table %q has no columns", ErrInvalidDefinition, name)
	}

	seen := make(map[string]struct{}, len(columns))
	schema := make([]record.Schema, 0, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: column %d has no name", ErrInvalidDefinition, i)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidDefinition, c.Name)
		}
		seen[c.Name] = struct{}{}

		switch c.Schema.Kind {
		case record.SchemaBoundedString:
			if c.Schema.MaxLen < 0 {
				return nil, fmt.Errorf("%w: column %q has negative length", ErrInvalidDefinition, c.Name)
			}
		case record.SchemaInteger:
		case record.SchemaWildcard:
			return nil, fmt.Errorf("%w: column %q cannot be a wildcard", ErrInvalidDefinition, c.Name)
		default:
			return nil, fmt.Errorf("%w: column %q has unknown type %s", ErrInvalidDefinition, c.Name, c.Schema.Kind)
		}
		schema = append(schema, c.Schema)
	}

	cols := make([]record.Column, len(columns))
	copy(cols, columns)

	return &Table{
		name:    name,
		columns: cols,
		schema:  schema,
		rows:    store.New(),
	}, nil
}

func (t *Table) Name() string { return t.name }

func (t *Table) Columns() []record.Column {
	out := make([]record.Column, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) Schema() []record.Schema {
	out := make([]record.Schema, len(t.schema))
	copy(out, t.schema)
	return out
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// Len returns the number of stored keys.
func (t *Table) Len() int { return t.rows.Len() }

// Insert validates values against the schema and upserts them under key.
// Nothing is written unless every value is accepted.
func (t *Table) Insert(key string, values []record.Data) error {
	if err := t.validate(values); err != nil {
		return err
	}
	t.rows.Insert(key, values)
	return nil
}

func (t *Table) validate(values []record.Data) error {
	if len(values) != len(t.schema) {
		return &IncompatibleSchemaError{
			Column: -1,
			Reason: fmt.Sprintf("expected %d values, got %d", len(t.schema), len(values)),
		}
	}
	for i, v := range values {
		if reason := incompatibility(v, t.schema[i]); reason != "" {
			return &IncompatibleSchemaError{Column: i, Name: t.columns[i].Name, Reason: reason}
		}
	}
	return nil
}

// incompatibility returns why v cannot be stored in a column of type s,
// or "" when it can.
func incompatibility(v record.Data, s record.Schema) string {
	switch s.Kind {
	case record.SchemaBoundedString:
		if v.Kind != record.KindString {
			return fmt.Sprintf("%s does not fit %s", v, s)
		}
		if n := v.Len(); n > s.MaxLen {
			return fmt.Sprintf("string of length %d exceeds %s", n, s)
		}
		return ""
	case record.SchemaInteger:
		if v.Kind != record.KindInteger {
			return fmt.Sprintf("%s does not fit %s", v, s)
		}
		return ""
	case record.SchemaWildcard:
		return "wildcard is not a column type"
	default:
		return fmt.Sprintf("unknown column type %s", s.Kind)
	}
}

// ReadAll returns the rows of the first limit keys in ascending key order,
// concatenated into one flat sequence.
func (t *Table) ReadAll(limit int) []record.Data {
	return t.rows.ReadAll(limit)
}

// Rows is ReadAll without the flattening: one slice per stored row.
func (t *Table) Rows(limit int) [][]record.Data {
	out := [][]record.Data{}
	t.rows.Scan(limit, func(_ string, row []record.Data) bool {
		out = append(out, row)
		return true
	})
	return out
}
