package planner

import (
	"fmt"
	"strings"

	"github.com/tuannm99/novakv/internal/record"
)

// Command is one client request. The set of implementations is closed:
// *CreateTable, *Select, *Insert and *Update.
type Command interface {
	commandNode()
	Kind() string
	TableName() string
	fmt.Stringer
}

const (
	KindCreateTable = "create_table"
	KindSelect      = "select"
	KindInsert      = "insert"
	KindUpdate      = "update"
)

// WildcardColumn is the projection text of "*".
const WildcardColumn = "*"

// ----- CREATE TABLE -----

// CreateTable is recognized but carries no definition yet; it is never
// executed.
type CreateTable struct {
	Name    string
	Columns []record.Schema
}

func (*CreateTable) commandNode()        {}
func (*CreateTable) Kind() string        { return KindCreateTable }
func (c *CreateTable) TableName() string { return c.Name }
func (c *CreateTable) String() string {
	parts := make([]string, len(c.Columns))
	for i, s := range c.Columns {
		parts[i] = s.String()
	}
	return fmt.Sprintf("CreateTable{name: %q, columns: [%s]}", c.Name, strings.Join(parts, ", "))
}

// ----- SELECT -----

type Select struct {
	Name    string
	Columns []string
}

func (*Select) commandNode()        {}
func (*Select) Kind() string        { return KindSelect }
func (s *Select) TableName() string { return s.Name }
func (s *Select) String() string {
	return fmt.Sprintf("Select{name: %q, columns: %q}", s.Name, s.Columns)
}

// IsWildcard reports whether the projection selects every column.
func (s *Select) IsWildcard() bool {
	for _, c := range s.Columns {
		if c == WildcardColumn {
			return true
		}
	}
	return false
}

// ----- INSERT -----

type Insert struct {
	Name    string
	Columns []string
	Values  []record.Data
}

func (*Insert) commandNode()        {}
func (*Insert) Kind() string        { return KindInsert }
func (i *Insert) TableName() string { return i.Name }
func (i *Insert) String() string {
	vals := make([]string, len(i.Values))
	for k, v := range i.Values {
		vals[k] = v.String()
	}
	return fmt.Sprintf("Insert{name: %q, columns: %q, values: [%s]}", i.Name, i.Columns, strings.Join(vals, ", "))
}

// ----- UPDATE -----

// Update is recognized but carries no assignments yet; it is never
// executed.
type Update struct {
	Name    string
	Columns []string
}

func (*Update) commandNode()        {}
func (*Update) Kind() string        { return KindUpdate }
func (u *Update) TableName() string { return u.Name }
func (u *Update) String() string {
	return fmt.Sprintf("Update{name: %q, columns: %q}", u.Name, u.Columns)
}
