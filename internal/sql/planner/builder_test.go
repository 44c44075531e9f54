package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novakv/internal/record"
	"github.com/tuannm99/novakv/internal/sql/parser"
)

func mustParse(t *testing.T, sql string) Command {
	t.Helper()
	cmd, err := Parse(sql)
	require.NoError(t, err, "sql=%q", sql)
	return cmd
}

func requireUnsupported(t *testing.T, sql string) {
	t.Helper()
	_, err := Parse(sql)
	require.Error(t, err, "sql=%q", sql)

	var ue *UnsupportedError
	require.True(t, errors.As(err, &ue), "sql=%q: want *UnsupportedError, got %T (%v)", sql, err, err)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParse_SelectColumns(t *testing.T) {
	cmd := mustParse(t, "SELECT a, b FROM t")

	s, ok := cmd.(*Select)
	require.True(t, ok, "want *Select, got %T", cmd)
	assert.Equal(t, &Select{Name: "t", Columns: []string{"a", "b"}}, s)
	assert.False(t, s.IsWildcard())
}

func TestParse_SelectStar(t *testing.T) {
	cmd := mustParse(t, "SELECT * FROM t;")

	s, ok := cmd.(*Select)
	require.True(t, ok, "want *Select, got %T", cmd)
	assert.Equal(t, "t", s.Name)
	assert.Equal(t, []string{"*"}, s.Columns)
	assert.True(t, s.IsWildcard())
	assert.Equal(t, KindSelect, s.Kind())
}

func TestParse_SelectRejectsSeveralTables(t *testing.T) {
	requireUnsupported(t, "SELECT * FROM a, b")
	requireUnsupported(t, "SELECT * FROM a JOIN b ON a.id = b.id")
}

func TestParse_SelectWithoutTable(t *testing.T) {
	requireUnsupported(t, "SELECT 1")
	requireUnsupported(t, "SELECT a")
	requireUnsupported(t, "SELECT 'x';")
}

func TestParse_SelectRejectsSubqueryAndUnion(t *testing.T) {
	requireUnsupported(t, "SELECT * FROM (SELECT * FROM t) AS x")
	requireUnsupported(t, "SELECT a FROM t UNION SELECT a FROM u")
}

func TestParse_Insert(t *testing.T) {
	cmd := mustParse(t, "INSERT INTO t (a,b) VALUES ('x', 5)")

	ins, ok := cmd.(*Insert)
	require.True(t, ok, "want *Insert, got %T", cmd)
	assert.Equal(t, &Insert{
		Name:    "t",
		Columns: []string{"a", "b"},
		Values:  []record.Data{record.StringData("x"), record.IntegerData(5)},
	}, ins)
}

func TestParse_InsertNegativeAndQuotedComma(t *testing.T) {
	cmd := mustParse(t, "INSERT INTO default_table (id, counter) VALUES('a,b', -42);")

	ins := cmd.(*Insert)
	assert.Equal(t, "default_table", ins.Name)
	assert.Equal(t, []record.Data{record.StringData("a,b"), record.IntegerData(-42)}, ins.Values)
}

func TestParse_InsertOnlyFirstRow(t *testing.T) {
	cmd := mustParse(t, "INSERT INTO t (a) VALUES ('one'), ('two')")

	ins := cmd.(*Insert)
	assert.Equal(t, []record.Data{record.StringData("one")}, ins.Values)
}

func TestParse_InsertWithoutColumnList(t *testing.T) {
	cmd := mustParse(t, "INSERT INTO t VALUES ('k', 1)")

	ins := cmd.(*Insert)
	assert.Empty(t, ins.Columns)
	assert.Len(t, ins.Values, 2)
}

func TestParse_InsertRejectsNonLiterals(t *testing.T) {
	for _, sql := range []string{
		"INSERT INTO t (a) VALUES (foo())",
		"INSERT INTO t (a) VALUES (b)",
		"INSERT INTO t (a) VALUES (NULL)",
		"INSERT INTO t (a) VALUES (1 + 2)",
		"INSERT INTO t (a) VALUES (1.5)",
		"INSERT INTO t (a) VALUES (99999999999999999999)",
	} {
		requireUnsupported(t, sql)
	}
}

func TestParse_InsertRejectsSelectSource(t *testing.T) {
	requireUnsupported(t, "INSERT INTO t (a) SELECT a FROM u")
}

func TestParse_ReplaceUnsupported(t *testing.T) {
	requireUnsupported(t, "REPLACE INTO t (a) VALUES ('x')")
}

func TestParse_CreateTablePlaceholder(t *testing.T) {
	cmd := mustParse(t, "CREATE TABLE awesome_table (id varchar(255) not null primary key, counter integer not null)")

	ct, ok := cmd.(*CreateTable)
	require.True(t, ok, "want *CreateTable, got %T", cmd)
	assert.Empty(t, ct.Name)
	assert.Empty(t, ct.Columns)
	assert.Equal(t, KindCreateTable, ct.Kind())
}

func TestParse_UpdatePlaceholder(t *testing.T) {
	cmd := mustParse(t, "UPDATE t SET counter = 1")

	u, ok := cmd.(*Update)
	require.True(t, ok, "want *Update, got %T", cmd)
	assert.Empty(t, u.Name)
	assert.Equal(t, KindUpdate, u.Kind())
}

func TestParse_OtherStatementsUnsupported(t *testing.T) {
	requireUnsupported(t, "DELETE FROM t")
	requireUnsupported(t, "DROP TABLE t")
}

func TestParse_GrammarErrorIsParseError(t *testing.T) {
	_, err := Parse("INSERT INTO")
	require.Error(t, err)

	var pe *parser.ParseError
	require.True(t, errors.As(err, &pe))
	assert.NotErrorIs(t, err, ErrUnsupported)

	_, err = Parse("")
	require.ErrorIs(t, err, parser.ErrEmptyStatement)
}

func TestBuild_Nil(t *testing.T) {
	_, err := Build(nil)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestCommand_String(t *testing.T) {
	ins := &Insert{Name: "t", Columns: []string{"a"}, Values: []record.Data{record.StringData("x")}}
	assert.Equal(t, `Insert{name: "t", columns: ["a"], values: [String("x")]}`, ins.String())
	assert.Equal(t, `CreateTable{name: "", columns: []}`, (&CreateTable{}).String())
	assert.Equal(t, `Update{name: "", columns: []}`, (&Update{}).String())
}
