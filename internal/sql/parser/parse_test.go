package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xwb1989/sqlparser"
)

func TestParse_Select(t *testing.T) {
	stmt, err := Parse("SELECT * FROM default_table;")
	require.NoError(t, err)

	_, ok := stmt.(*sqlparser.Select)
	require.True(t, ok, "want *sqlparser.Select, got %T", stmt)
}

func TestParse_SemicolonOptional(t *testing.T) {
	stmt, err := Parse("SELECT a FROM t")
	require.NoError(t, err)
	assert.IsType(t, &sqlparser.Select{}, stmt)
}

func TestParse_EmptyInput(t *testing.T) {
	for _, sql := range []string{"", "   ", ";", " ; ;\n;"} {
		_, err := Parse(sql)
		require.Error(t, err, "sql=%q", sql)

		var pe *ParseError
		require.True(t, errors.As(err, &pe), "sql=%q", sql)
		assert.ErrorIs(t, err, ErrEmptyStatement)
	}
}

func TestParse_GrammarError(t *testing.T) {
	_, err := Parse("SELEC * FROM t;")
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.NotErrorIs(t, err, ErrEmptyStatement)
	assert.Contains(t, err.Error(), "parse:")
}

func TestParse_OnlyFirstStatement(t *testing.T) {
	stmt, err := Parse("INSERT INTO t (a) VALUES ('x'); this is not sql at all")
	require.NoError(t, err)
	assert.IsType(t, &sqlparser.Insert{}, stmt)
}

func TestSplitStatements(t *testing.T) {
	got := SplitStatements("SELECT 1; SELECT 2 ;\n\n; ")
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, got)
}

func TestSplitStatements_RespectsQuotes(t *testing.T) {
	got := SplitStatements(`INSERT INTO t (a) VALUES ('a;b'); SELECT "x;y" FROM t`)
	assert.Equal(t, []string{
		`INSERT INTO t (a) VALUES ('a;b')`,
		`SELECT "x;y" FROM t`,
	}, got)

	got = SplitStatements(`INSERT INTO t (a) VALUES ('it\'s;fine')`)
	assert.Equal(t, []string{`INSERT INTO t (a) VALUES ('it\'s;fine')`}, got)

	got = SplitStatements("SELECT `a;b` FROM t; SELECT 2")
	assert.Len(t, got, 2)
}

func TestSplitStatements_SkipsComments(t *testing.T) {
	assert.Equal(t, []string{"/* ; */ SELECT * FROM t"}, SplitStatements("/* ; */ SELECT * FROM t"))

	got := SplitStatements("SELECT * FROM t -- a;b\n; # c;d\nSELECT 2")
	assert.Equal(t, []string{"SELECT * FROM t -- a;b", "# c;d\nSELECT 2"}, got)

	got = SplitStatements("SELECT '--;' FROM t; SELECT 2 /* unterminated ;")
	assert.Equal(t, []string{"SELECT '--;' FROM t", "SELECT 2 /* unterminated ;"}, got)

	assert.Empty(t, SplitStatements("-- only a comment;\n/* and ; another */"))
}

func TestParse_LeadingComment(t *testing.T) {
	stmt, err := Parse("/* ; */ SELECT * FROM t")
	require.NoError(t, err)
	assert.IsType(t, &sqlparser.Select{}, stmt)

	stmt, err = Parse("-- note; here\nINSERT INTO t (a) VALUES ('x');")
	require.NoError(t, err)
	assert.IsType(t, &sqlparser.Insert{}, stmt)

	_, err = Parse("-- nothing; to run")
	assert.ErrorIs(t, err, ErrEmptyStatement)
}

func TestSplitStatements_Empty(t *testing.T) {
	assert.Empty(t, SplitStatements(""))
	assert.Empty(t, SplitStatements(" ;; "))
}

func TestRender(t *testing.T) {
	stmt, err := Parse("select * from t")
	require.NoError(t, err)

	sel := stmt.(*sqlparser.Select)
	assert.Equal(t, "*", Render(sel.SelectExprs[0]))
}
