package parser

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/xwb1989/sqlparser"
)

// Statement is the grammar-level AST handed to the planner.
type Statement = sqlparser.Statement

var ErrEmptyStatement = errors.New("empty statement")

// ParseError is a grammar-level failure. It is kept apart from planner
// errors so callers can tell malformed text from unsupported shapes.
type ParseError struct {
	SQL string
	Err error
}

func (e *ParseError) Error() string { return "parse: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// Parse parses the first statement in sql. Statements after the first
// ';' are ignored; text with no statement at all is an error.
func Parse(sql string) (Statement, error) {
	stmts := SplitStatements(sql)
	if len(stmts) == 0 {
		return nil, &ParseError{SQL: sql, Err: ErrEmptyStatement}
	}
	if len(stmts) > 1 {
		slog.Debug("parser: ignoring trailing statements", "extra", len(stmts)-1)
	}

	stmt, err := sqlparser.Parse(stmts[0])
	if err != nil {
		return nil, &ParseError{SQL: stmts[0], Err: err}
	}
	if stmt == nil {
		return nil, &ParseError{SQL: stmts[0], Err: ErrEmptyStatement}
	}
	return stmt, nil
}

// SplitStatements splits s on ';' outside quotes, backticks and comments
// ("-- ...", "# ..." up to end of line and "/* ... */"). A backslash escapes
// the next character inside quotes. Comments stay in the piece they belong
// to; pieces holding only blanks and comments are dropped.
func SplitStatements(s string) []string {
	var (
		parts   []string
		cur     strings.Builder
		hasCode bool
	)
	flush := func() {
		if hasCode {
			parts = append(parts, strings.TrimSpace(cur.String()))
		}
		cur.Reset()
		hasCode = false
	}

	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '\'' || r == '"' || r == '`':
			end := skipQuoted(rs, i)
			cur.WriteString(string(rs[i:end]))
			hasCode = true
			i = end - 1
		case r == '-' && i+1 < len(rs) && rs[i+1] == '-', r == '#':
			end := skipUntil(rs, i, "\n")
			cur.WriteString(string(rs[i:end]))
			i = end - 1
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			end := skipUntil(rs, i+2, "*/")
			cur.WriteString(string(rs[i:end]))
			i = end - 1
		case r == ';':
			flush()
		default:
			cur.WriteRune(r)
			if !unicode.IsSpace(r) {
				hasCode = true
			}
		}
	}
	flush()
	return parts
}

// skipQuoted returns the index just past the quoted span opening at rs[i],
// or len(rs) when the quote is never closed.
func skipQuoted(rs []rune, i int) int {
	quote := rs[i]
	for j := i + 1; j < len(rs); j++ {
		switch {
		case rs[j] == '\\' && quote != '`':
			j++
		case rs[j] == quote:
			return j + 1
		}
	}
	return len(rs)
}

// skipUntil returns the index just past the first occurrence of end at or
// after rs[from], or len(rs) when there is none.
func skipUntil(rs []rune, from int, end string) int {
	e := []rune(end)
	for j := from; j+len(e) <= len(rs); j++ {
		if string(rs[j:j+len(e)]) == end {
			return j + len(e)
		}
	}
	return len(rs)
}

// Render returns the canonical text of an AST node.
func Render(node sqlparser.SQLNode) string {
	return sqlparser.String(node)
}
