package planner

import (
	"strconv"

	"github.com/xwb1989/sqlparser"

	"github.com/tuannm99/novakv/internal/record"
	"github.com/tuannm99/novakv/internal/sql/parser"
)

// Parse turns SQL text into a Command. Grammar failures come back as
// *parser.ParseError, unsupported shapes as *UnsupportedError.
func Parse(sql string) (Command, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	return Build(stmt)
}

// Build maps a parsed statement onto a Command.
func Build(stmt parser.Statement) (Command, error) {
	switch s := stmt.(type) {
	case *sqlparser.Select:
		return buildSelect(s)
	case sqlparser.SelectStatement:
		return nil, unsupported("query isn't a Select")
	case *sqlparser.Insert:
		return buildInsert(s)
	case *sqlparser.DDL:
		if s.Action != sqlparser.CreateStr {
			return nil, unsupported("DDL action %q", s.Action)
		}
		// column extraction is not implemented; only the kind is kept
		return &CreateTable{}, nil
	case *sqlparser.Update:
		return &Update{}, nil
	case nil:
		return nil, unsupported("no statement")
	default:
		return nil, unsupported("unsupported query %T", stmt)
	}
}

func buildSelect(s *sqlparser.Select) (Command, error) {
	switch len(s.From) {
	case 0:
		return nil, unsupported("select query has no table")
	case 1:
	default:
		return nil, unsupported("select query should contain exactly 1 table, got %d", len(s.From))
	}

	name, err := tableName(s.From[0])
	if err != nil {
		return nil, err
	}

	cols := make([]string, 0, len(s.SelectExprs))
	for _, expr := range s.SelectExprs {
		cols = append(cols, parser.Render(expr))
	}

	return &Select{Name: name, Columns: cols}, nil
}

func tableName(te sqlparser.TableExpr) (string, error) {
	aliased, ok := te.(*sqlparser.AliasedTableExpr)
	if !ok {
		return "", unsupported("joins are not supported: %s", parser.Render(te))
	}
	tn, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return "", unsupported("select source must be a table: %s", parser.Render(aliased.Expr))
	}
	// the grammar fills in "dual" when FROM is missing
	if tn.IsEmpty() || (tn.Qualifier.IsEmpty() && tn.Name.String() == "dual") {
		return "", unsupported("select query has no table")
	}
	return parser.Render(tn), nil
}

func buildInsert(s *sqlparser.Insert) (Command, error) {
	if s.Action != sqlparser.InsertStr {
		return nil, unsupported("%s is not supported", s.Action)
	}

	rows, ok := s.Rows.(sqlparser.Values)
	if !ok {
		return nil, unsupported("insert source must be VALUES, got %s", parser.Render(s.Rows))
	}
	if len(rows) == 0 {
		return nil, unsupported("insert has no VALUES row")
	}

	cols := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		cols = append(cols, c.String())
	}

	// only the first row is read; multi-row VALUES is not supported
	first := rows[0]
	values := make([]record.Data, 0, len(first))
	for _, expr := range first {
		v, err := literal(expr)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return &Insert{
		Name:    parser.Render(s.Table),
		Columns: cols,
		Values:  values,
	}, nil
}

// literal accepts quoted strings and integer literals only.
func literal(expr sqlparser.Expr) (record.Data, error) {
	if neg, ok := negatedInt(expr); ok {
		expr = neg
	}

	val, ok := expr.(*sqlparser.SQLVal)
	if !ok {
		return record.Data{}, unsupported("value %s is not a string or number literal", parser.Render(expr))
	}

	switch val.Type {
	case sqlparser.StrVal:
		return record.StringData(string(val.Val)), nil
	case sqlparser.IntVal:
		n, err := strconv.ParseInt(string(val.Val), 10, 64)
		if err != nil {
			return record.Data{}, unsupported("integer literal %s: %v", val.Val, err)
		}
		return record.IntegerData(n), nil
	default:
		return record.Data{}, unsupported("literal %s is not a string or integer", parser.Render(val))
	}
}

// negatedInt folds "-<integer>" when the grammar keeps it as a unary minus.
func negatedInt(expr sqlparser.Expr) (*sqlparser.SQLVal, bool) {
	u, ok := expr.(*sqlparser.UnaryExpr)
	if !ok || u.Operator != sqlparser.UMinusStr {
		return nil, false
	}
	v, ok := u.Expr.(*sqlparser.SQLVal)
	if !ok || v.Type != sqlparser.IntVal || len(v.Val) == 0 || v.Val[0] == '-' {
		return nil, false
	}
	return sqlparser.NewIntVal(append([]byte("-"), v.Val...)), true
}
