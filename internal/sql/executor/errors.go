package executor

import (
	"errors"

	"github.com/tuannm99/novakv/internal/sql/parser"
	"github.com/tuannm99/novakv/internal/sql/planner"
	"github.com/tuannm99/novakv/internal/table"
)

var (
	ErrEmptyValues    = errors.New("insert has no values")
	ErrNonStringKey   = errors.New("first value must be a string key")
	ErrColumnMismatch = errors.New("insert columns do not match the table")
	ErrUnknownTable   = errors.New("unknown table")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrUnknownCommand = errors.New("unknown command")
)

// RoutingError is a well-formed command that cannot be routed to the table.
type RoutingError struct {
	Kind string
	Err  error
}

func (e *RoutingError) Error() string { return "executor: " + e.Kind + ": " + e.Err.Error() }
func (e *RoutingError) Unwrap() error { return e.Err }

func routingErr(kind string, err error) error {
	return &RoutingError{Kind: kind, Err: err}
}

// Error codes carried in response envelopes.
const (
	CodeParse       = "parse"
	CodeUnsupported = "unsupported"
	CodeSchema      = "schema"
	CodeRouting     = "routing"
	CodeInternal    = "internal"
)

// ErrorCode classifies err for the response envelope.
func ErrorCode(err error) string {
	var (
		pe *parser.ParseError
		re *RoutingError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pe):
		return CodeParse
	case errors.Is(err, planner.ErrUnsupported):
		return CodeUnsupported
	case errors.Is(err, table.ErrIncompatibleSchema):
		return CodeSchema
	case errors.As(err, &re):
		return CodeRouting
	default:
		return CodeInternal
	}
}
