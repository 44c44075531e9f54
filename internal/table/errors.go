package table

import (
	"errors"
	"fmt"
)

var ErrIncompatibleSchema = errors.New("table: incompatible schema")

// IncompatibleSchemaError reports why a row was refused by Insert.
// Column is -1 when the row length itself is wrong.
type IncompatibleSchemaError struct {
	Column int
	Name   string
	Reason string
}

func (e *IncompatibleSchemaError) Error() string {
	if e.Column < 0 {
		return fmt.Sprintf("%v: %s", ErrIncompatibleSchema, e.Reason)
	}
	return fmt.Sprintf("%v: column %d (%s): %s", ErrIncompatibleSchema, e.Column, e.Name, e.Reason)
}

func (e *IncompatibleSchemaError) Is(target error) bool { return target == ErrIncompatibleSchema }
