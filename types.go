// Package novakv is the top-level facade for the novakv engine.
package novakv

import (
	"github.com/tuannm99/novakv/internal/engine"
	"github.com/tuannm99/novakv/internal/record"
)

type (
	Database  = engine.Database
	TableMeta = engine.TableMeta
	Column    = record.Column
	Schema    = record.Schema
)

var (
	NewDatabase = engine.NewDatabase
	Open        = engine.Open

	BoundedString = record.BoundedString
	IntegerSchema = record.IntegerSchema
)
