package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tuannm99/novakv/internal/record"
	"github.com/tuannm99/novakv/internal/table"
)

var (
	ErrDatabaseClosed = errors.New("novakv: database is closed")
	ErrNoKeyColumn    = errors.New("novakv: first column must be a bounded string key")
)

type DatabaseOperation interface {
	View(fn func(tbl *table.Table) error) error
	Update(fn func(tbl *table.Table) error) error
	Close() error
}

type TableMeta struct {
	Name      string          `json:"name"`
	Columns   []record.Column `json:"columns"`
	Rows      int             `json:"rows"`
	CreatedAt time.Time       `json:"created_at"`
}

var _ DatabaseOperation = (*Database)(nil)

// Database is the process-wide handle to the single table. It is built once
// at startup and handed to every connection. Reads share the lock; an
// update holds it exclusively.
type Database struct {
	mu        sync.RWMutex
	tbl       *table.Table
	createdAt time.Time
	closed    bool
}

// NewDatabase wraps tbl. The first column is the key column and must hold
// bounded strings, since inserts use the first value as the row key.
func NewDatabase(tbl *table.Table) (*Database, error) {
	if tbl == nil {
		return nil, fmt.Errorf("novakv: nil table")
	}
	schema := tbl.Schema()
	if len(schema) == 0 || schema[0].Kind != record.SchemaBoundedString {
		return nil, fmt.Errorf("%w (table %q)", ErrNoKeyColumn, tbl.Name())
	}
	return &Database{tbl: tbl, createdAt: time.Now()}, nil
}

// Open builds the table from its definition and wraps it.
func Open(name string, columns []record.Column) (*Database, error) {
	tbl, err := table.New(name, columns)
	if err != nil {
		return nil, err
	}
	return NewDatabase(tbl)
}

// TableName is fixed for the handle's lifetime and needs no lock.
func (db *Database) TableName() string { return db.tbl.Name() }

// View runs fn while holding the read lock.
func (db *Database) View(fn func(tbl *table.Table) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return ErrDatabaseClosed
	}
	return fn(db.tbl)
}

// Update runs fn while holding the write lock.
func (db *Database) Update(fn func(tbl *table.Table) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseClosed
	}
	return fn(db.tbl)
}

func (db *Database) Meta() TableMeta {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return TableMeta{
		Name:      db.tbl.Name(),
		Columns:   db.tbl.Columns(),
		Rows:      db.tbl.Len(),
		CreatedAt: db.createdAt,
	}
}

// Close waits for running operations and rejects later ones.
// Nothing is persisted.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseClosed
	}
	db.closed = true
	return nil
}
