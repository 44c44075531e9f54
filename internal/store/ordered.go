package store

import (
	"github.com/google/btree"

	"github.com/tuannm99/novakv/internal/record"
)

// DefaultDegree is the btree node degree used by New.
const DefaultDegree = 32

type entry struct {
	key string
	row []record.Data
}

func lessEntry(a, b entry) bool { return a.key < b.key }

// OrderedStore maps string keys to rows and always iterates keys in
// ascending byte order. At most one row is kept per key.
//
// OrderedStore is not safe for concurrent use; the owning table's lock
// serializes access.
type OrderedStore struct {
	tree *btree.BTreeG[entry]
}

func New() *OrderedStore {
	return NewWithDegree(DefaultDegree)
}

func NewWithDegree(degree int) *OrderedStore {
	if degree < 2 {
		degree = 2
	}
	return &OrderedStore{tree: btree.NewG[entry](degree, lessEntry)}
}

// Insert stores a copy of row under key, replacing any previous row.
func (s *OrderedStore) Insert(key string, row []record.Data) {
	s.tree.ReplaceOrInsert(entry{key: key, row: record.CloneRow(row)})
}

// Get returns a copy of the row stored under key.
func (s *OrderedStore) Get(key string) ([]record.Data, bool) {
	e, ok := s.tree.Get(entry{key: key})
	if !ok {
		return nil, false
	}
	return record.CloneRow(e.row), true
}

func (s *OrderedStore) Len() int { return s.tree.Len() }

// Scan calls fn for the first limit keys in ascending order until fn
// returns false. Rows handed to fn are copies.
func (s *OrderedStore) Scan(limit int, fn func(key string, row []record.Data) bool) {
	if limit <= 0 {
		return
	}
	n := 0
	s.tree.Ascend(func(e entry) bool {
		if !fn(e.key, record.CloneRow(e.row)) {
			return false
		}
		n++
		return n < limit
	})
}

// ReadAll returns the rows of the first limit keys, flattened in key order.
func (s *OrderedStore) ReadAll(limit int) []record.Data {
	out := []record.Data{}
	s.Scan(limit, func(_ string, row []record.Data) bool {
		out = append(out, row...)
		return true
	})
	return out
}
