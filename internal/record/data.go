package record

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

type Kind uint8

const (
	KindString Kind = iota
	KindInteger
)

// Data is a single cell value. It is a plain value type, so copying a row
// slice element by element is enough to detach it from storage.
type Data struct {
	Kind Kind
	Str  string
	Int  int64
}

func StringData(s string) Data { return Data{Kind: KindString, Str: s} }
func IntegerData(i int64) Data { return Data{Kind: KindInteger, Int: i} }

func (d Data) IsString() bool  { return d.Kind == KindString }
func (d Data) IsInteger() bool { return d.Kind == KindInteger }

// Len returns the length of a string value in characters, 0 for integers.
func (d Data) Len() int {
	if d.Kind != KindString {
		return 0
	}
	return utf8.RuneCountInString(d.Str)
}

// Value returns the untyped Go value used in response rows.
func (d Data) Value() any {
	switch d.Kind {
	case KindString:
		return d.Str
	case KindInteger:
		return d.Int
	default:
		return nil
	}
}

func (d Data) String() string {
	switch d.Kind {
	case KindString:
		return "String(" + strconv.Quote(d.Str) + ")"
	case KindInteger:
		return "Integer(" + strconv.FormatInt(d.Int, 10) + ")"
	default:
		return fmt.Sprintf("Data(kind=%d)", uint8(d.Kind))
	}
}

// CloneRow returns a detached copy of row.
func CloneRow(row []Data) []Data {
	if row == nil {
		return nil
	}
	out := make([]Data, len(row))
	copy(out, row)
	return out
}
