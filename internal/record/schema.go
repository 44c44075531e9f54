package record

import (
	"fmt"
	"strings"
)

type SchemaKind uint8

const (
	SchemaBoundedString SchemaKind = iota
	SchemaInteger
	// SchemaWildcard only marks a "*" projection. It is never a column type.
	SchemaWildcard
)

func (k SchemaKind) String() string {
	switch k {
	case SchemaBoundedString:
		return "BoundedString"
	case SchemaInteger:
		return "Integer"
	case SchemaWildcard:
		return "Wildcard"
	default:
		return fmt.Sprintf("SchemaKind(%d)", uint8(k))
	}
}

// Schema describes the type of one column.
// MaxLen is only meaningful for SchemaBoundedString and counts characters.
type Schema struct {
	Kind   SchemaKind
	MaxLen int
}

func BoundedString(maxLen int) Schema { return Schema{Kind: SchemaBoundedString, MaxLen: maxLen} }
func IntegerSchema() Schema           { return Schema{Kind: SchemaInteger} }
func Wildcard() Schema                { return Schema{Kind: SchemaWildcard} }

func (s Schema) String() string {
	switch s.Kind {
	case SchemaBoundedString:
		return fmt.Sprintf("BoundedString(%d)", s.MaxLen)
	case SchemaInteger:
		return "Integer"
	case SchemaWildcard:
		return "Wildcard"
	default:
		return s.Kind.String()
	}
}

// Column pairs a column name with its declared type.
type Column struct {
	Name   string
	Schema Schema
}

// ParseSchema maps a configured type name onto a column schema.
// String types need a non-negative maxLen; the wildcard is refused.
func ParseSchema(typeName string, maxLen int) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(typeName)) {
	case "varchar", "string", "text", "char":
		if maxLen < 0 {
			return Schema{}, fmt.Errorf("record: negative length %d for %s", maxLen, typeName)
		}
		return BoundedString(maxLen), nil
	case "int", "integer", "bigint":
		return IntegerSchema(), nil
	case "*":
		return Schema{}, fmt.Errorf("record: wildcard is not a column type")
	default:
		return Schema{}, fmt.Errorf("record: unsupported column type %q", typeName)
	}
}
