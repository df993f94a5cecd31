// Package scalar provides the closed set of missing-aware value kinds that
// every column and row in rframe is built from.
//
// A Scalar is a small tagged union. Each kind has a distinguished missing
// state:
//   - Integer: math.MinInt32 on the wire
//   - Number: the NaN payload 0x7FF00000000007A2, distinct from NaN and ±Inf
//   - Text, Logical, Date, Factor: an explicit absent state
//   - Untyped: always missing, usable before a column's kind is known
//
// The zero value of Scalar is the untyped missing value NA.
package scalar

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Kind identifies one of the fixed scalar kinds
type Kind uint8

const (
	// KindUntyped is the kind of NA before a concrete kind is known
	KindUntyped Kind = iota
	// KindInteger holds 32-bit signed integers
	KindInteger
	// KindNumber holds double precision floats
	KindNumber
	// KindText holds strings
	KindText
	// KindLogical holds three-valued booleans
	KindLogical
	// KindDate holds calendar dates
	KindDate
	// KindFactor holds categorical codes with labels from a shared level set
	KindFactor
)

var kindNames = [...]string{
	KindUntyped: "untyped",
	KindInteger: "integer",
	KindNumber:  "numeric",
	KindText:    "character",
	KindLogical: "logical",
	KindDate:    "date",
	KindFactor:  "factor",
}

// Kinds lists every concrete kind in declaration order
var Kinds = []Kind{KindInteger, KindNumber, KindText, KindLogical, KindDate, KindFactor}

// String returns the lower-case kind name
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Valid reports whether k is one of the declared kinds
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// ParseKind resolves a kind from its name. Common aliases are accepted.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "untyped", "na":
		return KindUntyped, nil
	case "integer", "int", "int32":
		return KindInteger, nil
	case "numeric", "number", "double", "float", "float64":
		return KindNumber, nil
	case "character", "text", "string":
		return KindText, nil
	case "logical", "bool", "boolean":
		return KindLogical, nil
	case "date":
		return KindDate, nil
	case "factor":
		return KindFactor, nil
	}
	return KindUntyped, fmt.Errorf("unknown kind %q", name)
}

// ArrowType returns the Arrow data type used when a column of this kind
// crosses the system boundary
func (k Kind) ArrowType() arrow.DataType {
	switch k {
	case KindInteger:
		return arrow.PrimitiveTypes.Int32
	case KindNumber:
		return arrow.PrimitiveTypes.Float64
	case KindText:
		return arrow.BinaryTypes.String
	case KindLogical:
		return arrow.FixedWidthTypes.Boolean
	case KindDate:
		return arrow.FixedWidthTypes.Date32
	case KindFactor:
		return &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.BinaryTypes.String}
	default:
		return arrow.Null
	}
}

// KindFromArrow maps an Arrow data type back to a kind
func KindFromArrow(dt arrow.DataType) (Kind, bool) {
	switch dt.ID() {
	case arrow.NULL:
		return KindUntyped, true
	case arrow.INT32:
		return KindInteger, true
	case arrow.FLOAT64:
		return KindNumber, true
	case arrow.STRING:
		return KindText, true
	case arrow.BOOL:
		return KindLogical, true
	case arrow.DATE32:
		return KindDate, true
	case arrow.DICTIONARY:
		return KindFactor, true
	}
	return KindUntyped, false
}
