// Package typemap classifies Go value types into the SQL type system and
// converts values in both directions at the storage boundary. It is pure:
// nothing in this package touches a database connection. The SQL spelling of
// each class is owned by the dialect layer; typemap owns the semantics.
package typemap

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Strategy is the policy by which a column's value is produced automatically
// instead of being supplied by the caller.
type Strategy int

const (
	// GenerationNone means the caller supplies the value.
	GenerationNone Strategy = iota
	// GenerationAuto requests a database-assigned sequence value. Only
	// meaningful for 32- and 64-bit integer columns.
	GenerationAuto
	// GenerationUUID requests a server-side random UUID default.
	GenerationUUID
)

func (s Strategy) String() string {
	switch s {
	case GenerationAuto:
		return "auto"
	case GenerationUUID:
		return "uuid"
	default:
		return "none"
	}
}

// Char is a single-character value stored in a CHAR(1) column.
type Char rune

// Kind is the semantic classification of a Go type at the storage boundary.
// Each Kind corresponds to exactly one column type per dialect.
type Kind int

const (
	KindBool Kind = iota
	KindSmallInt
	KindInteger
	KindBigInt
	KindReal
	KindDouble
	KindDecimal
	KindChar
	KindBytes
	KindUUID
	KindText
	KindDate
	KindTime
	KindTimestamp
	KindEnum
	KindJSON
	// KindFallback is the permissive catch-all: the value is stored as its
	// default string representation in a text column. Not an error path.
	KindFallback
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindSmallInt:
		return "smallint"
	case KindInteger:
		return "integer"
	case KindBigInt:
		return "bigint"
	case KindReal:
		return "real"
	case KindDouble:
		return "double"
	case KindDecimal:
		return "decimal"
	case KindChar:
		return "char"
	case KindBytes:
		return "bytes"
	case KindUUID:
		return "uuid"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindTimestamp:
		return "timestamp"
	case KindEnum:
		return "enum"
	case KindJSON:
		return "json"
	default:
		return "fallback"
	}
}

var (
	charType          = reflect.TypeOf(Char(0))
	uuidType          = reflect.TypeOf(uuid.UUID{})
	timeType          = reflect.TypeOf(time.Time{})
	civilDateType     = reflect.TypeOf(civil.Date{})
	civilTimeType     = reflect.TypeOf(civil.Time{})
	civilDateTimeType = reflect.TypeOf(civil.DateTime{})
	decimalType       = reflect.TypeOf(decimal.Decimal{})
	rawJSONType       = reflect.TypeOf(json.RawMessage(nil))
	stringType        = reflect.TypeOf("")
)

// KindOf classifies t. Pointers are unwrapped first: a *T column is the
// nullable variant of T and classifies identically. Named string types other
// than string itself classify as KindEnum and round-trip their exact
// spelling. Slices, arrays, maps and structs (beyond the known scalar
// structs) classify as KindJSON and serialize to a single JSON column.
func KindOf(t reflect.Type) Kind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case charType:
		return KindChar
	case uuidType:
		return KindUUID
	case timeType, civilDateTimeType:
		return KindTimestamp
	case civilDateType:
		return KindDate
	case civilTimeType:
		return KindTime
	case decimalType:
		return KindDecimal
	case rawJSONType:
		return KindJSON
	}

	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int8, reflect.Int16, reflect.Uint8:
		return KindSmallInt
	case reflect.Int32, reflect.Uint16:
		return KindInteger
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return KindBigInt
	case reflect.Float32:
		return KindReal
	case reflect.Float64:
		return KindDouble
	case reflect.String:
		if t == stringType {
			return KindText
		}
		return KindEnum
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return KindBytes
		}
		return KindJSON
	case reflect.Array, reflect.Map, reflect.Struct:
		return KindJSON
	default:
		return KindFallback
	}
}
