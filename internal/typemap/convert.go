package typemap

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SerializationError reports a failed conversion between a Go value and its
// storage representation. It is distinct from driver errors so callers can
// tell "my database is unreachable" from "my data doesn't serialize".
type SerializationError struct {
	Type string // Go type being converted
	Op   string // "encode" or "decode"
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Type, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

func encodeErr(t reflect.Type, err error) error {
	return &SerializationError{Type: t.String(), Op: "encode", Err: err}
}

func decodeErr(t reflect.Type, err error) error {
	return &SerializationError{Type: t.String(), Op: "decode", Err: err}
}

// Timestamp layouts accepted when a driver hands back text instead of
// time.Time. Ordered most to least specific.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ToStorage converts a Go value into the bind value handed to the SQL
// driver. Nil values and nil pointers bind SQL NULL. JSON-classified values
// are marshalled to a JSON string; marshal failure is a hard
// SerializationError, never a fallback. Unclassified values bind their
// default string representation.
func ToStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	t := rv.Type()

	switch KindOf(t) {
	case KindBool:
		return rv.Bool(), nil
	case KindSmallInt, KindInteger, KindBigInt:
		if isUnsigned(t.Kind()) {
			u := rv.Uint()
			if u > math.MaxInt64 {
				return nil, encodeErr(t, fmt.Errorf("value %d overflows signed 64-bit storage", u))
			}
			return int64(u), nil
		}
		return rv.Int(), nil
	case KindReal, KindDouble:
		return rv.Float(), nil
	case KindDecimal:
		return rv.Interface().(decimal.Decimal).String(), nil
	case KindChar:
		return string(rune(rv.Int())), nil
	case KindBytes:
		return rv.Bytes(), nil
	case KindUUID:
		return rv.Interface().(uuid.UUID).String(), nil
	case KindText:
		return rv.String(), nil
	case KindEnum:
		return rv.String(), nil
	case KindDate:
		return rv.Interface().(civil.Date).String(), nil
	case KindTime:
		return rv.Interface().(civil.Time).String(), nil
	case KindTimestamp:
		if t == civilDateTimeType {
			return rv.Interface().(civil.DateTime).In(time.UTC), nil
		}
		return rv.Interface().(time.Time), nil
	case KindJSON:
		b, err := json.Marshal(rv.Interface())
		if err != nil {
			return nil, encodeErr(t, err)
		}
		return string(b), nil
	default:
		return fmt.Sprint(rv.Interface()), nil
	}
}

// FromStorage converts a raw column value, as produced by the driver, into a
// value of type t. A nil raw yields t's zero value. Values implementing
// driver.Valuer are unwrapped first, which normalizes driver-specific
// wrapper types to plain text or numbers before coercion.
func FromStorage(raw any, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		if raw == nil {
			return reflect.Zero(t), nil
		}
		inner, err := FromStorage(raw, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	}
	if raw == nil {
		return reflect.Zero(t), nil
	}
	if v, ok := raw.(driver.Valuer); ok {
		if uv, err := v.Value(); err == nil {
			raw = uv
		}
		if raw == nil {
			return reflect.Zero(t), nil
		}
	}

	switch KindOf(t) {
	case KindBool:
		b, err := toBool(raw)
		if err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		return reflect.ValueOf(b).Convert(t), nil
	case KindSmallInt, KindInteger, KindBigInt:
		n, err := toInt64(raw)
		if err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		return reflect.ValueOf(n).Convert(t), nil
	case KindReal, KindDouble:
		f, err := toFloat64(raw)
		if err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		return reflect.ValueOf(f).Convert(t), nil
	case KindDecimal:
		d, err := toDecimal(raw)
		if err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		return reflect.ValueOf(d), nil
	case KindChar:
		s, err := toString(raw)
		if err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		var c Char
		for _, r := range s {
			c = Char(r)
			break
		}
		return reflect.ValueOf(c).Convert(t), nil
	case KindBytes:
		b, err := toBytes(raw)
		if err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		return reflect.ValueOf(b).Convert(t), nil
	case KindUUID:
		u, err := toUUID(raw)
		if err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		return reflect.ValueOf(u), nil
	case KindText, KindEnum:
		s, err := toString(raw)
		if err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		return reflect.ValueOf(s).Convert(t), nil
	case KindDate:
		d, err := toDate(raw)
		if err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		return reflect.ValueOf(d), nil
	case KindTime:
		tm, err := toTimeOfDay(raw)
		if err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		return reflect.ValueOf(tm), nil
	case KindTimestamp:
		ts, err := toTimestamp(raw)
		if err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		if t == civilDateTimeType {
			return reflect.ValueOf(civil.DateTimeOf(ts)), nil
		}
		return reflect.ValueOf(ts), nil
	case KindJSON:
		b, err := toBytes(raw)
		if err != nil {
			// pgx hands JSON back pre-decoded; re-marshal so one decode
			// path serves both drivers.
			b, err = json.Marshal(raw)
			if err != nil {
				return reflect.Value{}, decodeErr(t, err)
			}
		}
		out := reflect.New(t)
		if err := json.Unmarshal(b, out.Interface()); err != nil {
			return reflect.Value{}, decodeErr(t, err)
		}
		return out.Elem(), nil
	default:
		rv := reflect.ValueOf(raw)
		if rv.Type().AssignableTo(t) {
			return rv, nil
		}
		if rv.Type().ConvertibleTo(t) {
			return rv.Convert(t), nil
		}
		return reflect.Value{}, decodeErr(t, fmt.Errorf("cannot coerce %T", raw))
	}
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	case []byte:
		return strconv.ParseBool(strings.TrimSpace(string(v)))
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0, nil
	}
	return false, fmt.Errorf("cannot coerce %T to bool", raw)
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	case float64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	}
	return 0, fmt.Errorf("cannot coerce %T to integer", raw)
}

func toFloat64(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return 0, fmt.Errorf("cannot coerce %T to float", raw)
}

func toString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("cannot coerce %T to string", raw)
}

func toBytes(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, fmt.Errorf("cannot coerce %T to bytes", raw)
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case []byte:
		return decimal.NewFromString(strings.TrimSpace(string(v)))
	case float64:
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	}
	return decimal.Decimal{}, fmt.Errorf("cannot coerce %T to decimal", raw)
}

func toUUID(raw any) (uuid.UUID, error) {
	switch v := raw.(type) {
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case string:
		return uuid.Parse(strings.TrimSpace(v))
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	}
	return uuid.UUID{}, fmt.Errorf("cannot coerce %T to uuid", raw)
}

func toDate(raw any) (civil.Date, error) {
	switch v := raw.(type) {
	case civil.Date:
		return v, nil
	case time.Time:
		return civil.DateOf(v), nil
	case string:
		return civil.ParseDate(strings.TrimSpace(v))
	case []byte:
		return civil.ParseDate(strings.TrimSpace(string(v)))
	}
	return civil.Date{}, fmt.Errorf("cannot coerce %T to date", raw)
}

func toTimeOfDay(raw any) (civil.Time, error) {
	switch v := raw.(type) {
	case civil.Time:
		return v, nil
	case time.Time:
		return civil.TimeOf(v), nil
	case string:
		return civil.ParseTime(strings.TrimSpace(v))
	case []byte:
		return civil.ParseTime(strings.TrimSpace(string(v)))
	}
	return civil.Time{}, fmt.Errorf("cannot coerce %T to time", raw)
}

func toTimestamp(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case civil.DateTime:
		return v.In(time.UTC), nil
	case string:
		return parseTimestamp(strings.TrimSpace(v))
	case []byte:
		return parseTimestamp(strings.TrimSpace(string(v)))
	}
	return time.Time{}, fmt.Errorf("cannot coerce %T to timestamp", raw)
}

func parseTimestamp(s string) (time.Time, error) {
	if dt, err := civil.ParseDateTime(s); err == nil {
		return dt.In(time.UTC), nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
