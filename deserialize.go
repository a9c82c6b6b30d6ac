package aientity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Record is one materialized record: field name → string, int64, bool or
// float64 according to the field's declared type.
type Record map[string]any

// ToRecord maps obj onto d's fields. Unknown keys are ignored; missing and
// null fields take the zero value of their type.
func ToRecord(obj map[string]any, d *SchemaDescriptor) (Record, error) {
	rec := make(Record, len(d.fields))
	for _, f := range d.fields {
		v, err := coerce(f, obj[f.Name])
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}
	return rec, nil
}

// ToRecords maps every element of arr, failing as a whole on the first bad one.
func ToRecords(arr []map[string]any, d *SchemaDescriptor) ([]Record, error) {
	out := make([]Record, 0, len(arr))
	for i, obj := range arr {
		rec, err := ToRecord(obj, d)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func coerce(f FieldSpec, v any) (any, error) {
	var (
		out any
		err error
	)
	switch f.Type {
	case TypeString:
		out, err = coerceString(v)
	case TypeInt:
		out, err = coerceInt(v)
	case TypeFloat:
		out, err = coerceFloat(v)
	case TypeBool:
		out, err = coerceBool(v)
	default:
		err = fmt.Errorf("unknown field type")
	}
	if err != nil {
		return nil, &FieldMappingError{Field: f.Name, Type: f.Type, Value: v, Err: err}
	}
	return out, nil
}

var errIncompatible = errors.New("incompatible JSON value")

func coerceString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	}
	return "", errIncompatible
}

func coerceInt(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		return parseInt(x.String())
	case string:
		return parseInt(strings.TrimSpace(x))
	case float64:
		return floatToInt(x)
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	}
	return 0, errIncompatible
}

// parseInt accepts integer text and integral float text such as "30.0".
func parseInt(s string) (int64, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("out of range: %v", f)
	}
	return int64(f), nil
}

func coerceFloat(v any) (float64, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	default:
		return 0, errIncompatible
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return f, nil
}

func coerceBool(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, fmt.Errorf("not a boolean: %q", x)
		}
		return b, nil
	}
	return false, errIncompatible
}

// bindStruct copies a record into a new T using the reflected layout.
func bindStruct[T any](rec Record, s *structSchema) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	for _, f := range s.fields {
		v := rec[f.Name]
		field := rv.FieldByIndex(s.index[f.Name])
		if err := setField(field, v); err != nil {
			return out, &FieldMappingError{Field: f.Name, Type: f.Type, Value: v, Err: err}
		}
	}
	return out, nil
}

func setField(field reflect.Value, v any) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(v.(string))
	case reflect.Bool:
		field.SetBool(v.(bool))
	case reflect.Float32, reflect.Float64:
		f := v.(float64)
		if field.OverflowFloat(f) {
			return fmt.Errorf("overflows %s", field.Type())
		}
		field.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.(int64)
		if field.OverflowInt(i) {
			return fmt.Errorf("overflows %s", field.Type())
		}
		field.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i := v.(int64)
		if i < 0 || field.OverflowUint(uint64(i)) {
			return fmt.Errorf("overflows %s", field.Type())
		}
		field.SetUint(uint64(i))
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}
