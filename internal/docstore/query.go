package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidQuery is returned for query shapes the matcher does not support.
var ErrInvalidQuery = errors.New("docstore: invalid query")

type queryKind int

const (
	kindAll queryKind = iota
	kindEq
	kindIn
	kindAnd
	kindOr
)

// Query is a predicate over documents: field equality, membership of a field
// in a value list, conjunction, and a single level of disjunction.
type Query struct {
	kind    queryKind
	field   string
	value   any
	values  []any
	clauses []Query
}

// All matches every document.
func All() Query { return Query{kind: kindAll} }

// Eq matches documents whose field equals value after canonicalisation.
// Eq(field, nil) matches a missing field or an explicit null.
func Eq(field string, value any) Query {
	return Query{kind: kindEq, field: field, value: value}
}

// In matches documents whose field equals any of values.
func In[T any](field string, values []T) Query {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Query{kind: kindIn, field: field, values: vs}
}

// And matches documents satisfying every clause.
func And(clauses ...Query) Query {
	return Query{kind: kindAnd, clauses: clauses}
}

// Or matches documents satisfying at least one clause.
func Or(clauses ...Query) Query {
	return Query{kind: kindOr, clauses: clauses}
}

// Where is shorthand for an And of Eq clauses, in key order.
func Where(fields map[string]any) Query {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	clauses := make([]Query, 0, len(keys))
	for _, k := range keys {
		clauses = append(clauses, Eq(k, fields[k]))
	}
	return And(clauses...)
}

// Validate rejects nested disjunctions and empty field names.
func (q Query) Validate() error {
	return q.validate(false)
}

func (q Query) validate(insideOr bool) error {
	switch q.kind {
	case kindAll:
		return nil
	case kindEq, kindIn:
		if q.field == "" {
			return fmt.Errorf("%w: empty field name", ErrInvalidQuery)
		}
		return nil
	case kindAnd:
		for _, c := range q.clauses {
			if err := c.validate(insideOr); err != nil {
				return err
			}
		}
		return nil
	case kindOr:
		if insideOr {
			return fmt.Errorf("%w: nested $or", ErrInvalidQuery)
		}
		for _, c := range q.clauses {
			if err := c.validate(true); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidQuery, q.kind)
	}
}

// Matches reports whether doc satisfies the query.
func (q Query) Matches(doc Document) bool {
	switch q.kind {
	case kindAll:
		return true
	case kindEq:
		return valueEquals(doc[q.field], q.value)
	case kindIn:
		for _, v := range q.values {
			if valueEquals(doc[q.field], v) {
				return true
			}
		}
		return false
	case kindAnd:
		for _, c := range q.clauses {
			if !c.Matches(doc) {
				return false
			}
		}
		return true
	case kindOr:
		for _, c := range q.clauses {
			if c.Matches(doc) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (q Query) String() string {
	switch q.kind {
	case kindAll:
		return "{}"
	case kindEq:
		return fmt.Sprintf("%s=%v", q.field, q.value)
	case kindIn:
		return fmt.Sprintf("%s in %v", q.field, q.values)
	case kindAnd, kindOr:
		sep := " and "
		if q.kind == kindOr {
			sep = " or "
		}
		parts := make([]string, len(q.clauses))
		for i, c := range q.clauses {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, sep) + ")"
	default:
		return "?"
	}
}

func valueEquals(docValue, queryValue any) bool {
	dv, dok := canonical(docValue)
	qv, qok := canonical(queryValue)
	if !qok {
		return !dok
	}
	return dok && dv == qv
}

// canonical maps a value to a comparable string so that ids stored as numbers
// match ids queried as strings and vice versa. ok is false for nil and for
// values whose JSON encoding is null.
func canonical(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	switch t := v.(type) {
	case json.Number:
		return canonicalNumber(t.String()), true
	case string:
		return t, true
	case json.Marshaler:
		return canonicalMarshaler(t)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	default:
		raw, err := json.Marshal(rv.Interface())
		if err != nil {
			return fmt.Sprint(rv.Interface()), true
		}
		return string(raw), true
	}
}

// canonicalMarshaler compares a custom-encoded value by what it stores as.
func canonicalMarshaler(m json.Marshaler) (string, bool) {
	rv := reflect.ValueOf(m)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", false
	}
	raw, err := m.MarshalJSON()
	if err != nil {
		return fmt.Sprint(m), true
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return string(raw), true
	}
	switch t := decoded.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return canonicalNumber(t.String()), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return string(raw), true
	}
}

// canonicalNumber renders integral json numbers without exponent or fraction
// so 8, 8.0 and "8" compare equal.
func canonicalNumber(s string) string {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s
	}
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
