// Package frontmatter implements the YAML-subset codec used for the
// structured header of journal documents. It covers exactly the subset this
// application writes and reads back: plain scalars, 2-space indented mappings
// and sequences, and JSON-style inline collections. It is deliberately
// permissive on input: anything it cannot make sense of degrades to a plain
// string or is skipped, never an error, so hand-edited files keep loading.
package frontmatter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// Field is one key/value pair of a mapping. Mappings are stored as slices so
// that key insertion order survives a re-serialization.
type Field struct {
	Key   string
	Value Value
}

// Value is the tagged variant a header is built from.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Str    string
	Items  []Value
	Fields []Field
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// Boolean wraps a bool.
func Boolean(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Number wraps a float64.
func NumberOf(n float64) Value { return Value{Kind: KindNumber, Number: n} }

// String wraps a string.
func StringOf(s string) Value { return Value{Kind: KindString, Str: s} }

// Sequence wraps a list of values.
func SequenceOf(items ...Value) Value { return Value{Kind: KindSequence, Items: items} }

// Mapping returns an empty mapping value.
func Mapping() Value { return Value{Kind: KindMapping, Fields: []Field{}} }

// Get returns the value for key in a mapping and whether it was present.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindMapping {
		return Value{}, false
	}
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value for key, appending the field if key is new.
func (v *Value) Set(key string, val Value) {
	for i := range v.Fields {
		if v.Fields[i].Key == key {
			v.Fields[i].Value = val
			return
		}
	}
	v.Fields = append(v.Fields, Field{Key: key, Value: val})
}

// Append adds an item to a sequence value.
func (v *Value) Append(item Value) {
	v.Items = append(v.Items, item)
}

var numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ParseScalar interprets a single raw token. Recognition order matters: null
// markers, booleans, numbers, quoted strings, inline collections, and finally
// the token itself as a string. It never fails; the universal fallback is
// "keep it as a string".
func ParseScalar(token string) Value {
	tok := strings.TrimSpace(token)

	switch tok {
	case "", "~", "null":
		return Null()
	}
	switch strings.ToLower(tok) {
	case "true":
		return Boolean(true)
	case "false":
		return Boolean(false)
	}

	if numberPattern.MatchString(tok) {
		if n, err := strconv.ParseFloat(tok, 64); err == nil {
			return NumberOf(n)
		}
	}

	if len(tok) >= 2 && strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) {
		inner := tok[1 : len(tok)-1]
		inner = strings.ReplaceAll(inner, `\"`, `"`)
		inner = strings.ReplaceAll(inner, `\\`, `\`)
		return StringOf(inner)
	}
	if len(tok) >= 2 && strings.HasPrefix(tok, "'") && strings.HasSuffix(tok, "'") {
		inner := tok[1 : len(tok)-1]
		inner = strings.ReplaceAll(inner, "''", "'")
		return StringOf(inner)
	}

	if strings.HasPrefix(tok, "[") || strings.HasPrefix(tok, "{") {
		if v, err := parseInline(tok); err == nil {
			return v
		}
	}

	return StringOf(tok)
}

// parseInline reads an inline collection through a JSON token stream after
// converting single quotes to double quotes. The token stream (instead of a
// plain Unmarshal into map[string]any) keeps object key order.
func parseInline(tok string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(strings.ReplaceAll(tok, "'", `"`)))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return Value{}, err
	}
	// Trailing garbage after the collection means it was not a collection.
	if dec.More() {
		return Value{}, fmt.Errorf("trailing data after inline collection")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	t, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeJSONToken(dec, t)
}

func decodeJSONToken(dec *json.Decoder, t json.Token) (Value, error) {
	switch tok := t.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Boolean(tok), nil
	case json.Number:
		n, err := tok.Float64()
		if err != nil {
			return Value{}, err
		}
		return NumberOf(n), nil
	case string:
		return StringOf(tok), nil
	case json.Delim:
		switch tok {
		case '[':
			seq := SequenceOf()
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				seq.Append(item)
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return Value{}, err
			}
			return seq, nil
		case '{':
			m := Mapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("non-string object key %v", keyTok)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // closing }
				return Value{}, err
			}
			return m, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", t)
}

// StringifyScalar renders a value as a single token. Strings are always
// double-quoted so that numeric-looking strings survive a re-parse of the
// codec's own output; collections come out in compact JSON form.
func StringifyScalar(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return FormatNumber(v.Number)
	case KindString:
		return quoteString(v.Str)
	case KindSequence:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = StringifyScalar(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = quoteString(f.Key) + ": " + StringifyScalar(f.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "null"
}

// FormatNumber prints the shortest exact decimal form, never an exponent, so
// integral values come back as integers ("150", not "150.0" or "1.5e+02").
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func quoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
