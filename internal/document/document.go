// Package document parses and formats JSON settings documents as generic
// node trees: map[string]any, []any, json.Number, string, bool and nil.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/pretty"
)

// Empty is the content of a freshly created settings document.
const Empty = "{}"

// ErrTrailingData is returned when a document holds more than one JSON value.
var ErrTrailingData = errors.New("unexpected data after top-level JSON value")

// Parse decodes data into a node tree. Numbers are kept as json.Number so
// integers survive a round trip unchanged.
func Parse(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var node any
	if err := dec.Decode(&node); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return node, nil
}

// ParseObject decodes data and requires the top-level value to be an object.
func ParseObject(data []byte) (map[string]any, error) {
	node, err := Parse(data)
	if err != nil {
		return nil, err
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value is %s, not an object", Kind(node))
	}
	return obj, nil
}

// Compact encodes node without insignificant whitespace and without HTML
// escaping.
func Compact(node any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Format encodes node as indented JSON followed by a newline.
func Format(node any) ([]byte, error) {
	compact, err := Compact(node)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(compact, &pretty.Options{
		Width:    80,
		Prefix:   "",
		Indent:   "  ",
		SortKeys: false,
	}), nil
}

// FromValue converts any JSON-marshalable value into a node tree.
func FromValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	return Parse(data)
}

// Kind names the JSON type of node for error messages.
func Kind(node any) string {
	switch node.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", node)
	}
}
