package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/keepsake/internal/document"
)

// render writes node to w in format.
func render(w io.Writer, node any, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case formatYAML:
		data, err = yaml.Marshal(plain(node, false))
	case formatTOML:
		obj, ok := plain(node, true).(map[string]any)
		if !ok {
			return userError("toml output needs an object, section holds %s", document.Kind(node))
		}
		data, err = toml.Marshal(obj)
	default:
		data, err = document.Format(node)
	}
	if err != nil {
		return sysError("render %s: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}

// plain converts a document node into values YAML and TOML encoders print
// naturally: numbers become int64 or float64. TOML has no null, so dropNull
// removes null members.
func plain(node any, dropNull bool) any {
	switch n := node.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			if v == nil && dropNull {
				continue
			}
			out[k] = plain(v, dropNull)
		}
		return out
	case []any:
		out := make([]any, 0, len(n))
		for _, v := range n {
			if v == nil && dropNull {
				continue
			}
			out = append(out, plain(v, dropNull))
		}
		return out
	default:
		return node
	}
}

// scalarText prints a leaf value without JSON quoting for strings.
func scalarText(node any) (string, bool) {
	switch n := node.(type) {
	case string:
		return n, true
	case json.Number:
		return n.String(), true
	case bool:
		return fmt.Sprint(n), true
	default:
		return "", false
	}
}
