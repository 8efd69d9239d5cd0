package main

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// renderOutput writes v as json or yaml, or falls back to the table renderer.
func renderOutput(format string, v any, table func() error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer func() {
			_ = enc.Close() //nolint:errcheck // encoder close best-effort
		}()
		return enc.Encode(v)

	default:
		return table()
	}
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
