package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("format must be %q or %q, got %q", formatJSON, formatYAML, format)
	}
}

// printOutput writes data in the requested format. YAML output goes through a
// JSON round trip so field names follow the json tags of the wire types.
func printOutput(w io.Writer, data any, format string) error {
	switch format {
	case formatYAML:
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("cannot encode output: %w", err)
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return fmt.Errorf("cannot encode output: %w", err)
		}

		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(generic); err != nil {
			return fmt.Errorf("cannot format YAML: %w", err)
		}
		return encoder.Close()
	default:
		pretty, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("cannot format JSON: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", pretty)
		return err
	}
}
