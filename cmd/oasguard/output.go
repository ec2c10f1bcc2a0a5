package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v4"
)

// Output formats
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// stdinPath reads the file from standard input.
const stdinPath = "-"

func validateOutputFormat(format string) error {
	if format != formatText && format != formatJSON && format != formatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, formatText, formatJSON, formatYAML)
	}
	return nil
}

// outputStructured writes data as JSON or YAML.
func outputStructured(w io.Writer, data any, format string) error {
	var out []byte
	var err error

	switch format {
	case formatJSON:
		out, err = json.MarshalIndent(data, "", "  ")
	case formatYAML:
		out, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}
	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	writef(w, "%s\n", out)
	return nil
}

// writef writes formatted output, reporting a failed write on stderr.
func writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// readInput reads a file, or standard input for "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == stdinPath {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
