// Package cli implements the commands behind the templex binary: parsing
// expression fragments into trees and dumping raw token streams, both for
// debugging templates from the command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"

	"github.com/shibukawa/templex"
	"github.com/shibukawa/templex/reporter"
)

// Context represents the global context for commands
type Context struct {
	Verbose bool
	Quiet   bool
}

// parentLocation builds the location of the fragment inside its enclosing
// template file from the --file/--line/--column flags. Without --file the
// fragment is treated as standalone input with unknown coordinates.
func parentLocation(file string, line, column int) templex.Location {
	if file == "" {
		return templex.Unknown
	}

	return templex.Location{
		FilePath:    file,
		BeginLine:   line,
		BeginColumn: column,
		EndLine:     line,
		EndColumn:   column,
	}
}

// printDiagnostics writes every collected diagnostic to stderr.
func printDiagnostics(errs *reporter.Reporter) {
	for _, diag := range errs.Errors() {
		color.Red("%s", diag.String())
	}
}

// writeYAML dumps v as YAML to w.
func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	_, err = w.Write(data)

	return err
}

// output returns the writer command results go to, creating the output file
// when one was requested.
func output(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return f, func() { f.Close() }, nil
}
