package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/taskweb/pkg/errors"
	"github.com/matzehuels/taskweb/pkg/graph"
)

// Write encodes an input document in the given format. CSV output holds
// the connections only.
func Write(in graph.Input, w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		return WriteJSON(in, w)
	case FormatYAML:
		return WriteYAML(in, w)
	case FormatCSV:
		return WriteConnectionsCSV(in.Connections, w)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q", format)
}

// WriteJSON encodes an input document as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(in graph.Input, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(in); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes an input document as YAML and writes it to w.
func WriteYAML(in graph.Input, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(in); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// WriteConnectionsCSV writes a connection table with a source,target,type
// header.
func WriteConnectionsCSV(conns []graph.Connection, w io.Writer) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"source", "target", "type"})
	for _, c := range conns {
		_ = cw.Write([]string{c.Source, c.Target, c.Type})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Export writes an input document to path, inferring the format from the
// extension.
func Export(in graph.Input, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(in, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
