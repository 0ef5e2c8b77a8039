package io

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/taskweb/pkg/errors"
	"github.com/matzehuels/taskweb/pkg/graph"
)

// Supported document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// Formats lists the supported input formats.
var Formats = []string{FormatJSON, FormatYAML, FormatCSV}

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"cannot infer format of %q (want .json, .yaml, .yml or .csv)", path)
}

// Read decodes an input document in the given format. CSV input holds
// connections only; use [ReadMetricsCSV] for metric tables.
func Read(r io.Reader, format string) (graph.Input, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	case FormatCSV:
		conns, err := ReadConnectionsCSV(r)
		return graph.Input{Connections: conns}, err
	}
	return graph.Input{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported input format %q", format)
}

// ReadJSON decodes a JSON input document from r.
//
// The document is either an object with "connections" and optional
// "metrics" arrays:
//
//	{
//	  "connections": [{"source": "a", "target": "b", "type": "Other"}],
//	  "metrics": [{"task": "a", "owner": "Ana"}]
//	}
//
// or a bare array of connections. Metric fields keep their document order.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (graph.Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return graph.Input{}, fmt.Errorf("read: %w", err)
	}

	var in graph.Input
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &in.Connections)
	} else {
		err = json.Unmarshal(data, &in)
	}
	if err != nil {
		return graph.Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json")
	}
	return in, nil
}

// ReadYAML decodes a YAML input document from r. It accepts the same two
// shapes as [ReadJSON].
func ReadYAML(r io.Reader) (graph.Input, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return graph.Input{}, nil
		}
		return graph.Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml")
	}

	var in graph.Input
	var err error
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.SequenceNode {
		err = doc.Content[0].Decode(&in.Connections)
	} else {
		err = doc.Decode(&in)
	}
	if err != nil {
		return graph.Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml")
	}
	return in, nil
}

// ReadConnectionsCSV reads a connection table. The header row must name
// "source" and "target" columns; "type" is optional. Column order and
// case are free and other columns are ignored.
func ReadConnectionsCSV(r io.Reader) ([]graph.Connection, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	src, tgt, typ := column(header, "source"), column(header, "target"), column(header, "type")
	if src < 0 || tgt < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "csv header must contain source and target columns, got %v", header)
	}

	conns := make([]graph.Connection, 0, len(rows))
	for _, row := range rows {
		conns = append(conns, graph.Connection{
			Source: cell(row, src),
			Target: cell(row, tgt),
			Type:   cell(row, typ),
		})
	}
	return conns, nil
}

// ReadMetricsCSV reads a metric table. The header row must name a "task"
// column; every other column becomes a field, in header order, with the
// cell text as value.
func ReadMetricsCSV(r io.Reader) ([]graph.Metric, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	if column(header, graph.TaskKey) < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "csv header must contain a %s column, got %v", graph.TaskKey, header)
	}

	metrics := make([]graph.Metric, 0, len(rows))
	for _, row := range rows {
		var m graph.Metric
		for i, key := range header {
			if strings.EqualFold(key, graph.TaskKey) {
				m.Task = cell(row, i)
				continue
			}
			m.Set(key, cell(row, i))
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// ReadMetrics decodes a standalone metrics document: a JSON or YAML array
// of records, or a CSV table.
func ReadMetrics(r io.Reader, format string) ([]graph.Metric, error) {
	var metrics []graph.Metric
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&metrics); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode metrics json")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&metrics); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode metrics yaml")
		}
	case FormatCSV:
		return ReadMetricsCSV(r)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported metrics format %q", format)
	}
	return metrics, nil
}

// Import reads an input document from path, inferring the format from the
// extension.
func Import(path string) (graph.Input, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return graph.Input{}, err
	}
	f, err := open(path)
	if err != nil {
		return graph.Input{}, err
	}
	defer f.Close()
	return Read(f, format)
}

// ImportMetrics reads a standalone metrics document from path.
func ImportMetrics(path string) ([]graph.Metric, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMetrics(f, format)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func readCSV(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode csv")
	}
	if len(records) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "csv has no header row")
	}
	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	return header, records[1:], nil
}

func column(header []string, name string) int {
	return slices.IndexFunc(header, func(h string) bool { return strings.EqualFold(h, name) })
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
