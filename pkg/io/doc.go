// Package io reads and writes taskweb input documents.
//
// # Overview
//
// An input document is a list of dependency connections plus optional
// per-task metric records ([graph.Input]). It can be stored as JSON, YAML or
// CSV; the format is inferred from the file extension.
//
// # JSON and YAML
//
// Both formats accept a document object:
//
//	{
//	  "connections": [
//	    {"source": "survey", "target": "wells", "type": "Clean Water and Sanitation"}
//	  ],
//	  "metrics": [
//	    {"task": "survey", "owner": "Ana", "budget": 1200}
//	  ]
//	}
//
// or a bare array of connections. Metric records keep their field order, so
// detail panels list fields as written.
//
// # CSV
//
// CSV files hold one table. A connection table has a header naming source,
// target and optionally type columns. A metric table (see [ReadMetricsCSV])
// has a task column and one column per field; values stay text.
//
// # Import and Export
//
//	in, err := io.Import("tasks.yaml")
//	metrics, err := io.ImportMetrics("metrics.csv")
//	err = io.Export(in, "tasks.json")
//
// Reading never validates connections; that is left to [graph.Validate].
// A missing file yields an error with code FILE_NOT_FOUND and a malformed
// document one with code INVALID_INPUT.
//
// [graph.Input]: github.com/matzehuels/taskweb/pkg/graph.Input
// [graph.Validate]: github.com/matzehuels/taskweb/pkg/graph.Validate
package io
