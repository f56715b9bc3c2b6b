// Package render writes manifests and class lists for humans and tools.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aquasecurity/table"
	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"

	"github.com/vk/assetgrid/internal/assetid"
	"github.com/vk/assetgrid/internal/manifest"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// ParseFormat validates a format name. The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatYAML, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, yaml or table)", s)
	}
}

// Options controls Write.
type Options struct {
	Format Format
	// Query is a jq program applied to the JSON form of the manifest. Each
	// result is written as its own document. Not supported with tables.
	Query string
}

// Write renders m to w.
func Write(w io.Writer, m *manifest.Manifest, opts Options) error {
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}

	if opts.Query != "" {
		if format == FormatTable {
			return fmt.Errorf("a query cannot be combined with table output")
		}
		input, err := m.Generic()
		if err != nil {
			return err
		}
		results, err := runQuery(opts.Query, input)
		if err != nil {
			return err
		}
		return writeDocuments(w, format, results)
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, m)
	case FormatYAML:
		return writeYAML(w, m)
	case FormatTable:
		return writeTable(w, m)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteList renders a list of strings, such as body classes. Tables and
// plain output put one item per line.
func WriteList(w io.Writer, items []string, format Format) error {
	if items == nil {
		items = []string{}
	}
	switch format {
	case "", FormatJSON:
		return writeJSON(w, items)
	case FormatYAML:
		return writeYAML(w, items)
	case FormatTable:
		for _, item := range items {
			if _, err := fmt.Fprintln(w, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func runQuery(src string, input any) ([]any, error) {
	query, err := gojq.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", src, err)
	}

	var results []any
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("query %q failed: %w", src, err)
		}
		results = append(results, v)
	}
	return results, nil
}

func writeDocuments(w io.Writer, format Format, docs []any) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, d := range docs {
			if err := enc.Encode(d); err != nil {
				return fmt.Errorf("failed to encode YAML: %w", err)
			}
		}
		return enc.Close()
	}
	for _, d := range docs {
		if err := writeJSON(w, d); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

func writeTable(w io.Writer, m *manifest.Manifest) error {
	tbl := table.New(w)
	tbl.SetBorders(false)
	tbl.SetHeaders("#", "ID", "Kind", "Location", "Dependencies", "Footer", "Payload")

	for i, e := range m.Entries() {
		location := e.Location()
		if e.Provided() {
			location = "(provided)"
		}
		payload := "-"
		if e.HasPayload() {
			payload = strings.Join(e.Payload().Keys(), ", ")
			if obj := e.ObjectName(); obj != "" {
				payload = obj + ": " + payload
			}
		}
		tbl.AddRow(
			strconv.Itoa(i+1),
			e.ID().String(),
			e.Kind().String(),
			location,
			strings.Join(assetid.Strings(e.Dependencies()), ", "),
			strconv.FormatBool(e.Footer()),
			payload,
		)
	}
	tbl.Render()
	return nil
}
