// Package contextfile reads request snapshots from disk. YAML and JSON
// documents are validated against an embedded JSON Schema; Java-style
// .properties files use flat dotted keys.
package contextfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/vk/assetgrid/internal/snapshot"
)

//go:embed context.schema.json
var schemaSource []byte

const schemaURL = "https://assetgrid.local/schemas/context.schema.json"

// Property key prefixes for maps in .properties files.
const (
	optionPrefix = "option."
	flagPrefix   = "flag."
	queryPrefix  = "query."
)

type document struct {
	Page     string          `json:"page"`
	PageID   any             `json:"page_id"`
	LoggedIn bool            `json:"logged_in"`
	Options  map[string]any  `json:"options"`
	Flags    map[string]bool `json:"flags"`
	Query    map[string]any  `json:"query"`
}

// Load reads the context file at path. The format is chosen by extension.
func Load(path string) (*snapshot.Context, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read context file: %w", err)
		}
		c, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("context file %s: %w", path, err)
		}
		return c, nil
	case ".properties":
		p, err := properties.LoadFile(path, properties.UTF8)
		if err != nil {
			return nil, fmt.Errorf("failed to read context file: %w", err)
		}
		c, err := FromProperties(p)
		if err != nil {
			return nil, fmt.Errorf("context file %s: %w", path, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported context file extension %q", filepath.Ext(path))
	}
}

// Parse decodes a YAML or JSON document. JSON is a subset of YAML, so one
// decoder serves both.
func Parse(data []byte) (*snapshot.Context, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	if raw == nil {
		return snapshot.Empty(), nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	if err := validate(encoded); err != nil {
		return nil, err
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	in := snapshot.Input{
		Page:     doc.Page,
		PageID:   scalarString(doc.PageID),
		LoggedIn: doc.LoggedIn,
		Flags:    doc.Flags,
		Options:  make(map[string]any, len(doc.Options)),
		Query:    make(map[string]string, len(doc.Query)),
	}
	for k, v := range doc.Options {
		in.Options[k] = normalize(v)
	}
	for k, v := range doc.Query {
		in.Query[k] = scalarString(v)
	}
	return snapshot.New(in), nil
}

// FromProperties builds a Context from flat keys: page, page_id, logged_in,
// option.<key>, flag.<name> and query.<key>. Option values stay strings.
func FromProperties(p *properties.Properties) (*snapshot.Context, error) {
	in := snapshot.Input{
		Options: map[string]any{},
		Flags:   map[string]bool{},
		Query:   map[string]string{},
	}
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		switch {
		case key == "page":
			in.Page = value
		case key == "page_id":
			in.PageID = value
		case key == "logged_in":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("logged_in: %w", err)
			}
			in.LoggedIn = b
		case strings.HasPrefix(key, optionPrefix):
			in.Options[strings.TrimPrefix(key, optionPrefix)] = value
		case strings.HasPrefix(key, flagPrefix):
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			in.Flags[strings.TrimPrefix(key, flagPrefix)] = b
		case strings.HasPrefix(key, queryPrefix):
			in.Query[strings.TrimPrefix(key, queryPrefix)] = value
		default:
			return nil, fmt.Errorf("unknown key %q", key)
		}
	}
	return snapshot.New(in), nil
}

func validate(encoded []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaSource))
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// normalize turns json.Number leaves into int64 or float64.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, inner := range t {
			t[k] = normalize(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalize(inner)
		}
		return t
	default:
		return v
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Overrides replaces individual facts of a loaded Context. Empty strings and
// nil pointers leave the loaded value alone.
type Overrides struct {
	Page     string
	PageID   string
	LoggedIn *bool
	Options  map[string]string
	Flags    map[string]bool
	Query    map[string]string
}

// Empty reports whether o changes nothing.
func (o Overrides) Empty() bool {
	return o.Page == "" && o.PageID == "" && o.LoggedIn == nil &&
		len(o.Options) == 0 && len(o.Flags) == 0 && len(o.Query) == 0
}

// Apply returns a new Context with o laid over base. A nil base is Empty.
func Apply(base *snapshot.Context, o Overrides) *snapshot.Context {
	if base == nil {
		base = snapshot.Empty()
	}
	in := snapshot.Input{
		Page:     base.Page(),
		PageID:   base.PageID(),
		LoggedIn: base.LoggedIn(),
		Options:  map[string]any{},
		Flags:    map[string]bool{},
		Query:    map[string]string{},
	}
	for _, k := range base.OptionKeys() {
		in.Options[k] = base.OptionValue(k)
	}
	for _, k := range base.FlagNames() {
		in.Flags[k] = base.Flag(k)
	}
	for _, k := range base.QueryKeys() {
		in.Query[k] = base.Query(k)
	}

	if o.Page != "" {
		in.Page = o.Page
	}
	if o.PageID != "" {
		in.PageID = o.PageID
	}
	if o.LoggedIn != nil {
		in.LoggedIn = *o.LoggedIn
	}
	for k, v := range o.Options {
		in.Options[k] = v
	}
	for k, v := range o.Flags {
		in.Flags[k] = v
	}
	for k, v := range o.Query {
		in.Query[k] = v
	}
	return snapshot.New(in)
}
