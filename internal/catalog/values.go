package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// toCty converts a JSON-shaped Go value (as held by a snapshot) into cty.
func toCty(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("value is not JSON-serializable: %w", err)
	}
	typ, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(raw, typ)
}

// fromCty converts a cty value into plain Go data: nil, bool, string, int64,
// float64, []any or map[string]any.
func fromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return normalizeNumbers(out), nil
}

// normalizeNumbers turns json.Number into int64 when the number is integral
// and into float64 otherwise.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeNumbers(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalizeNumbers(inner)
		}
		return t
	default:
		return v
	}
}

// asBool converts an evaluated expression to a Go bool. Null is an error.
func asBool(v cty.Value, rng hcl.Range, what string) (bool, hcl.Diagnostics) {
	var out bool
	diags := decodeAs(v, cty.Bool, &out, rng, what)
	return out, diags
}

// asString converts an evaluated expression to a Go string.
func asString(v cty.Value, rng hcl.Range, what string) (string, hcl.Diagnostics) {
	var out string
	diags := decodeAs(v, cty.String, &out, rng, what)
	return out, diags
}

// asStrings converts an evaluated expression to a string slice. Null yields nil.
func asStrings(v cty.Value, rng hcl.Range, what string) ([]string, hcl.Diagnostics) {
	if v.IsNull() {
		return nil, nil
	}
	var out []string
	diags := decodeAs(v, cty.List(cty.String), &out, rng, what)
	return out, diags
}

func decodeAs(v cty.Value, want cty.Type, target any, rng hcl.Range, what string) hcl.Diagnostics {
	invalid := func(detail string) hcl.Diagnostics {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid " + what,
			Detail:   detail,
			Subject:  rng.Ptr(),
		}}
	}

	if v.IsNull() {
		return invalid(fmt.Sprintf("The %s must not be null.", what))
	}
	converted, err := convert.Convert(v, want)
	if err != nil {
		return invalid(fmt.Sprintf("The %s must be %s: %s.", what, want.FriendlyName(), err))
	}
	if err := gocty.FromCtyValue(converted, target); err != nil {
		return invalid(fmt.Sprintf("The %s could not be decoded: %s.", what, err))
	}
	return nil
}
