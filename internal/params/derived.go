package params

import "github.com/vk/assetgrid/internal/snapshot"

// Derivation declares a value computed from the context once per pass.
type Derivation struct {
	Name string
	Fn   func(c *snapshot.Context) any
}

// Derive computes every derivation exactly once, in order, and returns a
// context carrying the results. A derivation can read the ones declared
// before it through Context.Derived.
func Derive(c *snapshot.Context, ds ...Derivation) *snapshot.Context {
	values := make(map[string]any, len(ds))
	pass := c.WithDerived(values)
	for _, d := range ds {
		values[d.Name] = d.Fn(pass)
		pass = c.WithDerived(values)
	}
	return pass
}

// ThousandSeparator returns the configured thousand separator, or a fallback
// that cannot collide with the decimal separator: "." unless the decimal
// separator is already ".", in which case ",".
func ThousandSeparator(decimal, thousand string) string {
	if thousand != "" {
		return thousand
	}
	if decimal != "." {
		return "."
	}
	return ","
}

// Names of the derived values produced by SeparatorDerivations.
const (
	DecimalSeparator   = "decimal_separator"
	ThousandsSeparator = "thousand_separator"
)

// SeparatorDerivations derives decimal_separator and thousand_separator from
// the given option keys.
func SeparatorDerivations(decimalKey, thousandKey string) []Derivation {
	return []Derivation{
		{
			Name: DecimalSeparator,
			Fn: func(c *snapshot.Context) any {
				return c.OptionString(decimalKey)
			},
		},
		{
			Name: ThousandsSeparator,
			Fn: func(c *snapshot.Context) any {
				return ThousandSeparator(c.OptionString(decimalKey), c.OptionString(thousandKey))
			},
		},
	}
}

// Select2Separator maps the tag separator option to the token separators the
// tag search widget splits on.
func Select2Separator(option string) []string {
	switch option {
	case "space":
		return []string{" "}
	case "comma":
		return []string{","}
	default:
		return []string{",", " "}
	}
}
