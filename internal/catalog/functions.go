package catalog

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/assetgrid/internal/gate"
	"github.com/vk/assetgrid/internal/params"
	"github.com/vk/assetgrid/internal/snapshot"
)

// pureFunctions are available in every expression. They do not read the
// request context.
func pureFunctions() map[string]function.Function {
	return map[string]function.Function{
		"select2_separator": select2SeparatorFunc,
		"thousand_fallback": thousandFallbackFunc,
		"coalesce":          coalesceFunc,
		"format":            stdlib.FormatFunc,
		"join":              stdlib.JoinFunc,
		"jsonencode":        stdlib.JSONEncodeFunc,
		"lower":             stdlib.LowerFunc,
		"upper":             stdlib.UpperFunc,
		"merge":             stdlib.MergeFunc,
	}
}

// requestFunctions adds the functions that read c to the pure ones.
func requestFunctions(c *snapshot.Context) map[string]function.Function {
	fns := pureFunctions()
	fns["option"] = stringLookup("key", c.OptionString)
	fns["option_bool"] = boolLookup("key", c.OptionBool)
	fns["option_value"] = valueLookup("key", c.OptionValue)
	fns["option_is_page"] = boolLookup("key", func(key string) bool {
		return gate.OptionMatchesPage(key)(c)
	})
	fns["flag"] = boolLookup("name", c.Flag)
	fns["query"] = stringLookup("key", c.Query)
	fns["derived"] = valueLookup("name", c.Derived)
	fns["is_page"] = function.New(&function.Spec{
		VarParam: &function.Parameter{Name: "pages", Type: cty.String},
		Type:     function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			pages := make([]string, len(args))
			for i, a := range args {
				pages[i] = a.AsString()
			}
			return cty.BoolVal(gate.Page(pages...)(c)), nil
		},
	})
	return fns
}

func functionNames(fns map[string]function.Function) []string {
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	return names
}

func stringLookup(param string, lookup func(string) string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: param, Type: cty.String}},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(lookup(args[0].AsString())), nil
		},
	})
}

func boolLookup(param string, lookup func(string) bool) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: param, Type: cty.String}},
		Type:   function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.BoolVal(lookup(args[0].AsString())), nil
		},
	})
}

func valueLookup(param string, lookup func(string) any) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: param, Type: cty.String}},
		Type:   function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return toCty(lookup(args[0].AsString()))
		},
	})
}

var select2SeparatorFunc = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "option", Type: cty.String}},
	Type:   function.StaticReturnType(cty.List(cty.String)),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return gocty.ToCtyValue(params.Select2Separator(args[0].AsString()), retType)
	},
})

var thousandFallbackFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "decimal", Type: cty.String},
		{Name: "thousand", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(params.ThousandSeparator(args[0].AsString(), args[1].AsString())), nil
	},
})

// coalesceFunc returns the first argument that is not blank.
var coalesceFunc = function.New(&function.Spec{
	VarParam: &function.Parameter{Name: "values", Type: cty.String},
	Type:     function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		for _, a := range args {
			if s := a.AsString(); strings.TrimSpace(s) != "" {
				return cty.StringVal(s), nil
			}
		}
		return cty.StringVal(""), nil
	},
})
