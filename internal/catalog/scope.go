package catalog

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/assetgrid/internal/hclexpr"
	"github.com/vk/assetgrid/internal/snapshot"
)

// Variables available to every expression.
const (
	varBaseURL = "base_url"
	varSuffix  = "suffix"
	varVersion = "version"
	varStrings = "strings"
)

// Variables that only exist while a request is resolved.
const (
	varPage     = "page"
	varPageID   = "page_id"
	varLoggedIn = "logged_in"
)

// loadVariables builds the variables known while the catalog is loaded.
func loadVariables(opts Options, texts map[string]cty.Value) map[string]cty.Value {
	strs := cty.EmptyObjectVal
	if len(texts) > 0 {
		strs = cty.ObjectVal(texts)
	}
	return map[string]cty.Value{
		varBaseURL: cty.StringVal(opts.BaseURL),
		varSuffix:  cty.StringVal(opts.suffix()),
		varVersion: cty.StringVal(opts.Version),
		varStrings: strs,
	}
}

func loadEvalContext(vars map[string]cty.Value) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: vars,
		Functions: pureFunctions(),
	}
}

func requestEvalContext(vars map[string]cty.Value, c *snapshot.Context) *hcl.EvalContext {
	all := make(map[string]cty.Value, len(vars)+3)
	for k, v := range vars {
		all[k] = v
	}
	all[varPage] = cty.StringVal(c.Page())
	all[varPageID] = cty.StringVal(c.PageID())
	all[varLoggedIn] = cty.BoolVal(c.LoggedIn())
	return &hcl.EvalContext{
		Variables: all,
		Functions: requestFunctions(c),
	}
}

var (
	loadScope = hclexpr.Scope{
		Name:      "load-time",
		Variables: []string{varBaseURL, varSuffix, varVersion, varStrings},
		Functions: functionNames(pureFunctions()),
	}
	requestScope = hclexpr.Scope{
		Name:      "request-time",
		Variables: []string{varBaseURL, varSuffix, varVersion, varStrings, varPage, varPageID, varLoggedIn},
		Functions: functionNames(requestFunctions(snapshot.Empty())),
	}
)
