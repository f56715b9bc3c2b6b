package catalog

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
)

// Block types a catalog file may contain.
const (
	blockStrings   = "strings"
	blockDerived   = "derived"
	blockParamSet  = "param_set"
	blockStyle     = "style"
	blockScript    = "script"
	blockBodyClass = "body_class"
)

// rootSchema is used instead of a gohcl root struct so that blocks keep their
// source order across types; resources are registered in that order.
var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockStrings},
		{Type: blockDerived, LabelNames: []string{"name"}},
		{Type: blockParamSet, LabelNames: []string{"name"}},
		{Type: blockStyle, LabelNames: []string{"id"}},
		{Type: blockScript, LabelNames: []string{"id"}},
		{Type: blockBodyClass},
	},
}

type derivedBlock struct {
	Value hcl.Expression `hcl:"value"`
}

// resourceBlock is the body of a style or script block.
type resourceBlock struct {
	Src      hcl.Expression `hcl:"src,optional"`
	Deps     hcl.Expression `hcl:"deps,optional"`
	Footer   hcl.Expression `hcl:"footer,optional"`
	When     hcl.Expression `hcl:"when,optional"`
	Version  hcl.Expression `hcl:"version,optional"`
	Media    hcl.Expression `hcl:"media,optional"`
	Object   hcl.Expression `hcl:"object,optional"`
	Provided hcl.Expression `hcl:"provided,optional"`
	Params   []*paramsBlock `hcl:"params,block"`
}

type paramsBlock struct {
	From   hcl.Expression `hcl:"from,optional"`
	Remain hcl.Body       `hcl:",remain"`
}

type bodyClassBlock struct {
	When    hcl.Expression `hcl:"when,optional"`
	Classes hcl.Expression `hcl:"classes"`
}

// attribute is a named expression, kept in source order.
type attribute struct {
	name string
	expr hcl.Expression
}

// orderedAttributes returns the attributes of a body that has no nested
// blocks, sorted by their position in the file.
func orderedAttributes(body hcl.Body) ([]attribute, hcl.Diagnostics) {
	attrs, diags := body.JustAttributes()
	out := make([]attribute, 0, len(attrs))
	for name, attr := range attrs {
		out = append(out, attribute{name: name, expr: attr.Expr})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].expr.Range().Start.Byte < out[j].expr.Range().Start.Byte
	})
	return out, diags
}

// isExprDefined reports whether an optional attribute was actually written.
// gohcl fills omitted optional expressions with a zero-width placeholder, so
// a nil check alone is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	return rng.End.Byte > rng.Start.Byte
}
