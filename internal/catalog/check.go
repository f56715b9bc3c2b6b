package catalog

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/assetgrid/internal/snapshot"
)

// dryRun evaluates every request-time expression against an empty context,
// the way a resolution pass would, and collects the failures instead of
// panicking.
func (c *Catalog) dryRun() hcl.Diagnostics {
	var diags hcl.Diagnostics
	base := snapshot.Empty()

	values := make(map[string]any, len(c.derived))
	pass := base.WithDerived(values)
	for _, d := range c.derived {
		v, ok := c.tryValue(d.expr, pass, &diags)
		if ok {
			values[d.name] = v
		}
		pass = base.WithDerived(values)
	}

	names := make([]string, 0, len(c.paramSets))
	for name := range c.paramSets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, a := range c.paramSets[name].attrs {
			c.tryValue(a.expr, pass, &diags)
		}
	}

	for _, r := range c.resources {
		if isExprDefined(r.when) {
			if v, ok := c.tryEval(r.when, pass, &diags); ok {
				_, d := asBool(v, r.when.Range(), fmt.Sprintf("gate of '%s'", r.node.ID))
				diags = append(diags, d...)
			}
		}
		for _, layer := range r.params {
			for _, a := range layer.attrs {
				c.tryValue(a.expr, pass, &diags)
			}
		}
	}

	for _, b := range c.bodyClasses {
		if isExprDefined(b.when) {
			if v, ok := c.tryEval(b.when, pass, &diags); ok {
				_, d := asBool(v, b.when.Range(), "body_class gate")
				diags = append(diags, d...)
			}
		}
		if v, ok := c.tryEval(b.classes, pass, &diags); ok {
			_, d := asStrings(v, b.classes.Range(), "classes")
			diags = append(diags, d...)
		}
	}
	return diags
}

func (c *Catalog) tryEval(expr hcl.Expression, s *snapshot.Context, diags *hcl.Diagnostics) (cty.Value, bool) {
	v, d := c.eval(expr, s)
	*diags = append(*diags, d...)
	return v, !d.HasErrors()
}

func (c *Catalog) tryValue(expr hcl.Expression, s *snapshot.Context, diags *hcl.Diagnostics) (any, bool) {
	v, ok := c.tryEval(expr, s, diags)
	if !ok {
		return nil, false
	}
	out, err := fromCty(v)
	if err != nil {
		*diags = append(*diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid value",
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		})
		return nil, false
	}
	return out, true
}
