package catalog

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/assetgrid/internal/assetid"
	"github.com/vk/assetgrid/internal/bodyclass"
	"github.com/vk/assetgrid/internal/gate"
	"github.com/vk/assetgrid/internal/params"
	"github.com/vk/assetgrid/internal/registry"
	"github.com/vk/assetgrid/internal/snapshot"
)

// Options sets the load-time variables.
type Options struct {
	// BaseURL prefixes asset locations, usually ending in a slash.
	BaseURL string
	// Version is the default asset version string.
	Version string
	// Debug selects unminified assets: suffix is "" instead of ".min".
	Debug bool
}

func (o Options) suffix() string {
	if o.Debug {
		return ""
	}
	return ".min"
}

// Catalog is a loaded, validated set of declarations.
type Catalog struct {
	vars map[string]cty.Value

	derived     []derivedDecl
	paramSets   map[string]paramSetDecl
	resources   []resourceDecl
	bodyClasses []bodyClassDecl
}

type derivedDecl struct {
	name string
	expr hcl.Expression
}

type paramSetDecl struct {
	name  string
	attrs []attribute
}

// paramLayer is one params block: named sets first, then its own attributes.
type paramLayer struct {
	from  []string
	attrs []attribute
}

type resourceDecl struct {
	node   registry.Node
	when   hcl.Expression
	params []paramLayer
}

type bodyClassDecl struct {
	when    hcl.Expression
	classes hcl.Expression
}

// Len returns the number of declared resources.
func (c *Catalog) Len() int {
	return len(c.resources)
}

// Nodes returns the resources as registry nodes, in declaration order.
func (c *Catalog) Nodes() []registry.Node {
	nodes := make([]registry.Node, 0, len(c.resources))
	for _, r := range c.resources {
		n := r.node
		n.Dependencies = append([]assetid.ID(nil), r.node.Dependencies...)
		if isExprDefined(r.when) {
			n.Gate = c.gate(r.when, fmt.Sprintf("gate of '%s'", n.ID))
		}
		if len(r.params) > 0 {
			n.Params = params.Sources(c.paramSources(r)...)
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// Derivations returns the derived values in declaration order.
func (c *Catalog) Derivations() []params.Derivation {
	out := make([]params.Derivation, 0, len(c.derived))
	for _, d := range c.derived {
		out = append(out, params.Derivation{
			Name: d.name,
			Fn:   c.value(d.expr, fmt.Sprintf("derived value '%s'", d.name)),
		})
	}
	return out
}

// BodyClassRules returns the body class rules in declaration order.
func (c *Catalog) BodyClassRules() []bodyclass.Rule {
	rules := make([]bodyclass.Rule, 0, len(c.bodyClasses))
	for i, b := range c.bodyClasses {
		what := fmt.Sprintf("body_class #%d", i+1)
		rule := bodyclass.Rule{Classes: c.classes(b.classes, what)}
		if isExprDefined(b.when) {
			rule.Gate = c.gate(b.when, what)
		}
		rules = append(rules, rule)
	}
	return rules
}

// Register adds the derived values and then the resources to reg.
func (c *Catalog) Register(reg *registry.Registry) error {
	for _, d := range c.Derivations() {
		if err := reg.RegisterDerived(d); err != nil {
			return fmt.Errorf("registering catalog: %w", err)
		}
	}
	for _, n := range c.Nodes() {
		if err := reg.Register(n); err != nil {
			return fmt.Errorf("registering catalog: %w", err)
		}
	}
	return nil
}

func (c *Catalog) paramSources(r resourceDecl) []params.Source {
	var sources []params.Source
	add := func(attrs []attribute) {
		for _, a := range attrs {
			what := fmt.Sprintf("parameter '%s' of '%s'", a.name, r.node.ID)
			sources = append(sources, params.Dynamic(a.name, c.value(a.expr, what)))
		}
	}
	for _, layer := range r.params {
		for _, name := range layer.from {
			sources = append(sources, params.Spread(c.paramSet(name, r.node.ID)))
		}
		add(layer.attrs)
	}
	return sources
}

// paramSet evaluates every attribute of a named set into one bundle.
func (c *Catalog) paramSet(name string, owner assetid.ID) func(*snapshot.Context) params.Bundle {
	attrs := c.paramSets[name].attrs
	values := make([]func(*snapshot.Context) any, len(attrs))
	for i, a := range attrs {
		values[i] = c.value(a.expr, fmt.Sprintf("parameter '%s' of param set '%s' used by '%s'", a.name, name, owner))
	}
	return func(s *snapshot.Context) params.Bundle {
		out := make(params.Bundle, len(attrs))
		for i, a := range attrs {
			out[a.name] = values[i](s)
		}
		return out
	}
}

// eval evaluates a request-time expression.
func (c *Catalog) eval(expr hcl.Expression, s *snapshot.Context) (cty.Value, hcl.Diagnostics) {
	return expr.Value(requestEvalContext(c.vars, s))
}

func (c *Catalog) mustEval(expr hcl.Expression, s *snapshot.Context, what string) cty.Value {
	v, diags := c.eval(expr, s)
	if diags.HasErrors() {
		panic(fmt.Errorf("catalog: evaluating %s: %w", what, diags))
	}
	return v
}

func (c *Catalog) gate(expr hcl.Expression, what string) gate.Gate {
	return func(s *snapshot.Context) bool {
		ok, diags := asBool(c.mustEval(expr, s, what), expr.Range(), what)
		if diags.HasErrors() {
			panic(fmt.Errorf("catalog: %w", diags))
		}
		return ok
	}
}

func (c *Catalog) value(expr hcl.Expression, what string) func(*snapshot.Context) any {
	return func(s *snapshot.Context) any {
		out, err := fromCty(c.mustEval(expr, s, what))
		if err != nil {
			panic(fmt.Errorf("catalog: converting %s: %w", what, err))
		}
		return out
	}
}

func (c *Catalog) classes(expr hcl.Expression, what string) func(*snapshot.Context) []string {
	return func(s *snapshot.Context) []string {
		out, diags := asStrings(c.mustEval(expr, s, what), expr.Range(), what)
		if diags.HasErrors() {
			panic(fmt.Errorf("catalog: %w", diags))
		}
		return out
	}
}
