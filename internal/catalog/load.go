package catalog

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/assetgrid/internal/assetid"
	"github.com/vk/assetgrid/internal/ctxlog"
	"github.com/vk/assetgrid/internal/fsutil"
	"github.com/vk/assetgrid/internal/hclexpr"
	"github.com/vk/assetgrid/internal/manifest"
	"github.com/vk/assetgrid/internal/registry"
)

//go:embed builtin/*.hcl
var builtinFS embed.FS

// File is an in-memory catalog file.
type File struct {
	Name string
	Src  []byte
}

// Load reads every .hcl file found under paths. Directories are walked
// recursively; missing paths are skipped, but finding no file at all is an
// error.
func Load(ctx context.Context, opts Options, paths ...string) (*Catalog, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Catalog loader started.", "path_count", len(paths))

	names, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to discover catalog files: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no catalog files found in %v", paths)
	}
	logger.Debug("Discovered catalog files.", "count", len(names))

	parser := hclparse.NewParser()
	bodies := make([]hcl.Body, 0, len(names))
	for _, name := range names {
		file, diags := parser.ParseHCLFile(name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse catalog file %s: %w", name, diags)
		}
		bodies = append(bodies, file.Body)
	}
	return build(ctx, opts, bodies)
}

// Builtin loads the catalog shipped with the binary.
func Builtin(ctx context.Context, opts Options) (*Catalog, error) {
	names, err := fs.Glob(builtinFS, "builtin/*.hcl")
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(names))
	for _, name := range names {
		src, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read built-in catalog %s: %w", name, err)
		}
		files = append(files, File{Name: name, Src: src})
	}
	return FromSource(ctx, opts, files...)
}

// FromSource loads a catalog from in-memory files, in the given order.
func FromSource(ctx context.Context, opts Options, files ...File) (*Catalog, error) {
	parser := hclparse.NewParser()
	bodies := make([]hcl.Body, 0, len(files))
	for _, f := range files {
		file, diags := parser.ParseHCL(f.Src, f.Name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse catalog file %s: %w", f.Name, diags)
		}
		bodies = append(bodies, file.Body)
	}
	return build(ctx, opts, bodies)
}

// build decodes the parsed bodies in three steps: strings first, since every
// other load-time expression may refer to them, then everything else in
// source order, then cross-references and a dry run.
func build(ctx context.Context, opts Options, bodies []hcl.Body) (*Catalog, error) {
	logger := ctxlog.FromContext(ctx)

	var (
		diags  hcl.Diagnostics
		blocks hcl.Blocks
	)
	for _, body := range bodies {
		content, contentDiags := body.Content(rootSchema)
		diags = append(diags, contentDiags...)
		if content != nil {
			blocks = append(blocks, content.Blocks...)
		}
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode catalog: %w", diags)
	}

	texts, textDiags := decodeStrings(opts, blocks)
	diags = append(diags, textDiags...)

	c := &Catalog{
		vars:      loadVariables(opts, texts),
		paramSets: make(map[string]paramSetDecl),
	}
	l := &loader{catalog: c, evalCtx: loadEvalContext(c.vars), ids: make(map[assetid.ID]hcl.Range)}
	for _, block := range blocks {
		switch block.Type {
		case blockDerived:
			diags = append(diags, l.derived(block)...)
		case blockParamSet:
			diags = append(diags, l.paramSet(block)...)
		case blockStyle:
			diags = append(diags, l.resource(block, manifest.Style)...)
		case blockScript:
			diags = append(diags, l.resource(block, manifest.Script)...)
		case blockBodyClass:
			diags = append(diags, l.bodyClass(block)...)
		}
	}
	diags = append(diags, l.checkReferences()...)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid catalog: %w", diags)
	}

	if dryDiags := c.dryRun(); dryDiags.HasErrors() {
		return nil, fmt.Errorf("invalid catalog: %w", dryDiags)
	}

	logger.Debug("Catalog loading complete.",
		"resources", len(c.resources),
		"derived", len(c.derived),
		"param_sets", len(c.paramSets),
		"body_classes", len(c.bodyClasses),
	)
	return c, nil
}

// decodeStrings evaluates every strings block. Keys must be unique across
// all blocks.
func decodeStrings(opts Options, blocks hcl.Blocks) (map[string]cty.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	texts := make(map[string]cty.Value)
	seen := make(map[string]hcl.Range)
	evalCtx := loadEvalContext(loadVariables(opts, nil))

	for _, block := range blocks {
		if block.Type != blockStrings {
			continue
		}
		attrs, attrDiags := orderedAttributes(block.Body)
		diags = append(diags, attrDiags...)
		for _, a := range attrs {
			if prev, dup := seen[a.name]; dup {
				diags = append(diags, duplicate("string", a.name, a.expr.Range(), prev))
				continue
			}
			seen[a.name] = a.expr.Range()

			exprDiags := hclexpr.NewContainer(a.expr).Check(loadScope)
			diags = append(diags, exprDiags...)
			if exprDiags.HasErrors() {
				continue
			}
			v, valDiags := a.expr.Value(evalCtx)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			s, strDiags := asString(v, a.expr.Range(), "string '"+a.name+"'")
			diags = append(diags, strDiags...)
			texts[a.name] = cty.StringVal(s)
		}
	}
	return texts, diags
}

// loader carries the state of the second decoding step.
type loader struct {
	catalog *Catalog
	evalCtx *hcl.EvalContext

	ids          map[assetid.ID]hcl.Range
	derivedNames map[string]hcl.Range
	setRanges    map[string]hcl.Range
	// fromRefs remembers every param set reference for checkReferences.
	fromRefs []fromRef
}

type fromRef struct {
	name  string
	owner assetid.ID
	rng   hcl.Range
}

func (l *loader) derived(block *hcl.Block) hcl.Diagnostics {
	name := block.Labels[0]
	var body derivedBlock
	diags := gohcl.DecodeBody(block.Body, nil, &body)
	if diags.HasErrors() {
		return diags
	}

	if l.derivedNames == nil {
		l.derivedNames = make(map[string]hcl.Range)
	}
	if prev, dup := l.derivedNames[name]; dup {
		return append(diags, duplicate("derived value", name, block.DefRange, prev))
	}
	l.derivedNames[name] = block.DefRange

	diags = append(diags, hclexpr.NewContainer(body.Value).Check(requestScope)...)
	l.catalog.derived = append(l.catalog.derived, derivedDecl{name: name, expr: body.Value})
	return diags
}

func (l *loader) paramSet(block *hcl.Block) hcl.Diagnostics {
	name := block.Labels[0]
	attrs, diags := orderedAttributes(block.Body)
	if diags.HasErrors() {
		return diags
	}

	if l.setRanges == nil {
		l.setRanges = make(map[string]hcl.Range)
	}
	if prev, dup := l.setRanges[name]; dup {
		return append(diags, duplicate("param set", name, block.DefRange, prev))
	}
	l.setRanges[name] = block.DefRange

	exprs := hclexpr.NewContainer()
	for _, a := range attrs {
		exprs.Add(a.expr)
	}
	diags = append(diags, exprs.Check(requestScope)...)
	l.catalog.paramSets[name] = paramSetDecl{name: name, attrs: attrs}
	return diags
}

func (l *loader) resource(block *hcl.Block, kind manifest.Kind) hcl.Diagnostics {
	var diags hcl.Diagnostics

	id, err := assetid.Parse(block.Labels[0])
	if err != nil {
		return append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid resource id",
			Detail:   err.Error(),
			Subject:  block.LabelRanges[0].Ptr(),
		})
	}
	if prev, dup := l.ids[id]; dup {
		return append(diags, duplicate("resource", string(id), block.DefRange, prev))
	}
	l.ids[id] = block.DefRange

	var body resourceBlock
	decodeDiags := gohcl.DecodeBody(block.Body, nil, &body)
	diags = append(diags, decodeDiags...)
	if decodeDiags.HasErrors() {
		return diags
	}

	static := hclexpr.NewContainer()
	for _, expr := range []hcl.Expression{body.Src, body.Deps, body.Footer, body.Version, body.Media, body.Object, body.Provided} {
		if isExprDefined(expr) {
			static.Add(expr)
		}
	}
	if checkDiags := static.Check(loadScope); checkDiags.HasErrors() {
		return append(diags, checkDiags...)
	}

	node := l.staticFields(id, kind, block, body, &diags)
	decl := resourceDecl{node: node}

	dynamic := hclexpr.NewContainer()
	if isExprDefined(body.When) {
		decl.when = body.When
		dynamic.Add(body.When)
	}
	for _, p := range body.Params {
		layer, layerDiags := l.paramLayer(id, p)
		diags = append(diags, layerDiags...)
		for _, a := range layer.attrs {
			dynamic.Add(a.expr)
		}
		decl.params = append(decl.params, layer)
	}
	diags = append(diags, dynamic.Check(requestScope)...)

	l.catalog.resources = append(l.catalog.resources, decl)
	return diags
}

// staticFields evaluates the load-time attributes of a resource.
func (l *loader) staticFields(id assetid.ID, kind manifest.Kind, block *hcl.Block, body resourceBlock, diags *hcl.Diagnostics) registry.Node {
	str := func(expr hcl.Expression, name string) string {
		if !isExprDefined(expr) {
			return ""
		}
		v, d := expr.Value(l.evalCtx)
		*diags = append(*diags, d...)
		if d.HasErrors() {
			return ""
		}
		s, d := asString(v, expr.Range(), name)
		*diags = append(*diags, d...)
		return s
	}
	boolean := func(expr hcl.Expression, name string) bool {
		if !isExprDefined(expr) {
			return false
		}
		v, d := expr.Value(l.evalCtx)
		*diags = append(*diags, d...)
		if d.HasErrors() {
			return false
		}
		b, d := asBool(v, expr.Range(), name)
		*diags = append(*diags, d...)
		return b
	}

	node := registry.Node{
		ID:         id,
		Kind:       kind,
		Location:   str(body.Src, "src"),
		Footer:     boolean(body.Footer, "footer"),
		Version:    str(body.Version, "version"),
		Media:      str(body.Media, "media"),
		ObjectName: str(body.Object, "object"),
		Provided:   boolean(body.Provided, "provided"),
	}

	if isExprDefined(body.Deps) {
		v, d := body.Deps.Value(l.evalCtx)
		*diags = append(*diags, d...)
		if !d.HasErrors() {
			deps, d := asStrings(v, body.Deps.Range(), "deps")
			*diags = append(*diags, d...)
			for _, dep := range deps {
				depID, err := assetid.Parse(dep)
				if err != nil {
					*diags = append(*diags, &hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "Invalid dependency",
						Detail:   err.Error(),
						Subject:  body.Deps.Range().Ptr(),
					})
					continue
				}
				node.Dependencies = append(node.Dependencies, depID)
			}
		}
	}

	invalid := func(detail string) {
		*diags = append(*diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid resource",
			Detail:   fmt.Sprintf("Resource '%s': %s", id, detail),
			Subject:  block.DefRange.Ptr(),
		})
	}
	switch {
	case node.Provided && isExprDefined(body.Src):
		invalid("a provided resource cannot have a src.")
	case !node.Provided && !isExprDefined(body.Src):
		invalid("src is required unless provided = true.")
	}
	if kind == manifest.Script && isExprDefined(body.Media) {
		invalid("media only applies to styles.")
	}
	if kind == manifest.Style && isExprDefined(body.Object) {
		invalid("object only applies to scripts.")
	}
	if kind == manifest.Style && len(body.Params) > 0 {
		invalid("params only apply to scripts.")
	}
	return node
}

func (l *loader) paramLayer(owner assetid.ID, p *paramsBlock) (paramLayer, hcl.Diagnostics) {
	var (
		layer paramLayer
		diags hcl.Diagnostics
	)

	if isExprDefined(p.From) {
		if checkDiags := hclexpr.NewContainer(p.From).Check(loadScope); checkDiags.HasErrors() {
			return layer, checkDiags
		}
		v, d := p.From.Value(l.evalCtx)
		diags = append(diags, d...)
		if !d.HasErrors() {
			names, d := asStrings(v, p.From.Range(), "from")
			diags = append(diags, d...)
			layer.from = names
			for _, name := range names {
				l.fromRefs = append(l.fromRefs, fromRef{name: name, owner: owner, rng: p.From.Range()})
			}
		}
	}

	attrs, attrDiags := orderedAttributes(p.Remain)
	diags = append(diags, attrDiags...)
	layer.attrs = attrs
	return layer, diags
}

func (l *loader) bodyClass(block *hcl.Block) hcl.Diagnostics {
	var body bodyClassBlock
	diags := gohcl.DecodeBody(block.Body, nil, &body)
	if diags.HasErrors() {
		return diags
	}

	decl := bodyClassDecl{classes: body.Classes}
	exprs := hclexpr.NewContainer(body.Classes)
	if isExprDefined(body.When) {
		decl.when = body.When
		exprs.Add(body.When)
	}
	diags = append(diags, exprs.Check(requestScope)...)
	l.catalog.bodyClasses = append(l.catalog.bodyClasses, decl)
	return diags
}

// checkReferences verifies that every param set named in a from list exists.
func (l *loader) checkReferences() hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, ref := range l.fromRefs {
		if _, ok := l.catalog.paramSets[ref.name]; ok {
			continue
		}
		rng := ref.rng
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown param set",
			Detail:   fmt.Sprintf("Resource '%s' uses param set %q, which is not declared.", ref.owner, ref.name),
			Subject:  &rng,
		})
	}
	return diags
}

func duplicate(what, name string, rng, prev hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Duplicate " + what,
		Detail:   fmt.Sprintf("The %s %q was already declared at %s.", what, name, prev),
		Subject:  rng.Ptr(),
	}
}
