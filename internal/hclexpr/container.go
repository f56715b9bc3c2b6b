// Package hclexpr collects HCL expressions and checks which variables and
// functions they use before anything is evaluated.
package hclexpr

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
)

// Container is a thread-safe helper that gathers HCL expressions and provides
// analysis results, such as variable references and function calls.
type Container struct {
	// analyzeOnce ensures the extraction logic runs exactly once per batch of Adds.
	analyzeOnce sync.Once

	mu          sync.RWMutex
	expressions []hcl.Expression

	references      []hcl.Traversal
	calledFunctions []Call
}

// NewContainer creates a new, empty expression container.
func NewContainer(exprs ...hcl.Expression) *Container {
	c := &Container{}
	c.Add(exprs...)
	return c
}

// Add adds one or more expressions to the container for analysis.
// It safely ignores any nil expressions.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// NOTE: resetting the Once is only safe because every Add happens during
	// the single-threaded load phase.
	c.analyzeOnce = sync.Once{}

	for _, expr := range exprs {
		if expr != nil {
			c.expressions = append(c.expressions, expr)
		}
	}
}

func (c *Container) analyze() {
	c.analyzeOnce.Do(func() {
		c.mu.RLock()
		refs, funcs := extractReferencesAndFunctions(c.expressions...)
		c.mu.RUnlock()

		c.mu.Lock()
		c.references = refs
		c.calledFunctions = funcs
		c.mu.Unlock()
	})
}

// References returns all unique variable traversals found in the expressions.
func (c *Container) References() []hcl.Traversal {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.references
}

// CalledFunctions returns the names of all functions called in the expressions.
func (c *Container) CalledFunctions() []string {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.calledFunctions))
	for i, f := range c.calledFunctions {
		names[i] = f.Name
	}
	return names
}

// Scope lists what expressions in one evaluation phase may use.
type Scope struct {
	// Name appears in diagnostics, e.g. "load-time" or "request-time".
	Name      string
	Variables []string
	Functions []string
}

// Check reports every reference to a root variable and every function call
// that the scope does not allow.
func (c *Container) Check(scope Scope) hcl.Diagnostics {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()

	vars := toSet(scope.Variables)
	funcs := toSet(scope.Functions)

	var diags hcl.Diagnostics
	for _, ref := range c.references {
		root := ref.RootName()
		if _, ok := vars[root]; ok {
			continue
		}
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown variable",
			Detail: fmt.Sprintf("There is no variable named %q in %s expressions. Available: %s.",
				root, scope.Name, list(scope.Variables)),
			Subject: ref.SourceRange().Ptr(),
		})
	}
	for _, call := range c.calledFunctions {
		if _, ok := funcs[call.Name]; ok {
			continue
		}
		rng := call.Range
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Call to unknown function",
			Detail: fmt.Sprintf("There is no function named %q in %s expressions. Available: %s.",
				call.Name, scope.Name, list(scope.Functions)),
			Subject: &rng,
		})
	}
	return diags
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func list(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
