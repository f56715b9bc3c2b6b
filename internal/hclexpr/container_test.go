package hclexpr_test

import (
	"sync"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/require"

	"github.com/vk/assetgrid/internal/hclexpr"
)

// parseExpr is a test helper to quickly get an hcl.Expression from a string.
func parseExpr(t *testing.T, exprStr string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(exprStr), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), "Expression parsing failed: %s", diags.Error())
	return expr
}

func TestContainer_AddAndExtract(t *testing.T) {
	c := hclexpr.NewContainer()
	c.Add(
		parseExpr(t, `option("wcvendors_tag_separator")`),
		parseExpr(t, `strings.no_matches`),
		parseExpr(t, `select2_separator(strings.separator)`),
		parseExpr(t, `strings.no_matches`),
	)

	require.Equal(t, []string{"option", "select2_separator"}, c.CalledFunctions())

	refs := c.References()
	require.Len(t, refs, 2)
	require.Equal(t, []string{"strings.no_matches", "strings.separator"}, []string{
		hclexpr.TraversalKey(refs[0]),
		hclexpr.TraversalKey(refs[1]),
	})
}

func TestContainer_NestedCalls(t *testing.T) {
	c := hclexpr.NewContainer(
		parseExpr(t, `is_page("dashboard") && (logged_in || flag("preview"))`),
		parseExpr(t, `"${base_url}assets/js/tags${suffix}.js"`),
		parseExpr(t, `[for p in ["a"] : upper(p)]`),
		parseExpr(t, `option_value("shipping").rates[0]`),
	)

	require.Equal(t, []string{"flag", "is_page", "option_value", "upper"}, c.CalledFunctions())

	var roots []string
	for _, ref := range c.References() {
		roots = append(roots, ref.RootName())
	}
	require.ElementsMatch(t, []string{"base_url", "logged_in", "suffix"}, roots)
}

func TestContainer_AddAfterExtract(t *testing.T) {
	c := hclexpr.NewContainer(parseExpr(t, `page`))
	require.Len(t, c.References(), 1)

	c.Add(parseExpr(t, `logged_in`), parseExpr(t, `flag("x")`))

	require.Equal(t, []string{"flag"}, c.CalledFunctions())
	require.Len(t, c.References(), 2)
}

func TestContainer_Check(t *testing.T) {
	scope := hclexpr.Scope{
		Name:      "load-time",
		Variables: []string{"base_url", "suffix"},
		Functions: []string{"coalesce"},
	}

	t.Run("allowed", func(t *testing.T) {
		c := hclexpr.NewContainer(parseExpr(t, `coalesce(base_url, "/")`), parseExpr(t, `suffix`))
		require.Empty(t, c.Check(scope))
	})

	t.Run("unknown variable and function", func(t *testing.T) {
		c := hclexpr.NewContainer(parseExpr(t, `option("x") == page`))
		diags := c.Check(scope)
		require.Len(t, diags, 2)
		require.True(t, diags.HasErrors())
		require.Contains(t, diags[0].Detail, `"page"`)
		require.Contains(t, diags[0].Detail, "load-time")
		require.Contains(t, diags[1].Detail, `"option"`)
		require.NotNil(t, diags[1].Subject)
	})
}

func TestContainer_ConcurrentAccess(t *testing.T) {
	c := hclexpr.NewContainer(
		parseExpr(t, `page`),
		parseExpr(t, `logged_in`),
		parseExpr(t, `flag("a")`),
	)

	var wg sync.WaitGroup
	numGoroutines := 100
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				require.Len(t, c.References(), 2)
			} else {
				require.Len(t, c.CalledFunctions(), 1)
			}
		}()
	}

	wg.Wait()
}

func TestContainer_EdgeCases(t *testing.T) {
	t.Run("Empty Container", func(t *testing.T) {
		c := hclexpr.NewContainer()
		require.Empty(t, c.References())
		require.Empty(t, c.CalledFunctions())
	})

	t.Run("Adding Nil Expressions", func(t *testing.T) {
		c := hclexpr.NewContainer(nil, parseExpr(t, `page`), nil)
		require.Len(t, c.References(), 1)
		require.Equal(t, "page", hclexpr.TraversalKey(c.References()[0]))
	})
}
