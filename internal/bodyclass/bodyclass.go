// Package bodyclass computes the CSS classes a page's body element carries,
// using the same gates that decide which assets load.
package bodyclass

import (
	"strings"

	"github.com/vk/assetgrid/internal/gate"
	"github.com/vk/assetgrid/internal/snapshot"
)

// NotFoundPage is the page classification for which no classes are emitted.
const NotFoundPage = "404"

// Rule contributes classes when its gate passes.
type Rule struct {
	// Gate decides whether the rule applies. Nil always applies.
	Gate gate.Gate
	// Classes may return space-separated class lists; they are split.
	Classes func(c *snapshot.Context) []string
}

// Evaluate returns the classes of every applicable rule, in rule order,
// without duplicates or empty names. The not-found page gets nil.
func Evaluate(c *snapshot.Context, rules ...Rule) []string {
	if c == nil {
		c = snapshot.Empty()
	}
	if c.Page() == NotFoundPage {
		return nil
	}

	out := []string{}
	seen := make(map[string]struct{})
	for _, r := range rules {
		if r.Classes == nil || !gate.Eval(r.Gate, c) {
			continue
		}
		for _, entry := range r.Classes(c) {
			for _, class := range strings.Fields(entry) {
				if _, dup := seen[class]; dup {
					continue
				}
				seen[class] = struct{}{}
				out = append(out, class)
			}
		}
	}
	return out
}
