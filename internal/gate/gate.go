// Package gate provides inclusion predicates over a snapshot.Context.
//
// A Gate must be total and free of side effects: it may only read the
// context it is given. Missing options, flags and query variables read as
// falsy values, so a gate never fails on a well-formed context.
package gate

import "github.com/vk/assetgrid/internal/snapshot"

// Gate decides whether a resource is included in a resolution pass.
type Gate func(c *snapshot.Context) bool

// Eval evaluates g against c. A nil gate is treated as Always.
func Eval(g Gate, c *snapshot.Context) bool {
	if g == nil {
		return true
	}
	return g(c)
}

// Always includes unconditionally.
func Always() Gate {
	return func(*snapshot.Context) bool { return true }
}

// Never excludes unconditionally.
func Never() Gate {
	return func(*snapshot.Context) bool { return false }
}

// And is true when every gate is true. And() with no gates is true.
// Evaluation short-circuits left to right.
func And(gates ...Gate) Gate {
	return func(c *snapshot.Context) bool {
		for _, g := range gates {
			if !Eval(g, c) {
				return false
			}
		}
		return true
	}
}

// Or is true when any gate is true. Or() with no gates is false.
func Or(gates ...Gate) Gate {
	return func(c *snapshot.Context) bool {
		for _, g := range gates {
			if Eval(g, c) {
				return true
			}
		}
		return false
	}
}

// Not negates g.
func Not(g Gate) Gate {
	return func(c *snapshot.Context) bool {
		return !Eval(g, c)
	}
}

// Page matches when the route classification is one of pages.
func Page(pages ...string) Gate {
	return func(c *snapshot.Context) bool {
		return c.IsPage(pages...)
	}
}

// LoggedIn matches authenticated requests.
func LoggedIn() Gate {
	return func(c *snapshot.Context) bool {
		return c.LoggedIn()
	}
}

// Flag matches when the named feature flag is set.
func Flag(name string) Gate {
	return func(c *snapshot.Context) bool {
		return c.Flag(name)
	}
}

// OptionSet matches when the option renders to a non-empty string.
func OptionSet(key string) Gate {
	return func(c *snapshot.Context) bool {
		return c.OptionString(key) != ""
	}
}

// OptionEquals matches when the option renders to value.
func OptionEquals(key, value string) Gate {
	return func(c *snapshot.Context) bool {
		return c.OptionString(key) == value
	}
}

// OptionTrue matches when the option is truthy by the host's rules.
func OptionTrue(key string) Gate {
	return func(c *snapshot.Context) bool {
		return c.OptionBool(key)
	}
}

// QueryEquals matches when the query variable equals value.
func QueryEquals(key, value string) Gate {
	return func(c *snapshot.Context) bool {
		return c.Query(key) == value
	}
}

// OptionMatchesPage matches when the current page id equals the page id
// stored under an option, e.g. a configured feedback page. An empty page id
// never matches.
func OptionMatchesPage(key string) Gate {
	return func(c *snapshot.Context) bool {
		return c.PageID() != "" && c.OptionString(key) == c.PageID()
	}
}
