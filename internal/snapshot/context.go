package snapshot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Input carries the raw facts used to build a Context. The maps are copied by
// New, so the caller may reuse or mutate them afterwards.
type Input struct {
	// Page is the route classification, e.g. "dashboard", "feedback", "shop".
	Page string
	// PageID is the host's identifier of the current page, if any.
	PageID   string
	LoggedIn bool
	Options  map[string]any
	Flags    map[string]bool
	Query    map[string]string
}

// Context is an immutable snapshot of runtime facts.
type Context struct {
	page     string
	pageID   string
	loggedIn bool
	options  map[string]any
	flags    map[string]bool
	query    map[string]string
	derived  map[string]any
}

// New builds a Context from the given input.
func New(in Input) *Context {
	c := &Context{
		page:     in.Page,
		pageID:   in.PageID,
		loggedIn: in.LoggedIn,
		options:  make(map[string]any, len(in.Options)),
		flags:    make(map[string]bool, len(in.Flags)),
		query:    make(map[string]string, len(in.Query)),
		derived:  map[string]any{},
	}
	for k, v := range in.Options {
		c.options[k] = CloneValue(v)
	}
	for k, v := range in.Flags {
		c.flags[k] = v
	}
	for k, v := range in.Query {
		c.query[k] = v
	}
	return c
}

// Empty returns a Context with no facts set.
func Empty() *Context {
	return New(Input{})
}

// Page returns the route classification.
func (c *Context) Page() string {
	return c.page
}

// PageID returns the host's identifier for the current page.
func (c *Context) PageID() string {
	return c.pageID
}

// IsPage reports whether the route classification is one of pages.
func (c *Context) IsPage(pages ...string) bool {
	for _, p := range pages {
		if c.page == p {
			return true
		}
	}
	return false
}

// LoggedIn reports whether the request is authenticated.
func (c *Context) LoggedIn() bool {
	return c.loggedIn
}

// HasOption reports whether an option key is present at all.
func (c *Context) HasOption(key string) bool {
	_, ok := c.options[key]
	return ok
}

// OptionValue returns a copy of the raw option value, or nil when unset.
func (c *Context) OptionValue(key string) any {
	return CloneValue(c.options[key])
}

// OptionString returns the option rendered as a string. Unset and nil
// options read as "". Booleans follow the host convention: true is "1",
// false is "".
func (c *Context) OptionString(key string) string {
	return stringify(c.options[key])
}

// OptionBool applies the host's string-to-bool rule to the option.
func (c *Context) OptionBool(key string) bool {
	return Truthy(c.options[key])
}

// Flag returns the named feature flag, false when unset.
func (c *Context) Flag(name string) bool {
	return c.flags[name]
}

// Query returns a query variable, "" when unset.
func (c *Context) Query(key string) string {
	return c.query[key]
}

// Derived returns a value computed for the current pass, nil when absent.
func (c *Context) Derived(name string) any {
	return CloneValue(c.derived[name])
}

// DerivedString is Derived rendered as a string.
func (c *Context) DerivedString(name string) string {
	return stringify(c.derived[name])
}

// WithDerived returns a copy of c whose derived values are replaced by
// values. The receiver is left untouched.
func (c *Context) WithDerived(values map[string]any) *Context {
	out := *c
	out.derived = make(map[string]any, len(values))
	for k, v := range values {
		out.derived[k] = CloneValue(v)
	}
	return &out
}

// OptionKeys returns the option keys in sorted order.
func (c *Context) OptionKeys() []string {
	return sortedKeys(c.options)
}

// FlagNames returns the flag names in sorted order.
func (c *Context) FlagNames() []string {
	return sortedKeys(c.flags)
}

// QueryKeys returns the query variable names in sorted order.
func (c *Context) QueryKeys() []string {
	return sortedKeys(c.query)
}

// DerivedNames returns the derived value names in sorted order.
func (c *Context) DerivedNames() []string {
	return sortedKeys(c.derived)
}

// Truthy implements the host's string-to-bool conversion: true, 1, "1",
// "yes" and "true" (any case) are true. Everything else is false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t == 1
	case int64:
		return t == 1
	case float64:
		return t == 1
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "yes" || s == "true" || s == "1"
	default:
		return false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return ""
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
