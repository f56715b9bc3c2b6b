package params

import (
	"sort"

	"github.com/vk/assetgrid/internal/snapshot"
)

// Bundle maps parameter names to JSON-serializable values.
type Bundle map[string]any

// Clone returns a deep copy of b.
func (b Bundle) Clone() Bundle {
	if b == nil {
		return nil
	}
	out := make(Bundle, len(b))
	for k, v := range b {
		out[k] = snapshot.CloneValue(v)
	}
	return out
}

// Keys returns the bundle keys in sorted order.
func (b Bundle) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Builder computes a bundle for one resource from the pass context.
type Builder func(c *snapshot.Context) Bundle

// sourceKind distinguishes the three ways a source contributes.
type sourceKind int

const (
	staticSource sourceKind = iota
	dynamicSource
	spreadSource
)

// Source is one ordered contribution to a bundle.
type Source struct {
	kind   sourceKind
	key    string
	value  any
	fn     func(c *snapshot.Context) any
	spread func(c *snapshot.Context) Bundle
}

// Key returns the key a static or dynamic source writes. Spread sources
// return "".
func (s Source) Key() string {
	return s.key
}

// Static contributes a fixed value under key.
func Static(key string, value any) Source {
	return Source{kind: staticSource, key: key, value: snapshot.CloneValue(value)}
}

// Dynamic contributes fn(c) under key.
func Dynamic(key string, fn func(c *snapshot.Context) any) Source {
	return Source{kind: dynamicSource, key: key, fn: fn}
}

// Spread contributes every key of the bundle fn returns, in sorted key order.
// It is how a shared base map is merged into a resource's own parameters.
func Spread(fn func(c *snapshot.Context) Bundle) Source {
	return Source{kind: spreadSource, spread: fn}
}

// Build applies sources in order; a later source overwrites an earlier one
// with the same key. The result is never nil.
func Build(c *snapshot.Context, sources ...Source) Bundle {
	out := Bundle{}
	for _, s := range sources {
		switch s.kind {
		case staticSource:
			out[s.key] = snapshot.CloneValue(s.value)
		case dynamicSource:
			out[s.key] = s.fn(c)
		case spreadSource:
			part := s.spread(c)
			for _, k := range part.Keys() {
				out[k] = snapshot.CloneValue(part[k])
			}
		}
	}
	return out
}

// Sources adapts an ordered source list to a Builder.
func Sources(sources ...Source) Builder {
	list := append([]Source(nil), sources...)
	return func(c *snapshot.Context) Bundle {
		return Build(c, list...)
	}
}

// Merge overlays overrides onto a copy of base, left to right.
func Merge(base Bundle, overrides ...Bundle) Bundle {
	out := base.Clone()
	if out == nil {
		out = Bundle{}
	}
	for _, o := range overrides {
		for k, v := range o {
			out[k] = snapshot.CloneValue(v)
		}
	}
	return out
}
