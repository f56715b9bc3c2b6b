package manifest

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/twmb/murmur3"

	"github.com/vk/assetgrid/internal/assetid"
)

// Manifest is the ordered result of one resolution pass.
type Manifest struct {
	entries []Entry
	index   map[assetid.ID]int
}

// New builds a manifest from entries in the given order.
func New(entries []Entry) *Manifest {
	m := &Manifest{
		entries: append([]Entry(nil), entries...),
		index:   make(map[assetid.ID]int, len(entries)),
	}
	for i, e := range m.entries {
		m.index[e.ID()] = i
	}
	return m
}

// Len returns the number of entries.
func (m *Manifest) Len() int { return len(m.entries) }

// Entries returns the entries in emission order.
func (m *Manifest) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// IDs returns the entry handles in emission order.
func (m *Manifest) IDs() []assetid.ID {
	ids := make([]assetid.ID, len(m.entries))
	for i, e := range m.entries {
		ids[i] = e.ID()
	}
	return ids
}

// Index returns the position of id, or -1 when it was not emitted.
func (m *Manifest) Index(id assetid.ID) int {
	if i, ok := m.index[id]; ok {
		return i
	}
	return -1
}

// Get returns the entry for id.
func (m *Manifest) Get(id assetid.ID) (Entry, bool) {
	i, ok := m.index[id]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// Filter returns the entries of kind k in emission order.
func (m *Manifest) Filter(k Kind) []Entry {
	var out []Entry
	for _, e := range m.entries {
		if e.Kind() == k {
			out = append(out, e)
		}
	}
	return out
}

// MarshalJSON implements json.Marshaler as a JSON array of entries.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	if m.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.entries)
}

// MarshalYAML implements yaml.Marshaler.
func (m *Manifest) MarshalYAML() (any, error) {
	if m.entries == nil {
		return []Entry{}, nil
	}
	return m.entries, nil
}

// Generic returns the manifest decoded into plain JSON values
// ([]any of map[string]any), the form expected by query engines.
func (m *Manifest) Generic() (any, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return out, nil
}

// Fingerprint returns a murmur3 digest of the JSON encoding. Two manifests
// with the same fingerprint are byte-identical with overwhelming probability,
// which makes it usable as a cache validator by renderers.
func (m *Manifest) Fingerprint() (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	hasher := murmur3.New64()
	hasher.Write(raw)
	return strconv.FormatUint(hasher.Sum64(), 16), nil
}
