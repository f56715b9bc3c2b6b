// Package manifest holds the output of a resolution pass: an ordered list of
// immutable entries handed to whatever renders tags or issues requests.
package manifest

import (
	"encoding/json"

	"github.com/vk/assetgrid/internal/assetid"
	"github.com/vk/assetgrid/internal/params"
)

// EntrySpec is the input to NewEntry.
type EntrySpec struct {
	ID           assetid.ID
	Kind         Kind
	Location     string
	Dependencies []assetid.ID
	Footer       bool
	Payload      params.Bundle
	Version      string
	Media        string
	ObjectName   string
	Provided     bool
}

// Entry is one resource in a manifest. It cannot be modified after
// construction; accessors hand out copies.
type Entry struct {
	id           assetid.ID
	kind         Kind
	location     string
	dependencies []assetid.ID
	footer       bool
	payload      params.Bundle
	version      string
	media        string
	objectName   string
	provided     bool
}

// NewEntry builds an entry, copying every slice and map in spec.
func NewEntry(spec EntrySpec) Entry {
	return Entry{
		id:           spec.ID,
		kind:         spec.Kind,
		location:     spec.Location,
		dependencies: append([]assetid.ID(nil), spec.Dependencies...),
		footer:       spec.Footer,
		payload:      spec.Payload.Clone(),
		version:      spec.Version,
		media:        spec.Media,
		objectName:   spec.ObjectName,
		provided:     spec.Provided,
	}
}

// ID returns the resource handle.
func (e Entry) ID() assetid.ID { return e.id }

// Kind returns whether the entry is a style or a script.
func (e Entry) Kind() Kind { return e.kind }

// Location returns the opaque location hint.
func (e Entry) Location() string { return e.location }

// Dependencies returns the declared dependency handles.
func (e Entry) Dependencies() []assetid.ID {
	return append([]assetid.ID(nil), e.dependencies...)
}

// Footer reports whether the renderer should print the entry before the
// closing body tag.
func (e Entry) Footer() bool { return e.footer }

// HasPayload reports whether a parameter bundle is attached.
func (e Entry) HasPayload() bool { return e.payload != nil }

// Payload returns a copy of the parameter bundle, nil when absent.
func (e Entry) Payload() params.Bundle { return e.payload.Clone() }

// Version returns the asset version string.
func (e Entry) Version() string { return e.version }

// Media returns the stylesheet media attribute.
func (e Entry) Media() string { return e.media }

// ObjectName returns the name the payload is exposed under to the script.
func (e Entry) ObjectName() string { return e.objectName }

// Provided reports whether the host supplies the asset itself.
func (e Entry) Provided() bool { return e.provided }

// entryJSON is the wire form of an Entry.
type entryJSON struct {
	ID           string        `json:"id" yaml:"id"`
	Kind         Kind          `json:"kind" yaml:"kind"`
	Location     string        `json:"location,omitempty" yaml:"location,omitempty"`
	Dependencies []string      `json:"dependencies" yaml:"dependencies"`
	Footer       bool          `json:"footer" yaml:"footer"`
	Version      string        `json:"version,omitempty" yaml:"version,omitempty"`
	Media        string        `json:"media,omitempty" yaml:"media,omitempty"`
	ObjectName   string        `json:"object_name,omitempty" yaml:"object_name,omitempty"`
	Provided     bool          `json:"provided,omitempty" yaml:"provided,omitempty"`
	Payload      params.Bundle `json:"payload,omitempty" yaml:"payload,omitempty"`
}

func (e Entry) wire() entryJSON {
	return entryJSON{
		ID:           e.id.String(),
		Kind:         e.kind,
		Location:     e.location,
		Dependencies: assetid.Strings(e.dependencies),
		Footer:       e.footer,
		Version:      e.version,
		Media:        e.media,
		ObjectName:   e.objectName,
		Provided:     e.provided,
		Payload:      e.payload,
	}
}

// MarshalJSON implements json.Marshaler. Payload keys are emitted in sorted
// order by encoding/json, which keeps the output byte-stable.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

// MarshalYAML implements yaml.Marshaler.
func (e Entry) MarshalYAML() (any, error) {
	return e.wire(), nil
}
