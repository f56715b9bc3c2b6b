package manifest

import (
	"fmt"
	"strings"
)

// Kind distinguishes stylesheets from scripts.
type Kind int

const (
	// Style is a stylesheet resource.
	Style Kind = iota + 1
	// Script is a script resource.
	Script
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Style:
		return "style"
	case Script:
		return "script"
	default:
		return "unknown"
	}
}

// Valid reports whether k is Style or Script.
func (k Kind) Valid() bool {
	return k == Style || k == Script
}

// ParseKind converts "style" or "script" (any case) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "style":
		return Style, nil
	case "script":
		return Script, nil
	default:
		return 0, fmt.Errorf("unknown resource kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
