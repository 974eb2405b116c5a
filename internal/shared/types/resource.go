package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Resource is a bitmask of device resources. The values are part of the
// external protocol and must not change.
type Resource int32

const (
	ResourceNone    Resource = 0x0000
	ResourceDisplay Resource = 0x0001
	ResourceAudio   Resource = 0x0002
	ResourceTuner   Resource = 0x0010
)

// Has reports whether every bit of r2 is set in r
func (r Resource) Has(r2 Resource) bool {
	return r2 != ResourceNone && r&r2 == r2
}

// String renders the mask as a list of resource names, e.g. "display|audio"
func (r Resource) String() string {
	if r == ResourceNone {
		return "none"
	}
	var parts []string
	if r.Has(ResourceDisplay) {
		parts = append(parts, "display")
	}
	if r.Has(ResourceAudio) {
		parts = append(parts, "audio")
	}
	if r.Has(ResourceTuner) {
		parts = append(parts, "tuner")
	}
	if rest := r &^ (ResourceDisplay | ResourceAudio | ResourceTuner); rest != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}

// ParseResource reads a mask written either as a number ("3", "0x10") or as
// resource names joined by '|' or ',' ("display|audio").
func ParseResource(s string) (Resource, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 0, 32); err == nil {
		return Resource(n), nil
	}

	var r Resource
	for _, name := range strings.FieldsFunc(s, func(c rune) bool { return c == '|' || c == ',' }) {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "display":
			r |= ResourceDisplay
		case "audio":
			r |= ResourceAudio
		case "tuner":
			r |= ResourceTuner
		default:
			return ResourceNone, fmt.Errorf("unknown resource %q", name)
		}
	}
	if r == ResourceNone {
		return ResourceNone, fmt.Errorf("empty resource mask %q", s)
	}
	return r, nil
}
