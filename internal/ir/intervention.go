package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Intervention fixes node values (the do operator).
// A nil or empty Intervention means no intervention. Negative values are
// ordinary values.
type Intervention map[string]int

// Names returns the intervened node names in sorted order.
func (do Intervention) Names() []string {
	names := make([]string, 0, len(do))
	for name := range do {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Key returns the canonical text form "X=1,Z=0", sorted by node name.
// The empty intervention has the empty key.
func (do Intervention) Key() string {
	return InterventionKey(do)
}

// Clone returns a copy of do that never aliases the receiver.
func (do Intervention) Clone() Intervention {
	out := make(Intervention, len(do))
	for k, v := range do {
		out[k] = v
	}
	return out
}

// InterventionKey returns the canonical text form of do.
// Used as the cache and store key for a realization.
func InterventionKey(do Intervention) string {
	if len(do) == 0 {
		return ""
	}
	var b strings.Builder
	for i, name := range do.Names() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(do[name]))
	}
	return b.String()
}

// ParseIntervention parses "X=1,Z=0" (whitespace tolerated around tokens).
// The empty string yields an empty intervention.
func ParseIntervention(s string) (Intervention, error) {
	do := Intervention{}
	s = strings.TrimSpace(s)
	if s == "" {
		return do, nil
	}
	for _, part := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("invalid intervention %q: want NAME=VALUE", strings.TrimSpace(part))
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid intervention value for %s: %q is not an integer", name, value)
		}
		if _, dup := do[name]; dup {
			return nil, fmt.Errorf("duplicate intervention on %s", name)
		}
		do[name] = v
	}
	return do, nil
}
