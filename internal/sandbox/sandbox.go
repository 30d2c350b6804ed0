// Package sandbox describes the capabilities granted to embedded app frames.
package sandbox

import (
	"fmt"
	"strings"
)

// Capability is one permission granted to an embedded frame
type Capability int

const (
	AllowScripts Capability = iota
	AllowSameOrigin
	AllowForms
	AllowPopups
	AllowModals
	AllowTopNavigation
	AllowTopNavigationByUserActivation
	AllowFullscreen
	AllowClipboard
	AllowWebShare
)

// All lists every capability in rendering order
var All = []Capability{
	AllowScripts,
	AllowSameOrigin,
	AllowForms,
	AllowPopups,
	AllowModals,
	AllowTopNavigation,
	AllowTopNavigationByUserActivation,
	AllowFullscreen,
	AllowClipboard,
	AllowWebShare,
}

// capability tokens: config name, iframe sandbox token, iframe allow feature
var tokens = map[Capability]struct {
	name    string
	sandbox string
	feature string
}{
	AllowScripts:                       {"scripts", "allow-scripts", ""},
	AllowSameOrigin:                    {"same-origin", "allow-same-origin", ""},
	AllowForms:                         {"forms", "allow-forms", ""},
	AllowPopups:                        {"popups", "allow-popups", ""},
	AllowModals:                        {"modals", "allow-modals", ""},
	AllowTopNavigation:                 {"top-navigation", "allow-top-navigation", ""},
	AllowTopNavigationByUserActivation: {"top-navigation-by-user-activation", "allow-top-navigation-by-user-activation", ""},
	AllowFullscreen:                    {"fullscreen", "", "fullscreen"},
	AllowClipboard:                     {"clipboard", "", "clipboard-read; clipboard-write"},
	AllowWebShare:                      {"web-share", "", "web-share"},
}

// String returns the config name of the capability
func (c Capability) String() string {
	if t, ok := tokens[c]; ok {
		return t.name
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

// ReferrerPolicy sent with embedded frame requests
const ReferrerPolicy = "no-referrer-when-downgrade"

// Policy is a set of granted capabilities
type Policy struct {
	granted map[Capability]bool
}

// New returns a policy granting exactly caps
func New(caps ...Capability) Policy {
	p := Policy{granted: make(map[Capability]bool, len(caps))}
	for _, c := range caps {
		if _, ok := tokens[c]; ok {
			p.granted[c] = true
		}
	}
	return p
}

// Default grants every capability
func Default() Policy {
	return New(All...)
}

// Parse builds a policy from config names such as "scripts" or "forms".
// A nil slice yields the default policy; an empty one grants nothing.
func Parse(names []string) (Policy, error) {
	if names == nil {
		return Default(), nil
	}
	caps := make([]Capability, 0, len(names))
	for _, n := range names {
		c, ok := lookup(strings.ToLower(strings.TrimSpace(n)))
		if !ok {
			return Policy{}, fmt.Errorf("unknown sandbox capability %q", n)
		}
		caps = append(caps, c)
	}
	return New(caps...), nil
}

func lookup(name string) (Capability, bool) {
	for _, c := range All {
		if tokens[c].name == name {
			return c, true
		}
	}
	return 0, false
}

// IsZero reports whether p is the unset zero value. A policy built by
// New with no capabilities is not zero: it grants nothing.
func (p Policy) IsZero() bool {
	return p.granted == nil
}

// Has reports whether c is granted
func (p Policy) Has(c Capability) bool {
	return p.granted[c]
}

// Capabilities returns the granted capabilities in rendering order
func (p Policy) Capabilities() []Capability {
	var out []Capability
	for _, c := range All {
		if p.granted[c] {
			out = append(out, c)
		}
	}
	return out
}

// Sandbox returns the value of the iframe sandbox attribute
func (p Policy) Sandbox() string {
	var parts []string
	for _, c := range p.Capabilities() {
		if t := tokens[c].sandbox; t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Allow returns the value of the iframe allow attribute
func (p Policy) Allow() string {
	var parts []string
	for _, c := range p.Capabilities() {
		if f := tokens[c].feature; f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, "; ")
}

// AllowFullscreen reports whether the allowfullscreen attribute should be set
func (p Policy) AllowFullscreen() bool {
	return p.Has(AllowFullscreen)
}
