// Package sensor turns raw probe readings into filtered per-role temperature
// histories.
package sensor

import (
	"fmt"
	"strings"
)

// Role is the logical position of a probe, independent of its bus address.
type Role int

const (
	Supply Role = iota
	Return
	Boiler
	Outside
	Home
)

var roleNames = [...]string{
	Supply:  "supply",
	Return:  "return",
	Boiler:  "boiler",
	Outside: "outside",
	Home:    "home",
}

// BusRoles are the roles read from the probe bus. Home arrives from outside.
var BusRoles = []Role{Supply, Return, Boiler, Outside}

// AllRoles lists every role in display order.
var AllRoles = []Role{Supply, Return, Boiler, Outside, Home}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// OnBus reports whether the role is served by a physical probe.
func (r Role) OnBus() bool {
	return r >= Supply && r <= Outside
}

// ParseRole maps a role name to a Role.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range roleNames {
		if name == s {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sensor role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
