package domain

import "strings"

// NetworkScope restricts reconciliation to one network, or to all of them.
type NetworkScope struct {
	name string
	any  bool
}

var ScopeAny = NetworkScope{any: true}

func ScopeNetwork(name string) NetworkScope {
	return NetworkScope{name: name}
}

// ParseNetworkScope accepts a network name, or "any" / "*" for every network.
func ParseNetworkScope(s string) NetworkScope {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "any", "*":
		return ScopeAny
	}
	return ScopeNetwork(s)
}

func (s NetworkScope) IsAny() bool  { return s.any }
func (s NetworkScope) Name() string { return s.name }

// Includes reports whether a network with the given name is in scope.
func (s NetworkScope) Includes(network string) bool {
	return s.any || s.name == network
}

func (s NetworkScope) String() string {
	if s.any {
		return "any"
	}
	return s.name
}
