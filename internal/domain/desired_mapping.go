package domain

import "github.com/auto-dns/docker-hosts-sync/internal/util"

// Names is a set of hostnames.
type Names map[string]struct{}

func NewNames(names ...string) Names {
	n := make(Names, len(names))
	for _, name := range names {
		n.Add(name)
	}
	return n
}

func (n Names) Add(name string) {
	if name != "" {
		n[name] = struct{}{}
	}
}

func (n Names) Has(name string) bool {
	_, ok := n[name]
	return ok
}

func (n Names) Sorted() []string {
	return util.SortedKeys(n)
}

// DesiredMapping is what the owned part of the hosts file should contain: address to names.
type DesiredMapping map[string]Names

// Merge unions names into the entry for address. Existing names are never dropped.
func (m DesiredMapping) Merge(address string, names Names) {
	if address == "" || len(names) == 0 {
		return
	}
	existing, ok := m[address]
	if !ok {
		existing = make(Names, len(names))
		m[address] = existing
	}
	for name := range names {
		existing.Add(name)
	}
}

// Addresses returns the keys in lexicographic order.
func (m DesiredMapping) Addresses() []string {
	return util.SortedKeys(m)
}

// Equal compares both mappings as sets.
func (m DesiredMapping) Equal(other DesiredMapping) bool {
	if len(m) != len(other) {
		return false
	}
	for addr, names := range m {
		otherNames, ok := other[addr]
		if !ok || len(otherNames) != len(names) {
			return false
		}
		for name := range names {
			if !otherNames.Has(name) {
				return false
			}
		}
	}
	return true
}

// Count returns the number of (address, name) pairs.
func (m DesiredMapping) Count() int {
	total := 0
	for _, names := range m {
		total += len(names)
	}
	return total
}

// Fingerprint is an order-independent digest of a DesiredMapping.
type Fingerprint uint64
