package domain

import (
	"strings"

	"github.com/auto-dns/docker-hosts-sync/internal/util"
)

// ComposeServiceLabel carries the compose service name, which is matched like an alias
// when resolving termination map destinations.
const ComposeServiceLabel = "com.docker.compose.service"

type NetworkAttributes struct {
	IPAddress string
	Aliases   []string
}

// ContainerRecord is a read-only view of a running container taken from one snapshot.
type ContainerRecord struct {
	Id       string
	Name     string
	Hostname string
	Labels   map[string]string
	Networks map[string]NetworkAttributes
}

// NetworkNames returns the attached network names in lexicographic order.
func (c ContainerRecord) NetworkNames() []string {
	return util.SortedKeys(c.Networks)
}

// PrimaryAddress picks the IP of the lexicographically smallest network that has one.
func (c ContainerRecord) PrimaryAddress() string {
	for _, name := range c.NetworkNames() {
		if ip := c.Networks[name].IPAddress; ip != "" {
			return ip
		}
	}
	return ""
}

// AddressIn returns the container's address on the given scope. Under ScopeAny it falls
// back to PrimaryAddress.
func (c ContainerRecord) AddressIn(scope NetworkScope) string {
	if !scope.IsAny() {
		if nw, ok := c.Networks[scope.Name()]; ok && nw.IPAddress != "" {
			return nw.IPAddress
		}
	}
	return c.PrimaryAddress()
}

// MatchNames is the lowercased set of names another container's termination map entry
// can point at: hostname, aliases from every network and the compose service label.
func (c ContainerRecord) MatchNames() map[string]struct{} {
	set := make(map[string]struct{})
	add := func(n string) {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			set[n] = struct{}{}
		}
	}
	add(c.Hostname)
	for _, nw := range c.Networks {
		for _, alias := range nw.Aliases {
			add(alias)
		}
	}
	if svc, ok := c.Labels[ComposeServiceLabel]; ok {
		add(svc)
	}
	return set
}
