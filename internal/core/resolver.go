package core

import (
	"sort"
	"strings"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

// Resolution is the final address and names one container contributes.
type Resolution struct {
	Address string
	Names   domain.Names
	// RedirectedTo is the id of the container whose address replaced the container's own.
	RedirectedTo string
}

// Resolve computes the hosts entry for container. ok is false when the container is out of
// scope or has no usable address.
//
// Under ScopeAny the address comes from the lexicographically smallest network name that
// has an IP. If any of the container's names is a termination map source, the first
// container (by id) whose match names contain the destination supplies the address.
func Resolve(container domain.ContainerRecord, all []domain.ContainerRecord, scope domain.NetworkScope, tm domain.TerminationMap) (Resolution, bool) {
	res := Resolution{Names: domain.Names{}}
	addNames(res.Names, container.Hostname)

	if scope.IsAny() {
		for _, name := range container.NetworkNames() {
			addNames(res.Names, container.Networks[name].Aliases...)
		}
		res.Address = container.PrimaryAddress()
	} else {
		nw, ok := container.Networks[scope.Name()]
		if !ok {
			return Resolution{}, false
		}
		addNames(res.Names, nw.Aliases...)
		res.Address = nw.IPAddress
	}

	if len(tm) > 0 {
		if target, ok := findRedirect(res.Names, all, tm); ok {
			if addr := target.AddressIn(scope); addr != "" {
				res.Address = addr
				res.RedirectedTo = target.Id
			}
		}
	}

	if res.Address == "" || len(res.Names) == 0 {
		return Resolution{}, false
	}
	return res, true
}

// findRedirect returns the first container matching a termination map destination of any
// of names. Names and containers are visited in sorted order so the winner is stable.
func findRedirect(names domain.Names, all []domain.ContainerRecord, tm domain.TerminationMap) (domain.ContainerRecord, bool) {
	var candidates []domain.ContainerRecord
	var matchSets []map[string]struct{}

	for _, name := range names.Sorted() {
		dest, ok := tm.Lookup(name)
		if !ok {
			continue
		}
		if candidates == nil {
			candidates = make([]domain.ContainerRecord, len(all))
			copy(candidates, all)
			sort.Slice(candidates, func(i, j int) bool { return candidates[i].Id < candidates[j].Id })
			matchSets = make([]map[string]struct{}, len(candidates))
			for i, c := range candidates {
				matchSets[i] = c.MatchNames()
			}
		}
		for i, c := range candidates {
			if _, hit := matchSets[i][dest]; hit {
				return c, true
			}
		}
	}
	return domain.ContainerRecord{}, false
}

// addNames adds each whitespace separated token, since a hosts line is a list of names.
func addNames(set domain.Names, names ...string) {
	for _, n := range names {
		for _, token := range strings.Fields(n) {
			set.Add(token)
		}
	}
}
