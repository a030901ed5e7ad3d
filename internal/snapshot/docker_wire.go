package snapshot

import (
	"strings"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/docker/docker/api/types/container"
)

func fromInspectResponse(resp container.InspectResponse, withDNSNames bool) domain.ContainerRecord {
	rec := domain.ContainerRecord{
		Networks: map[string]domain.NetworkAttributes{},
	}
	if resp.ContainerJSONBase != nil {
		rec.Id = resp.ID
		rec.Name = strings.TrimPrefix(resp.Name, "/")
	}
	if resp.Config != nil {
		rec.Hostname = resp.Config.Hostname
		rec.Labels = resp.Config.Labels
	}
	if resp.NetworkSettings != nil {
		for name, ep := range resp.NetworkSettings.Networks {
			if ep == nil {
				continue
			}
			aliases := ep.Aliases
			if withDNSNames {
				aliases = mergeAliases(ep.Aliases, ep.DNSNames)
			}
			rec.Networks[name] = domain.NetworkAttributes{
				IPAddress: ep.IPAddress,
				Aliases:   aliases,
			}
		}
	}
	return rec
}

// mergeAliases appends DNS names not already present in aliases, keeping order.
func mergeAliases(aliases, dnsNames []string) []string {
	if len(dnsNames) == 0 {
		return aliases
	}
	seen := make(map[string]struct{}, len(aliases)+len(dnsNames))
	out := make([]string, 0, len(aliases)+len(dnsNames))
	for _, group := range [][]string{aliases, dnsNames} {
		for _, a := range group {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

func isRunning(resp container.InspectResponse) bool {
	return resp.ContainerJSONBase != nil && resp.State != nil && resp.State.Running
}
