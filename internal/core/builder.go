package core

import (
	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/rs/zerolog"
)

// Build aggregates every in-scope container into one DesiredMapping. Containers sharing an
// address have their names unioned.
func Build(containers []domain.ContainerRecord, scope domain.NetworkScope, tm domain.TerminationMap, logger zerolog.Logger) domain.DesiredMapping {
	desired := domain.DesiredMapping{}
	for _, c := range containers {
		res, ok := Resolve(c, containers, scope, tm)
		if !ok {
			logger.Debug().Str("container_id", c.Id).Str("container_name", c.Name).Str("network", scope.String()).Msg("Container not in scope, skipping")
			continue
		}
		if res.RedirectedTo != "" {
			logger.Debug().Str("container_id", c.Id).Str("target_id", res.RedirectedTo).Str("address", res.Address).Msg("Termination map redirected container address")
		}
		desired.Merge(res.Address, res.Names)
	}
	return desired
}
