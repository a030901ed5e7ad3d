package core

import (
	"math/rand"
	"testing"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func sampleContainers() []domain.ContainerRecord {
	return []domain.ContainerRecord{
		container("a", "frontend", map[string]domain.NetworkAttributes{
			"nat": {IPAddress: "10.0.0.5", Aliases: []string{"lb"}},
		}),
		container("b", "backend", map[string]domain.NetworkAttributes{
			"nat": {IPAddress: "10.0.0.9", Aliases: []string{"b-target"}},
		}),
		container("c", "worker", map[string]domain.NetworkAttributes{
			"nat":    {IPAddress: "10.0.0.9", Aliases: []string{"jobs"}},
			"bridge": {IPAddress: "172.17.0.3"},
		}),
		container("d", "db", map[string]domain.NetworkAttributes{
			"bridge": {IPAddress: "172.17.0.4"},
		}),
	}
}

func TestBuildScoped(t *testing.T) {
	tm := domain.TerminationMap{"lb": "b-target"}

	got := Build(sampleContainers(), domain.ScopeNetwork("nat"), tm, zerolog.Nop())

	assert.Equal(t, []string{"10.0.0.9"}, got.Addresses())
	assert.Equal(t, []string{"b-target", "backend", "frontend", "jobs", "lb", "worker"}, got["10.0.0.9"].Sorted())
}

func TestBuildAnyScope(t *testing.T) {
	got := Build(sampleContainers(), domain.ScopeAny, nil, zerolog.Nop())

	assert.Equal(t, []string{"10.0.0.5", "10.0.0.9", "172.17.0.3", "172.17.0.4"}, got.Addresses())
	assert.Equal(t, []string{"jobs", "worker"}, got["172.17.0.3"].Sorted())
}

func TestBuildEmpty(t *testing.T) {
	got := Build(nil, domain.ScopeAny, nil, zerolog.Nop())
	assert.Empty(t, got)
}

func TestBuildIsOrderIndependent(t *testing.T) {
	tm := domain.TerminationMap{"lb": "backend", "jobs": "db"}
	containers := sampleContainers()
	// Two candidates for "backend" so the redirect tie-break is exercised.
	containers = append(containers, container("e", "backend", map[string]domain.NetworkAttributes{
		"nat": {IPAddress: "10.0.0.50"},
	}))

	for _, scope := range []domain.NetworkScope{domain.ScopeAny, domain.ScopeNetwork("nat")} {
		want := Build(containers, scope, tm, zerolog.Nop())
		wantFp := ComputeFingerprint(want)

		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 25; i++ {
			shuffled := make([]domain.ContainerRecord, len(containers))
			copy(shuffled, containers)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			got := Build(shuffled, scope, tm, zerolog.Nop())
			assert.True(t, want.Equal(got), "scope %s, permutation %d", scope, i)
			assert.Equal(t, wantFp, ComputeFingerprint(got))
		}
	}
}
