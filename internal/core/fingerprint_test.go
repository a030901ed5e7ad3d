package core

import (
	"testing"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeFingerprintIgnoresInsertionOrder(t *testing.T) {
	a := domain.DesiredMapping{}
	a.Merge("10.0.0.3", domain.NewNames("web", "api"))
	a.Merge("10.0.0.4", domain.NewNames("db"))

	b := domain.DesiredMapping{}
	b.Merge("10.0.0.4", domain.NewNames("db"))
	b.Merge("10.0.0.3", domain.NewNames("api"))
	b.Merge("10.0.0.3", domain.NewNames("web"))

	assert.Equal(t, ComputeFingerprint(a), ComputeFingerprint(b))
}

func TestComputeFingerprintDistinguishesMappings(t *testing.T) {
	mappings := []domain.DesiredMapping{
		{},
		{"10.0.0.3": domain.NewNames("web")},
		{"10.0.0.3": domain.NewNames("web", "api")},
		{"10.0.0.4": domain.NewNames("web", "api")},
		{"10.0.0.3": domain.NewNames("web"), "10.0.0.4": domain.NewNames("api")},
		{"10.0.0.3": domain.NewNames("webapi")},
		{"10.0.0.3web": domain.NewNames("api")},
	}

	seen := map[domain.Fingerprint]int{}
	for i, m := range mappings {
		fp := ComputeFingerprint(m)
		if j, dup := seen[fp]; dup {
			t.Fatalf("mappings %d and %d share fingerprint %x", j, i, fp)
		}
		seen[fp] = i
	}
}

func TestHasChanged(t *testing.T) {
	assert.True(t, HasChanged(1, 0, false))
	assert.True(t, HasChanged(0, 0, false), "first run always writes even for zero value")
	assert.True(t, HasChanged(1, 2, true))
	assert.False(t, HasChanged(2, 2, true))
}
