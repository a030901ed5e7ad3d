package core

import (
	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/cespare/xxhash/v2"
)

// ComputeFingerprint hashes the canonical form of m: addresses sorted, each followed by its
// sorted names. Separators are bytes that cannot appear in either.
func ComputeFingerprint(m domain.DesiredMapping) domain.Fingerprint {
	d := xxhash.New()
	for _, addr := range m.Addresses() {
		_, _ = d.WriteString(addr)
		_, _ = d.Write([]byte{0x1e})
		for _, name := range m[addr].Sorted() {
			_, _ = d.WriteString(name)
			_, _ = d.Write([]byte{0x1f})
		}
		_, _ = d.Write([]byte{0x1d})
	}
	return domain.Fingerprint(d.Sum64())
}

// HasChanged reports whether a write is needed. Without a previous fingerprint it always is.
func HasChanged(next, last domain.Fingerprint, hasLast bool) bool {
	return !hasLast || next != last
}
