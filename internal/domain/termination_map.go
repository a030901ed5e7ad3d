package domain

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// TerminationMap redirects a published name to another name whose container address
// should be used instead. Keys and values are lowercased.
type TerminationMap map[string]string

// Lookup is case-insensitive.
func (tm TerminationMap) Lookup(name string) (string, bool) {
	dest, ok := tm[strings.ToLower(strings.TrimSpace(name))]
	return dest, ok
}

// ParseTerminationMap parses "source1,source2:dest|source3:dest2". Malformed pairs and
// duplicate sources are skipped; each problem is reported in the returned error, which
// wraps ErrConfigMalformed. The map holds every entry that did parse.
func ParseTerminationMap(raw string) (TerminationMap, error) {
	tm := TerminationMap{}
	var errs *multierror.Error

	for _, pair := range strings.Split(raw, "|") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			errs = multierror.Append(errs, fmt.Errorf("%w: termination map entry %q must be sources:dest", ErrConfigMalformed, pair))
			continue
		}
		dest := strings.ToLower(strings.TrimSpace(parts[1]))
		if dest == "" {
			errs = multierror.Append(errs, fmt.Errorf("%w: termination map entry %q has no destination", ErrConfigMalformed, pair))
			continue
		}
		for _, src := range strings.Split(parts[0], ",") {
			src = strings.ToLower(strings.TrimSpace(src))
			if src == "" {
				errs = multierror.Append(errs, fmt.Errorf("%w: termination map entry %q has an empty source", ErrConfigMalformed, pair))
				continue
			}
			if existing, ok := tm[src]; ok {
				errs = multierror.Append(errs, fmt.Errorf("%w: duplicate termination map source %q (keeping %q, ignoring %q)", ErrConfigMalformed, src, existing, dest))
				continue
			}
			tm[src] = dest
		}
	}

	return tm, errs.ErrorOrNil()
}
