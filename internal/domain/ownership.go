package domain

import (
	"fmt"
	"strings"
)

const baseOwnershipTag = "whw"

// OwnershipTag marks hosts file lines written by one instance. Instances with different
// sessions can share a file without touching each other's lines.
type OwnershipTag string

func NewOwnershipTag(session string) OwnershipTag {
	session = strings.TrimSpace(session)
	if session == "" {
		return OwnershipTag(baseOwnershipTag)
	}
	return OwnershipTag(baseOwnershipTag + "-" + session)
}

// Marker is the literal suffix of every owned line.
func (t OwnershipTag) Marker() string {
	return "by " + string(t)
}

// Owns reports whether a hosts file line was written under this tag.
func (t OwnershipTag) Owns(line string) bool {
	return strings.HasSuffix(strings.TrimRight(line, " \t\r"), t.Marker())
}

// Line renders one owned hosts entry.
func (t OwnershipTag) Line(address, name, annotation string) string {
	return fmt.Sprintf("%s\t%s\t\t#%s %s", address, name, annotation, t.Marker())
}
