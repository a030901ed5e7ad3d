package hostsfile

import (
	"bytes"
	"strings"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

const (
	lf   = "\n"
	crlf = "\r\n"
)

// line is one line of the file and the terminator it was read with. Only the final line
// of a file can have an empty terminator.
type line struct {
	text string
	eol  string
}

// splitLines breaks content into lines, each keeping its own terminator, and reports the
// ending most lines use. Ties go to LF.
func splitLines(data []byte) ([]line, string) {
	if len(data) == 0 {
		return nil, lf
	}

	var lines []line
	crlfCount, lfCount := 0, 0
	for _, raw := range bytes.SplitAfter(data, []byte(lf)) {
		if len(raw) == 0 {
			continue
		}
		s := string(raw)
		switch {
		case strings.HasSuffix(s, crlf):
			crlfCount++
			lines = append(lines, line{text: strings.TrimSuffix(s, crlf), eol: crlf})
		case strings.HasSuffix(s, lf):
			lfCount++
			lines = append(lines, line{text: strings.TrimSuffix(s, lf), eol: lf})
		default:
			lines = append(lines, line{text: s})
		}
	}

	eol := lf
	if crlfCount > lfCount {
		eol = crlf
	}
	return lines, eol
}

func joinLines(lines []line) []byte {
	if len(lines) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l.text)
		buf.WriteString(l.eol)
	}
	return buf.Bytes()
}

// partition separates lines owned by tag from everything else, keeping order. Foreign
// lines keep their terminators; owned lines are returned as text.
func partition(lines []line, tag domain.OwnershipTag) (foreign []line, owned []string) {
	for _, l := range lines {
		if tag.Owns(l.text) {
			owned = append(owned, l.text)
		} else {
			foreign = append(foreign, l)
		}
	}
	return foreign, owned
}

// assemble appends owned lines, terminated with eol, after the foreign lines. An
// unterminated last foreign line gets eol only when something follows it.
func assemble(foreign []line, owned []string, eol string) []line {
	next := make([]line, 0, len(foreign)+len(owned))
	next = append(next, foreign...)
	if len(owned) > 0 && len(next) > 0 && next[len(next)-1].eol == "" {
		next[len(next)-1].eol = eol
	}
	for _, o := range owned {
		next = append(next, line{text: o, eol: eol})
	}
	return next
}

// renderOwned emits one line per (address, name) in sorted order so equal mappings always
// render to equal bytes.
func renderOwned(desired domain.DesiredMapping, tag domain.OwnershipTag, annotation string) []string {
	var out []string
	for _, addr := range desired.Addresses() {
		for _, name := range desired[addr].Sorted() {
			for _, token := range strings.Fields(name) {
				out = append(out, tag.Line(addr, token, annotation))
			}
		}
	}
	return out
}
