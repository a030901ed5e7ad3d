package lock

import (
	"fmt"
	"path/filepath"
	"strings"
)

// lockKeyFor maps a lock name (usually a hosts file path) to an etcd key.
func lockKeyFor(prefix, name string) string {
	prefix = strings.TrimRight(prefix, "/")
	name = strings.ReplaceAll(filepath.ToSlash(strings.TrimSpace(name)), `\`, "/")
	name = strings.ReplaceAll(name, ":", "")
	name = strings.Trim(strings.ToLower(name), "/")
	return fmt.Sprintf("%s/locks/%s", prefix, name)
}
