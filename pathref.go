package cfgtree

import (
	"strconv"
	"strings"
)

// Paths in issues use the JSON-Pointer style: "" is the document root,
// "/server/port" addresses a nested field, "/workers/2" an element of a
// sequence. Segments containing '~' or '/' are escaped as "~0" and "~1".

func escapeSegment(seg string) string {
	if !strings.ContainsAny(seg, "~/") {
		return seg
	}
	seg = strings.ReplaceAll(seg, "~", "~0")
	return strings.ReplaceAll(seg, "/", "~1")
}

// childPath extends base with a mapping key.
func childPath(base, key string) string {
	return base + "/" + escapeSegment(key)
}

// indexPath extends base with a sequence index.
func indexPath(base string, i int) string {
	return base + "/" + strconv.Itoa(i)
}
