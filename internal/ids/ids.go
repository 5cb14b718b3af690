// Package ids generates the "<prefix>.<uid>" identifiers used for nodes,
// reviews, anchors and links.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh id such as "review.3f1c0d...".
func New(prefix string) string {
	uid := strings.ReplaceAll(uuid.New().String(), "-", "")
	if prefix == "" {
		return uid
	}
	return prefix + "." + uid
}

// Prefix returns the part before the first dot, or "" when the id has none.
func Prefix(id string) string {
	if i := strings.IndexByte(id, '.'); i > 0 {
		return id[:i]
	}
	return ""
}
