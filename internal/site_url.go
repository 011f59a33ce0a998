package internal

import (
	"strings"
)

// NormalizeSiteRoot makes root end in exactly one slash.
func NormalizeSiteRoot(root string) string {
	return strings.TrimRight(strings.TrimSpace(root), "/") + "/"
}

// TrimLeadingSlashes strips surrounding spaces and every leading slash from a
// site-relative path.
func TrimLeadingSlashes(p string) string {
	return strings.TrimLeft(strings.TrimSpace(p), "/")
}

// JoinSiteURL appends a site-relative path to the site root without doubling
// the separator.
func JoinSiteURL(root, rel string) string {
	return NormalizeSiteRoot(root) + TrimLeadingSlashes(rel)
}
