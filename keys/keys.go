// Package keys converts display names into the canonical keys used to match
// spreadsheet rows against remote items.
package keys

import (
	"strings"
)

var replacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u200e", "",
	"\u200f", "",
	"\u202a", "",
	"\u202b", "",
	"\u202c", "",
	"\u202d", "",
	"\u202e", "",
	"\u2066", "",
	"\u2067", "",
	"\u2068", "",
	"\u2069", "",
	"\u2013", "-",
	"\u2014", "-",
	"\u2212", "-",
)

// Normalize returns the canonical comparison key for a display name: non-breaking
// spaces become spaces, directional controls are removed, dashes are folded to '-',
// whitespace runs collapse to a single space and the result is trimmed and lower-cased.
func Normalize(name string) string {
	v := replacer.Replace(name)
	v = strings.Join(strings.Fields(v), " ")

	return strings.ToLower(v)
}

// NormalizeBase is Normalize with the trailing extension removed. A name that
// would be empty without its extension (e.g. ".dwg") keeps the full key.
func NormalizeBase(name string) string {
	key := Normalize(name)
	if ix := strings.LastIndex(key, "."); ix > 0 {
		if base := strings.TrimSpace(key[:ix]); base != "" {
			return base
		}
	}

	return key
}
