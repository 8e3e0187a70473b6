package models

import (
	"strings"

	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName collapses whitespace and puts the name in NFC form so that
// visually identical names are stored identically.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

// NameSlug derives the lookup key stored next to a player's name.
func NameSlug(name string) string {
	return slug.Make(name)
}

// ASCIIName transliterates a name for consumers that can only render ASCII
// (scoreboards reading published snapshots).
func ASCIIName(name string) string {
	return unidecode.Unidecode(name)
}
