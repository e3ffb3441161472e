// Package slug derives URL-safe identifiers from titles.
package slug

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode"
)

// SuffixLength is the number of random characters appended to every slug.
const SuffixLength = 5

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// spaceClass matches ASCII whitespace, vertical tab, every Unicode space
// separator (NBSP, U+2000 range, line and paragraph separators) and the BOM.
const spaceClass = `\s\v\p{Z}\x{FEFF}`

var (
	nonWord    = regexp.MustCompile(`[^\w` + spaceClass + `-]`)
	whitespace = regexp.MustCompile(`[` + spaceClass + `]+`)
)

// Base returns the deterministic part of a slug: the title lowercased and
// trimmed, stripped of characters other than word characters, whitespace and
// dashes, with whitespace runs replaced by a single dash.
func Base(title string) string {
	s := strings.TrimFunc(strings.ToLower(title), isSpace)
	s = nonWord.ReplaceAllString(s, "")
	return whitespace.ReplaceAllString(s, "-")
}

// Generate returns Base(title) followed by a dash and a short random suffix.
// Two calls with the same title almost always differ; uniqueness is not checked.
func Generate(title string) string {
	return Base(title) + "-" + suffix()
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Z, r)
}

func suffix() string {
	b := make([]byte, SuffixLength)
	for i := range b {
		b[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return string(b)
}
