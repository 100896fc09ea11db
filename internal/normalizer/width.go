package normalizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// zipCodeRe matches a leading 〒NNN-NNNN postal code marker, stripped at
// ingest (§4.3 step 1).
var zipCodeRe = regexp.MustCompile(`^\s*〒\s*\d{3}-?\d{4}\s*`)

// FoldWidth narrows full-width ASCII/digits to their half-width forms
// using golang.org/x/text/width rather than a hand-rolled rune-offset
// table, leaving Japanese script runes untouched.
func FoldWidth(s string) string {
	return width.Narrow.String(s)
}

// CanonicalizeWhitespace collapses runs of whitespace (including the
// full-width space U+3000, common in Japanese source data) to a single
// ASCII space and trims the ends.
func CanonicalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "　", " ")
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// StripLeadingZipCode removes a leading 〒NNN-NNNN marker, if present.
func StripLeadingZipCode(s string) string {
	return zipCodeRe.ReplaceAllString(s, "")
}

// IngestNormalize is step 1 of the pipeline (§4.3): width folding,
// whitespace canonicalization, and zip-code stripping. It does not touch
// match_level.
func IngestNormalize(s string) string {
	s = StripLeadingZipCode(s)
	s = FoldWidth(s)
	s = CanonicalizeWhitespace(s)
	return s
}
