// Package parse extracts a structured {name, fact} pair from the free-text
// reply of a vision model. It is pure: no network, no storage, never an error.
package parse

import (
	"regexp"
	"strings"
)

const (
	DefaultName = "Unidentified"
	DefaultFact = "An interesting discovery awaiting identification."

	// maxFallbackLen bounds the raw-text prefix used when parsing degrades.
	maxFallbackLen = 80
)

var (
	nameMarker = regexp.MustCompile(`(?i)\bNAME\s*:`)
	factMarker = regexp.MustCompile(`(?i)\bFACT\s*:`)
)

// Result is the structured identification extracted from a model reply.
// Degraded is set when the marker extraction failed entirely and the raw
// text was used as a lossy fallback.
type Result struct {
	Name     string
	Fact     string
	Degraded bool
}

// Parse extracts the NAME: and FACT: fields from raw. Markers are matched
// case-insensitively; the fact field may span multiple lines and runs to the
// end of the text. A missing marker leaves the default placeholder for that
// field. Parse never fails: an unexpected panic degrades to a truncated
// prefix of the raw text rather than discarding a spent API call.
func Parse(raw string) (result Result) {
	result = Result{Name: DefaultName, Fact: DefaultFact}

	defer func() {
		if r := recover(); r != nil {
			result = fallback(raw)
		}
	}()

	nameLoc := nameMarker.FindStringIndex(raw)
	factLoc := factMarker.FindStringIndex(raw)

	if nameLoc != nil {
		end := len(raw)
		if factLoc != nil && factLoc[0] > nameLoc[1] {
			end = factLoc[0]
		}
		if name := strings.TrimSpace(raw[nameLoc[1]:end]); name != "" {
			result.Name = name
		}
	}

	if factLoc != nil {
		if fact := strings.TrimSpace(raw[factLoc[1]:]); fact != "" {
			result.Fact = fact
		}
	}

	return result
}

// fallback builds a lossy result from the raw reply text.
func fallback(raw string) Result {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Result{Name: DefaultName, Fact: DefaultFact, Degraded: true}
	}
	name := text
	if len(name) > maxFallbackLen {
		name = name[:maxFallbackLen]
	}
	return Result{Name: name, Fact: text, Degraded: true}
}

// IsUnidentifiable reports whether the parsed name is the sentinel the
// prompt instructs the model to use when no confident identification is
// possible.
func IsUnidentifiable(name string) bool {
	return strings.Contains(strings.ToLower(name), "unidentifiable")
}
