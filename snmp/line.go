package snmp

import (
	"strings"
	"unicode"
)

// LineKind tags the outcome of parsing one line of query output.
type LineKind int

const (
	// LineBlank is an empty line. It carries nothing.
	LineBlank LineKind = iota
	// LineValue is a usable "<OID> <value>" observation.
	LineValue
	// LineNotFound is syntactically an observation but its value is one of
	// the sentinel phrases.
	LineNotFound
	// LineUnparsed has an OID but no value ("didn't parse").
	LineUnparsed
	// LineDiagnostic does not start with an OID at all, e.g. "Timeout: No
	// Response from 10.0.0.1".
	LineDiagnostic
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineValue:
		return "value"
	case LineNotFound:
		return "not found"
	case LineUnparsed:
		return "unparsed"
	case LineDiagnostic:
		return "diagnostic"
	default:
		return "invalid"
	}
}

// Line is one parsed line of output. OID is canonical (see CanonicalOID).
// Text is the trimmed input line and is always set for non-blank lines.
type Line struct {
	Kind     LineKind
	OID      string
	Value    string
	Sentinel Sentinel
	Text     string
}

// ParseLine turns one line of "<OID> <value>" output into a tagged Line. It
// has no side effects.
func ParseLine(raw string) Line {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Line{Kind: LineBlank}
	}

	token, value, hasValue := splitFirst(text)
	if !IsOID(token) {
		return Line{Kind: LineDiagnostic, Text: text}
	}
	oid := CanonicalOID(token)
	if !hasValue {
		return Line{Kind: LineUnparsed, OID: oid, Text: text}
	}

	value = unquote(value)
	if s, ok := MatchSentinel(value); ok {
		return Line{Kind: LineNotFound, OID: oid, Value: value, Sentinel: s, Text: text}
	}
	return Line{Kind: LineValue, OID: oid, Value: value, Text: text}
}

// IsOID reports whether s looks like an OID selector: symbolic
// (MIB::name[.instance]) or purely digits and dots.
func IsOID(s string) bool {
	if strings.Contains(s, "::") {
		return true
	}
	return IsNumericOID(s)
}

// IsNumericOID reports whether s consists only of digits and dots, with at
// least one digit.
func IsNumericOID(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
		default:
			return false
		}
	}
	return digits > 0
}

// CanonicalOID normalises an OID token so that selectors and tool output
// compare equal: numeric OIDs lose their leading dot, and a trailing colon
// (as printed in front of some error phrases) is dropped.
func CanonicalOID(s string) string {
	s = strings.TrimSuffix(s, ":")
	if IsNumericOID(s) {
		return strings.TrimPrefix(s, ".")
	}
	return s
}

// splitFirst splits s on its first run of whitespace.
func splitFirst(s string) (string, string, bool) {
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, "", false
	}
	rest := strings.TrimLeftFunc(s[idx:], unicode.IsSpace)
	return s[:idx], rest, rest != ""
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
