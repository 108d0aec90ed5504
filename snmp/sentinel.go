package snmp

import "strings"

// Sentinel is one of the error phrases the net-snmp tools print in the value
// position when the agent has nothing at the requested OID. The set is
// closed: these are the only phrases ParseLine turns into a not-found
// outcome.
type Sentinel int

const (
	SentinelNone Sentinel = iota
	NoSuchInstance
	NoSuchObject
	UnknownObjectIdentifier
	EndOfMibView
)

// sentinelPhrases are matched against the value field in order. The match
// key is the stable prefix of the tool's message.
var sentinelPhrases = []struct {
	sentinel Sentinel
	key      string
	text     string
}{
	{NoSuchInstance, "No Such Instance", "No Such Instance currently exists at this OID"},
	{NoSuchObject, "No Such Object", "No Such Object available on this agent at this OID"},
	{UnknownObjectIdentifier, "Unknown Object Identifier", "Unknown Object Identifier"},
	{EndOfMibView, "No more variables left", "No more variables left in this MIB View (It is past the end of the MIB tree)"},
}

// String returns the full phrase as net-snmp prints it.
func (s Sentinel) String() string {
	for _, p := range sentinelPhrases {
		if p.sentinel == s {
			return p.text
		}
	}
	return ""
}

// MatchSentinel reports which sentinel phrase, if any, appears in value.
func MatchSentinel(value string) (Sentinel, bool) {
	for _, p := range sentinelPhrases {
		if strings.Contains(value, p.key) {
			return p.sentinel, true
		}
	}
	return SentinelNone, false
}
