package models

// Severity is a Nagios/Icinga plugin result state. The numeric value is the
// plugin exit code.
type Severity int

const (
	SeverityOK       Severity = 0
	SeverityWarning  Severity = 1
	SeverityCritical Severity = 2
	SeverityUnknown  Severity = 3
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the conventional plugin exit code. Anything out of range
// is reported as unknown.
func (s Severity) ExitCode() int {
	switch s {
	case SeverityOK, SeverityWarning, SeverityCritical:
		return int(s)
	default:
		return int(SeverityUnknown)
	}
}
