package check

// Class is the tier a value falls into under a RuleSet.
type Class int

const (
	ClassUndefined Class = iota
	ClassOK
	ClassWarning
	ClassCritical
)

func (c Class) String() string {
	switch c {
	case ClassCritical:
		return "critical"
	case ClassWarning:
		return "warning"
	case ClassOK:
		return "ok"
	default:
		return "undefined"
	}
}

// RuleSet holds the values an operator expects in each tier. Sets may
// overlap; Classify resolves ties critical first, then warning, then ok.
type RuleSet struct {
	Critical []string
	Warning  []string
	OK       []string
}

// Classify matches value by exact string equality. A value in none of the
// sets is ClassUndefined.
func (r RuleSet) Classify(value string) Class {
	switch {
	case contains(r.Critical, value):
		return ClassCritical
	case contains(r.Warning, value):
		return ClassWarning
	case contains(r.OK, value):
		return ClassOK
	default:
		return ClassUndefined
	}
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}
