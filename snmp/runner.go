package snmp

import "context"

// Operation is the kind of SNMP query a Request performs.
type Operation int

const (
	OpGet Operation = iota
	OpGetNext
	OpWalk
	OpBulkWalk
)

func (o Operation) String() string {
	switch o {
	case OpGet:
		return "get"
	case OpGetNext:
		return "getnext"
	case OpWalk:
		return "walk"
	case OpBulkWalk:
		return "bulkwalk"
	default:
		return "unknown"
	}
}

// IsWalk reports whether o enumerates values under its selectors rather than
// fetching exactly the selectors.
func (o Operation) IsWalk() bool {
	return o != OpGet
}

// Request is one query against the target held by a Runner.
type Request struct {
	Op   Operation
	OIDs []string
}

// Runner executes a Request and feeds each output line, in order, to handle.
// Every line is "<OID> <value>" in net-snmp's quick print format, or a
// diagnostic. Run returns once all output is consumed. A non-nil error
// describes a structural failure (spawn failure, non-zero exit, transport
// error); lines already handed over remain valid.
type Runner interface {
	Run(ctx context.Context, req Request, handle func(line string)) error
}
