package snmp

import (
	"strconv"
)

// Tools names the net-snmp executables, one per Operation.
type Tools struct {
	Get      string
	GetNext  string
	Walk     string
	BulkWalk string
}

// DefaultTools resolves the executables through PATH.
func DefaultTools() Tools {
	return Tools{
		Get:      "snmpget",
		GetNext:  "snmpgetnext",
		Walk:     "snmpwalk",
		BulkWalk: "snmpbulkwalk",
	}
}

// Path returns the executable for op.
func (t Tools) Path(op Operation) string {
	switch op {
	case OpGetNext:
		return t.GetNext
	case OpWalk:
		return t.Walk
	case OpBulkWalk:
		return t.BulkWalk
	default:
		return t.Get
	}
}

// BuildArgs assembles the argument vector for one invocation. Output is
// quick print with unit suffixes suppressed; numeric OID output is requested
// only when every selector is numeric, so that output OIDs are comparable to
// what was asked for.
func BuildArgs(target Target, req Request) []string {
	format := "qU"
	if allNumeric(req.OIDs) {
		format += "n"
	}

	args := []string{"-O", format, "-v", target.Version}
	if target.Version == "3" {
		args = append(args, "-l", target.SecLevel, "-u", target.SecName)
		if target.hasAuth() {
			args = append(args, "-a", target.AuthProto, "-A", target.AuthPass)
		}
		if target.hasPriv() {
			args = append(args, "-x", target.PrivProto, "-X", target.PrivPass)
		}
	} else {
		args = append(args, "-c", target.Community)
	}

	if target.Timeout > 0 {
		args = append(args, "-t", strconv.FormatFloat(target.Timeout.Seconds(), 'f', -1, 64))
	}
	if target.Retries >= 0 {
		args = append(args, "-r", strconv.Itoa(target.Retries))
	}

	args = append(args, target.Address())
	return append(args, req.OIDs...)
}

// redactArgs masks secret values so an argument vector can be logged.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		switch out[i] {
		case "-c", "-A", "-X":
			out[i+1] = "****"
			i++
		}
	}
	return out
}

func allNumeric(oids []string) bool {
	if len(oids) == 0 {
		return false
	}
	for _, oid := range oids {
		if !IsNumericOID(oid) {
			return false
		}
	}
	return true
}
