package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/logingood/check-snmp-state/models"
)

// ErrorKind names the reason an output line could not be classified.
type ErrorKind string

const (
	KindParse      ErrorKind = "parse"
	KindDiagnostic ErrorKind = "diagnostic"
	KindNotFound   ErrorKind = "not found"
	KindUnexpected ErrorKind = "unexpected"
	KindDuplicate  ErrorKind = "duplicate"
	KindMissing    ErrorKind = "missing"
	KindEntity     ErrorKind = "entity"
)

// Observation is one OID and value taken from the query output.
type Observation struct {
	OID         string
	Value       string
	Description string
}

// Label is the description when there is one, the OID otherwise.
func (o Observation) Label() string {
	if o.Description != "" {
		return o.Description
	}
	return o.OID
}

type category int

const (
	catCritical category = iota
	catWarning
	catOK
	catUnknown
	catError
	numCategories
)

var categoryNames = [numCategories]string{"Critical", "Warning", "OK", "Unknown", "Error"}

type outcome struct {
	cat         category
	tag         string
	text        string
	description string
	counted     bool
}

// Aggregator accumulates the outcome of every line of one run.
type Aggregator struct {
	counts   [numCategories]int
	outcomes []outcome
	problems []string
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add records a classified observation.
func (a *Aggregator) Add(obs Observation, class Class) {
	var (
		cat category
		tag string
	)
	switch class {
	case ClassCritical:
		cat, tag = catCritical, "CRITICAL"
	case ClassWarning:
		cat, tag = catWarning, "WARNING"
	case ClassOK:
		cat, tag = catOK, "OK"
	default:
		cat, tag = catUnknown, "UNKNOWN/undefined"
	}
	a.record(outcome{
		cat:         cat,
		tag:         tag,
		text:        obs.Label() + "=" + obs.Value,
		description: obs.Description,
		counted:     true,
	})
}

// AddError records a line that produced no usable observation. subject
// carries whatever is known about the line; its label prefixes detail.
func (a *Aggregator) AddError(kind ErrorKind, subject Observation, detail string) {
	text := detail
	if label := subject.Label(); label != "" {
		text = label + ": " + detail
	}
	a.record(outcome{
		cat:         catError,
		tag:         "UNKNOWN/" + string(kind),
		text:        text,
		description: subject.Description,
		counted:     kind != KindMissing,
	})
}

// AddProblem records a run level condition that makes the verdict
// inconclusive, such as a failed query or a short walk.
func (a *Aggregator) AddProblem(note string) {
	a.problems = append(a.problems, note)
}

func (a *Aggregator) record(o outcome) {
	if o.counted {
		a.counts[o.cat]++
	}
	a.outcomes = append(a.outcomes, o)
}

// Classified is the number of observations that reached the classifier.
func (a *Aggregator) Classified() int {
	return a.counts[catCritical] + a.counts[catWarning] + a.counts[catOK] + a.counts[catUnknown]
}

func (a *Aggregator) total() int {
	return a.Classified() + a.counts[catError]
}

func (a *Aggregator) severity() models.Severity {
	switch {
	case len(a.problems) > 0, a.counts[catError] > 0:
		return models.SeverityUnknown
	case a.counts[catCritical] > 0:
		return models.SeverityCritical
	case a.counts[catWarning] > 0:
		return models.SeverityWarning
	case a.counts[catUnknown] > 0, a.total() == 0:
		return models.SeverityUnknown
	default:
		return models.SeverityOK
	}
}

func (a *Aggregator) summary() string {
	var parts []string
	for cat, n := range a.counts {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, categoryNames[cat]))
		}
	}
	s := strings.Join(parts, ", ")

	seen := map[string]struct{}{}
	var descs []string
	for _, o := range a.outcomes {
		if o.description == "" || !o.counted {
			continue
		}
		if _, ok := seen[o.description]; ok {
			continue
		}
		seen[o.description] = struct{}{}
		descs = append(descs, o.description)
	}
	if len(descs) > 0 {
		sort.Strings(descs)
		s += " (" + strings.Join(descs, ", ") + ")"
	}
	return s
}

// Result folds everything recorded so far into a verdict.
func (a *Aggregator) Result() Result {
	short := a.total() == 1

	var base string
	switch {
	case short:
		for _, o := range a.outcomes {
			if o.counted {
				base = o.text
				break
			}
		}
	case a.total() > 1:
		base = a.summary()
	}

	parts := append([]string(nil), a.problems...)
	if base != "" {
		parts = append(parts, base)
	}
	message := strings.Join(parts, "; ")
	if message == "" {
		message = "no results"
	}

	var details []string
	for _, o := range a.outcomes {
		if short && o.counted {
			continue
		}
		details = append(details, o.tag+": "+o.text)
	}

	return Result{
		Severity: a.severity(),
		Message:  message,
		Details:  details,
	}
}

// Result is the verdict of one run.
type Result struct {
	Severity models.Severity
	Message  string
	Details  []string
}

// String renders the plugin output: a status line followed by one line per
// result.
func (r Result) String() string {
	var b strings.Builder
	b.WriteString(r.Severity.String())
	b.WriteString(": ")
	b.WriteString(r.Message)
	for _, d := range r.Details {
		b.WriteByte('\n')
		b.WriteString(d)
	}
	return b.String()
}

func (r Result) ExitCode() int {
	return r.Severity.ExitCode()
}
