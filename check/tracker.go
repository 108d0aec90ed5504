package check

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/logingood/check-snmp-state/snmp"
)

var (
	ErrUnexpected = errors.New("not expected")
	ErrDuplicate  = errors.New("duplicate")
)

// Target is one queried selector and the entity name it was expanded from,
// if any.
type Target struct {
	OID         string
	Description string
}

// Tracker checks observed OIDs against what the query was meant to return.
type Tracker interface {
	// Observe records oid and returns the description of the target it
	// belongs to.
	Observe(oid string) (string, error)
	// Missing lists targets that were never observed.
	Missing() []Target
	// Problems returns notes for conditions that make the run inconclusive,
	// given the number of classified results.
	Problems(classified int) []string
}

type expected struct {
	Target
	seen bool
}

// PointTracker expects every target exactly once.
type PointTracker struct {
	entries []*expected
	byOID   map[string]*expected
}

func NewPointTracker(targets []Target) *PointTracker {
	t := &PointTracker{byOID: make(map[string]*expected, len(targets))}
	for _, target := range targets {
		key := snmp.CanonicalOID(target.OID)
		if _, ok := t.byOID[key]; ok {
			continue
		}
		e := &expected{Target: target}
		t.entries = append(t.entries, e)
		t.byOID[key] = e
	}
	return t
}

func (t *PointTracker) Observe(oid string) (string, error) {
	e, ok := t.byOID[snmp.CanonicalOID(oid)]
	if !ok {
		return "", ErrUnexpected
	}
	if e.seen {
		return e.Description, ErrDuplicate
	}
	e.seen = true
	return e.Description, nil
}

func (t *PointTracker) Missing() []Target {
	var out []Target
	for _, e := range t.entries {
		if !e.seen {
			out = append(out, e.Target)
		}
	}
	return out
}

func (t *PointTracker) Problems(int) []string {
	missing := len(t.Missing())
	if missing == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%d of %d expected OIDs missing", missing, len(t.entries))}
}

// WalkTracker enforces a minimum result count over walked subtrees. It has no
// notion of duplicates since results are not enumerated up front.
type WalkTracker struct {
	minimum int
	bases   []Target
}

// NewWalkTracker sorts bases so that the most specific one matches first.
func NewWalkTracker(minimum int, bases []Target) *WalkTracker {
	sorted := make([]Target, len(bases))
	for i, b := range bases {
		sorted[i] = Target{OID: snmp.CanonicalOID(b.OID), Description: b.Description}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].OID) > len(sorted[j].OID)
	})
	return &WalkTracker{minimum: minimum, bases: sorted}
}

func (t *WalkTracker) Observe(oid string) (string, error) {
	oid = snmp.CanonicalOID(oid)
	for _, b := range t.bases {
		if oid == b.OID || strings.HasPrefix(oid, b.OID+".") {
			return b.Description, nil
		}
	}
	return "", nil
}

func (t *WalkTracker) Missing() []Target {
	return nil
}

func (t *WalkTracker) Problems(classified int) []string {
	if classified >= t.minimum {
		return nil
	}
	return []string{fmt.Sprintf("only %d results, expected at least %d", classified, t.minimum)}
}
