package check

import (
	"context"
	"errors"
	"fmt"

	"github.com/logingood/check-snmp-state/entity"
	"github.com/logingood/check-snmp-state/snmp"
	"go.uber.org/zap"
)

// Resolver maps entity names to index suffixes. Names it does not know are
// returned in missing.
type Resolver interface {
	Resolve(ctx context.Context, names []string) (found map[string]string, missing []string, err error)
}

// AutoMinResults as Settings.MinResults picks the minimum from the mode: one
// per expanded selector for get-next, one in total for walks.
const AutoMinResults = -1

// Settings describe one check invocation.
type Settings struct {
	Op         snmp.Operation
	OIDs       []string
	Entities   []string
	Rules      RuleSet
	MinResults int
}

// Check runs one query and turns its output into a Result.
type Check struct {
	logger   *zap.Logger
	runner   snmp.Runner
	resolver Resolver
	settings Settings
}

// New returns a Check. resolver may be nil when settings name no entities.
func New(logger *zap.Logger, runner snmp.Runner, resolver Resolver, settings Settings) *Check {
	return &Check{
		logger:   logger,
		runner:   runner,
		resolver: resolver,
		settings: settings,
	}
}

// Run expands entities, queries the agent and classifies every line. The
// returned error is reserved for failures that leave nothing to report, such
// as an unusable entity table; query failures end up in the Result.
func (c *Check) Run(ctx context.Context) (Result, error) {
	agg := NewAggregator()

	targets, err := c.targets(ctx, agg)
	if err != nil {
		return Result{}, err
	}
	tracker := c.tracker(targets)

	req := snmp.Request{Op: c.settings.Op, OIDs: make([]string, len(targets))}
	for i, t := range targets {
		req.OIDs[i] = t.OID
	}

	c.logger.Debug("querying", zap.Stringer("op", req.Op), zap.Strings("oids", req.OIDs))
	runErr := c.runner.Run(ctx, req, func(raw string) {
		c.consume(agg, tracker, snmp.ParseLine(raw))
	})
	if runErr != nil {
		c.logger.Warn("query failed", zap.Error(runErr))
		agg.AddProblem(runErr.Error())
	}

	for _, m := range tracker.Missing() {
		agg.AddError(KindMissing, Observation{OID: m.OID, Description: m.Description}, "no result")
	}
	for _, p := range tracker.Problems(agg.Classified()) {
		agg.AddProblem(p)
	}

	return agg.Result(), nil
}

func (c *Check) targets(ctx context.Context, agg *Aggregator) ([]Target, error) {
	var targets []Target
	if len(c.settings.Entities) == 0 {
		for _, oid := range c.settings.OIDs {
			targets = append(targets, Target{OID: oid})
		}
		return dedupe(targets), nil
	}

	if c.resolver == nil {
		return nil, errors.New("entity names given without a resolver")
	}
	found, missing, err := c.resolver.Resolve(ctx, c.settings.Entities)
	if err != nil {
		c.logger.Error("failed to resolve entities", zap.Strings("entities", c.settings.Entities), zap.Error(err))
		return nil, fmt.Errorf("resolve entities: %w", err)
	}
	for _, name := range missing {
		agg.AddError(KindEntity, Observation{Description: name}, "not found in entity table")
	}

	for _, inst := range entity.Expand(c.settings.OIDs, c.settings.Entities, found) {
		targets = append(targets, Target{OID: inst.OID, Description: inst.Name})
	}
	return dedupe(targets), nil
}

func (c *Check) tracker(targets []Target) Tracker {
	if !c.settings.Op.IsWalk() {
		return NewPointTracker(targets)
	}
	minimum := c.settings.MinResults
	if minimum == AutoMinResults {
		minimum = 1
		if c.settings.Op == snmp.OpGetNext {
			minimum = len(targets)
		}
	}
	return NewWalkTracker(minimum, targets)
}

// consume handles one parsed line. Every outcome lands in agg.
func (c *Check) consume(agg *Aggregator, tracker Tracker, line snmp.Line) {
	switch line.Kind {
	case snmp.LineBlank:
		return
	case snmp.LineDiagnostic:
		agg.AddError(KindDiagnostic, Observation{}, line.Text)
		return
	}

	desc, err := tracker.Observe(line.OID)
	obs := Observation{OID: line.OID, Value: line.Value, Description: desc}
	if err != nil {
		kind := KindUnexpected
		if errors.Is(err, ErrDuplicate) {
			kind = KindDuplicate
		}
		c.logger.Debug("rejected line", zap.String("line", line.Text), zap.Error(err))
		agg.AddError(kind, obs, fmt.Sprintf("%v (%s)", err, line.Text))
		return
	}

	switch line.Kind {
	case snmp.LineUnparsed:
		agg.AddError(KindParse, obs, "didn't parse: "+line.Text)
	case snmp.LineNotFound:
		agg.AddError(KindNotFound, obs, line.Sentinel.String())
	case snmp.LineValue:
		class := c.settings.Rules.Classify(line.Value)
		c.logger.Debug("classified", zap.String("oid", line.OID), zap.String("value", line.Value), zap.Stringer("class", class))
		agg.Add(obs, class)
	}
}

func dedupe(targets []Target) []Target {
	seen := make(map[string]struct{}, len(targets))
	out := targets[:0]
	for _, t := range targets {
		key := snmp.CanonicalOID(t.OID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
