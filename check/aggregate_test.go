package check

import (
	"testing"

	"github.com/logingood/check-snmp-state/models"
	"github.com/stretchr/testify/assert"
)

func TestAggregatorSingleObservation(t *testing.T) {
	a := NewAggregator()
	a.Add(Observation{OID: "1.3.6.1.4.1.9.9.13.1.5.1.3.1001", Value: "nonCritical", Description: "PSU 1"}, ClassWarning)

	res := a.Result()
	assert.Equal(t, models.SeverityWarning, res.Severity)
	assert.Equal(t, "PSU 1=nonCritical", res.Message)
	assert.Empty(t, res.Details)
	assert.Equal(t, "WARNING: PSU 1=nonCritical", res.String())
	assert.Equal(t, 1, res.ExitCode())
}

func TestAggregatorSummary(t *testing.T) {
	a := NewAggregator()
	a.Add(Observation{OID: "1.1", Value: "critical", Description: "PSU 2"}, ClassCritical)
	a.Add(Observation{OID: "1.2", Value: "ok", Description: "PSU 1"}, ClassOK)
	a.Add(Observation{OID: "1.3", Value: "ok", Description: "PSU 2"}, ClassOK)
	a.Add(Observation{OID: "1.4", Value: "weird"}, ClassUndefined)

	res := a.Result()
	assert.Equal(t, models.SeverityCritical, res.Severity)
	assert.Equal(t, "1 Critical, 2 OK, 1 Unknown (PSU 1, PSU 2)", res.Message)
	assert.Equal(t, []string{
		"CRITICAL: PSU 2=critical",
		"OK: PSU 1=ok",
		"OK: PSU 2=ok",
		"UNKNOWN/undefined: 1.4=weird",
	}, res.Details)
}

func TestAggregatorUndefinedEscalatesToUnknown(t *testing.T) {
	a := NewAggregator()
	a.Add(Observation{OID: "1.1", Value: "ok"}, ClassOK)
	a.Add(Observation{OID: "1.2", Value: "degraded"}, ClassUndefined)

	res := a.Result()
	assert.Equal(t, models.SeverityUnknown, res.Severity)
	assert.Equal(t, "1 OK, 1 Unknown", res.Message)
}

func TestAggregatorErrorsOverrideCritical(t *testing.T) {
	a := NewAggregator()
	a.Add(Observation{OID: "1.1", Value: "critical"}, ClassCritical)
	a.AddError(KindNotFound, Observation{OID: "1.2"}, "No Such Instance currently exists at this OID")

	res := a.Result()
	assert.Equal(t, models.SeverityUnknown, res.Severity)
	assert.Equal(t, "1 Critical, 1 Error", res.Message)
	assert.Equal(t, []string{
		"CRITICAL: 1.1=critical",
		"UNKNOWN/not found: 1.2: No Such Instance currently exists at this OID",
	}, res.Details)
}

func TestAggregatorProblemsArePrepended(t *testing.T) {
	a := NewAggregator()
	a.Add(Observation{OID: "1.1", Value: "ok", Description: "A"}, ClassOK)
	a.AddError(KindMissing, Observation{OID: "1.2", Description: "B"}, "no result")
	a.AddProblem("1 of 2 expected OIDs missing")

	res := a.Result()
	assert.Equal(t, models.SeverityUnknown, res.Severity)
	assert.Equal(t, "1 of 2 expected OIDs missing; A=ok", res.Message)
	assert.Equal(t, []string{"UNKNOWN/missing: B: no result"}, res.Details)
	assert.Equal(t, 1, a.Classified())
}

func TestAggregatorLoneError(t *testing.T) {
	a := NewAggregator()
	a.AddError(KindDiagnostic, Observation{}, "Timeout: No Response from 192.0.2.1")

	res := a.Result()
	assert.Equal(t, models.SeverityUnknown, res.Severity)
	assert.Equal(t, "Timeout: No Response from 192.0.2.1", res.Message)
	assert.Equal(t, 0, a.Classified())
}

func TestAggregatorEmpty(t *testing.T) {
	res := NewAggregator().Result()
	assert.Equal(t, models.SeverityUnknown, res.Severity)
	assert.Equal(t, "UNKNOWN: no results", res.String())
	assert.Equal(t, 3, res.ExitCode())
}

func TestAggregatorAllOK(t *testing.T) {
	a := NewAggregator()
	a.Add(Observation{OID: "1.1", Value: "ok"}, ClassOK)
	a.Add(Observation{OID: "1.2", Value: "ok"}, ClassOK)

	res := a.Result()
	assert.Equal(t, models.SeverityOK, res.Severity)
	assert.Equal(t, "OK: 2 OK\nOK: 1.1=ok\nOK: 1.2=ok", res.String())
	assert.Equal(t, 0, res.ExitCode())
}
