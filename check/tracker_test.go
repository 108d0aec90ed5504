package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointTracker(t *testing.T) {
	tr := NewPointTracker([]Target{
		{OID: "1.3.6.1.2.1.1.5.0"},
		{OID: ".1.3.6.1.4.1.9.9.117.1.1.2.1.2.1001", Description: "PSU 1"},
		{OID: "1.3.6.1.4.1.9.9.117.1.1.2.1.2.1002", Description: "PSU 2"},
	})

	desc, err := tr.Observe(".1.3.6.1.4.1.9.9.117.1.1.2.1.2.1001")
	require.NoError(t, err)
	assert.Equal(t, "PSU 1", desc)

	desc, err = tr.Observe("1.3.6.1.4.1.9.9.117.1.1.2.1.2.1001")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, "PSU 1", desc)

	_, err = tr.Observe("1.3.6.1.2.1.1.6.0")
	assert.ErrorIs(t, err, ErrUnexpected)

	_, err = tr.Observe("1.3.6.1.2.1.1.5.0")
	require.NoError(t, err)

	assert.Equal(t, []Target{{OID: "1.3.6.1.4.1.9.9.117.1.1.2.1.2.1002", Description: "PSU 2"}}, tr.Missing())
	assert.Equal(t, []string{"1 of 3 expected OIDs missing"}, tr.Problems(2))
}

func TestPointTrackerAllSeen(t *testing.T) {
	tr := NewPointTracker([]Target{{OID: "1.3.6.1.2.1.1.5.0"}, {OID: "1.3.6.1.2.1.1.5.0"}})
	_, err := tr.Observe("1.3.6.1.2.1.1.5.0")
	require.NoError(t, err)

	assert.Empty(t, tr.Missing())
	assert.Empty(t, tr.Problems(1))
}

func TestWalkTracker(t *testing.T) {
	tr := NewWalkTracker(3, []Target{
		{OID: "1.3.6.1.4.1.9.9.13.1.5.1.3"},
		{OID: "1.3.6.1.4.1.9.9.13.1.5.1.3.1001", Description: "PSU 1"},
		{OID: "IF-MIB::ifOperStatus", Description: "links"},
	})

	desc, err := tr.Observe(".1.3.6.1.4.1.9.9.13.1.5.1.3.1001.4")
	require.NoError(t, err)
	assert.Equal(t, "PSU 1", desc)

	desc, err = tr.Observe("1.3.6.1.4.1.9.9.13.1.5.1.3.10011")
	require.NoError(t, err)
	assert.Equal(t, "", desc)

	desc, _ = tr.Observe("IF-MIB::ifOperStatus.3")
	assert.Equal(t, "links", desc)

	// Walks may legitimately return the same OID from two overlapping bases.
	_, err = tr.Observe("1.3.6.1.4.1.9.9.13.1.5.1.3.1001.4")
	assert.NoError(t, err)

	assert.Nil(t, tr.Missing())
	assert.Equal(t, []string{"only 2 results, expected at least 3"}, tr.Problems(2))
	assert.Empty(t, tr.Problems(3))
}
