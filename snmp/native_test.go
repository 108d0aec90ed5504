package snmp

import (
	"context"
	"errors"
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	packet *gosnmp.SnmpPacket
	walks  map[string][]gosnmp.SnmpPDU
	err    error

	gets   [][]string
	nexts  [][]string
	bulk   []string
	walked []string
	closed bool
}

func (f *fakeSession) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	f.gets = append(f.gets, oids)
	return f.packet, f.err
}

func (f *fakeSession) GetNext(oids []string) (*gosnmp.SnmpPacket, error) {
	f.nexts = append(f.nexts, oids)
	return f.packet, f.err
}

func (f *fakeSession) WalkAll(root string) ([]gosnmp.SnmpPDU, error) {
	f.walked = append(f.walked, root)
	return f.walks[root], f.err
}

func (f *fakeSession) BulkWalkAll(root string) ([]gosnmp.SnmpPDU, error) {
	f.bulk = append(f.bulk, root)
	return f.walks[root], f.err
}

func newFakeNative(f *fakeSession) *NativeRunner {
	r := NewNativeRunner(zap.NewNop(), Target{Host: "192.0.2.1", Version: "2c", Community: "public"})
	r.dial = func(Target) (pduSource, func() error, error) {
		return f, func() error { f.closed = true; return nil }, nil
	}
	return r
}

func TestNativeRunnerGet(t *testing.T) {
	f := &fakeSession{packet: &gosnmp.SnmpPacket{Variables: []gosnmp.SnmpPDU{
		{Name: ".1.3.6.1.2.1.1.5.0", Type: gosnmp.OctetString, Value: []byte("core1")},
		{Name: ".1.3.6.1.2.1.1.9.0", Type: gosnmp.NoSuchInstance},
	}}}
	lines, err := collect(t, newFakeNative(f), Request{Op: OpGet, OIDs: []string{"1.3.6.1.2.1.1.5.0", "1.3.6.1.2.1.1.9.0"}})

	require.NoError(t, err)
	assert.Equal(t, []string{
		`.1.3.6.1.2.1.1.5.0 "core1"`,
		".1.3.6.1.2.1.1.9.0 No Such Instance currently exists at this OID",
	}, lines)
	assert.Equal(t, [][]string{{"1.3.6.1.2.1.1.5.0", "1.3.6.1.2.1.1.9.0"}}, f.gets)
	assert.True(t, f.closed)

	parsed := ParseLine(lines[1])
	assert.Equal(t, LineNotFound, parsed.Kind)
}

func TestNativeRunnerBatchesGetNext(t *testing.T) {
	oids := make([]string, gosnmp.MaxOids+1)
	for i := range oids {
		oids[i] = "1.3.6.1.2.1.2.2.1.8"
	}
	f := &fakeSession{packet: &gosnmp.SnmpPacket{}}
	_, err := collect(t, newFakeNative(f), Request{Op: OpGetNext, OIDs: oids})

	require.NoError(t, err)
	require.Len(t, f.nexts, 2)
	assert.Len(t, f.nexts[0], gosnmp.MaxOids)
	assert.Len(t, f.nexts[1], 1)
}

func TestNativeRunnerAgentError(t *testing.T) {
	f := &fakeSession{packet: &gosnmp.SnmpPacket{Error: gosnmp.NoSuchName, ErrorIndex: 1}}
	_, err := collect(t, newFakeNative(f), Request{Op: OpGet, OIDs: []string{"1.3.6.1.2.1.1.99.0"}})
	assert.Error(t, err)
}

func TestNativeRunnerWalk(t *testing.T) {
	root := "1.3.6.1.2.1.47.1.1.1.1.2"
	f := &fakeSession{walks: map[string][]gosnmp.SnmpPDU{
		root: {
			{Name: ".1.3.6.1.2.1.47.1.1.1.1.2.1001", Type: gosnmp.OctetString, Value: []byte("PSU 1")},
			{Name: ".1.3.6.1.2.1.47.1.1.1.1.2.1002", Type: gosnmp.OctetString, Value: []byte("PSU 2")},
		},
	}}

	lines, err := collect(t, newFakeNative(f), Request{Op: OpBulkWalk, OIDs: []string{root}})
	require.NoError(t, err)
	assert.Equal(t, []string{
		`.1.3.6.1.2.1.47.1.1.1.1.2.1001 "PSU 1"`,
		`.1.3.6.1.2.1.47.1.1.1.1.2.1002 "PSU 2"`,
	}, lines)
	assert.Equal(t, []string{root}, f.bulk)

	_, err = collect(t, newFakeNative(f), Request{Op: OpWalk, OIDs: []string{root}})
	require.NoError(t, err)
	assert.Equal(t, []string{root}, f.walked)
}

func TestNativeRunnerTransportError(t *testing.T) {
	f := &fakeSession{err: errors.New("request timeout (after 1 retries)")}
	_, err := collect(t, newFakeNative(f), Request{Op: OpWalk, OIDs: []string{"1.3.6.1.2.1.1"}})
	assert.ErrorContains(t, err, "request timeout")
}

func TestNativeRunnerRejectsSymbolic(t *testing.T) {
	f := &fakeSession{}
	_, err := collect(t, newFakeNative(f), Request{Op: OpGet, OIDs: []string{"SNMPv2-MIB::sysName.0"}})
	assert.ErrorIs(t, err, ErrSymbolicOID)
	assert.Empty(t, f.gets)
}

func TestNativeRunnerHonoursContext(t *testing.T) {
	f := &fakeSession{packet: &gosnmp.SnmpPacket{}}
	r := newFakeNative(f)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, Request{Op: OpGet, OIDs: []string{"1.3.6.1.2.1.1.1.0"}}, func(string) {})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.gets)
}

func TestFormatPDU(t *testing.T) {
	tests := []struct {
		pdu  gosnmp.SnmpPDU
		want string
	}{
		{gosnmp.SnmpPDU{Name: ".1.3.6.1.4.1.9.9.13.1.5.1.3.1", Type: gosnmp.Integer, Value: 1}, ".1.3.6.1.4.1.9.9.13.1.5.1.3.1 1"},
		{gosnmp.SnmpPDU{Name: ".1.3.6.1.2.1.1.3.0", Type: gosnmp.TimeTicks, Value: uint32(4200)}, ".1.3.6.1.2.1.1.3.0 4200"},
		{gosnmp.SnmpPDU{Name: ".1.3.6.1.2.1.31.1.1.1.6.1", Type: gosnmp.Counter64, Value: uint64(18446744073709551615)}, ".1.3.6.1.2.1.31.1.1.1.6.1 18446744073709551615"},
		{gosnmp.SnmpPDU{Name: ".1.3.6.1.2.1.1.2.0", Type: gosnmp.ObjectIdentifier, Value: ".1.3.6.1.4.1.9.1.1"}, ".1.3.6.1.2.1.1.2.0 .1.3.6.1.4.1.9.1.1"},
		{gosnmp.SnmpPDU{Name: ".1.3.6.1.2.1.4.20.1.1.10.0.0.1", Type: gosnmp.IPAddress, Value: "10.0.0.1"}, ".1.3.6.1.2.1.4.20.1.1.10.0.0.1 10.0.0.1"},
		{gosnmp.SnmpPDU{Name: ".1.3.6.1.2.1.1.9.0", Type: gosnmp.NoSuchObject}, ".1.3.6.1.2.1.1.9.0 No Such Object available on this agent at this OID"},
		{gosnmp.SnmpPDU{Name: ".1.3.6.1.2.1.1.9.0", Type: gosnmp.EndOfMibView}, ".1.3.6.1.2.1.1.9.0 No more variables left in this MIB View (It is past the end of the MIB tree)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPDU(tt.pdu))
	}
}
