package snmp

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"
)

// ErrSymbolicOID is returned by NativeRunner for selectors it cannot send:
// without MIB files only numeric OIDs can be encoded.
var ErrSymbolicOID = errors.New("symbolic OIDs need the netsnmp engine")

// pduSource is the part of *gosnmp.GoSNMP the native engine drives.
type pduSource interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	GetNext(oids []string) (*gosnmp.SnmpPacket, error)
	WalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
	BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
}

type dialFunc func(Target) (pduSource, func() error, error)

// NativeRunner answers Requests in-process with gosnmp and renders every PDU
// as the line net-snmp would have printed, so both engines feed the same
// parser.
type NativeRunner struct {
	logger *zap.Logger
	target Target
	dial   dialFunc
}

func NewNativeRunner(logger *zap.Logger, target Target) *NativeRunner {
	return &NativeRunner{
		logger: logger,
		target: target,
		dial:   dialSession,
	}
}

func dialSession(target Target) (pduSource, func() error, error) {
	g, err := NewSession(target)
	if err != nil {
		return nil, nil, err
	}
	return g, g.Conn.Close, nil
}

func (r *NativeRunner) Run(ctx context.Context, req Request, handle func(line string)) error {
	for _, oid := range req.OIDs {
		if !IsNumericOID(oid) {
			return fmt.Errorf("%w: %s", ErrSymbolicOID, oid)
		}
	}

	session, closeFn, err := r.dial(r.target)
	if err != nil {
		r.logger.Error("failed to connect", zap.String("host", r.target.Host), zap.Error(err))
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			r.logger.Debug("failed to close session", zap.Error(err))
		}
	}()

	r.logger.Debug("querying", zap.String("op", req.Op.String()), zap.Strings("oids", req.OIDs))
	switch req.Op {
	case OpGet, OpGetNext:
		return r.fetch(ctx, session, req, handle)
	default:
		return r.walk(ctx, session, req, handle)
	}
}

// fetch issues get or get-next requests in batches of gosnmp.MaxOids.
func (r *NativeRunner) fetch(ctx context.Context, session pduSource, req Request, handle func(string)) error {
	for start := 0; start < len(req.OIDs); start += gosnmp.MaxOids {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+gosnmp.MaxOids, len(req.OIDs))
		batch := req.OIDs[start:end]

		var (
			pkt *gosnmp.SnmpPacket
			err error
		)
		if req.Op == OpGetNext {
			pkt, err = session.GetNext(batch)
		} else {
			pkt, err = session.Get(batch)
		}
		if err != nil {
			return fmt.Errorf("%s %s: %w", req.Op, r.target.Address(), err)
		}
		if pkt.Error != gosnmp.NoError {
			return fmt.Errorf("%s %s: agent returned %v at index %d", req.Op, r.target.Address(), pkt.Error, pkt.ErrorIndex)
		}
		for _, pdu := range pkt.Variables {
			handle(FormatPDU(pdu))
		}
	}
	return nil
}

func (r *NativeRunner) walk(ctx context.Context, session pduSource, req Request, handle func(string)) error {
	for _, root := range req.OIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		var (
			pdus []gosnmp.SnmpPDU
			err  error
		)
		if req.Op == OpBulkWalk {
			pdus, err = session.BulkWalkAll(root)
		} else {
			pdus, err = session.WalkAll(root)
		}
		if err != nil {
			return fmt.Errorf("%s %s %s: %w", req.Op, r.target.Address(), root, err)
		}
		for _, pdu := range pdus {
			handle(FormatPDU(pdu))
		}
	}
	return nil
}

// FormatPDU renders one variable binding in net-snmp quick print form:
// strings quoted, integers in decimal, exceptions as their sentinel phrase.
func FormatPDU(pdu gosnmp.SnmpPDU) string {
	return pdu.Name + " " + formatValue(pdu)
}

func formatValue(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.NoSuchInstance:
		return NoSuchInstance.String()
	case gosnmp.NoSuchObject:
		return NoSuchObject.String()
	case gosnmp.EndOfMibView:
		return EndOfMibView.String()
	case gosnmp.Null:
		return `""`
	case gosnmp.OctetString:
		if b, ok := pdu.Value.([]byte); ok {
			return `"` + string(b) + `"`
		}
	case gosnmp.ObjectIdentifier, gosnmp.IPAddress:
		if s, ok := pdu.Value.(string); ok {
			return s
		}
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Gauge32, gosnmp.TimeTicks,
		gosnmp.Counter64, gosnmp.Uinteger32:
		return gosnmp.ToBigInt(pdu.Value).String()
	}
	return fmt.Sprint(pdu.Value)
}
