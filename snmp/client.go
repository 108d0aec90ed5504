package snmp

import (
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// NewSession builds and connects a gosnmp session for target. The caller
// closes session.Conn.
func NewSession(target Target) (*gosnmp.GoSNMP, error) {
	if target.Host == "" {
		return nil, fmt.Errorf("bad address")
	}

	port := target.Port
	if port == 0 {
		port = DefaultPort
	}
	g := &gosnmp.GoSNMP{
		Port:                    uint16(port),
		Retries:                 target.Retries,
		Timeout:                 target.Timeout,
		Transport:               "udp",
		Target:                  strings.Trim(target.Host, "[]"),
		UseUnconnectedUDPSocket: true,
		MaxOids:                 gosnmp.MaxOids,
	}
	if strings.Contains(g.Target, ":") {
		g.Transport = "udp6"
	}

	switch target.Version {
	case "1":
		g.Version = gosnmp.Version1
		g.Community = target.Community
	case "2c":
		g.Version = gosnmp.Version2c
		g.Community = target.Community
	case "3":
		if target.SecName == "" {
			return nil, fmt.Errorf("v3 requires a security name")
		}
		g.Version = gosnmp.Version3
		g.SecurityModel = gosnmp.UserSecurityModel
		usm := &gosnmp.UsmSecurityParameters{
			UserName:               target.SecName,
			AuthenticationProtocol: gosnmp.NoAuth,
			PrivacyProtocol:        gosnmp.NoPriv,
		}

		switch target.SecLevel {
		case "noAuthNoPriv", "":
			g.MsgFlags = gosnmp.NoAuthNoPriv
		case "authNoPriv":
			g.MsgFlags = gosnmp.AuthNoPriv
		case "authPriv":
			g.MsgFlags = gosnmp.AuthPriv
		default:
			return nil, fmt.Errorf("bad security level %q", target.SecLevel)
		}
		if target.hasAuth() {
			usm.AuthenticationProtocol = mapAuthProto(target.AuthProto)
			usm.AuthenticationPassphrase = target.AuthPass
		}
		if target.hasPriv() {
			usm.PrivacyProtocol = mapPrivProto(target.PrivProto)
			usm.PrivacyPassphrase = target.PrivPass
		}
		g.SecurityParameters = usm
	default:
		return nil, fmt.Errorf("bad protocol %q", target.Version)
	}

	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("snmp connect %s: %w", target.Address(), err)
	}
	return g, nil
}

// mapAuthProto accepts both the net-snmp spelling (SHA-256) and the bare
// one (sha256).
func mapAuthProto(s string) gosnmp.SnmpV3AuthProtocol {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "")) {
	case "md5":
		return gosnmp.MD5
	case "sha", "sha1":
		return gosnmp.SHA
	case "sha224":
		return gosnmp.SHA224
	case "sha256":
		return gosnmp.SHA256
	case "sha384":
		return gosnmp.SHA384
	case "sha512":
		return gosnmp.SHA512
	default:
		return gosnmp.NoAuth
	}
}

func mapPrivProto(s string) gosnmp.SnmpV3PrivProtocol {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "")) {
	case "des":
		return gosnmp.DES
	case "aes", "aes128":
		return gosnmp.AES
	case "aes192":
		return gosnmp.AES192
	case "aes256":
		return gosnmp.AES256
	case "aes192c":
		return gosnmp.AES192C
	case "aes256c":
		return gosnmp.AES256C
	default:
		return gosnmp.NoPriv
	}
}
