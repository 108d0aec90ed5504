package snmp

import (
	"net"
	"strconv"
	"strings"
	"time"
)

const DefaultPort = 161

// Target is everything needed to address one agent. Version is spelled the
// way the net-snmp tools take it: "1", "2c" or "3".
type Target struct {
	Host      string
	Port      int
	Version   string
	Community string

	SecLevel  string
	SecName   string
	AuthProto string
	AuthPass  string
	PrivProto string
	PrivPass  string

	Timeout time.Duration
	Retries int
}

// Address renders the agent address for the net-snmp command line. IPv6
// literals need the udp6 transport prefix and brackets.
func (t Target) Address() string {
	host := t.Host
	ipv6 := strings.Contains(host, ":")
	if ipv6 {
		host = "udp6:[" + strings.Trim(host, "[]") + "]"
	}
	if t.Port == 0 || t.Port == DefaultPort {
		return host
	}
	if ipv6 {
		return host + ":" + strconv.Itoa(t.Port)
	}
	return net.JoinHostPort(host, strconv.Itoa(t.Port))
}

func (t Target) hasAuth() bool {
	return t.SecLevel == "authNoPriv" || t.SecLevel == "authPriv"
}

func (t Target) hasPriv() bool {
	return t.SecLevel == "authPriv"
}
