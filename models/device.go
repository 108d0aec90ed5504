package models

// Device is the subset of a LibreNMS devices row needed to reach a host over
// SNMP. Nullable columns are pointers.
type Device struct {
	DeviceID   int32   `db:"device_id" json:"device_id"`
	Hostname   *string `db:"hostname" json:"hostname"`
	Community  *string `db:"community" json:"community"`
	AuthLevel  *string `db:"authlevel" json:"authlevel"`
	AuthName   *string `db:"authname" json:"authname"`
	AuthPass   *string `db:"authpass" json:"-"`
	AuthAlgo   *string `db:"authalgo" json:"authalgo"`
	CryptoPass *string `db:"cryptopass" json:"-"`
	CryptoAlgo *string `db:"cryptoalgo" json:"cryptoalgo"`
	SnmpVer    *string `db:"snmpver" json:"snmpver"`
	Port       int     `db:"port" json:"port"`
	Transport  *string `db:"transport" json:"transport"`
}

// Version returns the SNMP version the way the command line spells it
// ("1", "2c" or "3"). LibreNMS stores "v1", "v2c" and "v3".
func (d *Device) Version() string {
	if d.SnmpVer == nil {
		return ""
	}
	switch *d.SnmpVer {
	case "v1", "1":
		return "1"
	case "v2c", "2c":
		return "2c"
	case "v3", "3":
		return "3"
	default:
		return *d.SnmpVer
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Credentials is the SNMP access material for one target, independent of
// where it came from.
type Credentials struct {
	Version   string
	Community string
	SecLevel  string
	SecName   string
	AuthProto string
	AuthPass  string
	PrivProto string
	PrivPass  string
	Port      int
}

// Credentials flattens the nullable columns of d.
func (d *Device) Credentials() Credentials {
	return Credentials{
		Version:   d.Version(),
		Community: deref(d.Community),
		SecLevel:  deref(d.AuthLevel),
		SecName:   deref(d.AuthName),
		AuthProto: deref(d.AuthAlgo),
		AuthPass:  deref(d.AuthPass),
		PrivProto: deref(d.CryptoAlgo),
		PrivPass:  deref(d.CryptoPass),
		Port:      d.Port,
	}
}
