package config

import (
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/logingood/check-snmp-state/snmp"
)

type FromEnv struct {
	LogLevel string `env:"LOG_LEVEL,default=WARN"`
	CacheDir string `env:"CACHE_DIR,default=/var/tmp"`

	// net-snmp tools, resolved through PATH unless absolute
	SnmpGet      string `env:"SNMPGET,default=snmpget"`
	SnmpGetNext  string `env:"SNMPGETNEXT,default=snmpgetnext"`
	SnmpWalk     string `env:"SNMPWALK,default=snmpwalk"`
	SnmpBulkWalk string `env:"SNMPBULKWALK,default=snmpbulkwalk"`

	// Librenms DB credentials, optional. Credentials missing from the command
	// line are looked up there when DB_HOST is set.
	DbUsername string `env:"DB_USERNAME"`
	DbPassword string `env:"DB_PASSWORD"`
	DbHost     string `env:"DB_HOST"`
	DbPort     string `env:"DB_PORT,default=3306"`
	DbName     string `env:"DB_NAME,default=librenms"`
}

func (c *FromEnv) Tools() snmp.Tools {
	return snmp.Tools{
		Get:      c.SnmpGet,
		GetNext:  c.SnmpGetNext,
		Walk:     c.SnmpWalk,
		BulkWalk: c.SnmpBulkWalk,
	}
}

func (c *FromEnv) InventoryEnabled() bool {
	return c.DbHost != ""
}

// DSN is the go-sql-driver connection string for the inventory database.
func (c *FromEnv) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.DbUsername
	cfg.Passwd = c.DbPassword
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.DbHost, c.DbPort)
	cfg.DBName = c.DbName
	return cfg.FormatDSN()
}
