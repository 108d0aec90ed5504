package sql

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/logingood/check-snmp-state/devices"
	"github.com/logingood/check-snmp-state/models"
	"go.uber.org/zap"
)

// DeviceQuery reads one row of the LibreNMS devices table. QUERY in the
// environment overrides it; the override takes the hostname as its only
// bind parameter.
const DeviceQuery = `SELECT device_id, hostname, community, authlevel, authname, authpass, authalgo, cryptopass, cryptoalgo, snmpver, port, transport FROM devices WHERE hostname = ? LIMIT 1;`

type Client struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func New(db *sqlx.DB, logger *zap.Logger) *Client {
	return &Client{
		db:     db,
		logger: logger,
	}
}

// Connect opens and pings a MySQL connection for dsn.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect inventory: %w", err)
	}
	return db, nil
}

func (c *Client) DeviceByHostname(ctx context.Context, hostname string) (*models.Device, error) {
	query := os.Getenv("QUERY")
	if query == "" {
		query = DeviceQuery
	}

	var device models.Device
	err := c.db.GetContext(ctx, &device, query, hostname)
	if errors.Is(err, stdsql.ErrNoRows) {
		c.logger.Info("device not in inventory", zap.String("hostname", hostname))
		return nil, devices.ErrDeviceNotFound
	}
	if err != nil {
		c.logger.Error("error get device", zap.String("hostname", hostname), zap.Error(err))
		return nil, err
	}
	return &device, nil
}

var _ devices.Devices = (*Client)(nil)
