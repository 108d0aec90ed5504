package devices

import (
	"context"
	"errors"

	"github.com/logingood/check-snmp-state/models"
)

var ErrDeviceNotFound = errors.New("device not found in inventory")

// Devices looks up SNMP access details for a monitored host.
type Devices interface {
	DeviceByHostname(ctx context.Context, hostname string) (*models.Device, error)
}
