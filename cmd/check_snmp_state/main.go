package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	flags "github.com/jessevdk/go-flags"
	"github.com/logingood/check-snmp-state/check"
	"github.com/logingood/check-snmp-state/config"
	"github.com/logingood/check-snmp-state/devices"
	"github.com/logingood/check-snmp-state/devices/sql"
	"github.com/logingood/check-snmp-state/entity"
	"github.com/logingood/check-snmp-state/internal/lgr"
	"github.com/logingood/check-snmp-state/models"
	"github.com/logingood/check-snmp-state/snmp"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	// the monitoring host kills plugins that overrun; take the SNMP tool down too
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
	}()

	code := run(ctx, os.Args[1:], envconfig.OsLookuper(), os.Stdout, os.Stderr)
	signal.Stop(c)
	cancel()
	os.Exit(code)
}

func pluginName() string {
	return filepath.Base(os.Args[0])
}

func run(ctx context.Context, args []string, env envconfig.Lookuper, stdout, stderr io.Writer) int {
	unknown := models.SeverityUnknown.ExitCode()

	var cfg config.FromEnv
	if err := envconfig.ProcessWith(ctx, &cfg, env); err != nil {
		fmt.Fprintf(stdout, "UNKNOWN: cannot read config: %v\n", err)
		return unknown
	}

	opts, parser, err := config.Parse(args)
	if errors.Is(err, config.ErrHelp) {
		parser.WriteHelp(stdout)
		return unknown
	}
	if err != nil {
		return usage(stdout, stderr, parser, err)
	}

	logger, err := lgr.InitializeLogger(opts.LogLevel(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(stdout, "UNKNOWN: %v\n", err)
		return unknown
	}
	defer logger.Sync()

	if cfg.InventoryEnabled() && opts.NeedsCredentials() {
		if err := lookupCredentials(ctx, logger, &cfg, opts); err != nil {
			fmt.Fprintf(stdout, "UNKNOWN: inventory lookup for %s failed: %v\n", opts.Hostname, err)
			return unknown
		}
	}

	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return usage(stdout, stderr, parser, err)
	}

	target := opts.Target()
	var runner snmp.Runner
	switch opts.Engine {
	case config.EngineGoSNMP:
		runner = snmp.NewNativeRunner(logger, target)
	default:
		runner = snmp.NewExecRunner(logger, cfg.Tools(), target)
	}

	var resolver check.Resolver
	if len(opts.Entities) > 0 {
		dir := opts.CacheDir
		if dir == "" {
			dir = cfg.CacheDir
		}
		cache := entity.NewCache(logger, filepath.Join(dir, pluginName()), opts.Hostname)
		resolver = entity.NewResolver(cache, runner, opts.EntityOperation())
	}

	result, err := check.New(logger, runner, resolver, opts.Settings()).Run(ctx)
	if err != nil {
		fmt.Fprintf(stdout, "UNKNOWN: %v\n", err)
		return unknown
	}
	fmt.Fprintln(stdout, result.String())
	return result.ExitCode()
}

func usage(stdout, stderr io.Writer, parser *flags.Parser, err error) int {
	fmt.Fprintf(stderr, "%s: %v\n\n", pluginName(), err)
	if parser != nil {
		parser.WriteHelp(stderr)
	}
	fmt.Fprintf(stdout, "UNKNOWN: %v\n", err)
	return models.SeverityUnknown.ExitCode()
}

// lookupCredentials fills missing access details from the LibreNMS
// inventory. A host the inventory does not know keeps the defaults.
func lookupCredentials(ctx context.Context, logger *zap.Logger, cfg *config.FromEnv, opts *config.Options) error {
	db, err := sql.Connect(ctx, cfg.DSN())
	if err != nil {
		logger.Error("error create mysql conn", zap.Error(err))
		return err
	}
	defer db.Close()

	var inventory devices.Devices = sql.New(db, logger)
	device, err := inventory.DeviceByHostname(ctx, opts.Hostname)
	if errors.Is(err, devices.ErrDeviceNotFound) {
		logger.Warn("host not in inventory, using defaults", zap.String("hostname", opts.Hostname))
		return nil
	}
	if err != nil {
		return err
	}
	opts.ApplyCredentials(device.Credentials())
	logger.Debug("credentials from inventory", zap.Int32("device_id", device.DeviceID), zap.String("version", device.Version()))
	return nil
}
