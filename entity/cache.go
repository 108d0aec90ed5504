package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/logingood/check-snmp-state/snmp"
	"go.uber.org/zap"
)

// DescrTable is ENTITY-MIB::entPhysicalDescr.
const DescrTable = "1.3.6.1.2.1.47.1.1.1.1.2"

var (
	ErrEmptyTable = errors.New("entity table is empty")
	ErrNoEntities = errors.New("none of the specified entity names found")
	ErrNotLoaded  = errors.New("entity table not loaded")
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Cache maps physical entity descriptions to their entPhysicalTable index
// suffix for one host. The table is persisted as a single JSON object and
// rebuilt by walking the agent when absent. Concurrent first builds for the
// same host are not coordinated; the rename makes the last writer win.
type Cache struct {
	logger  *zap.Logger
	path    string
	entries map[string]string
}

// NewCache returns a cache for host stored under dir.
func NewCache(logger *zap.Logger, dir, host string) *Cache {
	return &Cache{
		logger: logger,
		path:   filepath.Join(dir, sanitize(host)+".json"),
	}
}

func sanitize(host string) string {
	s := unsafeChars.ReplaceAllString(host, "_")
	if s == "" || strings.Trim(s, ".") == "" {
		return "_"
	}
	return s
}

// Path is where the table is persisted.
func (c *Cache) Path() string {
	return c.path
}

// Load reads the persisted table. It reports false with no error when there
// is none yet; an unreadable file is an error.
func (c *Cache) Load() (bool, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read entity cache: %w", err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return false, fmt.Errorf("entity cache %s is corrupt: %w", c.path, err)
	}
	if len(entries) == 0 {
		return false, fmt.Errorf("entity cache %s: %w", c.path, ErrEmptyTable)
	}
	c.entries = entries
	c.logger.Debug("loaded entity cache", zap.String("path", c.path), zap.Int("entries", len(entries)))
	return true, nil
}

// Build walks entPhysicalDescr with runner and persists the result. When two
// rows share a description the first one walked wins.
func (c *Cache) Build(ctx context.Context, runner snmp.Runner, op snmp.Operation) error {
	entries := map[string]string{}
	prefix := DescrTable + "."

	err := runner.Run(ctx, snmp.Request{Op: op, OIDs: []string{DescrTable}}, func(raw string) {
		line := snmp.ParseLine(raw)
		if line.Kind != snmp.LineValue || !strings.HasPrefix(line.OID, prefix) {
			if line.Kind != snmp.LineBlank {
				c.logger.Debug("skipping entity line", zap.String("line", line.Text), zap.Stringer("kind", line.Kind))
			}
			return
		}
		suffix := strings.TrimPrefix(line.OID, prefix)
		if _, ok := entries[line.Value]; ok {
			c.logger.Debug("duplicate entity description", zap.String("descr", line.Value), zap.String("suffix", suffix))
			return
		}
		entries[line.Value] = suffix
	})
	if err != nil {
		c.logger.Error("failed to walk entity table", zap.Error(err))
		return fmt.Errorf("walk entity table: %w", err)
	}
	if len(entries) == 0 {
		return ErrEmptyTable
	}

	if err := c.save(entries); err != nil {
		c.logger.Error("failed to save entity cache", zap.String("path", c.path), zap.Error(err))
		return err
	}
	c.entries = entries
	c.logger.Info("built entity cache", zap.String("path", c.path), zap.Int("entries", len(entries)))
	return nil
}

// save writes entries to a temporary file next to the cache and renames it
// into place, so readers never observe a partial table.
func (c *Cache) save(entries map[string]string) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cache: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("install cache: %w", err)
	}
	return nil
}

// Ensure loads the persisted table or builds it when there is none.
func (c *Cache) Ensure(ctx context.Context, runner snmp.Runner, op snmp.Operation) error {
	if c.entries != nil {
		return nil
	}
	ok, err := c.Load()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return c.Build(ctx, runner, op)
}

// Resolve looks up each name. Names without an entry are returned in
// missing, in input order. It fails with ErrNoEntities when nothing resolves.
func (c *Cache) Resolve(names []string) (map[string]string, []string, error) {
	if c.entries == nil {
		return nil, nil, ErrNotLoaded
	}
	found := make(map[string]string, len(names))
	var missing []string
	for _, name := range names {
		if suffix, ok := c.entries[name]; ok {
			found[name] = suffix
			continue
		}
		missing = append(missing, name)
	}
	if len(found) == 0 {
		return nil, missing, ErrNoEntities
	}
	return found, missing, nil
}

// Instance is one concrete selector produced by expanding an entity name.
type Instance struct {
	OID  string
	Name string
}

// Expand appends each resolved suffix to every base, base-major, in the order
// of names. Names without a suffix are skipped.
func Expand(bases, names []string, suffixes map[string]string) []Instance {
	out := make([]Instance, 0, len(bases)*len(names))
	for _, base := range bases {
		base = strings.TrimSuffix(base, ".")
		for _, name := range names {
			suffix, ok := suffixes[name]
			if !ok {
				continue
			}
			out = append(out, Instance{OID: base + "." + suffix, Name: name})
		}
	}
	return out
}

// Resolver binds a Cache to the runner that can build it.
type Resolver struct {
	cache  *Cache
	runner snmp.Runner
	op     snmp.Operation
}

// NewResolver returns a Resolver that walks the entity table with op when
// the cache is cold. op is OpWalk for SNMPv1 and OpBulkWalk otherwise.
func NewResolver(cache *Cache, runner snmp.Runner, op snmp.Operation) *Resolver {
	return &Resolver{cache: cache, runner: runner, op: op}
}

func (r *Resolver) Resolve(ctx context.Context, names []string) (map[string]string, []string, error) {
	if err := r.cache.Ensure(ctx, r.runner, r.op); err != nil {
		return nil, nil, err
	}
	return r.cache.Resolve(names)
}
