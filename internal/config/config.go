// Package config loads the static, one-shot thread registration table
// (spec.md §6 "Static configuration surface") from TOML, the format the
// rest of this dependency pack's tooling (joeycumines-go-utilpkg) uses
// for static configuration intake.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ThreadConfig is one row of the static registration table: the tuple
// spec.md §6 names, `(name, period_ms, deadline_ms, offset_us,
// priority, core_mask, partition_id)`, plus the name of the runnable to
// bind (resolved by the host program's runnable registry, which is
// outside this package's scope per spec.md §1 "OUT OF SCOPE").
type ThreadConfig struct {
	Name       string `toml:"name"`
	PeriodMs   int64  `toml:"period_ms"`
	DeadlineMs int64  `toml:"deadline_ms"`
	OffsetUs   int64  `toml:"offset_us"`
	Priority   int    `toml:"priority"`
	CoreMask   uint64 `toml:"core_mask"`
	Partition  int    `toml:"partition_id"`
	Runnable   string `toml:"runnable"`
}

// NodeConfig is the root of a node's static configuration file: the
// experiment runtime, node identifier, and the thread table.
type NodeConfig struct {
	NodeID       string         `toml:"node_id"`
	ExperimentMs int64          `toml:"experiment_ms"`
	Threads      []ThreadConfig `toml:"thread"`
}

// Load parses a NodeConfig from a TOML file at path.
func Load(path string) (*NodeConfig, error) {
	var cfg NodeConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadBytes parses a NodeConfig from raw TOML, used by tests and by
// callers embedding configuration rather than reading it from disk.
func LoadBytes(data []byte) (*NodeConfig, error) {
	var cfg NodeConfig
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load, but exits the process on failure — used by host
// programs during boot, where a malformed configuration file is fatal
// (spec.md §6 "Exit behaviour": failure before create_threads is a
// non-zero exit after logging to standard error).
func MustLoad(path string) *NodeConfig {
	cfg, err := Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}
