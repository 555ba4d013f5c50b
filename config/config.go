// Package config describes the bus inventory the CLI operates on: which
// buses exist, which backend reaches each one and with what parameters.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mklimuk/i2cm"
)

// Supported backends.
const (
	BackendSim    = "sim"
	BackendHID    = "hid"
	BackendSerial = "serial"
	BackendMMIO   = "mmio"
	BackendKernel = "kernel"
)

type Config struct {
	Buses []BusConfig `yaml:"buses"`
}

// BusConfig selects and parameterizes one bus backend. Device names the
// probe serial port, the memory device or the kernel bus reference
// depending on the backend.
type BusConfig struct {
	ID      int    `yaml:"id"`
	Name    string `yaml:"name"`
	Backend string `yaml:"backend"`

	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	Block  int    `yaml:"block"`
	Base   uint64 `yaml:"base"`

	PollLimit int    `yaml:"poll_limit"`
	PollDelay string `yaml:"poll_delay"`
}

// Default is the inventory used when no config file is given: a single
// simulated bus, so the CLI works out of the box.
func Default() *Config {
	return &Config{
		Buses: []BusConfig{
			{ID: 0, Name: "sim0", Backend: BackendSim},
		},
	}
}

// Load reads and validates a YAML inventory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Bus finds a bus entry by id.
func (c *Config) Bus(id int) (*BusConfig, bool) {
	for i := range c.Buses {
		if c.Buses[i].ID == id {
			return &c.Buses[i], true
		}
	}
	return nil, false
}

func (c *Config) validate() error {
	if len(c.Buses) == 0 {
		return fmt.Errorf("no buses configured")
	}
	seen := make(map[int]bool, len(c.Buses))
	for i := range c.Buses {
		b := &c.Buses[i]
		if seen[b.ID] {
			return fmt.Errorf("bus id %d configured twice", b.ID)
		}
		seen[b.ID] = true
		if b.Backend == "" {
			b.Backend = BackendSim
		}
		if b.Name == "" {
			b.Name = fmt.Sprintf("%s%d", b.Backend, b.ID)
		}
		switch b.Backend {
		case BackendSim, BackendHID:
		case BackendSerial:
			if b.Device == "" {
				return fmt.Errorf("bus %d: serial backend needs a device", b.ID)
			}
		case BackendKernel:
			if b.Device == "" {
				return fmt.Errorf("bus %d: kernel backend needs a bus reference", b.ID)
			}
		case BackendMMIO:
			if b.Base == 0 {
				return fmt.Errorf("bus %d: mmio backend needs a base address", b.ID)
			}
		default:
			return fmt.Errorf("bus %d: unknown backend %q", b.ID, b.Backend)
		}
		if _, err := b.EngineOpts(); err != nil {
			return err
		}
	}
	return nil
}

// EngineOpts converts the per-bus poll overrides into engine options.
func (b *BusConfig) EngineOpts() ([]i2cm.EngineOpt, error) {
	var opts []i2cm.EngineOpt
	if b.PollLimit > 0 {
		opts = append(opts, i2cm.WithPollLimit(b.PollLimit))
	}
	if b.PollDelay != "" {
		d, err := time.ParseDuration(b.PollDelay)
		if err != nil {
			return nil, fmt.Errorf("bus %d: bad poll delay: %w", b.ID, err)
		}
		opts = append(opts, i2cm.WithPollDelay(d))
	}
	return opts, nil
}
