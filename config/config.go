package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	DefaultCount    = 4
	DefaultSize     = 32
	DefaultTTL      = 128
	DefaultTimeout  = 4000 * time.Millisecond
	DefaultInterval = time.Second

	// MaxSize is the largest echo payload accepted, same as Windows ping.
	MaxSize = 65500
)

// Default returns a configuration populated with the command line defaults.
func Default() Config {
	return Config{
		Count:    DefaultCount,
		Size:     DefaultSize,
		TTL:      DefaultTTL,
		Timeout:  Interval{Duration: DefaultTimeout},
		Interval: Interval{Duration: DefaultInterval},
	}
}

// Load reads a JSON configuration file on top of the defaults.
func Load(path string) (cfg *Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	c := Default()
	err = json.Unmarshal(data, &c)
	if err != nil {
		return
	}
	cfg = &c

	return
}

// Config holds everything the engine needs to run a ping session. It is not
// modified once the engine starts.
type Config struct {
	Destination  string   `json:"destination"`
	Continuous   bool     `json:"continuous"`
	Count        int      `json:"count"`
	Size         int      `json:"size"`
	DontFragment bool     `json:"dont_fragment"`
	TTL          int      `json:"ttl"`
	Timeout      Interval `json:"timeout"`
	Source       string   `json:"source"`
	ResolveNames bool     `json:"resolve_names"`
	Interval     Interval `json:"interval"`
	Privileged   bool     `json:"privileged"`
}

// Validate checks the invariants the engine relies on.
func (c *Config) Validate() error {
	if c.Destination == "" {
		return errors.New("destination cannot be empty")
	}
	if !c.Continuous && c.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", c.Count)
	}
	if c.Size < 0 || c.Size > MaxSize {
		return fmt.Errorf("size %d out of range 0-%d", c.Size, MaxSize)
	}
	if c.TTL < 1 || c.TTL > 255 {
		return fmt.Errorf("ttl %d out of range 1-255", c.TTL)
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout.Duration)
	}
	if c.Interval.Duration < 0 {
		return fmt.Errorf("interval cannot be negative, got %v", c.Interval.Duration)
	}

	return nil
}

type Interval struct {
	time.Duration
}

func (d *Interval) UnmarshalJSON(data []byte) (err error) {
	var pstr string
	err = json.Unmarshal(data, &pstr)
	if err != nil {
		return err
	}
	d.Duration, err = time.ParseDuration(pstr)
	return
}

func (d Interval) MarshalJSON() (data []byte, err error) {
	s := d.Duration.String()
	data, err = json.Marshal(s)
	return
}
