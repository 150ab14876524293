// # internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"intmap/internal/errors"
)

type Config struct {
	Root    string   `toml:"root"`
	Exclude Exclude  `toml:"exclude"`
	Analyze Analyze  `toml:"analyze"`
	Output  Output   `toml:"output"`
	Watch   Watch    `toml:"watch"`
	History History  `toml:"history"`
	Observe Observe  `toml:"observability"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Analyze struct {
	BoundarySegments int `toml:"boundary_segments"`
	CriticalPaths    int `toml:"critical_paths"`
	Workers          int `toml:"workers"`
}

type Output struct {
	Path   string `toml:"path"`
	Format string `toml:"format"` // "verbose" or "compact"
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type History struct {
	DBPath string `toml:"db_path"`
}

type Observe struct {
	ListenAddr   string `toml:"listen_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// Load reads a TOML config from path. A missing file is not an error: the
// defaults are returned so the tool works with zero configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrap(err, errors.CodeValidationError, "reading config").
					WithContext(errors.CtxPath, path)
			}
		} else if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "parsing config").
				WithContext(errors.CtxPath, path)
		}
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Root == "" {
		c.Root = "."
	}
	if len(c.Exclude.Dirs) == 0 {
		c.Exclude.Dirs = []string{
			".git", ".venv", "venv", "__pycache__",
			"node_modules", ".mypy_cache", ".pytest_cache",
		}
	}
	if c.Analyze.BoundarySegments == 0 {
		c.Analyze.BoundarySegments = 2
	}
	if c.Analyze.CriticalPaths == 0 {
		c.Analyze.CriticalPaths = 5
	}
	if c.Analyze.Workers == 0 {
		c.Analyze.Workers = 4
	}
	if c.Output.Format == "" {
		c.Output.Format = "verbose"
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
}

func (c *Config) validate() error {
	if c.Analyze.BoundarySegments < 1 {
		return errors.New(errors.CodeValidationError, "boundary_segments must be at least 1")
	}
	if c.Analyze.CriticalPaths < 1 {
		return errors.New(errors.CodeValidationError, "critical_paths must be at least 1")
	}
	if c.Analyze.Workers < 1 {
		return errors.New(errors.CodeValidationError, "workers must be at least 1")
	}
	switch c.Output.Format {
	case "verbose", "compact":
	default:
		return errors.New(errors.CodeValidationError, "output format must be verbose or compact").
			WithContext("format", c.Output.Format)
	}
	return nil
}
