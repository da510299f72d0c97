package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is used when PORT is unset, empty or not a valid port.
	DefaultPort = 5001

	// PortEnv names the environment variable holding the listening port.
	PortEnv = "PORT"

	// DefaultEnvFile is loaded into the environment before PORT is read.
	DefaultEnvFile = ".env"

	maxPort = 65535
)

// Config is the resolved runtime configuration. It is built once at startup
// and never mutated.
type Config struct {
	Port int `json:"port"`

	// Defaulted reports whether Port fell back to DefaultPort.
	Defaulted bool `json:"defaulted"`
}

// Addr returns the listen address for all local interfaces.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// InvalidPortError is returned by Resolve when PORT is set but unusable.
// The accompanying Config is still valid and uses DefaultPort.
type InvalidPortError struct {
	Value string
	Err   error
}

func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", PortEnv, e.Value, e.Err)
}

func (e *InvalidPortError) Unwrap() error { return e.Err }

// Resolve reads PORT through getenv. An absent or empty value yields
// DefaultPort with a nil error. An unparseable value also yields DefaultPort,
// together with an *InvalidPortError the caller may log.
func Resolve(getenv func(string) string) (Config, error) {
	raw := getenv(PortEnv)
	if strings.TrimSpace(raw) == "" {
		return Config{Port: DefaultPort, Defaulted: true}, nil
	}

	port, err := ParsePort(raw)
	if err != nil {
		return Config{Port: DefaultPort, Defaulted: true}, &InvalidPortError{Value: raw, Err: err}
	}
	return Config{Port: port}, nil
}

// ParsePort parses s as a TCP port in 1-65535.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("not an integer")
	}
	if port < 1 || port > maxPort {
		return 0, fmt.Errorf("out of range 1-%d", maxPort)
	}
	return port, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set are left untouched. A missing file is not
// an error. The file is parsed in full before anything is set, so on a read
// or parse error the environment is unchanged; callers log the error and
// carry on.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// File holds persistent settings loaded from ~/.greeter/config.yaml.
type File struct {
	LogLevel        string   `yaml:"log_level"`
	LogFormat       string   `yaml:"log_format"`
	AccessLog       bool     `yaml:"access_log"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Duration wraps time.Duration so it can be written as "5s" in YAML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// DefaultPath returns the default settings file path: ~/.greeter/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".greeter", "config.yaml")
}

// Load reads a YAML settings file from path. If the file does not exist,
// it returns an empty File and no error. An empty or all-comment file
// also returns an empty File with no error.
func Load(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &File{}, nil
		}
		return nil, err
	}

	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}
