// Package config loads the optional YAML configuration file.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"cucm-service-cli/internal/action"
	"cucm-service-cli/internal/reconcile"
	"cucm-service-cli/internal/soap"
)

// DefaultFile is read when no --config flag is given. It may be absent.
const DefaultFile = "cucm-service.yaml"

const (
	TerminalPerAction = "per-action"
	TerminalStarted   = "started"
)

//go:embed schema.json
var schema []byte

// Config holds every setting that is not a positional argument.
type Config struct {
	ServersFile        string        `yaml:"servers_file"`
	Port               int           `yaml:"port"`
	Path               string        `yaml:"path"`
	Timeout            time.Duration `yaml:"timeout"`
	PollInterval       time.Duration `yaml:"poll_interval"`
	MaxWait            time.Duration `yaml:"max_wait"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	CAFile             string        `yaml:"ca_file"`
	Debug              bool          `yaml:"debug"`
	TerminalStatus     string        `yaml:"terminal_status"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		ServersFile:        "./ucmlist.txt",
		Port:               soap.DefaultPort,
		Path:               soap.DefaultPath,
		Timeout:            soap.DefaultTimeout,
		PollInterval:       reconcile.DefaultPollInterval,
		InsecureSkipVerify: true,
		TerminalStatus:     TerminalPerAction,
	}
}

// Load reads path on top of Default. The document is checked against the
// schema before it is decoded.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := Validate(data); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ValidationError lists every schema violation in a config document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed:\n - %s", strings.Join(e.Problems, "\n - "))
}

// Validate checks a YAML document against the embedded schema.
func Validate(data []byte) error {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("running schema: %w", err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{}
	for _, desc := range result.Errors() {
		verr.Problems = append(verr.Problems, desc.String())
	}
	return verr
}

// ApplyEnv overlays environment settings. DEBUG=True enables debug output.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("DEBUG"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Debug = on
		}
	}
}

// TerminalStatusFor returns the status that ends polling for act.
// "started" pins it to Started for every action, including Stop.
func (c Config) TerminalStatusFor(act action.Action) string {
	if c.TerminalStatus == TerminalStarted {
		return "Started"
	}
	return act.TerminalStatus()
}
