// Package config reads bindery-graph.yaml, BINDERY_GRAPH_* environment
// variables and command line flags into one Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
)

const (
	// FileName is the config file looked up in the working directory when
	// no explicit path is given.
	FileName  = "bindery-graph"
	EnvPrefix = "BINDERY_GRAPH"
)

type Config struct {
	Corpus CorpusConfig `mapstructure:"corpus"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Policy PolicyConfig `mapstructure:"policy"`
	Serve  ServeConfig  `mapstructure:"serve"`
	Output OutputConfig `mapstructure:"output"`
}

type CorpusConfig struct {
	Paths []string `mapstructure:"paths"`
	// Configuration is a Configuration manifest merged over the ones found
	// in the corpus.
	Configuration string `mapstructure:"configuration"`
	Workers       int    `mapstructure:"workers"`
}

type CacheConfig struct {
	// Dir enables the manifest cache when set.
	Dir string `mapstructure:"dir"`
}

// PolicyConfig overrides the corpus Configuration. The map keys are provide
// and recipe names and keep their case as written in the config file.
type PolicyConfig struct {
	PreferredProviders        map[string]string `mapstructure:"preferredProviders" json:"preferredProviders"`
	PreferredRuntimeProviders map[string]string `mapstructure:"preferredRuntimeProviders" json:"preferredRuntimeProviders"`
	PreferredVersions         map[string]string `mapstructure:"preferredVersions" json:"preferredVersions"`
	AssumeProvided            []string          `mapstructure:"assumeProvided" json:"assumeProvided"`
	Masks                     []string          `mapstructure:"masks" json:"masks"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

type OutputConfig struct {
	// Format is text, json or yaml.
	Format string `mapstructure:"format"`
	// Color is auto, always or never.
	Color string `mapstructure:"color"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("corpus.paths", []string{})
	v.SetDefault("corpus.configuration", "")
	v.SetDefault("corpus.workers", 0)
	v.SetDefault("cache.dir", "")
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("output.format", "text")
	v.SetDefault("output.color", "auto")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file and decodes everything v knows about. With an
// empty path, bindery-graph.yaml in the working directory is optional.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if file := v.ConfigFileUsed(); file != "" {
		if err := cfg.Policy.restoreKeys(file); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// restoreKeys replaces the policy maps by the ones in file. Viper lowercases
// map keys, provide names are case sensitive.
func (p *PolicyConfig) restoreKeys(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var raw struct {
		Policy PolicyConfig `json:"policy"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode config policy: %w", err)
	}
	if raw.Policy.PreferredProviders != nil {
		p.PreferredProviders = raw.Policy.PreferredProviders
	}
	if raw.Policy.PreferredRuntimeProviders != nil {
		p.PreferredRuntimeProviders = raw.Policy.PreferredRuntimeProviders
	}
	if raw.Policy.PreferredVersions != nil {
		p.PreferredVersions = raw.Policy.PreferredVersions
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("output.format must be text, json or yaml, got %q", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	if c.Corpus.Workers < 0 {
		return fmt.Errorf("corpus.workers must not be negative, got %d", c.Corpus.Workers)
	}
	return nil
}

// Overrides returns the policy as a Configuration spec to merge over the
// corpus configuration.
func (c *Config) Overrides() binderyv1alpha1.ConfigurationSpec {
	return binderyv1alpha1.ConfigurationSpec{
		PreferredProviders:        c.Policy.PreferredProviders,
		PreferredRuntimeProviders: c.Policy.PreferredRuntimeProviders,
		PreferredVersions:         c.Policy.PreferredVersions,
		AssumeProvided:            c.Policy.AssumeProvided,
		Masks:                     c.Policy.Masks,
	}
}
