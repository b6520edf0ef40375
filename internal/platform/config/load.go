package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix        = "APP_"
	defaultConfigDir = "configs"
)

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	configDir string
}

// WithConfigDir sets the directory holding base.yaml and the profile files.
// The default is "configs" under the working directory.
func WithConfigDir(dir string) Option {
	return func(o *loadOptions) {
		o.configDir = dir
	}
}

// Load builds the configuration for profile from four layers, later ones
// overriding earlier ones:
//
//  1. compiled defaults (defaults.go)
//  2. {configDir}/base.yaml
//  3. {configDir}/{profile}.yaml
//  4. APP_-prefixed environment variables
//
// Environment names are matched against the keys already loaded, so
// underscores inside a key survive:
//
//	APP_SERVER_READ_TIMEOUT          -> server.read_timeout
//	APP_LLM_API_KEY                  -> llm.api_key
//	APP_SCHEMA_DEFAULTS_MEAL_TYPE    -> schema.defaults.meal_type
//	APP_SCHEMA_CUISINES=ITALIAN,THAI -> schema.cuisines (list keys split on commas)
func Load(profile string, opts ...Option) (*Config, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	o := &loadOptions{configDir: defaultConfigDir}
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(".")

	// Defaults go first so every key is known to the env lookup.
	if err := k.Load(defaultsProvider{}, nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	for _, name := range []string{"base", profile} {
		path := filepath.Join(o.configDir, name+".yaml")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s config %s: %w", name, path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        envPrefix,
		TransformFunc: envTransform(k),
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// envTransform maps APP_FOO_BAR_BAZ onto a known koanf key. Keys whose current
// value is a list take a comma-separated value. Unknown names fall back to
// replacing every underscore with a dot.
func envTransform(k *koanf.Koanf) func(key, value string) (string, any) {
	lookup := make(map[string]string, len(k.Keys()))
	lists := make(map[string]bool)
	for _, key := range k.Keys() {
		lookup[strings.ReplaceAll(key, ".", "_")] = key
		switch k.Get(key).(type) {
		case []string, []any:
			lists[key] = true
		}
	}

	return func(key, value string) (string, any) {
		name := strings.ToLower(strings.TrimPrefix(key, envPrefix))
		koanfKey, ok := lookup[name]
		if !ok {
			return strings.ReplaceAll(name, "_", "."), value
		}
		if lists[koanfKey] {
			return koanfKey, splitList(value)
		}
		return koanfKey, value
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validateProfile rejects empty names and anything that could escape the
// config directory.
func validateProfile(profile string) error {
	switch {
	case strings.TrimSpace(profile) == "":
		return errors.New("profile must not be empty")
	case strings.ContainsAny(profile, `/\`):
		return fmt.Errorf("profile must not contain path separators, got %q", profile)
	case strings.Contains(profile, ".."):
		return fmt.Errorf("profile must not contain path traversal, got %q", profile)
	}
	return nil
}
