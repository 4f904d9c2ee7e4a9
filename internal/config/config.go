package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/titanous/json5"
)

// DefaultStacks is the pipeline used when the stacks key is unset.
var DefaultStacks = []string{"image", "video", "spoiler", "link", "scrubber"}

// Config holds user preferences.
type Config struct {
	Stacks     []string `json:"stacks,omitempty"`
	Disabled   []string `json:"disabled,omitempty"`
	LineBreaks *bool    `json:"line_breaks,omitempty"`
	Sanitize   *bool    `json:"sanitize,omitempty"`
	Preview    *bool    `json:"preview,omitempty"`
	StoreDir   string   `json:"store_dir,omitempty"`

	// Options maps stack name to option overrides.
	Options map[string]map[string]any `json:"options,omitempty"`
	// Attributes maps stack name to element to attribute overrides.
	Attributes map[string]map[string]map[string]string `json:"attributes,omitempty"`
}

// knownKey describes a config key and its optional validator.
type knownKey struct {
	validate func(string) error
}

var knownKeys = map[string]knownKey{
	"stacks":      {validate: validateNameList(false)},
	"disabled":    {validate: validateNameList(true)},
	"line_breaks": {validate: validateBool},
	"sanitize":    {validate: validateBool},
	"preview":     {validate: validateBool},
	"store_dir":   {validate: nil},
}

// Dotted key prefixes for per-stack settings.
const (
	optionsPrefix    = "options."
	attributesPrefix = "attributes."
)

var nameRe = regexp.MustCompile(`^\w+$`)

func validateBool(val string) error {
	if val != "true" && val != "false" {
		return fmt.Errorf("must be true or false")
	}

	return nil
}

func validateNameList(allowEmpty bool) func(string) error {
	return func(val string) error {
		names := splitList(val)
		if len(names) == 0 && !allowEmpty {
			return fmt.Errorf("must name at least one stack")
		}

		seen := make(map[string]bool, len(names))

		for _, n := range names {
			if !nameRe.MatchString(n) {
				return fmt.Errorf("invalid stack name %q", n)
			}

			if seen[n] {
				return fmt.Errorf("stack %q listed twice", n)
			}

			seen[n] = true
		}

		return nil
	}
}

func splitList(val string) []string {
	var out []string

	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// StackNames returns the configured pipeline order.
func (cfg *Config) StackNames() []string {
	if len(cfg.Stacks) == 0 {
		return slices.Clone(DefaultStacks)
	}

	return slices.Clone(cfg.Stacks)
}

// IsDisabled reports whether the named stack is loaded but switched off.
func (cfg *Config) IsDisabled(name string) bool {
	return slices.Contains(cfg.Disabled, name)
}

// LineBreaksEnabled reports whether display converts newlines. Defaults to true.
func (cfg *Config) LineBreaksEnabled() bool {
	return cfg.LineBreaks == nil || *cfg.LineBreaks
}

// SanitizeEnabled reports whether display output is sanitized by default.
func (cfg *Config) SanitizeEnabled() bool {
	return cfg.Sanitize != nil && *cfg.Sanitize
}

// PreviewEnabled reports whether image previews are shown. When unset it
// follows whether stdout is a terminal.
func (cfg *Config) PreviewEnabled(tty bool) bool {
	if cfg.Preview == nil {
		return tty
	}

	return *cfg.Preview
}

// StorePath returns the document directory, falling back to DefaultStoreDir.
func (cfg *Config) StorePath() (string, error) {
	if cfg.StoreDir != "" {
		return cfg.StoreDir, nil
	}

	return DefaultStoreDir()
}

// Load reads config from the JSON5 file at path.
// Returns an empty Config if the file does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes config as pretty-printed JSON atomically.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	data = append(data, '\n')

	return atomicWrite(path, data)
}

// atomicWrite writes data to path via temp-file + rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	tmpPath = "" // prevent deferred cleanup

	return nil
}

func boolString(b *bool) (string, bool) {
	if b == nil {
		return "", false
	}

	return strconv.FormatBool(*b), true
}

// Get returns the string value for a config key and whether it is set.
func (cfg *Config) Get(key string) (string, bool) {
	if v, ok, handled := cfg.getDotted(key); handled {
		return v, ok
	}

	switch key {
	case "stacks":
		return strings.Join(cfg.Stacks, ","), len(cfg.Stacks) > 0
	case "disabled":
		return strings.Join(cfg.Disabled, ","), len(cfg.Disabled) > 0
	case "line_breaks":
		return boolString(cfg.LineBreaks)
	case "sanitize":
		return boolString(cfg.Sanitize)
	case "preview":
		return boolString(cfg.Preview)
	case "store_dir":
		return cfg.StoreDir, cfg.StoreDir != ""
	default:
		return "", false
	}
}

// Set sets a config key to a value after validation.
func (cfg *Config) Set(key, value string) error {
	if handled, err := cfg.setDotted(key, value); handled {
		return err
	}

	kk, ok := knownKeys[key]
	if !ok {
		return unknownKey(key)
	}

	if kk.validate != nil {
		if err := kk.validate(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}

	switch key {
	case "stacks":
		cfg.Stacks = splitList(value)
	case "disabled":
		cfg.Disabled = splitList(value)
	case "line_breaks":
		b := value == "true"
		cfg.LineBreaks = &b
	case "sanitize":
		b := value == "true"
		cfg.Sanitize = &b
	case "preview":
		b := value == "true"
		cfg.Preview = &b
	case "store_dir":
		cfg.StoreDir = value
	}

	return nil
}

// Unset removes a config key (resets to zero/nil).
func (cfg *Config) Unset(key string) error {
	if handled, err := cfg.unsetDotted(key); handled {
		return err
	}

	if _, ok := knownKeys[key]; !ok {
		return unknownKey(key)
	}

	switch key {
	case "stacks":
		cfg.Stacks = nil
	case "disabled":
		cfg.Disabled = nil
	case "line_breaks":
		cfg.LineBreaks = nil
	case "sanitize":
		cfg.Sanitize = nil
	case "preview":
		cfg.Preview = nil
	case "store_dir":
		cfg.StoreDir = ""
	}

	return nil
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key: %s (valid keys: %s, %s<stack>.<key>, %s<stack>.<element>.<name>)",
		key, strings.Join(KnownKeys(), ", "), optionsPrefix, attributesPrefix)
}

// KnownKeys returns a sorted list of valid top-level config key names.
func KnownKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// --- Per-stack dotted keys ---

// DottedKeys returns the per-stack option and attribute keys that are set,
// sorted.
func (cfg *Config) DottedKeys() []string {
	var keys []string

	for name, opts := range cfg.Options {
		for k := range opts {
			keys = append(keys, optionsPrefix+name+"."+k)
		}
	}

	for name, elems := range cfg.Attributes {
		for elem, attrs := range elems {
			for k := range attrs {
				keys = append(keys, attributesPrefix+name+"."+elem+"."+k)
			}
		}
	}

	sort.Strings(keys)

	return keys
}


// splitDotted splits key after prefix into exactly n non-empty parts.
func splitDotted(key, prefix string, n int) ([]string, bool, error) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return nil, false, nil
	}

	parts := strings.Split(rest, ".")
	if len(parts) != n || slices.Contains(parts, "") {
		return nil, true, fmt.Errorf("invalid key %s: want %s%s", key, prefix,
			strings.Repeat("<part>.", n-1)+"<part>")
	}

	return parts, true, nil
}

func (cfg *Config) getDotted(key string) (string, bool, bool) {
	if parts, handled, err := splitDotted(key, optionsPrefix, 2); handled {
		if err != nil {
			return "", false, true
		}

		v, ok := cfg.Options[parts[0]][parts[1]]
		if !ok {
			return "", false, true
		}

		return fmt.Sprint(v), true, true
	}

	if parts, handled, err := splitDotted(key, attributesPrefix, 3); handled {
		if err != nil {
			return "", false, true
		}

		v, ok := cfg.Attributes[parts[0]][parts[1]][parts[2]]

		return v, ok, true
	}

	return "", false, false
}

func (cfg *Config) setDotted(key, value string) (bool, error) {
	if parts, handled, err := splitDotted(key, optionsPrefix, 2); handled {
		if err != nil {
			return true, err
		}

		if cfg.Options == nil {
			cfg.Options = make(map[string]map[string]any)
		}

		if cfg.Options[parts[0]] == nil {
			cfg.Options[parts[0]] = make(map[string]any)
		}

		cfg.Options[parts[0]][parts[1]] = parseScalar(value)

		return true, nil
	}

	if parts, handled, err := splitDotted(key, attributesPrefix, 3); handled {
		if err != nil {
			return true, err
		}

		if cfg.Attributes == nil {
			cfg.Attributes = make(map[string]map[string]map[string]string)
		}

		if cfg.Attributes[parts[0]] == nil {
			cfg.Attributes[parts[0]] = make(map[string]map[string]string)
		}

		if cfg.Attributes[parts[0]][parts[1]] == nil {
			cfg.Attributes[parts[0]][parts[1]] = make(map[string]string)
		}

		cfg.Attributes[parts[0]][parts[1]][parts[2]] = value

		return true, nil
	}

	return false, nil
}

func (cfg *Config) unsetDotted(key string) (bool, error) {
	if parts, handled, err := splitDotted(key, optionsPrefix, 2); handled {
		if err != nil {
			return true, err
		}

		delete(cfg.Options[parts[0]], parts[1])

		if len(cfg.Options[parts[0]]) == 0 {
			delete(cfg.Options, parts[0])
		}

		return true, nil
	}

	if parts, handled, err := splitDotted(key, attributesPrefix, 3); handled {
		if err != nil {
			return true, err
		}

		elems := cfg.Attributes[parts[0]]
		delete(elems[parts[1]], parts[2])

		if len(elems[parts[1]]) == 0 {
			delete(elems, parts[1])
		}

		if len(elems) == 0 {
			delete(cfg.Attributes, parts[0])
		}

		return true, nil
	}

	return false, nil
}

// parseScalar turns a command-line value into the bool, int or string a
// stack option expects.
func parseScalar(value string) any {
	if value == "true" || value == "false" {
		return value == "true"
	}

	if n, err := strconv.Atoi(value); err == nil {
		return n
	}

	return value
}

// --- Context helpers ---

type ctxKey struct{}

// WithConfig stores a Config in the context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext retrieves the Config from the context.
func FromContext(ctx context.Context) *Config {
	if v := ctx.Value(ctxKey{}); v != nil {
		if cfg, ok := v.(*Config); ok {
			return cfg
		}
	}

	return nil
}
