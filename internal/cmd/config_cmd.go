package cmd

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/dedene/tungsten-cli/internal/config"
	"github.com/dedene/tungsten-cli/internal/outfmt"
	"github.com/dedene/tungsten-cli/internal/stack"
)

// ConfigCmd groups configuration subcommands.
type ConfigCmd struct {
	Path  ConfigPathCmd  `cmd:"" help:"Show config file path"`
	List  ConfigListCmd  `cmd:"" help:"List settings and stack option defaults"`
	Get   ConfigGetCmd   `cmd:"" help:"Get a config value"`
	Set   ConfigSetCmd   `cmd:"" help:"Set a config value"`
	Unset ConfigUnsetCmd `cmd:"" help:"Unset a config value"`
}

// ConfigPathCmd prints the config file path.
type ConfigPathCmd struct{}

// Run prints the config file path.
func (c *ConfigPathCmd) Run(_ context.Context) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, path)

	return nil
}

// ConfigListCmd lists settings, then every stack option with its
// effective value.
type ConfigListCmd struct{}

// Run prints one "key = value" line per setting. Stack options that are
// not overridden show their default.
func (c *ConfigListCmd) Run(ctx context.Context) error {
	cfg := configFrom(ctx)

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, cfg)
	}

	for _, key := range config.KnownKeys() {
		val, ok := cfg.Get(key)
		if !ok {
			val = "(unset)"
		}

		fmt.Fprintf(os.Stdout, "%s = %s\n", key, val)
	}

	reg := stack.DefaultRegistry()
	printed := make(map[string]bool)

	for _, name := range reg.Names() {
		s, err := reg.Create(name)
		if err != nil {
			return err
		}

		defaults := s.Options()
		for _, opt := range slices.Sorted(maps.Keys(defaults)) {
			key := optionKey(name, opt)
			printed[key] = true

			if val, ok := cfg.Get(key); ok {
				fmt.Fprintf(os.Stdout, "%s = %s\n", key, val)

				continue
			}

			fmt.Fprintf(os.Stdout, "%s = %v (default)\n", key, defaults[opt])
		}
	}

	for _, key := range cfg.DottedKeys() {
		if printed[key] {
			continue
		}

		val, _ := cfg.Get(key)
		if name, ok := dottedStack(key); ok && !reg.Has(name) {
			val += " (unknown stack)"
		}

		fmt.Fprintf(os.Stdout, "%s = %s\n", key, val)
	}

	return nil
}

// ConfigGetCmd gets a single config value.
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get"`
}

// Run prints the value for the given key, falling back to the stack
// default for unset stack options.
func (c *ConfigGetCmd) Run(ctx context.Context) error {
	cfg := configFrom(ctx)

	if val, ok := cfg.Get(c.Key); ok {
		fmt.Fprintln(os.Stdout, val)

		return nil
	}

	if def, ok := optionDefault(stack.DefaultRegistry(), c.Key); ok {
		fmt.Fprintf(os.Stdout, "%v (default)\n", def)

		return nil
	}

	fmt.Fprintln(os.Stdout, "(unset)")

	return nil
}

// ConfigSetCmd sets a config value.
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key (options.<stack>.<option>, attributes.<stack>.<element>.<name>, ...)"`
	Value string `arg:"" help:"Config value"`
}

// Run validates the value against the stack registry and persists it.
func (c *ConfigSetCmd) Run(ctx context.Context) error {
	cfgPath, err := config.Path()
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := cfg.Set(c.Key, c.Value); err != nil {
		return err
	}

	if err := checkSetting(stack.DefaultRegistry(), cfg, c.Key, c.Value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", c.Key, err)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	val, _ := cfg.Get(c.Key)
	successf(ctx, "Set %s = %s", c.Key, val)

	return nil
}

// ConfigUnsetCmd removes a config value.
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to unset"`
}

// Run unsets a config key, persisting to disk.
func (c *ConfigUnsetCmd) Run(ctx context.Context) error {
	cfgPath, err := config.Path()
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := cfg.Unset(c.Key); err != nil {
		return err
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	successf(ctx, "Unset %s", c.Key)

	return nil
}

const (
	optionsPrefix    = "options."
	attributesPrefix = "attributes."
)

func optionKey(name, opt string) string {
	return optionsPrefix + name + "." + opt
}

// dottedStack returns the stack name of an options or attributes key.
func dottedStack(key string) (string, bool) {
	for _, prefix := range []string{optionsPrefix, attributesPrefix} {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			name, _, _ := strings.Cut(rest, ".")

			return name, name != ""
		}
	}

	return "", false
}

// optionDefault returns the built-in value of an options.<stack>.<option>
// key.
func optionDefault(reg *stack.Registry, key string) (any, bool) {
	rest, ok := strings.CutPrefix(key, optionsPrefix)
	if !ok {
		return nil, false
	}

	name, opt, ok := strings.Cut(rest, ".")
	if !ok {
		return nil, false
	}

	s, err := reg.Create(name)
	if err != nil {
		return nil, false
	}

	v, ok := s.Options()[opt]

	return v, ok
}

// checkSetting validates a freshly set key against the stacks reg can
// build. Stack options are applied to a scratch stack so unknown options
// and type mismatches fail here rather than on the next render; the
// coerced value is written back to cfg.
func checkSetting(reg *stack.Registry, cfg *config.Config, key, raw string) error {
	switch key {
	case "stacks":
		return checkStackNames(reg, cfg.Stacks)
	case "disabled":
		return checkStackNames(reg, cfg.Disabled)
	}

	name, ok := dottedStack(key)
	if !ok {
		return nil
	}

	if strings.HasPrefix(key, attributesPrefix) {
		return checkStackNames(reg, []string{name})
	}

	s, err := reg.Create(name)
	if err != nil {
		return err
	}

	opt := strings.TrimPrefix(key, optionsPrefix+name+".")
	parsed := cfg.Options[name][opt]

	// A numeric-looking value may still be meant as a string option.
	if err := s.SetOption(opt, parsed); err != nil {
		if _, isString := parsed.(string); isString || s.SetOption(opt, raw) != nil {
			return err
		}
	}

	cfg.Options[name][opt] = s.Options()[opt]

	return nil
}

func checkStackNames(reg *stack.Registry, names []string) error {
	for _, n := range names {
		if !reg.Has(n) {
			return fmt.Errorf("%w: %q (known stacks: %s)", stack.ErrUnknownStack, n, strings.Join(reg.Names(), ", "))
		}
	}

	return nil
}
