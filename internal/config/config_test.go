package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedene/tungsten-cli/internal/config"
)

func TestLoadMissing(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nonexistent", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, &config.Config{}, cfg)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	fa := false
	original := &config.Config{
		Stacks:     []string{"image", "link"},
		Disabled:   []string{"link"},
		LineBreaks: &fa,
		StoreDir:   "/srv/docs",
		Attributes: map[string]map[string]map[string]string{
			"link": {"a": {"rel": "nofollow"}},
		},
	}

	require.NoError(t, config.Save(path, original))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, original.Stacks, loaded.Stacks)
	assert.Equal(t, original.Disabled, loaded.Disabled)
	assert.Equal(t, original.StoreDir, loaded.StoreDir)
	assert.Equal(t, original.Attributes, loaded.Attributes)
	require.NotNil(t, loaded.LineBreaks)
	assert.False(t, *loaded.LineBreaks)
	assert.Nil(t, loaded.Sanitize)
}

func TestLoadJSON5(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	json5Content := `{
		// Pipeline
		"stacks": ["image", "video", "link"],
		"sanitize": true,  // trailing comma OK
		"options": {
			video: {width: 800, hd: false},
			image: {prefix: "img:"},
		},
	}`

	require.NoError(t, os.WriteFile(path, []byte(json5Content), 0o644))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"image", "video", "link"}, loaded.Stacks)
	assert.True(t, loaded.SanitizeEnabled())
	assert.InDelta(t, 800, loaded.Options["video"]["width"], 0)
	assert.Equal(t, false, loaded.Options["video"]["hd"])
	assert.Equal(t, "img:", loaded.Options["image"]["prefix"])
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{stacks: "), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestGetSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"stacks", "image,link", "image,link"},
		{"stacks", " image , video ,link ", "image,video,link"},
		{"disabled", "scrubber", "scrubber"},
		{"line_breaks", "false", "false"},
		{"sanitize", "true", "true"},
		{"preview", "false", "false"},
		{"store_dir", "/tmp/docs", "/tmp/docs"},
		{"options.video.width", "800", "800"},
		{"options.image.prefix", "img:", "img:"},
		{"options.video.hd", "false", "false"},
		{"attributes.link.a.rel", "nofollow", "nofollow"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &config.Config{}
			require.NoError(t, cfg.Set(tt.key, tt.value))

			got, ok := cfg.Get(tt.key)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetOptionTypes(t *testing.T) {
	cfg := &config.Config{}

	require.NoError(t, cfg.Set("options.video.width", "800"))
	require.NoError(t, cfg.Set("options.video.hd", "true"))
	require.NoError(t, cfg.Set("options.spoiler.prefix", "{!"))

	assert.Equal(t, 800, cfg.Options["video"]["width"])
	assert.Equal(t, true, cfg.Options["video"]["hd"])
	assert.Equal(t, "{!", cfg.Options["spoiler"]["prefix"])
}

func TestSetValidation(t *testing.T) {
	tests := []struct {
		key   string
		value string
		errRe string
	}{
		{"stacks", "", "must name at least one stack"},
		{"stacks", "image,im age", "invalid stack name"},
		{"stacks", "link,link", "listed twice"},
		{"sanitize", "yes", "must be true or false"},
		{"line_breaks", "1", "must be true or false"},
		{"options.video", "800", "invalid key"},
		{"attributes.link.a", "x", "invalid key"},
		{"options..width", "1", "invalid key"},
		{"unknown_key", "foo", "unknown config key"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &config.Config{}
			err := cfg.Set(tt.key, tt.value)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errRe)
		})
	}
}

func TestSetDisabledAllowsEmpty(t *testing.T) {
	cfg := &config.Config{Disabled: []string{"link"}}
	require.NoError(t, cfg.Set("disabled", ""))
	assert.Empty(t, cfg.Disabled)
}

func TestUnset(t *testing.T) {
	cfg := &config.Config{}
	require.NoError(t, cfg.Set("store_dir", "/x"))

	_, ok := cfg.Get("store_dir")
	assert.True(t, ok)

	require.NoError(t, cfg.Unset("store_dir"))

	_, ok = cfg.Get("store_dir")
	assert.False(t, ok)
}

func TestUnsetDotted(t *testing.T) {
	cfg := &config.Config{}
	require.NoError(t, cfg.Set("options.video.width", "800"))
	require.NoError(t, cfg.Set("attributes.link.a.rel", "nofollow"))

	require.NoError(t, cfg.Unset("options.video.width"))
	require.NoError(t, cfg.Unset("attributes.link.a.rel"))

	assert.Empty(t, cfg.Options)
	assert.Empty(t, cfg.Attributes)

	require.NoError(t, cfg.Unset("options.none.x"))
}

func TestUnsetUnknown(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.Unset("nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestBoolPointerDistinction(t *testing.T) {
	cfg := &config.Config{}

	// Unset: nil, default applies
	_, ok := cfg.Get("line_breaks")
	assert.False(t, ok)
	assert.True(t, cfg.LineBreaksEnabled())

	// Set false: non-nil false
	require.NoError(t, cfg.Set("line_breaks", "false"))

	val, ok := cfg.Get("line_breaks")
	assert.True(t, ok)
	assert.Equal(t, "false", val)
	assert.False(t, cfg.LineBreaksEnabled())

	// Unset: back to nil
	require.NoError(t, cfg.Unset("line_breaks"))
	assert.Nil(t, cfg.LineBreaks)
}

func TestDefaults(t *testing.T) {
	cfg := &config.Config{}

	assert.Equal(t, config.DefaultStacks, cfg.StackNames())
	assert.False(t, cfg.SanitizeEnabled())
	assert.True(t, cfg.PreviewEnabled(true))
	assert.False(t, cfg.PreviewEnabled(false))
	assert.False(t, cfg.IsDisabled("link"))

	names := cfg.StackNames()
	names[0] = "changed"
	assert.Equal(t, "image", config.DefaultStacks[0])
}

func TestPreviewOverride(t *testing.T) {
	fa := false
	cfg := &config.Config{Preview: &fa, Disabled: []string{"link"}}

	assert.False(t, cfg.PreviewEnabled(true))
	assert.True(t, cfg.IsDisabled("link"))
}

func TestAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")
	path := filepath.Join(nested, "config.json")

	cfg := &config.Config{StoreDir: "/x"}
	require.NoError(t, config.Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestKnownKeys(t *testing.T) {
	expected := []string{
		"disabled", "line_breaks", "preview",
		"sanitize", "stacks", "store_dir",
	}
	assert.Equal(t, expected, config.KnownKeys())
}

func TestPaths(t *testing.T) {
	cfgHome, dataHome := t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	t.Setenv("XDG_DATA_HOME", dataHome)

	cfgPath, err := config.Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfgHome, "tungsten", "config.json"), cfgPath)

	storeDir, err := (&config.Config{}).StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataHome, "tungsten", "documents"), storeDir)

	custom, err := (&config.Config{StoreDir: "/srv/docs"}).StorePath()
	require.NoError(t, err)
	assert.Equal(t, "/srv/docs", custom)
}

func TestPathsDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	cfgPath, err := config.Path()
	require.NoError(t, err)
	assert.Contains(t, cfgPath, ".config")
	assert.Contains(t, cfgPath, "tungsten")

	dataDir, err := config.DataDir()
	require.NoError(t, err)
	assert.Contains(t, dataDir, filepath.Join(".local", "share", "tungsten"))
}

func TestWithConfig_FromContext(t *testing.T) {
	cfg := &config.Config{StoreDir: "/x"}
	ctx := config.WithConfig(context.Background(), cfg)

	got := config.FromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "/x", got.StoreDir)
}

func TestFromContext_Nil(t *testing.T) {
	assert.Nil(t, config.FromContext(context.Background()))
}

func TestDottedKeys(t *testing.T) {
	cfg := &config.Config{}
	assert.Empty(t, cfg.DottedKeys())

	require.NoError(t, cfg.Set("options.video.width", "800"))
	require.NoError(t, cfg.Set("attributes.link.a.rel", "nofollow"))
	require.NoError(t, cfg.Set("options.image.prefix", "img:"))

	assert.Equal(t, []string{
		"attributes.link.a.rel",
		"options.image.prefix",
		"options.video.width",
	}, cfg.DottedKeys())
}
