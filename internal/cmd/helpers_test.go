package cmd

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dedene/tungsten-cli/internal/config"
	"github.com/dedene/tungsten-cli/internal/outfmt"
)

// testCtx isolates config and data dirs and returns a context carrying cfg.
func testCtx(t *testing.T, jsonMode bool, cfg *config.Config) context.Context {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	if cfg == nil {
		cfg = &config.Config{}
	}

	ctx := context.Background()
	ctx = outfmt.WithMode(ctx, outfmt.Mode{JSON: jsonMode})
	ctx = config.WithConfig(ctx, cfg)

	return ctx
}

// withStdin feeds s to commands reading stdin.
func withStdin(t *testing.T, s string) {
	t.Helper()

	origIn, origTTY := stdin, stdinIsTTY
	stdin = strings.NewReader(s)
	stdinIsTTY = func() bool { return false }

	t.Cleanup(func() {
		stdin, stdinIsTTY = origIn, origTTY
	})
}

// withTTY overrides terminal detection for stdout and stderr.
func withTTY(t *testing.T, out, errOut bool) {
	t.Helper()

	origOut, origErr := stdoutIsTTY, stderrIsTTY
	stdoutIsTTY = func() bool { return out }
	stderrIsTTY = func() bool { return errOut }

	t.Cleanup(func() {
		stdoutIsTTY, stderrIsTTY = origOut, origErr
	})
}

// captureStdout runs fn while capturing os.Stdout and returns the output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	origStdout := os.Stdout
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		buf, _ := io.ReadAll(r)
		done <- buf
	}()

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	return string(<-done)
}
