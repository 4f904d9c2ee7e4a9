package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_ListsStacksAndTokenForm(t *testing.T) {
	ctx := testCtx(t, false, nil)

	output := captureStdout(t, func() {
		require.NoError(t, (&VersionCmd{}).Run(ctx))
	})

	assert.Contains(t, output, "tungsten ")
	assert.Contains(t, output, "stacks: image, link, linkedimage, scrubber, simplevideo, spoiler, video")
	assert.Contains(t, output, "token:  ~{tungsten::<bitfield>::<kind>::<payload>}~")
}

func TestVersionCmd_JSON(t *testing.T) {
	ctx := testCtx(t, true, nil)

	output := captureStdout(t, func() {
		require.NoError(t, (&VersionCmd{}).Run(ctx))
	})

	var info buildInfo
	require.NoError(t, json.Unmarshal([]byte(output), &info))
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Go)
	assert.Contains(t, info.Stacks, "spoiler")
	assert.Equal(t, "~{tungsten::<bitfield>::<kind>::<payload>}~", info.Token)
}

func TestVersionString_LinkerValues(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	t.Cleanup(func() { version, commit, date = origVersion, origCommit, origDate })

	version, commit, date = "v1.2.3", "abc1234", "2026-01-02"
	assert.Equal(t, "v1.2.3 (abc1234 2026-01-02)", VersionString())
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortCommit("0123456789abcdef0123"))
	assert.Equal(t, "abc", shortCommit("abc"))
}
