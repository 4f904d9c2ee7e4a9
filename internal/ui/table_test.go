package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTable_NoColor(t *testing.T) {
	headers := []string{"#", "Stack", "Enabled"}
	rows := [][]string{
		{"1", "image", "on"},
		{"2", "spoiler", "off"},
	}

	out := RenderTable(headers, rows, false)
	for _, s := range []string{"Stack", "Enabled", "image", "spoiler", "off"} {
		assert.Contains(t, out, s)
	}

	assert.True(t, strings.Contains(out, "│") || strings.Contains(out, "|"),
		"expected border character in output")
}

func TestRenderTable_WithColor(t *testing.T) {
	out := RenderTable([]string{"Kind", "Payload"}, [][]string{{"link", "http://example.com/x"}}, true)
	assert.Contains(t, out, "link")
	assert.Contains(t, out, "http://example.com/x")
}

func TestRenderTable_Empty(t *testing.T) {
	out := RenderTable([]string{"Kind", "Payload"}, nil, false)
	assert.Contains(t, out, "Kind")
	assert.Contains(t, out, "Payload")
}

func TestStatusCell(t *testing.T) {
	assert.Equal(t, "on", StatusCell(true, false))
	assert.Equal(t, "off", StatusCell(false, false))
	assert.Contains(t, StatusCell(true, true), "on")
}
