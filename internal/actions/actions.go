// Package actions provides post-render output actions: clipboard copy,
// opening rendered HTML in a browser, and writing output files.
package actions

import (
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
)

// ErrClipboardUnsupported indicates the platform has no clipboard support.
var ErrClipboardUnsupported = errors.New("clipboard not supported on this platform")

// ClipboardWrite is a function variable for clipboard writes (swappable in tests).
var ClipboardWrite = clipboard.WriteAll

// ClipboardUnsupported mirrors clipboard.Unsupported (swappable in tests).
var ClipboardUnsupported = clipboard.Unsupported

// BrowserOpenFile is a function variable for opening local files (swappable in tests).
var BrowserOpenFile = browser.OpenFile

// CopyToClipboard copies text to the system clipboard.
// Returns a descriptive error if clipboard is unsupported on the platform.
func CopyToClipboard(text string) error {
	if ClipboardUnsupported {
		return ErrClipboardUnsupported
	}

	return ClipboardWrite(text)
}

// HTMLPage wraps a rendered fragment in a minimal standalone document.
func HTMLPage(title, body string) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	b.WriteString("<style>.tungsten-uniqueid{background:#111;color:#111}.tungsten-uniqueid:hover{color:inherit;background:none}</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>\n")

	return b.String()
}

// OpenHTML writes page to a temporary .html file and opens it in the
// default browser. The file is left behind for the browser to read; its
// path is returned.
func OpenHTML(page string) (string, error) {
	f, err := os.CreateTemp("", "tungsten-*.html")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	path := f.Name()

	if _, err := f.WriteString(page); err != nil {
		_ = f.Close()

		return path, fmt.Errorf("writing %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return path, fmt.Errorf("closing %s: %w", path, err)
	}

	if err := BrowserOpenFile(path); err != nil {
		return path, fmt.Errorf("opening browser: %w", err)
	}

	return path, nil
}

// WriteFile writes content to destPath, creating parent directories.
func WriteFile(destPath, content string) error {
	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(destPath, []byte(content), 0o644); err != nil { //nolint:gosec // user-chosen output file
		return fmt.Errorf("writing %s: %w", destPath, err)
	}

	return nil
}
