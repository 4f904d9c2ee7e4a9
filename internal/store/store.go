// Package store persists encoded documents and their bitfields as JSON
// files, one per document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no document has the requested ID.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for IDs that cannot be used as file names.
	ErrInvalidID = errors.New("invalid document id")
)

var idRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]{0,63}$`)

const ext = ".json"

// Document is the on-disk form of one stored text.
type Document struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Bitfield string    `json:"bitfield"`
	Count    int       `json:"count"`
	StoredAt time.Time `json:"stored_at"`
}

// Store reads and writes documents under one directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory documents live in.
func (s *Store) Dir() string { return s.dir }

// ValidateID reports whether id is usable as a document ID.
func ValidateID(id string) error {
	if !idRe.MatchString(id) {
		return fmt.Errorf("%w %q: use letters, digits, '-' or '_' (max 64)", ErrInvalidID, id)
	}

	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+ext)
}

// Save writes doc, replacing any document with the same ID. A zero
// StoredAt is set to the current time.
func (s *Store) Save(doc Document) error {
	if err := ValidateID(doc.ID); err != nil {
		return err
	}

	if doc.StoredAt.IsZero() {
		doc.StoredAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}

	data = append(data, '\n')

	return atomicWrite(s.path(doc.ID), data)
}

// Load reads the document with the given ID.
func (s *Store) Load(id string) (Document, error) {
	if err := ValidateID(id); err != nil {
		return Document{}, err
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return Document{}, fmt.Errorf("reading document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decoding document %s: %w", id, err)
	}

	doc.ID = id

	return doc, nil
}

// Delete removes a document.
func (s *Store) Delete(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return fmt.Errorf("removing document: %w", err)
	}

	return nil
}

// List returns the IDs of all stored documents, sorted. A missing
// directory is an empty store.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("listing documents: %w", err)
	}

	var ids []string

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}

		id := strings.TrimSuffix(name, ext)
		if ValidateID(id) != nil {
			continue
		}

		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids, nil
}

// atomicWrite writes data to path via temp-file + rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	tmpPath = ""

	return nil
}
