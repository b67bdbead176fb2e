// Package manifest computes integrity manifests for build artifacts: a
// content digest for every staged file, sorted by path so the serialized
// form is byte-identical for identical inputs regardless of filesystem
// iteration order.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Filename is the manifest file written alongside (and into) artifacts.
const Filename = "checksums.sha256"

// Entry is one file's digest.
type Entry struct {
	Path   string // slash-separated path relative to the artifact root
	Digest string // lowercase hex sha256 of the file content
}

// Manifest is a sorted list of entries.
type Manifest struct {
	Entries []Entry
}

// Generate walks root and digests every regular file. Entries come back
// sorted by path. The manifest file itself is excluded so a manifest can
// be regenerated in place without hashing its previous incarnation.
func Generate(root string) (*Manifest, error) {
	m := &Manifest{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == Filename {
			return nil
		}
		digest, err := HashFile(path)
		if err != nil {
			return fmt.Errorf("hash %s: %w", rel, err)
		}
		m.Entries = append(m.Entries, Entry{Path: rel, Digest: digest})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(m.Entries, func(i, j int) bool { return m.Entries[i].Path < m.Entries[j].Path })
	return m, nil
}

// Encode writes the manifest in sha256sum-compatible form:
// "<digest>  <path>\n" per entry, entries sorted by path.
func (m *Manifest) Encode(w io.Writer) error {
	for _, e := range m.Entries {
		if _, err := fmt.Fprintf(w, "%s  %s\n", e.Digest, e.Path); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile generates the manifest for root and writes it to
// root/checksums.sha256.
func WriteFile(root string) (*Manifest, error) {
	m, err := Generate(root)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	if err := m.Encode(&b); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(root, Filename), []byte(b.String()), 0o644); err != nil {
		return nil, err
	}
	return m, nil
}

// Lookup returns the digest for a path, or false if absent.
func (m *Manifest) Lookup(path string) (string, bool) {
	for _, e := range m.Entries {
		if e.Path == path {
			return e.Digest, true
		}
	}
	return "", false
}

// HashFile returns the lowercase hex sha256 of one file's content. This is
// the single digest algorithm for all integrity data the pipeline emits.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
