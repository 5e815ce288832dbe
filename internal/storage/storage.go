// Package storage implements the durable store on the filesystem convention
// consumed by the theming core:
//
//	themes/<id>.json                  one document per theme id
//	themes/<id>.history.json          bounded version history
//	previews/<id>.json                one document per preview id
//	components/<category>/<id>/       config.json, style.css, script.js, index.html
//	templates/<category>/<id>/        index.html
//
// Writes go through a temp file followed by an atomic rename so a crashed
// writer can never leave a half-written document behind.
package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/forgesites/themekit/pkg/errors"
)

// Store is a filesystem-backed document and asset store.
type Store struct {
	rootPath string
}

// New creates a Store rooted at rootPath, creating the directory layout if it
// does not exist yet.
func New(rootPath string) (*Store, error) {
	dirs := []string{
		rootPath,
		filepath.Join(rootPath, "themes"),
		filepath.Join(rootPath, "previews"),
		filepath.Join(rootPath, "components"),
		filepath.Join(rootPath, "templates"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.NewStoreError("mkdir", dir, err)
		}
	}
	return &Store{rootPath: rootPath}, nil
}

// Root returns the base directory of the store.
func (s *Store) Root() string {
	return s.rootPath
}

// WriteDoc marshals v and atomically writes it as <kind>/<id>.json.
func (s *Store) WriteDoc(ctx context.Context, kind, id string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewStoreError("marshal", docPath(kind, id), err)
	}
	return s.writeFile(filepath.Join(s.rootPath, docPath(kind, id)), data)
}

// ReadDoc reads <kind>/<id>.json into out. A missing document surfaces as a
// NotFoundError naming the kind.
func (s *Store) ReadDoc(ctx context.Context, kind, id string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.rootPath, docPath(kind, id))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.NewNotFoundError(docKindName(kind), id)
		}
		return apperrors.NewStoreError("read", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewStoreError("unmarshal", path, err)
	}
	return nil
}

// DeleteDoc removes <kind>/<id>.json. Deleting a missing document is not an
// error.
func (s *Store) DeleteDoc(ctx context.Context, kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.rootPath, docPath(kind, id))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperrors.NewStoreError("delete", path, err)
	}
	return nil
}

// ListDocs returns the sorted ids of every document of the given kind.
// History sidecar files are excluded.
func (s *Store) ListDocs(ctx context.Context, kind string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.rootPath, kind)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.NewStoreError("list", dir, err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".history.json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// ReadComponentAsset reads one asset file of a component identified by
// (category, id). A missing file surfaces as a NotFoundError naming the full
// relative path.
func (s *Store) ReadComponentAsset(ctx context.Context, category, id, filename string) (string, error) {
	return s.readAsset(ctx, filepath.Join("components", category, id, filename))
}

// WriteComponentAsset writes one asset file of a component.
func (s *Store) WriteComponentAsset(ctx context.Context, category, id, filename string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Join(s.rootPath, "components", category, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStoreError("mkdir", dir, err)
	}
	return s.writeFile(filepath.Join(dir, filename), content)
}

// ReadTemplateSource reads the markup source of a template identified by
// (category, id).
func (s *Store) ReadTemplateSource(ctx context.Context, category, id string) (string, error) {
	return s.readAsset(ctx, filepath.Join("templates", category, id, "index.html"))
}

// WriteTemplateSource writes the markup source of a template.
func (s *Store) WriteTemplateSource(ctx context.Context, category, id string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Join(s.rootPath, "templates", category, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStoreError("mkdir", dir, err)
	}
	return s.writeFile(filepath.Join(dir, "index.html"), content)
}

func (s *Store) readAsset(ctx context.Context, relPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.rootPath, relPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewNotFoundError("asset", relPath)
		}
		return "", apperrors.NewStoreError("read", path, err)
	}
	return string(data), nil
}

// writeFile writes data to a temporary sibling first, then renames it into
// place.
func (s *Store) writeFile(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return apperrors.NewStoreError("write", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return apperrors.NewStoreError("rename", path, err)
	}
	return nil
}

func docPath(kind, id string) string {
	return filepath.Join(kind, id+".json")
}

// docKindName maps a storage kind directory to the entity name used in
// NotFound errors ("themes" directory holds "theme" documents).
func docKindName(kind string) string {
	return strings.TrimSuffix(kind, "s")
}
