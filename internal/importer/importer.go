// Package importer installs theme packs into the asset store. A pack is a
// directory (usually a git repository) whose pack.yaml manifest lists the
// templates, components, and themes it ships.
package importer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/forgesites/themekit/internal/logger"
	"github.com/forgesites/themekit/internal/storage"
	"github.com/forgesites/themekit/internal/theme"
	apperrors "github.com/forgesites/themekit/pkg/errors"
)

// ManifestFile is the pack manifest filename expected at the pack root.
const ManifestFile = "pack.yaml"

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// TemplateEntry declares one template shipped by a pack. Source points at the
// template's HTML file, relative to the pack root.
type TemplateEntry struct {
	ID       string `yaml:"id" validate:"required"`
	Category string `yaml:"category" validate:"required"`
	Source   string `yaml:"source" validate:"required"`
}

// ComponentEntry declares one component. Source points at a directory holding
// config.json and index.html, plus optional style.css and script.js.
type ComponentEntry struct {
	ID       string `yaml:"id" validate:"required"`
	Category string `yaml:"category" validate:"required"`
	Source   string `yaml:"source" validate:"required"`
}

// ThemeEntry declares one ready-made theme as a JSON document.
type ThemeEntry struct {
	ID     string `yaml:"id" validate:"required"`
	Source string `yaml:"source" validate:"required"`
}

// Manifest is the parsed pack.yaml.
type Manifest struct {
	Name        string           `yaml:"name" validate:"required"`
	Version     string           `yaml:"version"`
	Description string           `yaml:"description"`
	Templates   []TemplateEntry  `yaml:"templates" validate:"dive"`
	Components  []ComponentEntry `yaml:"components" validate:"dive"`
	Themes      []ThemeEntry     `yaml:"themes" validate:"dive"`
}

// Report summarizes one import.
type Report struct {
	Pack       string
	Version    string
	Templates  []string
	Components []string
	Themes     []string
}

// Options configures an Importer.
type Options struct {
	Logger *logger.Logger
}

// Importer copies pack assets into the store and registers pack themes
// through the theme manager.
type Importer struct {
	store  *storage.Store
	themes *theme.Manager
	log    *logger.Logger
}

// New creates an importer. The theme manager may be nil when packs carry no
// themes.
func New(store *storage.Store, themes *theme.Manager, opts Options) *Importer {
	return &Importer{
		store:  store,
		themes: themes,
		log:    opts.Logger.Component("importer"),
	}
}

// ImportPack shallow-clones a pack repository and imports its contents. An
// empty ref clones the remote default branch.
func (i *Importer) ImportPack(ctx context.Context, repoURL, ref string) (*Report, error) {
	tmp, err := os.MkdirTemp("", "themekit-pack-*")
	if err != nil {
		return nil, apperrors.NewStoreError("mkdtemp", "", err)
	}
	defer os.RemoveAll(tmp)

	cloneOpts := &git.CloneOptions{
		URL:   repoURL,
		Depth: 1,
	}
	if ref != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(ref)
		cloneOpts.SingleBranch = true
	}
	if _, err := git.PlainCloneContext(ctx, tmp, false, cloneOpts); err != nil {
		return nil, apperrors.NewStoreError("clone", repoURL, err)
	}
	i.log.WithFields(map[string]any{"url": repoURL, "ref": ref}).Debug("pack repository cloned")
	return i.ImportDir(ctx, tmp)
}

// ImportDir imports a pack from a local directory containing pack.yaml.
func (i *Importer) ImportDir(ctx context.Context, dir string) (*Report, error) {
	manifest, err := i.loadManifest(dir)
	if err != nil {
		return nil, err
	}

	report := &Report{Pack: manifest.Name, Version: manifest.Version}
	for _, entry := range manifest.Templates {
		if err := i.importTemplate(ctx, dir, entry); err != nil {
			return nil, err
		}
		report.Templates = append(report.Templates, entry.Category+"/"+entry.ID)
	}
	for _, entry := range manifest.Components {
		if err := i.importComponent(ctx, dir, entry); err != nil {
			return nil, err
		}
		report.Components = append(report.Components, entry.Category+"/"+entry.ID)
	}
	for _, entry := range manifest.Themes {
		if err := i.importTheme(ctx, dir, entry); err != nil {
			return nil, err
		}
		report.Themes = append(report.Themes, entry.ID)
	}

	i.log.WithFields(map[string]any{
		"pack":       report.Pack,
		"templates":  len(report.Templates),
		"components": len(report.Components),
		"themes":     len(report.Themes),
	}).Info("pack imported")
	return report, nil
}

func (i *Importer) loadManifest(dir string) (Manifest, error) {
	var manifest Manifest
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return manifest, apperrors.NewValidationError(ManifestFile, "pack manifest not found")
		}
		return manifest, apperrors.NewStoreError("read", ManifestFile, err)
	}
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return manifest, apperrors.WrapValidationError(ManifestFile, err)
	}
	if err := validatorInstance().Struct(manifest); err != nil {
		return manifest, apperrors.WrapValidationError(ManifestFile, err)
	}
	return manifest, nil
}

func (i *Importer) importTemplate(ctx context.Context, dir string, entry TemplateEntry) error {
	content, err := readPackFile(dir, entry.Source)
	if err != nil {
		return err
	}
	return i.store.WriteTemplateSource(ctx, entry.Category, entry.ID, content)
}

func (i *Importer) importComponent(ctx context.Context, dir string, entry ComponentEntry) error {
	src := filepath.Join(dir, filepath.FromSlash(entry.Source))
	for _, asset := range []struct {
		name     string
		required bool
	}{
		{"config.json", true},
		{"index.html", true},
		{"style.css", false},
		{"script.js", false},
	} {
		content, err := os.ReadFile(filepath.Join(src, asset.name))
		if err != nil {
			if os.IsNotExist(err) && !asset.required {
				continue
			}
			if os.IsNotExist(err) {
				return apperrors.NewNotFoundError("pack asset", entry.Source+"/"+asset.name)
			}
			return apperrors.NewStoreError("read", entry.Source+"/"+asset.name, err)
		}
		if err := i.store.WriteComponentAsset(ctx, entry.Category, entry.ID, asset.name, content); err != nil {
			return err
		}
	}
	return nil
}

func (i *Importer) importTheme(ctx context.Context, dir string, entry ThemeEntry) error {
	if i.themes == nil {
		return apperrors.NewValidationError("themes", "pack ships themes but no theme manager is configured")
	}
	raw, err := readPackFile(dir, entry.Source)
	if err != nil {
		return err
	}
	var t theme.Theme
	if err := json.Unmarshal(raw, &t); err != nil {
		return apperrors.WrapValidationError(entry.Source, err)
	}
	t.ID = entry.ID
	_, err = i.themes.CreateTheme(ctx, t)
	return err
}

func readPackFile(dir, source string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(source)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("pack asset", source)
		}
		return nil, apperrors.NewStoreError("read", source, err)
	}
	return content, nil
}
