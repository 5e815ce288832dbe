package main

import (
	"os"
	"path/filepath"

	"github.com/forgesites/themekit/internal/cache"
	"github.com/forgesites/themekit/internal/component"
	"github.com/forgesites/themekit/internal/framework"
	"github.com/forgesites/themekit/internal/importer"
	"github.com/forgesites/themekit/internal/logger"
	"github.com/forgesites/themekit/internal/preview"
	"github.com/forgesites/themekit/internal/render"
	"github.com/forgesites/themekit/internal/storage"
	"github.com/forgesites/themekit/internal/theme"
)

// appContext wires every service the commands need over one data directory.
type appContext struct {
	log        *logger.Logger
	store      *storage.Store
	themes     *theme.Manager
	renderer   *render.Renderer
	components *component.Manager
	previews   *preview.Service
	importer   *importer.Importer
	adapter    *framework.Adapter
}

func newAppContext(flags *rootFlags) (*appContext, error) {
	level := "info"
	if flags.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true, Writer: os.Stderr})
	if err != nil {
		return nil, err
	}

	dataDir, err := resolveDataDir(flags.dataDir)
	if err != nil {
		return nil, err
	}
	store, err := storage.New(dataDir)
	if err != nil {
		return nil, err
	}

	mem := cache.NewMemory()
	adapter := framework.NewAdapter(framework.Options{Cache: mem, Logger: log})
	renderer := render.NewRenderer(store, render.Options{
		Cache:     mem,
		Logger:    log,
		Variant:   render.FrameworkAdapted,
		Variables: adapter,
	})
	themes := theme.NewManager(store, theme.ManagerOptions{
		Cache:  mem,
		CSS:    renderer,
		Logger: log,
	})
	components := component.NewManager(store, renderer, component.ManagerOptions{
		Cache:  mem,
		Logger: log,
	})
	previews := preview.NewService(themes, store, preview.Options{
		Cache:  mem,
		CSS:    renderer,
		Logger: log,
	})
	imp := importer.New(store, themes, importer.Options{Logger: log})

	return &appContext{
		log:        log,
		store:      store,
		themes:     themes,
		renderer:   renderer,
		components: components,
		previews:   previews,
		importer:   imp,
		adapter:    adapter,
	}, nil
}

func resolveDataDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("THEMEKIT_DATA"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".themekit"), nil
}
