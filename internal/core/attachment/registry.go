// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package attachment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// reloadDebounce groups the burst of events editors produce on save.
const reloadDebounce = 250 * time.Millisecond

// Registry is a read-only lookup of custom image sizes (those registered by
// themes and plugins on top of the built-in ones).
type Registry interface {
	Lookup(name string) (SizeSpec, bool)
}

// # Static Registry

// StaticRegistry is a fixed set of custom sizes.
type StaticRegistry map[string]SizeSpec

// Lookup implements [Registry].
func (r StaticRegistry) Lookup(name string) (SizeSpec, bool) {
	spec, ok := r[name]
	return spec, ok
}

// # File Registry

// registryDocument is the YAML layout of the sizes file:
//
//	sizes:
//	  hero:
//	    width: 1600
//	    height: 600
//	    crop: [center, top]
type registryDocument struct {
	Sizes map[string]SizeSpec `yaml:"sizes"`
}

// FileRegistry serves sizes from a YAML file and can reload it on change.
type FileRegistry struct {
	path   string
	sizes  atomic.Pointer[StaticRegistry]
	logger *slog.Logger
}

// LoadFileRegistry reads the registry file once.
func LoadFileRegistry(path string, logger *slog.Logger) (*FileRegistry, error) {
	registry := &FileRegistry{path: path, logger: logger}
	if err := registry.reload(); err != nil {
		return nil, err
	}
	return registry, nil
}

// Lookup implements [Registry].
func (r *FileRegistry) Lookup(name string) (SizeSpec, bool) {
	sizes := r.sizes.Load()
	if sizes == nil {
		return SizeSpec{}, false
	}
	return sizes.Lookup(name)
}

// Len returns the number of registered sizes.
func (r *FileRegistry) Len() int {
	if sizes := r.sizes.Load(); sizes != nil {
		return len(*sizes)
	}
	return 0
}

func (r *FileRegistry) reload() error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("attachment: read size registry: %w", err)
	}

	var doc registryDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("attachment: parse size registry %s: %w", r.path, err)
	}

	sizes := StaticRegistry(doc.Sizes)
	if sizes == nil {
		sizes = StaticRegistry{}
	}
	r.sizes.Store(&sizes)
	return nil
}

// Watch reloads the registry whenever its file changes, until ctx is done.
//
// The parent directory is watched rather than the file, so replacing the file
// by rename (as most editors and config management tools do) is picked up.
// A file that fails to parse keeps the previous sizes in place.
func (r *FileRegistry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("attachment: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("attachment: watch %s: %w", filepath.Dir(r.path), err)
	}

	target := filepath.Clean(r.path)
	var debounce *time.Timer
	reloads := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})

		case <-reloads:
			if err := r.reload(); err != nil {
				r.logger.Error("size_registry_reload_failed", slog.String("path", r.path), slog.Any("error", err))
				continue
			}
			r.logger.Info("size_registry_reloaded", slog.String("path", r.path), slog.Int("sizes", r.Len()))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				r.logger.Warn("size_registry_events_dropped")
				continue
			}
			r.logger.Error("size_registry_watch_error", slog.Any("error", err))
		}
	}
}
