// Package knowledge loads the curated "recipe" / design-primer overlay
// named in spec.md §1 — shape specified, contents are data files not
// shipped here — and optionally hot-reloads it from disk, grounded on
// engine/internal/runtime/runtime.go's HotReloadSystem (fsnotify watcher
// over a directory, atomically swapped snapshot). There is no change
// detection: any event on a recipe file reloads the whole directory,
// since recipes are many small files rather than one config file.
package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Recipe is one hand-authored snippet: a short piece of design guidance
// tagged with the query tokens it should surface under.
type Recipe struct {
	ID    string   `yaml:"id"`
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
	Body  string   `yaml:"body"`
}

// Table is an immutable, atomically-swappable snapshot of every loaded
// recipe, indexed by lowercase tag for fast lookup from a query's tokens.
type Table struct {
	byTag map[string][]*Recipe
	all   []*Recipe
}

// Match returns every recipe tagged with at least one of the given
// (already-tokenized) query terms, deduplicated, sorted by ID for
// deterministic output.
func (t *Table) Match(tokens []string) []*Recipe {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []*Recipe
	for _, tok := range tokens {
		for _, r := range t.byTag[strings.ToLower(tok)] {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func buildTable(recipes []*Recipe) *Table {
	t := &Table{byTag: make(map[string][]*Recipe), all: recipes}
	for _, r := range recipes {
		for _, tag := range r.Tags {
			key := strings.ToLower(tag)
			t.byTag[key] = append(t.byTag[key], r)
		}
	}
	return t
}

// Store holds the current Table behind an atomic pointer so readers never
// block on a concurrent reload.
type Store struct {
	current atomic.Pointer[Table]

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
}

// NewStore loads every *.yaml/*.yml file in dir (non-recursive) into an
// initial Table. dir may not exist yet; an empty Table is used in that
// case so the server still starts without a knowledge directory.
func NewStore(dir string) (*Store, error) {
	s := &Store{}
	recipes, err := loadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	s.current.Store(buildTable(recipes))
	return s, nil
}

// Table returns the current snapshot. Safe for concurrent use.
func (s *Store) Table() *Table { return s.current.Load() }

// Watch starts an fsnotify watcher on dir and atomically reloads the
// Table whenever a *.yaml/*.yml file is created, written, or removed.
// It returns an error channel the caller should drain; Watch itself never
// blocks the caller. Call Close to stop watching.
func (s *Store) Watch(dir string) (<-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("knowledge: create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("knowledge: watch %s: %w", dir, err)
	}
	s.watchMu.Lock()
	s.watcher = watcher
	s.watchMu.Unlock()

	errs := make(chan error, 4)
	go func() {
		defer close(errs)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isRecipeFile(ev.Name) {
					continue
				}
				recipes, err := loadDir(dir)
				if err != nil {
					errs <- err
					continue
				}
				s.current.Store(buildTable(recipes))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				errs <- err
			}
		}
	}()
	return errs, nil
}

// Close stops the watcher, if one was started.
func (s *Store) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}

func isRecipeFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func loadDir(dir string) ([]*Recipe, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var recipes []*Recipe
	for _, e := range entries {
		if e.IsDir() || !isRecipeFile(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("knowledge: read %s: %w", e.Name(), err)
		}
		var r Recipe
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("knowledge: parse %s: %w", e.Name(), err)
		}
		if r.ID == "" {
			r.ID = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		}
		recipes = append(recipes, &r)
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].ID < recipes[j].ID })
	return recipes, nil
}
