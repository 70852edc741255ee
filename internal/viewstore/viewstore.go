// Package viewstore persists views as JSON files under
// <root>/.logview/views/<name>.json. Operations are trusted and atomic at
// the granularity of one file; there is no locking because there is only
// one caller.
package viewstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/logview-dev/logview/internal/engine"
	"github.com/logview-dev/logview/internal/model"
)

// NotFoundError reports a view with no backing file, with enough context to
// act on it.
type NotFoundError struct {
	Root string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("view %q does not exist under root %q; create it with: logview create %s --pattern \"...\" --name %q",
		e.Name, e.Root, e.Root, e.Name)
}

// Store reads and writes the view files of one root.
type Store struct {
	root string
}

// New binds a store to a resolved project root.
func New(root string) *Store {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &Store{root: abs}
}

func (s *Store) Root() string { return s.root }

// Dir is where this root's view files live.
func (s *Store) Dir() string {
	return filepath.Join(s.root, ".logview", "views")
}

func (s *Store) path(name string) (string, error) {
	trimmed, err := model.ValidateName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir(), trimmed+".json"), nil
}

// List returns the stored view names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list views: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads and normalizes one view. Files saved before the format and
// computed features existed load with those fields empty.
func (s *Store) Load(name string) (model.View, error) {
	target, err := s.path(name)
	if err != nil {
		return model.View{}, err
	}
	raw, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return model.View{}, &NotFoundError{Root: s.root, Name: strings.TrimSpace(name)}
		}
		return model.View{}, fmt.Errorf("read view file %s: %w", target, err)
	}
	var view model.View
	if err := json.Unmarshal(raw, &view); err != nil {
		return model.View{}, fmt.Errorf("parse view file %s: %w", target, err)
	}
	view.Normalize()
	if err := view.Validate(); err != nil {
		return model.View{}, fmt.Errorf("invalid view file %s: %w", target, err)
	}
	return view, nil
}

// Save validates the view (including save-time alias uniqueness) and writes
// it. A failed validation leaves any previously saved file byte-identical.
func (s *Store) Save(view model.View) (string, error) {
	view.Normalize()
	if err := view.Validate(); err != nil {
		return "", err
	}
	if err := engine.ValidateForSave(view); err != nil {
		return "", err
	}
	target, err := s.path(view.Name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create views dir: %w", err)
	}
	payload, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode view: %w", err)
	}
	payload = append(payload, '\n')
	if err := os.WriteFile(target, payload, 0o644); err != nil {
		return "", fmt.Errorf("write view file %s: %w", target, err)
	}
	return target, nil
}

// Create seeds a new view with the default shape and persists it.
func (s *Store) Create(name, pattern string) (model.View, error) {
	trimmed, err := model.ValidateName(name)
	if err != nil {
		return model.View{}, err
	}
	target, err := s.path(trimmed)
	if err != nil {
		return model.View{}, err
	}
	if _, statErr := os.Stat(target); statErr == nil {
		return model.View{}, fmt.Errorf("view %q already exists", trimmed)
	}
	view := model.DefaultView(trimmed, pattern)
	if _, err := s.Save(view); err != nil {
		return model.View{}, err
	}
	return view, nil
}

// CreateFrom copies an existing view's configuration under a new name.
func (s *Store) CreateFrom(name, fromName string) (model.View, error) {
	trimmed, err := model.ValidateName(name)
	if err != nil {
		return model.View{}, err
	}
	target, err := s.path(trimmed)
	if err != nil {
		return model.View{}, err
	}
	if _, statErr := os.Stat(target); statErr == nil {
		return model.View{}, fmt.Errorf("view %q already exists", trimmed)
	}
	source, err := s.Load(fromName)
	if err != nil {
		return model.View{}, err
	}
	copied := source.Clone()
	copied.Name = trimmed
	if _, err := s.Save(copied); err != nil {
		return model.View{}, err
	}
	return copied, nil
}

// Rename changes a view's identity but not its content.
func (s *Store) Rename(oldName, newName string) (model.View, error) {
	oldTrimmed, err := model.ValidateName(oldName)
	if err != nil {
		return model.View{}, err
	}
	newTrimmed, err := model.ValidateName(newName)
	if err != nil {
		return model.View{}, err
	}
	if oldTrimmed == newTrimmed {
		return s.Load(oldTrimmed)
	}
	newPath, err := s.path(newTrimmed)
	if err != nil {
		return model.View{}, err
	}
	if _, statErr := os.Stat(newPath); statErr == nil {
		return model.View{}, fmt.Errorf("view %q already exists", newTrimmed)
	}
	view, err := s.Load(oldTrimmed)
	if err != nil {
		return model.View{}, err
	}
	view.Name = newTrimmed
	if _, err := s.Save(view); err != nil {
		return model.View{}, err
	}
	oldPath, err := s.path(oldTrimmed)
	if err != nil {
		return model.View{}, err
	}
	if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
		return model.View{}, fmt.Errorf("remove old view file %s: %w", oldPath, err)
	}
	return view, nil
}
