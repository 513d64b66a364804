package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// jsonCollection persists a slice of records as a single indented JSON array,
// the layout used by the data directory (products.json, artisans.json, ...).
// Every mutation rewrites the file through a temp file and rename.
type jsonCollection[T any] struct {
	path string
	key  func(*T) string
	mu   sync.RWMutex
}

func newJSONCollection[T any](path string, key func(*T) string) (*jsonCollection[T], error) {
	c := &jsonCollection[T]{path: path, key: key}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := c.write([]T{}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *jsonCollection[T]) read() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.path, err)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.path, err)
	}
	return items, nil
}

func (c *jsonCollection[T]) write(items []T) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.path, err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", c.path, err)
	}
	return nil
}

func (c *jsonCollection[T]) all() ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.read()
}

func (c *jsonCollection[T]) find(match func(*T) bool) (*T, error) {
	items, err := c.all()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if match(&items[i]) {
			return &items[i], nil
		}
	}
	return nil, ErrNotFound
}

func (c *jsonCollection[T]) get(id string) (*T, error) {
	return c.find(func(item *T) bool { return c.key(item) == id })
}

func (c *jsonCollection[T]) insert(item *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.read()
	if err != nil {
		return err
	}
	return c.write(append(items, *item))
}

// replace overwrites the record sharing item's key.
func (c *jsonCollection[T]) replace(item *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.read()
	if err != nil {
		return err
	}
	id := c.key(item)
	for i := range items {
		if c.key(&items[i]) == id {
			items[i] = *item
			return c.write(items)
		}
	}
	return ErrNotFound
}

func (c *jsonCollection[T]) remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.read()
	if err != nil {
		return err
	}
	for i := range items {
		if c.key(&items[i]) == id {
			return c.write(append(items[:i], items[i+1:]...))
		}
	}
	return ErrNotFound
}

// mutate runs fn on the records with the given keys and writes the file once,
// all under the write lock. Nothing is written when fn fails.
func (c *jsonCollection[T]) mutate(ids []string, fn func(map[string]*T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.read()
	if err != nil {
		return err
	}
	byID := make(map[string]*T, len(ids))
	for i := range items {
		byID[c.key(&items[i])] = &items[i]
	}
	selected := make(map[string]*T, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return fmt.Errorf("record with ID %s: %w", id, ErrNotFound)
		}
		selected[id] = item
	}
	if err := fn(selected); err != nil {
		return err
	}
	return c.write(items)
}

func (c *jsonCollection[T]) mutateOne(id string, fn func(*T) error) (*T, error) {
	var out T
	err := c.mutate([]string{id}, func(items map[string]*T) error {
		if err := fn(items[id]); err != nil {
			return err
		}
		out = *items[id]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
