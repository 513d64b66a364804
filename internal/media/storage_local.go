package media

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const (
	LocalStorageName = "Local Storage"
	// localURLPrefix is the route the upload root is served under.
	localURLPrefix = "uploads/"
)

// LocalStorage keeps uploads on a filesystem below root.
type LocalStorage struct {
	fs   afero.Fs
	root string
}

// NewLocalStorage prepares the products and profiles directories under root.
func NewLocalStorage(fsys afero.Fs, root string) (*LocalStorage, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	for _, dir := range []string{productsNamespace, profilesNamespace} {
		if err := fsys.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, backendErr("local", "mkdir", err)
		}
	}
	return &LocalStorage{fs: fsys, root: root}, nil
}

func (l *LocalStorage) Name() string { return LocalStorageName }

func (l *LocalStorage) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *LocalStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	p := l.path(key)
	if err := l.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", backendErr("local", "mkdir", err)
	}
	if err := afero.WriteFile(l.fs, p, data, 0o644); err != nil {
		return "", backendErr("local", "write", err)
	}
	return l.URL(key), nil
}

func (l *LocalStorage) Delete(_ context.Context, key string) error {
	if err := l.fs.Remove(l.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return backendErr("local", "delete", err)
	}
	return nil
}

func (l *LocalStorage) DeletePrefix(_ context.Context, prefix string) error {
	if err := l.fs.RemoveAll(l.path(prefix)); err != nil {
		return backendErr("local", "delete", err)
	}
	return nil
}

func (l *LocalStorage) List(_ context.Context, prefix string) ([]string, error) {
	base := l.path(prefix)
	if ok, _ := afero.Exists(l.fs, base); !ok {
		return nil, nil
	}
	var keys []string
	err := afero.Walk(l.fs, base, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, backendErr("local", "list", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (l *LocalStorage) URL(key string) string {
	return localURLPrefix + key
}

func (l *LocalStorage) KeyFromURL(url string) (string, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(url), "/")
	if !strings.HasPrefix(trimmed, localURLPrefix) {
		return "", false
	}
	return cleanKey(strings.TrimPrefix(trimmed, localURLPrefix))
}

// cleanKey rejects keys that would escape the upload namespaces.
func cleanKey(key string) (string, bool) {
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if cleaned != key || cleaned == "" {
		return "", false
	}
	if !strings.HasPrefix(cleaned, productsNamespace+"/") && !strings.HasPrefix(cleaned, profilesNamespace+"/") {
		return "", false
	}
	return cleaned, true
}
