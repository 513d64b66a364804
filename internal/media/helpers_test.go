package media_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"testing"

	"artisanhub/internal/logging"
	"artisanhub/internal/media"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	prompts []string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// countingStorage wraps a Storage and counts Put calls, optionally failing them.
type countingStorage struct {
	media.Storage
	puts   int
	putErr error
}

func (c *countingStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	c.puts++
	if c.putErr != nil {
		return "", &media.BackendError{Backend: "test", Op: "write", Err: c.putErr}
	}
	return c.Storage.Put(ctx, key, data, contentType)
}

var errBroken = errors.New("broken")

// memStorage is a map-backed Storage standing in for a remote bucket.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

const memPrefix = "mem://bucket/"

func newMemStorage() *memStorage { return &memStorage{objects: make(map[string][]byte)} }

func (m *memStorage) Name() string { return "memory" }

func (m *memStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return m.URL(key), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
		}
	}
	return nil
}

func (m *memStorage) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memStorage) URL(key string) string { return memPrefix + key }

func (m *memStorage) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, memPrefix) {
		return "", false
	}
	return strings.TrimPrefix(url, memPrefix), true
}

func (m *memStorage) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func newLocal(t *testing.T) (*media.LocalStorage, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	local, err := media.NewLocalStorage(fs, "uploads")
	require.NoError(t, err)
	return local, fs
}

func newService(t *testing.T, store media.Storage, gen media.TextGenerator, opts ...media.Option) *media.Service {
	t.Helper()
	return media.NewService(store, gen, logging.Discard(), opts...)
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.Transparent, color.RGBA{R: 200, A: 255}})
	for x := 0; x < w/2; x++ {
		for y := 0; y < h; y++ {
			img.SetColorIndex(x, y, 1)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func fileHeader(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}
