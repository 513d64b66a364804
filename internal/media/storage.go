package media

import "context"

// Storage is where enhanced uploads end up. Keys are slash separated,
// e.g. products/<productID>/<file>.
type Storage interface {
	// Name is the human readable backend name reported in UploadResult.
	Name() string
	// Put writes data under key and returns the URL it is reachable at.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key under prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	// List returns the keys under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	// URL maps a key to its public URL.
	URL(key string) string
	// KeyFromURL is the inverse of URL. ok is false for URLs this backend does not serve.
	KeyFromURL(url string) (key string, ok bool)
}
