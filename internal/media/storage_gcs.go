package media

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const GCSStorageName = "Google Cloud Storage"

// GCSStorage writes publicly readable objects to a Cloud Storage bucket.
type GCSStorage struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

// OpenGCS connects to bucketName and checks that it is reachable.
func OpenGCS(ctx context.Context, bucketName, credentialsFile string) (*GCSStorage, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return openGCS(ctx, bucketName, opts...)
}

func openGCS(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, backendErr("gcs", "connect", err)
	}
	bucket := client.Bucket(bucketName)
	if _, err := bucket.Attrs(ctx); err != nil {
		client.Close()
		return nil, backendErr("gcs", "check bucket", err)
	}
	return &GCSStorage{client: client, bucket: bucket, name: bucketName}, nil
}

func (g *GCSStorage) Name() string { return GCSStorageName }

func (g *GCSStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	obj := g.bucket.Object(key)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", backendErr("gcs", "write", err)
	}
	if err := w.Close(); err != nil {
		return "", backendErr("gcs", "write", err)
	}
	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", backendErr("gcs", "make public", err)
	}
	return g.URL(key), nil
}

func (g *GCSStorage) Delete(ctx context.Context, key string) error {
	err := g.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return backendErr("gcs", "delete", err)
	}
	return nil
}

func (g *GCSStorage) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := g.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := g.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (g *GCSStorage) List(ctx context.Context, prefix string) ([]string, error) {
	it := g.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, backendErr("gcs", "list", err)
		}
		keys = append(keys, attrs.Name)
	}
	sort.Strings(keys)
	return keys, nil
}

func (g *GCSStorage) URL(key string) string {
	return g.urlPrefix() + key
}

func (g *GCSStorage) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, g.urlPrefix()) {
		return "", false
	}
	return cleanKey(strings.TrimPrefix(url, g.urlPrefix()))
}

func (g *GCSStorage) urlPrefix() string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/", g.name)
}

func (g *GCSStorage) Close() error {
	return g.client.Close()
}
