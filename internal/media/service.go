package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

const (
	productsNamespace = "products"
	profilesNamespace = "profiles"

	defaultAITimeout     = 15 * time.Second
	defaultUploadTimeout = 30 * time.Second
	connectTimeout       = 10 * time.Second
)

// Config selects and configures the backends. It is read once by Open.
type Config struct {
	UseCloud        bool
	Project         string
	Location        string
	Bucket          string
	Model           string
	CredentialsFile string
	UploadRoot      string
	AITimeout       time.Duration
	UploadTimeout   time.Duration
}

// UploadResult describes the outcome of an upload. Failures never surface as errors.
type UploadResult struct {
	Success     bool   `json:"success"`
	Filename    string `json:"filename,omitempty"`
	URL         string `json:"url,omitempty"`
	StorageType string `json:"storage_type,omitempty"`
	Enhanced    bool   `json:"enhanced"`
	Error       string `json:"error,omitempty"`
}

func failed(msg string) UploadResult {
	return UploadResult{Success: false, Error: msg}
}

// Service enhances and stores product media. Backends are resolved once and
// never change afterwards, so a Service is safe for concurrent use.
type Service struct {
	storage       Storage
	local         Storage
	generator     TextGenerator
	cache         *descriptionCache
	logger        *slog.Logger
	aiTimeout     time.Duration
	uploadTimeout time.Duration
	closers       []io.Closer
}

type Option func(*options)

type options struct {
	fs            afero.Fs
	local         Storage
	redis         *redis.Client
	cacheTTL      time.Duration
	aiTimeout     time.Duration
	uploadTimeout time.Duration
}

// WithFs sets the filesystem used by the local storage fallback.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithLocalStorage sets the store used by SaveProductImage. It defaults to the
// resolved storage.
func WithLocalStorage(local Storage) Option {
	return func(o *options) { o.local = local }
}

// WithDescriptionCache caches generated descriptions in Redis for ttl.
func WithDescriptionCache(rdb *redis.Client, ttl time.Duration) Option {
	return func(o *options) {
		o.redis = rdb
		o.cacheTTL = ttl
	}
}

// WithTimeouts bounds AI and storage calls. Zero keeps the default.
func WithTimeouts(ai, upload time.Duration) Option {
	return func(o *options) {
		if ai > 0 {
			o.aiTimeout = ai
		}
		if upload > 0 {
			o.uploadTimeout = upload
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		aiTimeout:     defaultAITimeout,
		uploadTimeout: defaultUploadTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open resolves the backends described by cfg. When cloud use is enabled the
// bucket and the model are checked independently; a failed check falls back to
// local storage or templated descriptions for the lifetime of the Service.
// Only a local upload root that cannot be created is an error.
func Open(ctx context.Context, cfg Config, logger *slog.Logger, opts ...Option) (*Service, error) {
	opts = append([]Option{WithTimeouts(cfg.AITimeout, cfg.UploadTimeout)}, opts...)
	o := buildOptions(opts)

	var (
		store   Storage
		gen     TextGenerator
		closers []io.Closer
	)
	if cfg.UseCloud {
		pctx, cancel := context.WithTimeout(ctx, connectTimeout)
		gcs, err := OpenGCS(pctx, cfg.Bucket, cfg.CredentialsFile)
		cancel()
		if err != nil {
			logger.Warn("cloud storage unavailable, using local storage", "backend", "gcs", "bucket", cfg.Bucket, "error", err)
		} else {
			logger.Info("connected to cloud storage", "bucket", cfg.Bucket)
			store = gcs
			closers = append(closers, gcs)
		}

		pctx, cancel = context.WithTimeout(ctx, connectTimeout)
		vertex, err := OpenVertex(pctx, cfg.Project, cfg.Location, cfg.Model, cfg.CredentialsFile)
		cancel()
		if err != nil {
			logger.Warn("text generation unavailable, using templated descriptions", "backend", "vertexai", "model", cfg.Model, "error", err)
		} else {
			logger.Info("text generation ready", "model", cfg.Model, "location", cfg.Location)
			gen = vertex
			closers = append(closers, vertex)
		}
	}

	local, err := NewLocalStorage(o.fs, cfg.UploadRoot)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		return nil, fmt.Errorf("prepare upload root %s: %w", cfg.UploadRoot, err)
	}
	if store == nil {
		store = local
	}
	opts = append(opts, WithLocalStorage(local))

	svc := NewService(store, gen, logger, opts...)
	svc.closers = closers
	return svc, nil
}

// NewService wires already-resolved backends. generator may be nil, in which
// case descriptions always use the template.
func NewService(store Storage, generator TextGenerator, logger *slog.Logger, opts ...Option) *Service {
	o := buildOptions(opts)
	s := &Service{
		storage:       store,
		generator:     generator,
		logger:        logger,
		aiTimeout:     o.aiTimeout,
		uploadTimeout: o.uploadTimeout,
		local:         o.local,
	}
	if s.local == nil {
		s.local = store
	}
	if o.redis != nil {
		s.cache = &descriptionCache{rdb: o.redis, ttl: o.cacheTTL}
	}
	return s
}

// StorageType names the resolved storage backend.
func (s *Service) StorageType() string { return s.storage.Name() }

// AIEnabled reports whether a text generator was resolved.
func (s *Service) AIEnabled() bool { return s.generator != nil }

func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EnhanceDescription returns marketing copy for a product. Without a working
// generator it returns FallbackDescription.
func (s *Service) EnhanceDescription(ctx context.Context, raw, productName, craftType string, materials []string) string {
	text, err := s.generateDescription(ctx, raw, productName, craftType, materials)
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) {
			s.logger.Warn("description enhancement failed, using template", "backend", be.Backend, "op", be.Op, "error", be.Err)
		} else {
			s.logger.Debug("description enhancement skipped, using template", "error", err)
		}
		return FallbackDescription(raw, productName, craftType, materials)
	}
	return text
}

func (s *Service) generateDescription(ctx context.Context, raw, name, craft string, materials []string) (string, error) {
	if s.generator == nil {
		return "", ErrUnavailable
	}

	var key string
	if s.cache != nil {
		key = descriptionKey(raw, name, craft, materials)
		if v, ok, err := s.cache.get(ctx, key); err != nil {
			s.logger.Warn("description cache lookup failed", "error", err)
		} else if ok {
			return v, nil
		}
	}

	actx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()
	text, err := s.generator.Generate(actx, descriptionPrompt(raw, name, craft, materials))
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) {
			return "", err
		}
		return "", backendErr(s.generator.Name(), "generate", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", backendErr(s.generator.Name(), "generate", errors.New("empty response"))
	}

	if s.cache != nil {
		if err := s.cache.set(ctx, key, text); err != nil {
			s.logger.Warn("description cache store failed", "error", err)
		}
	}
	return text, nil
}

func materialsText(materials []string, fallback string) string {
	var kept []string
	for _, m := range materials {
		if m = strings.TrimSpace(m); m != "" {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return fallback
	}
	return strings.Join(kept, ", ")
}

func descriptionPrompt(raw, name, craft string, materials []string) string {
	var sb strings.Builder
	sb.WriteString("Transform this artisan product description into compelling marketing copy:\n\n")
	fmt.Fprintf(&sb, "Product: %s\n", name)
	fmt.Fprintf(&sb, "Craft Type: %s\n", craft)
	fmt.Fprintf(&sb, "Materials: %s\n", materialsText(materials, "Traditional materials"))
	fmt.Fprintf(&sb, "Original Description: %s\n\n", raw)
	sb.WriteString("Write 2-4 sentences that:\n")
	sb.WriteString("- Highlight traditional Indian craftsmanship\n")
	sb.WriteString("- Mention the artisan's skill and heritage\n")
	sb.WriteString("- Name the materials used\n")
	sb.WriteString("- Appeal to buyers seeking authentic handmade items, in warm storytelling language\n\n")
	sb.WriteString("Enhanced Description:")
	return sb.String()
}

// FallbackDescription is the deterministic description used when no
// generator is available.
func FallbackDescription(raw, productName, craftType string, materials []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Discover this handcrafted %s, a piece of %s tradition.", productName, craftType)
	if desc := strings.TrimRight(strings.TrimSpace(strings.ToLower(raw)), ".!"); desc != "" {
		fmt.Fprintf(&sb, " It is %s,", desc)
	} else {
		sb.WriteString(" It is")
	}
	fmt.Fprintf(&sb, " made from %s.", materialsText(materials, "traditional materials"))
	fmt.Fprintf(&sb, " Every %s carries the skill and heritage of the artisan who shaped it.", strings.ToLower(productName))
	return sb.String()
}

// UploadProductImage enhances fh and stores it under products/<productID>/
// in the resolved storage.
func (s *Service) UploadProductImage(ctx context.Context, fh *multipart.FileHeader, productID string) UploadResult {
	return s.upload(ctx, s.storage, fh, productsNamespace, productID, maxImageWidth, maxImageHeight, jpegQuality)
}

// SaveProductImage is the basic upload: the image is shrunk and recompressed
// at quality 85 and always written to local storage.
func (s *Service) SaveProductImage(ctx context.Context, fh *multipart.FileHeader, productID string) UploadResult {
	return s.upload(ctx, s.local, fh, productsNamespace, productID, maxImageWidth, maxImageHeight, plainQuality)
}

// UploadProfileImage enhances fh and stores it under profiles/<artisanID>/.
func (s *Service) UploadProfileImage(ctx context.Context, fh *multipart.FileHeader, artisanID string) UploadResult {
	return s.upload(ctx, s.storage, fh, profilesNamespace, artisanID, maxProfileSide, maxProfileSide, jpegQuality)
}

func (s *Service) upload(ctx context.Context, store Storage, fh *multipart.FileHeader, namespace, ownerID string, maxW, maxH, quality int) (res UploadResult) {
	if fh == nil || fh.Filename == "" {
		return failed("No file selected")
	}
	if !AllowedFile(fh.Filename) {
		return failed("Only image files allowed (PNG, JPG, JPEG, GIF, WEBP)")
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("upload panicked", "namespace", namespace, "owner_id", ownerID, "panic", r)
			res = failed(fmt.Sprintf("Upload failed: %v", r))
		}
	}()

	if err := validateOwnerID(ownerID); err != nil {
		return failed("Upload failed: " + err.Error())
	}

	data, err := readFileHeader(fh)
	if err != nil {
		return failed("Upload failed: " + err.Error())
	}
	if len(data) == 0 {
		return failed("No file selected")
	}

	enhanced := true
	out, err := enhanceImage(data, maxW, maxH, quality)
	if err != nil {
		s.logger.Warn("image enhancement failed, storing original", "filename", fh.Filename, "error", err)
		out, enhanced = data, false
	}

	filename := uniqueFilename(fh.Filename)
	key := path.Join(namespace, ownerID, filename)

	uctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	url, err := store.Put(uctx, key, out, mimetype.Detect(out).String())
	if err != nil {
		s.logger.Warn("upload failed", "storage", store.Name(), "key", key, "error", err)
		return failed("Upload failed: " + err.Error())
	}

	s.logger.Info("image uploaded", "storage", store.Name(), "key", key, "bytes", len(out), "enhanced", enhanced)
	return UploadResult{
		Success:     true,
		Filename:    filename,
		URL:         url,
		StorageType: store.Name(),
		Enhanced:    enhanced,
	}
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// backends lists the resolved storage and, when it differs, the local store
// that basic uploads go to.
func (s *Service) backends() []Storage {
	if s.local == s.storage {
		return []Storage{s.storage}
	}
	return []Storage{s.storage, s.local}
}

// DeleteImage removes a stored upload by URL. URLs outside the upload
// namespaces are refused.
func (s *Service) DeleteImage(ctx context.Context, url string) error {
	for _, store := range s.backends() {
		if key, ok := store.KeyFromURL(url); ok {
			return store.Delete(ctx, key)
		}
	}
	return fmt.Errorf("refusing to delete non-upload path: %s", url)
}

// ListProductImages returns the URLs of every image stored for productID.
func (s *Service) ListProductImages(ctx context.Context, productID string) ([]string, error) {
	if err := validateOwnerID(productID); err != nil {
		return nil, err
	}
	urls := []string{}
	for _, store := range s.backends() {
		keys, err := store.List(ctx, path.Join(productsNamespace, productID)+"/")
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if AllowedFile(k) {
				urls = append(urls, store.URL(k))
			}
		}
	}
	return urls, nil
}

// CleanupOrphanedImages deletes the image folders of products not in
// validIDs and returns the ids it removed.
func (s *Service) CleanupOrphanedImages(ctx context.Context, validIDs []string) ([]string, error) {
	valid := make(map[string]bool, len(validIDs))
	for _, id := range validIDs {
		valid[id] = true
	}

	var removed []string
	seen := make(map[string]bool)
	for _, store := range s.backends() {
		keys, err := store.List(ctx, productsNamespace+"/")
		if err != nil {
			return removed, err
		}
		done := make(map[string]bool)
		for _, k := range keys {
			parts := strings.SplitN(k, "/", 3)
			if len(parts) < 3 || valid[parts[1]] || done[parts[1]] {
				continue
			}
			done[parts[1]] = true
			if err := store.DeletePrefix(ctx, path.Join(productsNamespace, parts[1])+"/"); err != nil {
				return removed, err
			}
			s.logger.Info("removed images of deleted product", "product_id", parts[1], "storage", store.Name())
			if !seen[parts[1]] {
				seen[parts[1]] = true
				removed = append(removed, parts[1])
			}
		}
	}
	return removed, nil
}
