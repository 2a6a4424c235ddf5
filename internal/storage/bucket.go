package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BucketCategory selects which bucket an object lives in.
type BucketCategory string

const (
	BucketCategoryAvatar   BucketCategory = "avatar"
	BucketCategoryDocument BucketCategory = "document"
)

type bucketConfig struct {
	name      string
	cdnDomain string
}

// Config holds the bucket names and optional CDN domains.
type Config struct {
	AvatarBucket      string
	DocumentBucket    string
	AvatarCDNDomain   string
	DocumentCDNDomain string
	CredentialsFile   string
}

// BucketService stores and serves binary objects (documents, avatars).
type BucketService interface {
	Upload(ctx context.Context, category BucketCategory, key string, file io.Reader) error
	Download(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, category BucketCategory, key string) error
	DeletePrefix(ctx context.Context, category BucketCategory, prefix string) error
	PublicURL(category BucketCategory, key string) string
	Close() error
}

type bucketService struct {
	client         *gcs.Client
	avatarBucket   bucketConfig
	documentBucket bucketConfig
}

func NewBucketService(ctx context.Context, cfg Config) (BucketService, error) {
	if cfg.AvatarBucket == "" {
		return nil, fmt.Errorf("avatar bucket name is required")
	}
	if cfg.DocumentBucket == "" {
		return nil, fmt.Errorf("document bucket name is required")
	}

	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &bucketService{
		client: client,
		avatarBucket: bucketConfig{
			name:      cfg.AvatarBucket,
			cdnDomain: cfg.AvatarCDNDomain,
		},
		documentBucket: bucketConfig{
			name:      cfg.DocumentBucket,
			cdnDomain: cfg.DocumentCDNDomain,
		},
	}, nil
}

func (bs *bucketService) bucketFor(category BucketCategory) (bucketConfig, error) {
	switch category {
	case BucketCategoryAvatar:
		return bs.avatarBucket, nil
	case BucketCategoryDocument:
		return bs.documentBucket, nil
	default:
		return bucketConfig{}, fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) Upload(ctx context.Context, category BucketCategory, key string, file io.Reader) error {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.client.Bucket(cfg.name).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

// readCloserWithCancel keeps the download context alive until the caller
// closes the reader. Cancelling before return would make reads see 0 bytes.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (bs *bucketService) Download(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)

	r, err := bs.client.Bucket(cfg.name).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}

	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

func (bs *bucketService) Delete(ctx context.Context, category BucketCategory, key string) error {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	o := bs.client.Bucket(cfg.name).Object(key)
	if err := o.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, cfg.name, err)
	}
	return nil
}

func (bs *bucketService) listKeys(ctx context.Context, category BucketCategory, prefix string) ([]string, error) {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	it := bs.client.Bucket(cfg.name).Objects(ctx, &gcs.Query{Prefix: prefix})
	out := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attrs.Name)
	}
	return out, nil
}

func (bs *bucketService) DeletePrefix(ctx context.Context, category BucketCategory, prefix string) error {
	keys, err := bs.listKeys(ctx, category, prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		_ = bs.Delete(ctx, category, k)
	}
	return nil
}

func (bs *bucketService) PublicURL(category BucketCategory, key string) string {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return key
	}
	if cfg.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.name, key)
}

func (bs *bucketService) Close() error {
	return bs.client.Close()
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if s == "" {
		return ""
	}
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".svg"):
		return "image/svg+xml"
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".txt"):
		return "text/plain"
	case strings.HasSuffix(s, ".md"):
		return "text/markdown"
	case strings.HasSuffix(s, ".csv"):
		return "text/csv"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	case strings.HasSuffix(s, ".doc"):
		return "application/msword"
	case strings.HasSuffix(s, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case strings.HasSuffix(s, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return ""
	}
}
