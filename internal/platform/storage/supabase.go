package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	storage "github.com/supabase-community/storage-go"
)

// BlobStore holds submission screenshots. Objects are addressed by the public
// URL Upload returns, which is what submissions persist.
type BlobStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Remove(ctx context.Context, publicURL string) error
}

type SupabaseStore struct {
	client  *storage.Client
	baseURL string
	bucket  string
}

func NewSupabaseStore(baseURL, key, bucket string) *SupabaseStore {
	baseURL = strings.TrimRight(baseURL, "/")
	return &SupabaseStore{
		client:  storage.NewClient(baseURL+"/storage/v1", key, nil),
		baseURL: baseURL,
		bucket:  bucket,
	}
}

func (s *SupabaseStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, err := s.client.UploadFile(s.bucket, key, body, storage.FileOptions{ContentType: &contentType})
	if err != nil {
		return "", fmt.Errorf("SupabaseStore.Upload %s: %w", key, err)
	}
	return PublicURL(s.baseURL, s.bucket, key), nil
}

func (s *SupabaseStore) Remove(ctx context.Context, publicURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := KeyFromURL(publicURL, s.bucket)
	if err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("SupabaseStore.Remove %s: %w", key, err)
	}
	return nil
}

func PublicURL(baseURL, bucket, key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", baseURL, bucket, key)
}

// KeyFromURL extracts the object key of bucket from a public object URL.
func KeyFromURL(publicURL, bucket string) (string, error) {
	marker := "/storage/v1/object/public/" + bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx == -1 {
		return "", fmt.Errorf("url %q is not an object of bucket %s", publicURL, bucket)
	}
	key := publicURL[idx+len(marker):]
	if q := strings.IndexByte(key, '?'); q != -1 {
		key = key[:q]
	}
	if k, err := url.PathUnescape(key); err == nil {
		key = k
	}
	if key == "" {
		return "", fmt.Errorf("url %q has an empty object key", publicURL)
	}
	return key, nil
}

// ObjectKey builds "<userID>/<uuid>-<slugged name><ext>" for an uploaded file.
func ObjectKey(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := slug.Make(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if base == "" {
		base = "screenshot"
	}
	return fmt.Sprintf("%s/%s-%s%s", userID, uuid.NewString(), base, ext)
}
