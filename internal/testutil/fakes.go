package testutil

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"code_practice/internal/common/security"
	"code_practice/internal/domain/model"
	"code_practice/internal/platform/config"
	"code_practice/internal/platform/storage"
)

const (
	BlobBaseURL = "https://blob.test"
	BlobBucket  = "submission-screenshots"
)

var ErrInjected = errors.New("injected failure")

// BlobStore keeps uploaded objects in memory, keyed by public URL.
type BlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	UploadErr error
	RemoveErr error
	Removed   []string
}

func NewBlobStore() *BlobStore {
	return &BlobStore{objects: map[string][]byte{}}
}

func (b *BlobStore) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	if b.UploadErr != nil {
		return "", b.UploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	url := storage.PublicURL(BlobBaseURL, BlobBucket, key)
	b.mu.Lock()
	b.objects[url] = data
	b.mu.Unlock()
	return url, nil
}

func (b *BlobStore) Remove(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Removed = append(b.Removed, url)
	if b.RemoveErr != nil {
		return b.RemoveErr
	}
	delete(b.objects, url)
	return nil
}

func (b *BlobStore) Has(url string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[url]
	return ok
}

func (b *BlobStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

// Badges records unread counts pushed per user.
type Badges struct {
	mu   sync.Mutex
	last map[string]int
}

func NewBadges() *Badges {
	return &Badges{last: map[string]int{}}
}

func (b *Badges) PushUnread(userID string, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last[userID] = count
}

// Last returns the most recent count pushed to userID and whether any was pushed.
func (b *Badges) Last(userID string) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.last[userID]
	return c, ok
}

// Queue records enqueued notifications instead of delivering them.
type Queue struct {
	mu    sync.Mutex
	Items []model.Notification
}

func (q *Queue) Enqueue(_ context.Context, ns ...model.Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Items = append(q.Items, ns...)
	return nil
}

// SetupConfig installs a test configuration and JWT signer.
func SetupConfig(t *testing.T) *config.Config {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{
		APIPort:        "0",
		JWTKey:         []byte("test-secret"),
		JWTExp:         time.Hour,
		SupabaseURL:    BlobBaseURL,
		SupabaseBucket: BlobBucket,
		UploadMaxBytes: 1 << 20,
		ClientOrigins:  []string{"http://localhost:5173"},
	}
	security.InitJWT()
	t.Cleanup(func() { config.AppConfig = prev })
	return config.AppConfig
}
