package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/landerp/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Driver:          "s3",
		Endpoint:        endpoint,
		Bucket:          "land-documents",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	}
}

func newTestStore(t *testing.T, endpoint string) *S3DocumentStore {
	t.Helper()
	store, err := NewS3DocumentStore(context.Background(), validConfig(endpoint),
		WithClientOptions(func(o *s3.Options) { o.RetryMaxAttempts = 1 }))
	require.NoError(t, err)
	return store
}

func TestNewS3DocumentStore_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKeyID = "" }, "access key is required"},
		{"missing secret", func(c *config.StorageConfig) { c.SecretAccessKey = "" }, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig("http://localhost:9000")
			tt.mutate(cfg)
			_, err := NewS3DocumentStore(context.Background(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := NewS3DocumentStore(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewS3DocumentStore_Defaults(t *testing.T) {
	store := newTestStore(t, "localhost:9000")
	assert.Equal(t, "land-documents", store.Bucket())
	assert.Equal(t, defaultPresignExpiry, store.expiry)
	assert.Equal(t, defaultRegion, store.client.Options().Region)
}

func TestS3DocumentStore_PresignedURLs(t *testing.T) {
	store := newTestStore(t, "http://minio.local:9000")
	ctx := context.Background()
	key := "receipt/3f0e/scan.pdf"

	before := time.Now()
	upload, expiresAt, err := store.GenerateUploadURL(ctx, key, "application/pdf", 10*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(10*time.Minute), expiresAt, 5*time.Second)

	u, err := url.Parse(upload)
	require.NoError(t, err)
	assert.Equal(t, "minio.local:9000", u.Host)
	assert.Equal(t, "/land-documents/"+key, u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	download, _, err := store.GenerateDownloadURL(ctx, key, 0)
	require.NoError(t, err)
	u, err = url.Parse(download)
	require.NoError(t, err)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))

	_, _, err = store.GenerateUploadURL(ctx, "", "application/pdf", time.Minute)
	assert.ErrorIs(t, err, errEmptyKey)
	_, _, err = store.GenerateDownloadURL(ctx, "", time.Minute)
	assert.ErrorIs(t, err, errEmptyKey)
}

func TestS3DocumentStore_ObjectExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		switch {
		case strings.HasSuffix(r.URL.Path, "/present.pdf"):
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(r.URL.Path, "/missing.pdf"):
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	store := newTestStore(t, server.URL)
	ctx := context.Background()

	ok, err := store.ObjectExists(ctx, "receipt/1/present.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ObjectExists(ctx, "receipt/1/missing.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.ObjectExists(ctx, "receipt/1/forbidden.pdf")
	assert.Error(t, err)

	_, err = store.ObjectExists(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
}

func TestS3DocumentStore_EnsureBucket(t *testing.T) {
	var created atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			if created.Load() {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			assert.Equal(t, "/land-documents", r.URL.Path)
			created.Store(true)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	store := newTestStore(t, server.URL)
	require.NoError(t, store.EnsureBucket(context.Background()))
	assert.True(t, created.Load())

	// second call finds the bucket
	require.NoError(t, store.EnsureBucket(context.Background()))
}

func TestMemoryDocumentStore(t *testing.T) {
	store := NewMemoryDocumentStore("")
	ctx := context.Background()

	ok, err := store.ObjectExists(ctx, "expense/9/voucher.png")
	require.NoError(t, err)
	assert.False(t, ok)

	upload, expiresAt, err := store.GenerateUploadURL(ctx, "expense/9/voucher.png", "image/png", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, upload, "/upload/expense/9/voucher.png")
	assert.True(t, expiresAt.After(time.Now()))

	ok, err = store.ObjectExists(ctx, "expense/9/voucher.png")
	require.NoError(t, err)
	assert.True(t, ok)

	download, _, err := store.GenerateDownloadURL(ctx, "expense/9/voucher.png", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, download, "/download/expense/9/voucher.png")

	store.Forget("expense/9/voucher.png")
	ok, _ = store.ObjectExists(ctx, "expense/9/voucher.png")
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "receipt/1/a.pdf", []byte("%PDF"), "application/pdf"))
	ok, _ = store.ObjectExists(ctx, "receipt/1/a.pdf")
	assert.True(t, ok)

	assert.ErrorIs(t, store.Put(ctx, "", nil, ""), errEmptyKey)
}
