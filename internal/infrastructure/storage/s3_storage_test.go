package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/activityhub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		Endpoint:     "localhost:9000",
		Region:       "us-east-1",
		Bucket:       "covers",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
	}
}

func TestNewS3ImageStorage_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "secret key are required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key are required"},
		{"bad endpoint", func(c *config.StorageConfig) { c.Endpoint = "http://" }, "invalid storage endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validStorageConfig()
			tt.mutate(&cfg)
			_, err := NewS3ImageStorage(ctx, cfg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid config", func(t *testing.T) {
		s, err := NewS3ImageStorage(ctx, validStorageConfig(), zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, "covers", s.Bucket())
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("minio:9000", false)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", got)

	got, err = normalizeEndpoint("s3.example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", got)

	got, err = normalizeEndpoint("https://s3.example.com", false)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", got)
}

func TestS3ImageStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ImageStorage(context.Background(), validStorageConfig(), nil)
	require.NoError(t, err)

	url, expiresAt, err := s.GenerateDownloadURL(context.Background(), "activities/a/cover.png", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/covers/activities/a/cover.png?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=600")
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)

	_, _, err = s.GenerateDownloadURL(context.Background(), "", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestS3ImageStorage_RejectsEmptyKey(t *testing.T) {
	s, err := NewS3ImageStorage(context.Background(), validStorageConfig(), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Upload(context.Background(), "", []byte("x"), "image/png"), ErrEmptyKey)
	assert.ErrorIs(t, s.DeleteObject(context.Background(), ""), ErrEmptyKey)
}
