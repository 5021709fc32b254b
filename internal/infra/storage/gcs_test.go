package storage_test

import (
	"testing"

	"maltiti/internal/config"
	"maltiti/internal/infra/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	got := storage.PublicURL("https://storage.googleapis.com/", "maltiti-images", "members/m 1.png")
	assert.Equal(t, "https://storage.googleapis.com/maltiti-images/members/m%201.png", got)
}

func TestNewGCSUploader_RequiresBucket(t *testing.T) {
	_, err := storage.NewGCSUploader(nil, config.StorageConfig{Bucket: " "})
	require.Error(t, err)
}
