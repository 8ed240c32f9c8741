package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/deatl/backend/internal/infrastructure/config"
)

func validConfig() *infraconfig.StorageConfig {
	return &infraconfig.StorageConfig{
		Endpoint:     "localhost:9000",
		Region:       "us-east-1",
		Bucket:       "deatl-files",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		UsePathStyle: true,
	}
}

func TestNewS3ObjectStore(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		store, err := NewS3ObjectStore(validConfig())
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("rejects missing settings", func(t *testing.T) {
		for name, mutate := range map[string]func(*infraconfig.StorageConfig){
			"nil config":  nil,
			"no bucket":   func(c *infraconfig.StorageConfig) { c.Bucket = "" },
			"no access":   func(c *infraconfig.StorageConfig) { c.AccessKey = "" },
			"no secret":   func(c *infraconfig.StorageConfig) { c.SecretKey = "" },
		} {
			t.Run(name, func(t *testing.T) {
				if mutate == nil {
					_, err := NewS3ObjectStore(nil)
					assert.Error(t, err)
					return
				}
				cfg := validConfig()
				mutate(cfg)
				_, err := NewS3ObjectStore(cfg)
				assert.Error(t, err)
			})
		}
	})
}

func TestPublicURL(t *testing.T) {
	t.Run("derived from endpoint and bucket", func(t *testing.T) {
		store, err := NewS3ObjectStore(validConfig())
		require.NoError(t, err)
		assert.Equal(t, "https://localhost:9000/deatl-files/card1/plan.pdf", store.PublicURL("card1/plan.pdf"))
	})

	t.Run("explicit public base url wins", func(t *testing.T) {
		cfg := validConfig()
		cfg.PublicBaseURL = "https://files.example.com/"
		store, err := NewS3ObjectStore(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://files.example.com/card1/plan.pdf", store.PublicURL("card1/plan.pdf"))
	})
}
