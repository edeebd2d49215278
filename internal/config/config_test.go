package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "order.events", cfg.OrderTopic)
	assert.True(t, cfg.DefaultDeliveryFee.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 5*time.Minute, cfg.StoreCacheTTL)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: \":9090\"\ncart_ttl: 1h\ndefault_delivery_fee: \"7.50\"\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ORDER_TOPIC", "orders.v2")
	t.Setenv("STORE_CACHE_TTL", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.CartTTL)
	assert.Equal(t, "orders.v2", cfg.OrderTopic)
	assert.Equal(t, 30*time.Second, cfg.StoreCacheTTL)
	assert.Equal(t, "7.5", cfg.DefaultDeliveryFee.String())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CART_TTL", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.Validate())
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prev)) })
}
