package config

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(n int, fill byte) string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{fill}, n))
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("BOOKING_BACKEND", "memory")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 3, cfg.RemoteRetries)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "courtbook:local_bookings", cfg.LocalKey)
	assert.Len(t, cfg.CookieHashKey, 32)
	assert.Len(t, cfg.CookieBlockKey, 32)
	assert.Equal(t, "Asia/Manila", cfg.Location().String())
}

func TestFromEnv_PostgresNeedsKeys(t *testing.T) {
	t.Setenv("BOOKING_BACKEND", "postgres")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "COOKIE_HASH_KEY")

	t.Setenv("COOKIE_HASH_KEY", b64(32, 1))
	t.Setenv("COOKIE_BLOCK_KEY", b64(32, 2))
	_, err = FromEnv()
	assert.ErrorContains(t, err, "RECEIPT_ENC_KEY")

	t.Setenv("RECEIPT_ENC_KEY", b64(32, 3))
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{3}, 32), []byte(cfg.ReceiptEncKey))
}

func TestFromEnv_Remote(t *testing.T) {
	t.Setenv("BOOKING_BACKEND", "remote")
	t.Setenv("COOKIE_HASH_KEY", b64(32, 1))
	t.Setenv("COOKIE_BLOCK_KEY", b64(16, 2))
	_, err := FromEnv()
	assert.ErrorContains(t, err, "REMOTE_URL")

	t.Setenv("REMOTE_URL", "https://courts.example.com")
	t.Setenv("REMOTE_TIMEOUT", "3s")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.RemoteTimeout)
}

func TestFromEnv_BadBackend(t *testing.T) {
	t.Setenv("BOOKING_BACKEND", "sheets")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "BOOKING_BACKEND")
}

func TestKey_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hash.key")
	require.NoError(t, os.WriteFile(path, []byte(b64(32, 7)+"\n"), 0o600))

	var k Key
	require.NoError(t, k.Decode(path))
	assert.Equal(t, bytes.Repeat([]byte{7}, 32), []byte(k))

	assert.Error(t, k.Decode("%%%"))
}
