package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[mysql]
dsn = "user:pw@tcp(db:3306)/labguy"

[http]
port = "9000"
allowed_origins = ["https://labguy.example"]

[auth]
jwtSecret = "file-secret"
bcryptCost = 4

[bucket]
s3Endpoint = "fra1.digitaloceanspaces.com"
baseFolder = "labguy"

[revalidation]
deployments = ["https://labguy.example"]

[ui]
cookie_ttl = "2h"
`), 0o600))

	t.Setenv("AUTH_JWT_SECRET", "env-secret")
	t.Setenv("RATE_LIMIT_UPLOAD_PER_MINUTE", "5")

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "user:pw@tcp(db:3306)/labguy", c.DB.DSN)
	assert.Equal(t, "9000", c.HTTP.Port)
	assert.Equal(t, []string{"https://labguy.example"}, c.HTTP.AllowedOrigins)
	assert.Equal(t, "env-secret", c.Auth.JWTSecret)
	assert.Equal(t, 4, c.Auth.BcryptCost)
	assert.Equal(t, "labguy", c.Bucket.BaseFolder)
	assert.Equal(t, []string{"https://labguy.example"}, c.Revalidation.Deployments)
	assert.Equal(t, 5, c.RateLimit.UploadPerMinute)
	assert.Equal(t, 2*time.Hour, c.UI.CookieTTL)
}

func TestLoadConfigEnvOnly(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("MYSQL_HOST", "db")
	t.Setenv("MYSQL_USER", "labguy")
	t.Setenv("MYSQL_PASSWORD", "pw")
	t.Setenv("MYSQL_DATABASE", "labguy")

	c, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "labguy:pw@tcp(db:3306)/labguy?charset=utf8mb4&parseTime=true", c.DB.DSN)
	assert.Equal(t, "8081", c.HTTP.Port)
}
