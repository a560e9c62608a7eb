package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PRODUCTION_STATS_SCAN_LIMIT", "")
	t.Setenv("PRODUCTION_ALLOW_ANONYMOUS_READ", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 1000, cfg.Production.StatsScanLimit)
	assert.Equal(t, 200, cfg.Production.ItemsPageSize)
	assert.True(t, cfg.Production.AllowAnonymousRead)
	assert.Equal(t, 15*time.Second, cfg.Redis.StatsTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PRODUCTION_ALLOW_ANONYMOUS_READ", "false")
	t.Setenv("PRODUCTION_STATS_SCAN_LIMIT", "50")
	t.Setenv("REDIS_STATS_TTL", "1m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Production.AllowAnonymousRead)
	assert.Equal(t, 50, cfg.Production.StatsScanLimit)
	assert.Equal(t, time.Minute, cfg.Redis.StatsTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Frontend.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "development defaults",
			mutate: func(c *Config) {},
		},
		{
			name: "default secret in production",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.Database.Password = "secret"
			},
			wantErr: "JWT secret",
		},
		{
			name: "missing db password in production",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.JWT.SecretKey = "rotated"
			},
			wantErr: "database password",
		},
		{
			name:    "zero scan limit",
			mutate:  func(c *Config) { c.Production.StatsScanLimit = 0 },
			wantErr: "PRODUCTION_STATS_SCAN_LIMIT",
		},
		{
			name:    "negative page size",
			mutate:  func(c *Config) { c.Production.ItemsPageSize = -1 },
			wantErr: "PRODUCTION_ITEMS_PAGE_SIZE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Environment: "development",
				JWT:         JWTConfig{SecretKey: defaultJWTSecret},
				Production:  ProductionConfig{StatsScanLimit: 10, ItemsPageSize: 10},
			}
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Database: "crm", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=crm sslmode=disable", d.DSN())

	d.Password = ""
	assert.Equal(t, "host=db port=5432 user=u dbname=crm sslmode=disable", d.DSN())
}
