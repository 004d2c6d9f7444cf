package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "administrasi_guru", cfg.Database.Name)
	assert.True(t, cfg.Database.RunMigrations)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.Backups.SignedURLTTL)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOWED_ORIGINS", "http://localhost:5173, ,https://guru.example")
	v.Set("DASHBOARD_CACHE_TTL", "not-a-duration")
	v.Set("JWT_EXPIRATION", "30m")

	cfg := fromViper(v)
	assert.Equal(t, []string{"http://localhost:5173", "https://guru.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
}

func TestIsMissingFile(t *testing.T) {
	assert.True(t, isMissingFile(errors.New("open .env: no such file or directory")))
	assert.False(t, isMissingFile(errors.New("permission denied")))
	assert.False(t, isMissingFile(nil))
}
