package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ApplyFile overlays settings from a config file (YAML, JSON or TOML, by
// extension) onto c and revalidates. Keys absent from the file keep their
// current values.
func (c *Config) ApplyFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	c.Apply(v)

	if err := c.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// Apply copies every key set in v onto c.
func (c *Config) Apply(v *viper.Viper) {
	setString(v, "server.host", &c.Server.Host)
	setInt(v, "server.port", &c.Server.Port)

	setString(v, "store.driver", &c.Store.Driver)
	setString(v, "store.sqlite.path", &c.Store.SQLite.Path)
	setString(v, "store.postgres.host", &c.Store.Database.Host)
	setInt(v, "store.postgres.port", &c.Store.Database.Port)
	setString(v, "store.postgres.user", &c.Store.Database.User)
	setString(v, "store.postgres.password", &c.Store.Database.Password)
	setString(v, "store.postgres.database", &c.Store.Database.Database)
	setString(v, "store.redis.addr", &c.Store.Redis.Addr)
	setString(v, "store.redis.password", &c.Store.Redis.Password)
	setInt(v, "store.redis.db", &c.Store.Redis.DB)
	setString(v, "store.redis.key_prefix", &c.Store.Redis.KeyPrefix)

	setString(v, "remote.base_url", &c.Remote.BaseURL)
	if v.IsSet("remote.timeout") {
		c.Remote.Timeout = v.GetDuration("remote.timeout")
	}
	if v.IsSet("remote.requests_per_second") {
		c.Remote.RequestsPerSecond = v.GetFloat64("remote.requests_per_second")
	}
	setInt(v, "remote.burst", &c.Remote.Burst)

	setInt(v, "sync.page_size", &c.Sync.PageSize)
	setString(v, "sync.check_url", &c.Sync.CheckURL)
	if v.IsSet("sync.check_interval") {
		c.Sync.CheckInterval = v.GetDuration("sync.check_interval")
	}
	if v.IsSet("sync.check_timeout") {
		c.Sync.CheckTimeout = v.GetDuration("sync.check_timeout")
	}

	setString(v, "logger.level", &c.Logger.Level)
	setString(v, "logger.format", &c.Logger.Format)

	if v.IsSet("seed.enabled") {
		c.Seed.Enabled = v.GetBool("seed.enabled")
	}
	setString(v, "seed.path", &c.Seed.Path)
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}
