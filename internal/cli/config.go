package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/nftmeta/internal/paths"
	"github.com/mesh-intelligence/nftmeta/pkg/store"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyRedisAddr   = "redis.addr"
	cfgKeyRedisPass   = "redis.password"
	cfgKeyRedisDB     = "redis.db"
	cfgKeyRedisPrefix = "redis.prefix"
	cfgKeyIDLength    = "id_length"
	cfgKeyLogLevel    = "log_level"

	defaultBackend = types.BackendSQLite
	envPrefix      = "NFTMETA"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# nftmeta configuration

# Registry backend: sqlite, redis or memory.
backend: sqlite

# Data directory for the sqlite backend (optional; overridable by --data-dir).
# data_dir:

# redis:
#   addr: localhost:6379
#   db: 0
#   prefix: nftmeta

# Length of generated container and object identifiers.
# id_length: 8

# log_level: info
`

// loadConfig reads config.yaml from configDir using Viper, creating the
// directory and a default file on first run. NFTMETA_* environment
// variables override file values. A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyIDLength, types.DefaultIDLength)
	v.SetDefault(cfgKeyRedisPrefix, "nftmeta")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates config.yaml if it does not exist.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// registryConfig resolves the backend configuration. The data directory
// follows --data-dir > config data_dir > NFTMETA_DATA_DIR > ./.nftmeta-db.
func (a *app) registryConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := types.Config{
		Backend: a.v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		Redis: types.RedisConfig{
			Addr:     a.v.GetString(cfgKeyRedisAddr),
			Password: a.v.GetString(cfgKeyRedisPass),
			DB:       a.v.GetInt(cfgKeyRedisDB),
			Prefix:   a.v.GetString(cfgKeyRedisPrefix),
		},
		IDLength: a.v.GetInt(cfgKeyIDLength),
	}
	return cfg, nil
}

// openRegistry attaches the configured backend. The caller must Detach
// it. Configuration mistakes are user errors; backend failures are system
// errors.
func (a *app) openRegistry() (types.Registry, types.Config, error) {
	cfg, err := a.registryConfig()
	if err != nil {
		return nil, cfg, sysError("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, userError("config: %w", err)
	}
	reg, err := store.Open(cfg)
	if err != nil {
		return nil, cfg, sysError("open registry: %w", err)
	}
	a.log.Debug().Str("backend", cfg.Backend).Str("data_dir", cfg.DataDir).Msg("registry attached")
	return reg, cfg, nil
}
