package types

import "errors"

// Config holds backend selection and parameters for Registry.Attach.
type Config struct {
	Backend  string      `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir  string      `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Redis    RedisConfig `json:"redis" yaml:"redis" mapstructure:"redis"`
	IDLength int         `json:"id_length" yaml:"id_length" mapstructure:"id_length"`
}

// RedisConfig holds connection parameters for the redis backend.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr" mapstructure:"addr"`
	Password string `json:"password" yaml:"password" mapstructure:"password"`
	DB       int    `json:"db" yaml:"db" mapstructure:"db"`
	Prefix   string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config validation errors.
var (
	ErrBackendEmpty    = errors.New("backend must not be empty")
	ErrBackendUnknown  = errors.New("unknown backend")
	ErrRedisAddrEmpty  = errors.New("redis backend requires an address")
	ErrIDLengthInvalid = errors.New("id length must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendRedis:  true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendRedis && c.Redis.Addr == "" {
		return ErrRedisAddrEmpty
	}
	if c.IDLength < 0 {
		return ErrIDLengthInvalid
	}
	return nil
}

// IDGen returns the identifier generator configured by c.
func (c Config) IDGen() func() string {
	g := IDGenerator{Length: c.IDLength}
	return g.New
}
