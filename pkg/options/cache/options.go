// Package cacheopts provides options for the Redis routing cache.
package cacheopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/vietsaga/vietsaga/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains Redis cache configuration.
type Options struct {
	// Enabled toggles the routing cache.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Host of the Redis server.
	Host string `json:"host" mapstructure:"host"`

	// Port of the Redis server.
	Port int `json:"port" mapstructure:"port"`

	// Password for authentication.
	Password string `json:"password" mapstructure:"password"`

	// Database index.
	Database int `json:"database" mapstructure:"database"`

	// PoolSize is the connection pool size.
	PoolSize int `json:"pool-size" mapstructure:"pool-size"`

	// TTL is how long cached routing responses live.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// KeyPrefix namespaces cache keys.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Enabled:   false,
		Host:      "localhost",
		Port:      6379,
		PoolSize:  10,
		TTL:       10 * time.Minute,
		KeyPrefix: "vietsaga:route:",
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, options.Join(prefixes...)+"cache.enabled", o.Enabled, "Enable the Redis routing cache.")
	fs.StringVar(&o.Host, options.Join(prefixes...)+"cache.host", o.Host, "Redis server host.")
	fs.IntVar(&o.Port, options.Join(prefixes...)+"cache.port", o.Port, "Redis server port.")
	fs.StringVar(&o.Password, options.Join(prefixes...)+"cache.password", o.Password, "Redis password.")
	fs.IntVar(&o.Database, options.Join(prefixes...)+"cache.database", o.Database, "Redis database index.")
	fs.IntVar(&o.PoolSize, options.Join(prefixes...)+"cache.pool-size", o.PoolSize, "Redis connection pool size.")
	fs.DurationVar(&o.TTL, options.Join(prefixes...)+"cache.ttl", o.TTL, "Routing cache entry TTL.")
	fs.StringVar(&o.KeyPrefix, options.Join(prefixes...)+"cache.key-prefix", o.KeyPrefix, "Cache key prefix.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	var errs []error
	if o.Host == "" {
		errs = append(errs, fmt.Errorf("cache host is required when cache is enabled"))
	}
	if o.Port <= 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("cache port %d out of range", o.Port))
	}
	if o.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache ttl must be positive"))
	}
	return errs
}
