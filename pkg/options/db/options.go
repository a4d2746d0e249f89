// Package dbopts provides options for the conversation store database.
package dbopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/vietsaga/vietsaga/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Supported drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Options contains database configuration.
type Options struct {
	// Driver selects the backing engine (mysql|sqlite).
	Driver string `json:"driver" mapstructure:"driver"`

	// DSN is the connection string. For sqlite this is the database file
	// path; ":memory:" is accepted for tests.
	DSN string `json:"dsn" mapstructure:"dsn"`

	// MaxOpenConns limits open connections.
	MaxOpenConns int `json:"max-open-conns" mapstructure:"max-open-conns"`

	// MaxIdleConns limits idle connections.
	MaxIdleConns int `json:"max-idle-conns" mapstructure:"max-idle-conns"`

	// ConnMaxLifetime bounds connection reuse.
	ConnMaxLifetime time.Duration `json:"conn-max-lifetime" mapstructure:"conn-max-lifetime"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Driver:          DriverSQLite,
		DSN:             "vietsaga.db",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Driver, options.Join(prefixes...)+"db.driver", o.Driver, "Database driver (mysql|sqlite).")
	fs.StringVar(&o.DSN, options.Join(prefixes...)+"db.dsn", o.DSN, "Database connection string, or file path for sqlite.")
	fs.IntVar(&o.MaxOpenConns, options.Join(prefixes...)+"db.max-open-conns", o.MaxOpenConns, "Maximum open database connections.")
	fs.IntVar(&o.MaxIdleConns, options.Join(prefixes...)+"db.max-idle-conns", o.MaxIdleConns, "Maximum idle database connections.")
	fs.DurationVar(&o.ConnMaxLifetime, options.Join(prefixes...)+"db.conn-max-lifetime", o.ConnMaxLifetime, "Maximum connection lifetime.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("db driver must be mysql or sqlite, got %q", o.Driver))
	}
	if o.DSN == "" {
		errs = append(errs, fmt.Errorf("db dsn is required"))
	}
	return errs
}
