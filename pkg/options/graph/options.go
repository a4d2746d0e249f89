// Package graphopts provides options for the Neo4j graph client.
package graphopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/vietsaga/vietsaga/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains Neo4j client configuration.
type Options struct {
	// URI is the bolt/neo4j connection URI.
	URI string `json:"uri" mapstructure:"uri"`

	// Database is the target database name.
	Database string `json:"database" mapstructure:"database"`

	// Username for authentication.
	Username string `json:"username" mapstructure:"username"`

	// Password for authentication.
	Password string `json:"password" mapstructure:"password"`

	// Timeout bounds each graph query.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		URI:      "bolt://localhost:7687",
		Database: "neo4j",
		Username: "neo4j",
		Timeout:  5 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.URI, options.Join(prefixes...)+"graph.uri", o.URI, "Neo4j connection URI.")
	fs.StringVar(&o.Database, options.Join(prefixes...)+"graph.database", o.Database, "Neo4j database name.")
	fs.StringVar(&o.Username, options.Join(prefixes...)+"graph.username", o.Username, "Neo4j username.")
	fs.StringVar(&o.Password, options.Join(prefixes...)+"graph.password", o.Password, "Neo4j password.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"graph.timeout", o.Timeout, "Graph query timeout.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.URI == "" {
		errs = append(errs, fmt.Errorf("graph uri is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("graph timeout must be positive"))
	}
	return errs
}
