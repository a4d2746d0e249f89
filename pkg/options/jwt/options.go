// Package jwtopts provides options for bearer token verification.
package jwtopts

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/vietsaga/vietsaga/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains JWT verification configuration. Token issuance is handled
// by the account service; this service only verifies.
type Options struct {
	// Key is the HMAC signing key used to verify tokens.
	Key string `json:"key" mapstructure:"key"`

	// Issuer, when non-empty, must match the token's iss claim.
	Issuer string `json:"issuer" mapstructure:"issuer"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Key, options.Join(prefixes...)+"jwt.key", o.Key, "HMAC key used to verify bearer tokens.")
	fs.StringVar(&o.Issuer, options.Join(prefixes...)+"jwt.issuer", o.Issuer, "Expected token issuer, empty to skip the check.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Key == "" {
		errs = append(errs, fmt.Errorf("jwt key is required"))
	}
	return errs
}
