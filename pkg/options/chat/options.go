// Package chatopts provides options for the chat orchestration pipeline.
package chatopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/vietsaga/vietsaga/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Voice policy identifiers. Two divergent rule tables exist in the product;
// the switch keeps both deployable until one is declared canonical.
const (
	VoicePolicyClassic = "classic"
	VoicePolicyRefined = "refined"
)

// Options contains pipeline tuning knobs.
type Options struct {
	// VoicePolicy selects the voice precedence table (classic|refined).
	VoicePolicy string `json:"voice-policy" mapstructure:"voice-policy"`

	// TopK caps retrieved evidence chunks per question.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// HistoryWindow caps the number of prior messages sent to generation.
	HistoryWindow int `json:"history-window" mapstructure:"history-window"`

	// SourceLabel names the backing corpus in citations.
	SourceLabel string `json:"source-label" mapstructure:"source-label"`

	// RetrievalTimeout bounds the similarity search call.
	RetrievalTimeout time.Duration `json:"retrieval-timeout" mapstructure:"retrieval-timeout"`

	// GraphTimeout bounds the graph link query.
	GraphTimeout time.Duration `json:"graph-timeout" mapstructure:"graph-timeout"`

	// SynthesisTimeout bounds each post-stream synthesis call.
	SynthesisTimeout time.Duration `json:"synthesis-timeout" mapstructure:"synthesis-timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		VoicePolicy:      VoicePolicyClassic,
		TopK:             5,
		HistoryWindow:    10,
		SourceLabel:      "Việt Nam Sử Lược",
		RetrievalTimeout: 10 * time.Second,
		GraphTimeout:     5 * time.Second,
		SynthesisTimeout: 30 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.VoicePolicy, options.Join(prefixes...)+"chat.voice-policy", o.VoicePolicy, "Voice precedence table (classic|refined).")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"chat.top-k", o.TopK, "Maximum evidence chunks per question.")
	fs.IntVar(&o.HistoryWindow, options.Join(prefixes...)+"chat.history-window", o.HistoryWindow, "Maximum prior messages included in generation.")
	fs.StringVar(&o.SourceLabel, options.Join(prefixes...)+"chat.source-label", o.SourceLabel, "Corpus display name used in citations.")
	fs.DurationVar(&o.RetrievalTimeout, options.Join(prefixes...)+"chat.retrieval-timeout", o.RetrievalTimeout, "Similarity search timeout.")
	fs.DurationVar(&o.GraphTimeout, options.Join(prefixes...)+"chat.graph-timeout", o.GraphTimeout, "Graph query timeout.")
	fs.DurationVar(&o.SynthesisTimeout, options.Join(prefixes...)+"chat.synthesis-timeout", o.SynthesisTimeout, "Post-stream synthesis call timeout.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.VoicePolicy {
	case VoicePolicyClassic, VoicePolicyRefined:
	default:
		errs = append(errs, fmt.Errorf("chat voice-policy must be classic or refined, got %q", o.VoicePolicy))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("chat top-k must be positive"))
	}
	if o.HistoryWindow <= 0 {
		errs = append(errs, fmt.Errorf("chat history-window must be positive"))
	}
	return errs
}
