package catalog

import "github.com/okian/gametaste/pkg/logger"

// DefaultTopK is the number of most-played titles kept by default.
const DefaultTopK = 50

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithTopK bounds the library to the k most played titles. Non-positive values are ignored.
func WithTopK(k int) Option {
	return func(n *Normalizer) {
		if k > 0 {
			n.topK = k
		}
	}
}

// WithLogger sets the logger used to report rejected records.
func WithLogger(l logger.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.log = l
		}
	}
}
