package extract

import "github.com/okian/rewardscan/pkg/logger"

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for dropped-candidate diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}
