package csvio

import "github.com/okian/teammate/pkg/logger"

type options struct {
	logger logger.Logger
}

// Option applies a configuration option to the reader.
type Option func(*options)

// WithLogger sets the logger that receives skipped-row warnings.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("csvio")
	}
	return o
}
