package buffer

import "github.com/jellexet/valuebuf/pkg/pool"

// Option configures a Builder at construction time.
type Option func(*Builder)

// WithProvider sets the provider the builder rents storage from.
// A nil provider selects pool.Default.
func WithProvider(p pool.Provider) Option {
	return func(b *Builder) {
		if p != nil {
			b.provider = p
		}
	}
}

func (b *Builder) apply(opts []Option) {
	b.provider = pool.Default
	for _, opt := range opts {
		opt(b)
	}
}
