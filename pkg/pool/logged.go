package pool

import "go.uber.org/zap"

// Logged wraps a Provider and writes a debug entry for every rent and return.
type Logged struct {
	next   Provider
	logger *zap.Logger
}

// NewLogged wraps next. A nil logger disables output.
func NewLogged(next Provider, logger *zap.Logger) *Logged {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logged{next: next, logger: logger}
}

// Rent rents from the wrapped provider and logs the requested and actual sizes.
func (l *Logged) Rent(minSize int) *Region {
	r := l.next.Rent(minSize)
	l.logger.Debug("Rented region",
		zap.Int("min_size", minSize),
		zap.Int("size", len(r.B)))
	return r
}

// Return logs the region size and hands it to the wrapped provider.
func (l *Logged) Return(r *Region) {
	if r == nil {
		return
	}
	l.logger.Debug("Returned region", zap.Int("size", cap(r.B)))
	l.next.Return(r)
}
