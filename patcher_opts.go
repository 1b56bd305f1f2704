package zipatch

import "log/slog"

// Option configures a Patcher.
type Option func(*Patcher)

// WithExtract controls whether blocks are applied to the filesystem
// (default true). When false the Patcher decodes and reports every
// block but performs no directory or file operations, which is what
// listing tools want.
func WithExtract(enabled bool) Option {
	return func(p *Patcher) {
		p.extract = enabled
	}
}

// WithLogger sets the logger for advisory conditions and per-block
// progress. A nil logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Patcher) {
		p.logger = logger
	}
}

// WithValidateCRC enables validation of each block's trailing CRC
// (default false).
//
// The original format reads the CRC but never checks it, so enabling
// this rejects streams the reference behavior would accept.
func WithValidateCRC(enabled bool) Option {
	return func(p *Patcher) {
		p.validateCRC = enabled
	}
}

// WithOnBlock registers a callback invoked after each block is
// processed. The event's Entry field is only valid during the call.
func WithOnBlock(fn BlockFunc) Option {
	return func(p *Patcher) {
		p.onBlock = fn
	}
}
