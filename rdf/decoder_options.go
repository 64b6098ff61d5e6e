package rdf

import "context"

const (
	DefaultMaxLineBytes = 1 << 20
	DefaultMaxQuads     = 0

	safeMaxLineBytes = 64 << 10
	safeMaxQuads     = 100_000
)

// DecodeOptions configures parser behavior and limits.
// Zero values use defaults. Use negative values to disable specific limits.
type DecodeOptions struct {
	// Context provides cancellation for decoding work.
	Context context.Context
	// MaxLineBytes bounds a single N-Quads line.
	MaxLineBytes int
	// MaxQuads bounds the number of statements a decoder will return.
	MaxQuads int64
	// DebugStatements wraps parse errors with the offending statement.
	DebugStatements bool
	// JSONLD configures the JSON-LD decoder.
	JSONLD JSONLDOptions
}

// Option configures decoder behavior.
type Option func(*DecodeOptions)

// DefaultDecodeOptions returns safe defaults for parser limits.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		MaxLineBytes: DefaultMaxLineBytes,
		MaxQuads:     DefaultMaxQuads,
	}
}

func normalizeDecodeOptions(opts DecodeOptions) DecodeOptions {
	if opts.MaxLineBytes == 0 {
		opts.MaxLineBytes = DefaultMaxLineBytes
	}
	if opts.MaxLineBytes < 0 {
		opts.MaxLineBytes = 0
	}
	if opts.MaxQuads < 0 {
		opts.MaxQuads = 0
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return opts
}

func applyOptions(opts []Option) DecodeOptions {
	options := DefaultDecodeOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return normalizeDecodeOptions(options)
}

// OptContext sets the context for cancellation and timeouts.
func OptContext(ctx context.Context) Option {
	return func(opts *DecodeOptions) {
		opts.Context = ctx
	}
}

// OptMaxLineBytes sets the maximum line size limit.
func OptMaxLineBytes(maxBytes int) Option {
	return func(opts *DecodeOptions) {
		opts.MaxLineBytes = maxBytes
	}
}

// OptMaxQuads sets the maximum number of quads to decode.
func OptMaxQuads(maxQuads int64) Option {
	return func(opts *DecodeOptions) {
		opts.MaxQuads = maxQuads
	}
}

// OptDebugStatements includes the offending statement in parse errors.
func OptDebugStatements() Option {
	return func(opts *DecodeOptions) {
		opts.DebugStatements = true
	}
}

// OptJSONLD sets the options used when decoding JSON-LD input.
func OptJSONLD(jsonld JSONLDOptions) Option {
	return func(opts *DecodeOptions) {
		opts.JSONLD = jsonld
	}
}

// OptSafeLimits applies limits suitable for untrusted input.
func OptSafeLimits() Option {
	return func(opts *DecodeOptions) {
		opts.MaxLineBytes = safeMaxLineBytes
		opts.MaxQuads = safeMaxQuads
		if opts.JSONLD.MaxInputBytes == 0 {
			opts.JSONLD.MaxInputBytes = 4 << 20
		}
	}
}
