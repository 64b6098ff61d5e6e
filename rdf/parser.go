package rdf

import (
	"context"
	"io"
)

// QuadDecoder streams RDF quads from an input.
type QuadDecoder interface {
	Next() (Quad, error)
	Err() error
	Close() error
}

// QuadEncoder streams RDF quads to an output.
type QuadEncoder interface {
	Write(Quad) error
	Flush() error
	Close() error
}

// QuadHandler processes quads in push mode.
type QuadHandler interface {
	Handle(Quad) error
}

// QuadHandlerFunc adapts a function to a QuadHandler.
type QuadHandlerFunc func(Quad) error

// Handle calls the underlying function.
func (h QuadHandlerFunc) Handle(q Quad) error { return h(q) }

// NewQuadDecoder creates a decoder for the given format.
// N-Triples input yields quads in the default graph.
func NewQuadDecoder(r io.Reader, format Format, opts ...Option) (QuadDecoder, error) {
	options := applyOptions(opts)
	switch format {
	case FormatNQuads, FormatNTriples:
		return newNTDecoder(r, format, options), nil
	case FormatJSONLD:
		return newJSONLDDecoder(r, options), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// NewQuadEncoder creates an encoder for N-Quads or N-Triples output.
func NewQuadEncoder(w io.Writer, format Format) (QuadEncoder, error) {
	switch format {
	case FormatNQuads, FormatNTriples:
		return newNTEncoder(w, format), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParseQuads decodes r and streams every quad to handler.
// If ctx is nil, context.Background() is used.
func ParseQuads(ctx context.Context, r io.Reader, format Format, handler QuadHandler, opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = append([]Option{OptContext(ctx)}, opts...)
	dec, err := NewQuadDecoder(r, format, opts...)
	if err != nil {
		return err
	}
	defer dec.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		quad, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := handler.Handle(quad); err != nil {
			return err
		}
	}
}

// ReadQuads decodes r fully into a slice.
func ReadQuads(ctx context.Context, r io.Reader, format Format, opts ...Option) ([]Quad, error) {
	var quads []Quad
	err := ParseQuads(ctx, r, format, QuadHandlerFunc(func(q Quad) error {
		quads = append(quads, q)
		return nil
	}), opts...)
	if err != nil {
		return nil, err
	}
	return quads, nil
}
