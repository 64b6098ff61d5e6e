package rdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	ld "github.com/piprate/json-gold/ld"
)

// JSONLDOptions configures JSON-LD to RDF conversion.
type JSONLDOptions struct {
	// BaseIRI resolves relative IRIs in the document.
	BaseIRI string
	// DocumentLoader resolves @context references. Nil means an offline loader
	// that knows no contexts.
	DocumentLoader ld.DocumentLoader
	// MaxInputBytes limits the size of the JSON-LD document. Zero means unlimited.
	MaxInputBytes int64
}

// NewContextLoader returns a document loader serving the given contexts from memory.
// Unknown contexts fail unless remote is set, in which case they are fetched over HTTP
// and cached according to their Cache-Control headers.
func NewContextLoader(contexts map[string][]byte, remote bool, client *http.Client) (ld.DocumentLoader, error) {
	var next ld.DocumentLoader = offlineLoader{}
	if remote {
		if client == nil {
			client = http.DefaultClient
		}
		next = ld.NewRFC7324CachingDocumentLoader(client)
	}
	loader := ld.NewCachingDocumentLoader(next)
	for url, raw := range contexts {
		doc, err := ld.DocumentFromReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: context %s: %w", ErrJSONLD, url, err)
		}
		loader.AddDocument(url, doc)
	}
	return loader, nil
}

type offlineLoader struct{}

func (offlineLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, fmt.Sprintf("context %s is not available offline", u))
}

// ParseJSONLD converts a JSON-LD document into quads.
func ParseJSONLD(ctx context.Context, r io.Reader, opts JSONLDOptions) ([]Quad, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.MaxInputBytes > 0 {
		r = io.LimitReader(r, opts.MaxInputBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if opts.MaxInputBytes > 0 && int64(len(data)) > opts.MaxInputBytes {
		return nil, &ParseError{Format: string(FormatJSONLD), Err: ErrLineTooLong}
	}
	doc, err := ld.DocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: string(FormatJSONLD), Err: fmt.Errorf("%w: %w", ErrJSONLD, err)}
	}

	loader := opts.DocumentLoader
	if loader == nil {
		loader = ld.NewCachingDocumentLoader(offlineLoader{})
	}
	goldOpts := ld.NewJsonLdOptions(opts.BaseIRI)
	goldOpts.DocumentLoader = loader
	goldOpts.Format = "application/n-quads"

	proc := ld.NewJsonLdProcessor()
	result, err := proc.ToRDF(doc, goldOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONLD, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nquads, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected ToRDF result %T", ErrJSONLD, result)
	}
	return ReadQuads(ctx, strings.NewReader(nquads), FormatNQuads, OptMaxLineBytes(-1))
}

type jsonldDecoder struct {
	reader io.Reader
	opts   DecodeOptions
	quads  []Quad
	index  int
	loaded bool
	err    error
}

func newJSONLDDecoder(r io.Reader, opts DecodeOptions) *jsonldDecoder {
	return &jsonldDecoder{reader: r, opts: opts}
}

func (d *jsonldDecoder) Next() (Quad, error) {
	if d.err != nil {
		return Quad{}, d.err
	}
	if !d.loaded {
		d.loaded = true
		quads, err := ParseJSONLD(d.opts.Context, d.reader, d.opts.JSONLD)
		if err != nil {
			d.err = err
			return Quad{}, err
		}
		if d.opts.MaxQuads > 0 && int64(len(quads)) > d.opts.MaxQuads {
			d.err = &ParseError{Format: string(FormatJSONLD), Err: ErrQuadLimitExceeded}
			return Quad{}, d.err
		}
		d.quads = quads
	}
	if d.index >= len(d.quads) {
		return Quad{}, io.EOF
	}
	q := d.quads[d.index]
	d.index++
	return q, nil
}

func (d *jsonldDecoder) Err() error { return d.err }

func (d *jsonldDecoder) Close() error { return nil }
