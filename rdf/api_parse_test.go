package rdf

import (
	"context"
	"strings"
	"testing"
)

func TestParseQuads(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> \"v\" .\n<http://example.org/s> <http://example.org/p> \"w\" .\n"
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	count := 0
	err := ParseQuads(ctx, strings.NewReader(input), FormatNTriples, QuadHandlerFunc(func(q Quad) error {
		count++
		cancel()
		return nil
	}))
	if err != context.Canceled {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 quad, got %d", count)
	}
}

func TestParseQuadsHandlerError(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> \"v\" .\n"
	err := ParseQuads(context.Background(), strings.NewReader(input), FormatNTriples, QuadHandlerFunc(func(q Quad) error {
		return ErrInvalidQuad
	}))
	if err != ErrInvalidQuad {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestParseQuadsNilContext(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> \"v\" .\n"
	count := 0
	var ctx context.Context
	err := ParseQuads(ctx, strings.NewReader(input), FormatNTriples, QuadHandlerFunc(func(q Quad) error {
		count++
		return nil
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 statement, got %d", count)
	}
}

func TestReadQuadsNamedGraph(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> <http://example.org/o> <http://example.org/g> .\n"
	quads, err := ReadQuads(context.Background(), strings.NewReader(input), FormatNQuads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quads) != 1 || quads[0].G == nil {
		t.Fatalf("expected one quad with a graph term, got %v", quads)
	}
}
