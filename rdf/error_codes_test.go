package rdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestErrorCode_UnsupportedFormat(t *testing.T) {
	_, err := NewQuadDecoder(strings.NewReader(""), Format("turtle"))
	if code := Code(err); code != ErrCodeUnsupportedFormat {
		t.Errorf("expected ErrCodeUnsupportedFormat, got %v", code)
	}
	_, err = NewQuadEncoder(io.Discard, FormatJSONLD)
	if code := Code(err); code != ErrCodeUnsupportedFormat {
		t.Errorf("expected ErrCodeUnsupportedFormat for encoder, got %v", code)
	}
}

func TestErrorCode_LineTooLong(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> \"" + strings.Repeat("a", 65<<10) + "\" .\n"
	_, err := ReadQuads(context.Background(), strings.NewReader(input), FormatNTriples, OptMaxLineBytes(64<<10))
	if code := Code(err); code != ErrCodeLineTooLong {
		t.Errorf("expected ErrCodeLineTooLong, got %v (%v)", code, err)
	}
}

func TestErrorCode_QuadLimitExceeded(t *testing.T) {
	input := strings.Repeat("<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n", 3)
	_, err := ReadQuads(context.Background(), strings.NewReader(input), FormatNQuads, OptMaxQuads(2))
	if code := Code(err); code != ErrCodeQuadLimitExceeded {
		t.Errorf("expected ErrCodeQuadLimitExceeded, got %v", code)
	}
}

func TestErrorCode_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ParseQuads(ctx, strings.NewReader("<http://example.org/s> <http://example.org/p> <http://example.org/o> ."), FormatNTriples,
		QuadHandlerFunc(func(Quad) error { return nil }))
	if code := Code(err); code != ErrCodeContextCanceled {
		t.Errorf("expected ErrCodeContextCanceled, got %v", code)
	}
}

func TestErrorCode_ParseError(t *testing.T) {
	_, err := ReadQuads(context.Background(), strings.NewReader("<http://example.org/s> <http://example.org/p> invalid .\n"), FormatNQuads)
	if code := Code(err); code != ErrCodeParseError {
		t.Errorf("expected ErrCodeParseError, got %v", code)
	}
}

func TestErrorCode_EOF(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"
	dec, err := NewQuadDecoder(strings.NewReader(input), FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error creating decoder: %v", err)
	}
	defer dec.Close()

	if _, err := dec.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = dec.Next()
	if err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
	if code := Code(err); code != "" {
		t.Errorf("expected empty code for EOF, got %v", code)
	}
}

func TestErrorCode_NilError(t *testing.T) {
	if code := Code(nil); code != "" {
		t.Errorf("expected empty code for nil error, got %v", code)
	}
}

func TestErrorCode_WrappedError(t *testing.T) {
	wrapped := wrapParseError("nquads", "test", 3, 0, ErrLineTooLong)
	if code := Code(wrapped); code != ErrCodeLineTooLong {
		t.Errorf("expected ErrCodeLineTooLong for wrapped error, got %v", code)
	}
}

func TestErrorCode_Canonicalization(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{fmt.Errorf("config: %w", ErrUnsupportedAlgorithm), ErrCodeUnsupportedAlgorithm},
		{ErrDigestUnavailable, ErrCodeDigestUnavailable},
		{fmt.Errorf("%w: %w", ErrBudgetExceeded, context.DeadlineExceeded), ErrCodeBudgetExceeded},
		{fmt.Errorf("quad 3: %w", ErrInvalidQuad), ErrCodeInvalidQuad},
		{fmt.Errorf("%w: bad context", ErrJSONLD), ErrCodeJSONLD},
	}
	for _, tt := range tests {
		if got := Code(tt.err); got != tt.want {
			t.Errorf("Code(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestErrorCode_UnknownError(t *testing.T) {
	if code := Code(errors.New("unknown error")); code != ErrCodeParseError {
		t.Errorf("expected ErrCodeParseError for unknown error, got %v", code)
	}
}
