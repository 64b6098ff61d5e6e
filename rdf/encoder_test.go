package rdf

import (
	"bytes"
	"io"
	"testing"
)

type failingWriter struct{}

func (f failingWriter) Write(p []byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestNewDecoderUnsupportedFormat(t *testing.T) {
	_, err := NewQuadDecoder(bytes.NewReader(nil), Format("bogus"))
	if err != ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNewEncoderUnsupportedFormat(t *testing.T) {
	_, err := NewQuadEncoder(&bytes.Buffer{}, Format("bogus"))
	if err != ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestEncodersWriteAndFlush(t *testing.T) {
	quad := Quad{
		S: IRI{Value: "http://example.org/s"},
		P: IRI{Value: "http://example.org/p"},
		O: Literal{Lexical: "v"},
	}
	for _, format := range []Format{FormatNTriples, FormatNQuads} {
		var buf bytes.Buffer
		enc, err := NewQuadEncoder(&buf, format)
		if err != nil {
			t.Fatalf("format %s: %v", format, err)
		}
		if err := enc.Write(quad); err != nil {
			t.Fatalf("format %s: write error %v", format, err)
		}
		if err := enc.Close(); err != nil {
			t.Fatalf("format %s: close error %v", format, err)
		}
		if got := buf.String(); got != "<http://example.org/s> <http://example.org/p> \"v\" .\n" {
			t.Errorf("format %s: unexpected output %q", format, got)
		}
	}
}

func TestEncoderRejectsEmptyQuad(t *testing.T) {
	enc, _ := NewQuadEncoder(&bytes.Buffer{}, FormatNQuads)
	if err := enc.Write(Quad{}); err == nil {
		t.Fatal("expected error for empty quad")
	}
}

func TestEncoderWriteError(t *testing.T) {
	enc, err := NewQuadEncoder(failingWriter{}, FormatNTriples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quad := Quad{
		S: IRI{Value: "http://example.org/s"},
		P: IRI{Value: "http://example.org/p"},
		O: Literal{Lexical: "v"},
	}
	if err := enc.Write(quad); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if err := enc.Flush(); err == nil {
		t.Fatal("expected flush error")
	}
}
