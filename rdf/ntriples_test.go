package rdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func decodeOne(t *testing.T, input string, format Format) (Quad, error) {
	t.Helper()
	dec, err := NewQuadDecoder(strings.NewReader(input), format)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer dec.Close()
	return dec.Next()
}

func TestNTriplesDecodeErrors(t *testing.T) {
	if _, err := decodeOne(t, "<http://example.org/s> <http://example.org/p> .\n", FormatNTriples); err == nil {
		t.Fatal("expected error for missing object")
	}
	if _, err := decodeOne(t, "<http://example.org/s> <http://example.org/p> <http://example.org/o>\n", FormatNTriples); err == nil {
		t.Fatal("expected error for missing dot")
	}
	if _, err := decodeOne(t, "\"s\" <http://example.org/p> <http://example.org/o> .\n", FormatNQuads); err == nil {
		t.Fatal("expected error for literal subject")
	}
	if _, err := decodeOne(t, "<http://example.org/s> <http://example.org/p> \"x\"@1en .\n", FormatNQuads); err == nil {
		t.Fatal("expected error for invalid language tag")
	}
}

func TestNQuadsRejectGraphInTriples(t *testing.T) {
	line := "<http://example.org/s> <http://example.org/p> <http://example.org/o> <http://example.org/g> .\n"
	if _, err := decodeOne(t, line, FormatNTriples); err == nil {
		t.Fatal("expected error for graph term in ntriples")
	}
	quad, err := decodeOne(t, line, FormatNQuads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quad.G != (IRI{Value: "http://example.org/g"}) {
		t.Fatalf("unexpected graph %v", quad.G)
	}
}

func TestNQuadsDecodeBlankAndLiteral(t *testing.T) {
	quad, err := decodeOne(t, "_:b1 <http://example.org/p> \"v\"@en _:g.\n", FormatNQuads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quad.S != (BlankNode{ID: "b1"}) {
		t.Fatalf("unexpected subject %v", quad.S)
	}
	if lit, ok := quad.O.(Literal); !ok || lit.Lang != "en" || lit.Datatype.Value != RDFLangString {
		t.Fatalf("expected lang literal, got %#v", quad.O)
	}
	if quad.G != (BlankNode{ID: "g"}) {
		t.Fatalf("expected blank graph without trailing dot, got %v", quad.G)
	}
}

func TestNQuadsDecodeDatatypeAndEscapes(t *testing.T) {
	quad, err := decodeOne(t, `<http://example.org/s> <http://example.org/p> "a\"b\né\U0001F600"^^<http://example.org/dt> .`+"\n", FormatNQuads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit := quad.O.(Literal)
	if lit.Lexical != "a\"b\né\U0001F600" {
		t.Fatalf("unexpected lexical %q", lit.Lexical)
	}
	if lit.Datatype.Value != "http://example.org/dt" {
		t.Fatalf("unexpected datatype %q", lit.Datatype.Value)
	}
}

func TestNQuadsSkipsCommentsAndBlankLines(t *testing.T) {
	input := "# header\n\n<http://example.org/s> <http://example.org/p> <http://example.org/o> . # trailing\n"
	quads, err := ReadQuads(context.Background(), strings.NewReader(input), FormatNQuads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}
}

func TestNQuadsLimits(t *testing.T) {
	input := strings.Repeat("<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n", 3)
	_, err := ReadQuads(context.Background(), strings.NewReader(input), FormatNQuads, OptMaxQuads(2))
	if !errors.Is(err, ErrQuadLimitExceeded) {
		t.Fatalf("expected quad limit error, got %v", err)
	}
	_, err = ReadQuads(context.Background(), strings.NewReader(input), FormatNQuads, OptMaxLineBytes(10))
	if !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("expected line limit error, got %v", err)
	}
	if Code(err) != ErrCodeLineTooLong {
		t.Fatalf("unexpected code %s", Code(err))
	}
}

func TestNQuadsParseErrorPosition(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n<http://example.org/s> <http://example.org/p> .\n"
	_, err := ReadQuads(context.Background(), strings.NewReader(input), FormatNQuads, OptDebugStatements())
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Line != 2 || parseErr.Column == 0 {
		t.Fatalf("unexpected position %d:%d", parseErr.Line, parseErr.Column)
	}
	if !strings.Contains(err.Error(), "^") {
		t.Fatalf("expected caret excerpt in %q", err.Error())
	}
}

func TestNQuadsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadQuads(ctx, strings.NewReader("<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"), FormatNQuads)
	if Code(err) != ErrCodeContextCanceled {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestNQuadsEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewQuadEncoder(&buf, FormatNQuads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quads := []Quad{
		{S: BlankNode{ID: "x"}, P: IRI{Value: "http://example.org/p"}, O: Literal{Lexical: "tab\there\u0001", Datatype: IRI{Value: XSDString}}},
		{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: "http://example.org/p"}, O: Literal{Lexical: "1", Datatype: IRI{Value: "http://www.w3.org/2001/XMLSchema#integer"}}, G: IRI{Value: "http://example.org/g"}},
	}
	for _, q := range quads {
		if err := enc.Write(q); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "_:x <http://example.org/p> \"tab\\there\\u0001\" .\n" +
		"<http://example.org/s> <http://example.org/p> \"1\"^^<http://www.w3.org/2001/XMLSchema#integer> <http://example.org/g> .\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}

	dec, _ := NewQuadDecoder(strings.NewReader(buf.String()), FormatNQuads)
	for _, q := range quads {
		got, err := dec.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != q {
			t.Fatalf("round trip mismatch: %#v != %#v", got, q)
		}
	}
	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestNTriplesEncoderRejectsGraph(t *testing.T) {
	enc, _ := NewQuadEncoder(io.Discard, FormatNTriples)
	err := enc.Write(Quad{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: "http://example.org/p"}, O: IRI{Value: "http://example.org/o"}, G: IRI{Value: "http://example.org/g"}})
	if err == nil {
		t.Fatal("expected error for graph term")
	}
}
