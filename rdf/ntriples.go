package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type ntDecoder struct {
	reader *bufio.Reader
	err    error
	format Format
	opts   DecodeOptions
	line   int
	count  int64
}

func newNTDecoder(r io.Reader, format Format, opts DecodeOptions) *ntDecoder {
	return &ntDecoder{reader: bufio.NewReader(r), format: format, opts: opts}
}

func (d *ntDecoder) Next() (Quad, error) {
	if d.err != nil {
		return Quad{}, d.err
	}
	for {
		if err := checkDecodeContext(d.opts.Context); err != nil {
			d.err = err
			return Quad{}, err
		}
		raw, err := readLineWithLimit(d.reader, d.opts.MaxLineBytes)
		if err != nil {
			if err == io.EOF {
				return Quad{}, io.EOF
			}
			d.line++
			d.err = d.wrapParseError("", err)
			return Quad{}, d.err
		}
		d.line++
		if d.line == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quad, err := parseNTLine(line, d.format)
		if err != nil {
			d.err = d.wrapParseError(line, err)
			return Quad{}, d.err
		}
		d.count++
		if d.opts.MaxQuads > 0 && d.count > d.opts.MaxQuads {
			d.err = d.wrapParseError("", ErrQuadLimitExceeded)
			return Quad{}, d.err
		}
		return quad, nil
	}
}

func (d *ntDecoder) Err() error { return d.err }
func (d *ntDecoder) Close() error {
	return nil
}

func (d *ntDecoder) wrapParseError(statement string, err error) error {
	if !d.opts.DebugStatements {
		statement = ""
	}
	return wrapParseError(string(d.format), statement, d.line, 0, err)
}

func parseNTLine(line string, format Format) (Quad, error) {
	cursor := &ntCursor{input: line}
	subject, err := cursor.parseTerm(false)
	if err != nil {
		return Quad{}, err
	}
	predicate, err := cursor.parseIRI()
	if err != nil {
		return Quad{}, err
	}
	object, err := cursor.parseTerm(true)
	if err != nil {
		return Quad{}, err
	}

	var graph Term
	cursor.skipWS()
	if cursor.pos < len(cursor.input) && cursor.input[cursor.pos] != '.' {
		if format == FormatNTriples {
			return Quad{}, cursor.errorf("graph term not allowed in N-Triples")
		}
		graph, err = cursor.parseTerm(false)
		if err != nil {
			return Quad{}, err
		}
	}
	if !cursor.consume('.') {
		return Quad{}, cursor.errorf("expected '.' at end of statement")
	}
	cursor.skipWS()
	if cursor.pos < len(cursor.input) && cursor.input[cursor.pos] != '#' {
		return Quad{}, cursor.errorf("unexpected content after statement")
	}

	return Quad{S: subject, P: predicate, O: object, G: graph}, nil
}

type ntCursor struct {
	input string
	pos   int
}

func (c *ntCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		default:
			return
		}
	}
}

func (c *ntCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *ntCursor) parseTerm(allowLiteral bool) (Term, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of line")
	}
	switch {
	case c.input[c.pos] == '<':
		return c.parseIRI()
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	case c.input[c.pos] == '"':
		if !allowLiteral {
			return nil, c.errorf("literal not allowed here")
		}
		return c.parseLiteral()
	default:
		return nil, c.errorf("unexpected token %q", c.input[c.pos])
	}
}

func (c *ntCursor) parseIRI() (IRI, error) {
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != '>' {
		switch c.input[c.pos] {
		case ' ', '\t', '<', '"', '{', '}', '|', '^', '`':
			return IRI{}, c.errorf("invalid character %q in IRI", c.input[c.pos])
		}
		c.pos++
	}
	if c.pos >= len(c.input) {
		return IRI{}, c.errorf("unterminated IRI")
	}
	value, err := UnescapeString(c.input[start:c.pos])
	if err != nil {
		return IRI{}, c.errorf("%v", err)
	}
	c.pos++
	if err := ValidateIRI(value); err != nil {
		return IRI{}, c.errorf("%v", err)
	}
	return IRI{Value: value}, nil
}

func (c *ntCursor) parseBlankNode() (BlankNode, error) {
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) {
		c.pos++
	}
	// A label may contain '.' but cannot end with one; that dot closes the statement.
	for c.pos > start && c.input[c.pos-1] == '.' {
		c.pos--
	}
	if start == c.pos {
		return BlankNode{}, c.errorf("blank node id missing")
	}
	return BlankNode{ID: c.input[start:c.pos]}, nil
}

func (c *ntCursor) parseLiteral() (Literal, error) {
	if !c.consume('"') {
		return Literal{}, c.errorf("expected literal")
	}
	start := c.pos
	for {
		if c.pos >= len(c.input) {
			return Literal{}, c.errorf("unterminated literal")
		}
		ch := c.input[c.pos]
		if ch == '\\' {
			c.pos += 2
			continue
		}
		if ch == '"' {
			break
		}
		c.pos++
	}
	lexical, err := UnescapeString(c.input[start:c.pos])
	if err != nil {
		return Literal{}, c.errorf("%v", err)
	}
	c.pos++

	if strings.HasPrefix(c.input[c.pos:], "@") {
		c.pos++
		langStart := c.pos
		for c.pos < len(c.input) && isLangChar(c.input[c.pos]) {
			c.pos++
		}
		lang := c.input[langStart:c.pos]
		if !isValidLangTag(lang) {
			return Literal{}, c.errorf("invalid language tag %q", lang)
		}
		return Literal{Lexical: lexical, Datatype: IRI{Value: RDFLangString}, Lang: lang}, nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		dt, err := c.parseIRI()
		if err != nil {
			return Literal{}, err
		}
		return Literal{Lexical: lexical, Datatype: dt}, nil
	}
	return Literal{Lexical: lexical, Datatype: IRI{Value: XSDString}}, nil
}

func (c *ntCursor) errorf(format string, args ...interface{}) error {
	return &ParseError{Column: c.pos + 1, Err: fmt.Errorf(format, args...)}
}

func isTermDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '<', '"', '#':
		return true
	default:
		return false
	}
}

func isLangChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-'
}

type ntEncoder struct {
	writer *bufio.Writer
	format Format
	err    error
}

func newNTEncoder(w io.Writer, format Format) *ntEncoder {
	return &ntEncoder{writer: bufio.NewWriter(w), format: format}
}

func (e *ntEncoder) Write(q Quad) error {
	if e.err != nil {
		return e.err
	}
	if q.IsZero() {
		return fmt.Errorf("%s: empty statement", e.format)
	}
	if err := q.validate(); err != nil {
		return err
	}
	if e.format == FormatNTriples && q.G != nil {
		return fmt.Errorf("%s: graph term not allowed", e.format)
	}
	_, err := e.writer.WriteString(formatNQuad(q))
	if err != nil {
		e.err = err
	}
	return err
}

func (e *ntEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.writer.Flush()
}

func (e *ntEncoder) Close() error {
	return e.Flush()
}

// formatNQuad renders q as one canonical N-Quads line including the trailing newline.
func formatNQuad(q Quad) string {
	var b strings.Builder
	writeTerm(&b, q.S)
	b.WriteByte(' ')
	writeIRI(&b, q.P.Value)
	b.WriteByte(' ')
	writeTerm(&b, q.O)
	if q.G != nil {
		b.WriteByte(' ')
		writeTerm(&b, q.G)
	}
	b.WriteString(" .\n")
	return b.String()
}

func writeIRI(b *strings.Builder, iri string) {
	b.WriteByte('<')
	b.WriteString(iri)
	b.WriteByte('>')
}

func writeTerm(b *strings.Builder, term Term) {
	switch value := term.(type) {
	case IRI:
		writeIRI(b, value.Value)
	case BlankNode:
		b.WriteString("_:")
		b.WriteString(value.ID)
	case Literal:
		b.WriteByte('"')
		writeEscapedLiteral(b, value.Lexical)
		b.WriteByte('"')
		if value.Lang != "" {
			b.WriteByte('@')
			b.WriteString(value.Lang)
		} else if value.Datatype.Value != "" && value.Datatype.Value != XSDString {
			b.WriteString("^^")
			writeIRI(b, value.Datatype.Value)
		}
	}
}

// writeEscapedLiteral applies the canonical N-Quads string escaping.
func writeEscapedLiteral(b *strings.Builder, s string) {
	const hex = "0123456789ABCDEF"
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if ch < 0x20 || ch == 0x7F {
				b.WriteString(`\u00`)
				b.WriteByte(hex[ch>>4])
				b.WriteByte(hex[ch&0x0F])
				continue
			}
			b.WriteByte(ch)
		}
	}
}
