package rdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeUnsupportedFormat indicates an unsupported format.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeLineTooLong indicates a line exceeded the configured limit.
	ErrCodeLineTooLong ErrorCode = "LINE_TOO_LONG"
	// ErrCodeQuadLimitExceeded indicates that the maximum number of quads was exceeded.
	ErrCodeQuadLimitExceeded ErrorCode = "QUAD_LIMIT_EXCEEDED"
	// ErrCodeParseError indicates a general parse error.
	ErrCodeParseError ErrorCode = "PARSE_ERROR"
	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInvalidQuad indicates a quad with an impossible term shape.
	ErrCodeInvalidQuad ErrorCode = "INVALID_QUAD"
	// ErrCodeUnsupportedAlgorithm indicates an unknown canonicalization algorithm.
	ErrCodeUnsupportedAlgorithm ErrorCode = "UNSUPPORTED_ALGORITHM"
	// ErrCodeDigestUnavailable indicates the hash primitive is not linked into the binary.
	ErrCodeDigestUnavailable ErrorCode = "DIGEST_UNAVAILABLE"
	// ErrCodeBudgetExceeded indicates canonicalization ran out of its work budget.
	ErrCodeBudgetExceeded ErrorCode = "BUDGET_EXCEEDED"
	// ErrCodeJSONLD indicates a JSON-LD processing failure.
	ErrCodeJSONLD ErrorCode = "JSONLD_ERROR"
)

var (
	// ErrUnsupportedFormat indicates an unsupported format.
	ErrUnsupportedFormat = errors.New("unsupported RDF format")
	// ErrLineTooLong indicates a line exceeded the configured limit.
	ErrLineTooLong = errors.New("rdf: line exceeds configured limit")
	// ErrQuadLimitExceeded indicates that the maximum number of quads was exceeded.
	ErrQuadLimitExceeded = errors.New("rdf: maximum number of quads exceeded")
	// ErrInvalidQuad indicates a quad that cannot be part of an RDF dataset.
	ErrInvalidQuad = errors.New("rdf: invalid quad")
	// ErrUnsupportedAlgorithm indicates an unknown or misconfigured canonicalization algorithm.
	ErrUnsupportedAlgorithm = errors.New("rdf: unsupported canonicalization algorithm")
	// ErrDigestUnavailable indicates the configured hash function is not available.
	ErrDigestUnavailable = errors.New("rdf: digest algorithm unavailable")
	// ErrBudgetExceeded indicates canonicalization exceeded its work budget or deadline.
	ErrBudgetExceeded = errors.New("rdf: canonicalization work budget exceeded")
	// ErrJSONLD indicates a JSON-LD document could not be converted to RDF.
	ErrJSONLD = errors.New("rdf: json-ld processing failed")
)

// Code returns the error code for an error, or ErrCodeParseError if unknown.
// Returns empty string for nil errors or io.EOF (which is not an error condition).
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}

	// EOF is not an error condition
	if err == io.EOF {
		return ""
	}

	// Budget errors may also wrap a context error; the budget wins.
	switch {
	case errors.Is(err, ErrBudgetExceeded):
		return ErrCodeBudgetExceeded
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return ErrCodeUnsupportedAlgorithm
	case errors.Is(err, ErrDigestUnavailable):
		return ErrCodeDigestUnavailable
	case errors.Is(err, ErrInvalidQuad):
		return ErrCodeInvalidQuad
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeUnsupportedFormat
	case errors.Is(err, ErrLineTooLong):
		return ErrCodeLineTooLong
	case errors.Is(err, ErrQuadLimitExceeded):
		return ErrCodeQuadLimitExceeded
	case errors.Is(err, ErrJSONLD):
		return ErrCodeJSONLD
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeContextCanceled
	}

	// Default to parse error for unknown errors
	return ErrCodeParseError
}

// ParseError provides structured context for parse failures.
type ParseError struct {
	Format    string // Format name (e.g., "nquads", "jsonld")
	Statement string // Offending statement or input excerpt
	Line      int    // 1-based line number (0 if unknown)
	Column    int    // 1-based column number (0 if unknown)
	Err       error  // Underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Format)
	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	}
	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())
	if excerpt := e.formatExcerpt(); excerpt != "" {
		msg.WriteString("\n  ")
		msg.WriteString(excerpt)
	}
	return msg.String()
}

// formatExcerpt formats a readable excerpt of the statement around the error position.
func (e *ParseError) formatExcerpt() string {
	if e.Statement == "" {
		return ""
	}

	const maxExcerptLen = 80
	const contextLen = 40

	if e.Column > 0 {
		start := e.Column - 1
		if start > len(e.Statement) {
			start = len(e.Statement)
		}
		excerptStart := start - contextLen
		if excerptStart < 0 {
			excerptStart = 0
		}
		excerptEnd := start + contextLen
		if excerptEnd > len(e.Statement) {
			excerptEnd = len(e.Statement)
		}

		excerpt := e.Statement[excerptStart:excerptEnd]
		caretPos := start - excerptStart
		if excerptStart > 0 {
			excerpt = "..." + excerpt
			caretPos += 3
		}
		if excerptEnd < len(e.Statement) {
			excerpt += "..."
		}

		var result strings.Builder
		result.WriteString(excerpt)
		result.WriteString("\n  ")
		result.WriteString(strings.Repeat(" ", caretPos))
		result.WriteByte('^')
		return result.String()
	}

	if len(e.Statement) > maxExcerptLen {
		return e.Statement[:maxExcerptLen] + "..."
	}
	return e.Statement
}

func (e *ParseError) Unwrap() error { return e.Err }

// wrapParseError adds format/statement/position context to a parse error.
func wrapParseError(format, statement string, line, column int, err error) error {
	if err == nil {
		return nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if parseErr.Column > 0 && column == 0 {
			column = parseErr.Column
		}
		err = parseErr.Err
	}
	return &ParseError{
		Format:    format,
		Statement: strings.TrimRight(statement, "\r\n"),
		Line:      line,
		Column:    column,
		Err:       err,
	}
}
