package rdf

import (
	"fmt"
	"strings"
)

// TermKind identifies RDF term types.
type TermKind uint8

const (
	// TermIRI represents an IRI term.
	TermIRI TermKind = iota
	// TermBlankNode represents a blank node term.
	TermBlankNode
	// TermLiteral represents a literal term.
	TermLiteral
)

// Well-known datatype IRIs.
const (
	XSDString     = "http://www.w3.org/2001/XMLSchema#string"
	RDFLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// Term is a value that can appear in RDF statements.
type Term interface {
	Kind() TermKind
	String() string
}

// IRI represents an RDF IRI.
type IRI struct {
	// Value is the IRI string value.
	Value string
}

// Kind returns TermIRI.
func (i IRI) Kind() TermKind { return TermIRI }

// String returns the IRI value.
func (i IRI) String() string { return i.Value }

// BlankNode represents an RDF blank node.
type BlankNode struct {
	// ID is the blank node identifier without the "_:" prefix.
	ID string
}

// Kind returns TermBlankNode.
func (b BlankNode) Kind() TermKind { return TermBlankNode }

// String returns the blank node identifier prefixed with "_:".
func (b BlankNode) String() string { return "_:" + b.ID }

// Literal represents an RDF literal.
type Literal struct {
	// Lexical is the lexical form of the literal.
	Lexical string
	// Datatype is the datatype IRI, if any.
	Datatype IRI
	// Lang is the language tag, if any.
	Lang string
}

// Kind returns TermLiteral.
func (l Literal) Kind() TermKind { return TermLiteral }

// String returns the literal in its N-Quads form.
func (l Literal) String() string {
	var b strings.Builder
	writeTerm(&b, l)
	return b.String()
}

// Quad is an RDF quad (triple + optional graph name).
type Quad struct {
	// S is the subject.
	S Term
	// P is the predicate.
	P IRI
	// O is the object.
	O Term
	// G is the graph name, or nil for the default graph.
	G Term
}

// IsZero reports whether the quad has no subject/predicate/object.
func (q Quad) IsZero() bool {
	return q.S == nil && q.P.Value == "" && q.O == nil && q.G == nil
}

// InDefaultGraph reports whether the quad is in the default graph (no named graph).
func (q Quad) InDefaultGraph() bool {
	return q.G == nil
}

// String renders the quad as a single N-Quads statement without the line terminator.
func (q Quad) String() string {
	line := formatNQuad(q)
	return line[:len(line)-1]
}

// HasBlankNodes reports whether any position of the quad holds a blank node.
func (q Quad) HasBlankNodes() bool {
	return isBlank(q.S) || isBlank(q.O) || isBlank(q.G)
}

// validate checks the term shapes a dataset producer must respect.
func (q Quad) validate() error {
	switch s := q.S.(type) {
	case IRI:
		if s.Value == "" {
			return fmt.Errorf("%w: empty subject IRI", ErrInvalidQuad)
		}
	case BlankNode:
		if s.ID == "" {
			return fmt.Errorf("%w: empty subject blank node label", ErrInvalidQuad)
		}
	case nil:
		return fmt.Errorf("%w: missing subject", ErrInvalidQuad)
	default:
		return fmt.Errorf("%w: subject must be an IRI or blank node, got %T", ErrInvalidQuad, q.S)
	}
	if q.P.Value == "" {
		return fmt.Errorf("%w: missing predicate", ErrInvalidQuad)
	}
	switch o := q.O.(type) {
	case IRI, Literal:
	case BlankNode:
		if o.ID == "" {
			return fmt.Errorf("%w: empty object blank node label", ErrInvalidQuad)
		}
	case nil:
		return fmt.Errorf("%w: missing object", ErrInvalidQuad)
	default:
		return fmt.Errorf("%w: unsupported object term %T", ErrInvalidQuad, q.O)
	}
	switch g := q.G.(type) {
	case nil:
	case IRI:
		if g.Value == "" {
			return fmt.Errorf("%w: empty graph IRI", ErrInvalidQuad)
		}
	case BlankNode:
		if g.ID == "" {
			return fmt.Errorf("%w: empty graph blank node label", ErrInvalidQuad)
		}
	default:
		return fmt.Errorf("%w: graph name must be an IRI or blank node, got %T", ErrInvalidQuad, q.G)
	}
	return nil
}

func isBlank(t Term) bool {
	_, ok := t.(BlankNode)
	return ok
}
