package rdf

import (
	"fmt"
	"strings"
)

// ValidateIRI reports whether iri is an absolute IRI as required by the
// N-Quads and N-Triples grammars. Relative references are rejected since the
// canonicalizer never resolves them.
func ValidateIRI(iri string) error {
	if iri == "" {
		return fmt.Errorf("empty IRI")
	}

	colon := strings.IndexByte(iri, ':')
	if colon <= 0 {
		return fmt.Errorf("relative IRI %q", iri)
	}
	for i := 0; i < colon; i++ {
		ch := iri[i]
		isAlpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		if i == 0 && !isAlpha {
			return fmt.Errorf("scheme must start with a letter: %q", iri)
		}
		if !isAlpha && !(ch >= '0' && ch <= '9') && ch != '+' && ch != '-' && ch != '.' {
			return fmt.Errorf("invalid scheme character %q in IRI %q", ch, iri)
		}
	}

	for i, r := range iri {
		if r <= 0x20 {
			return fmt.Errorf("invalid control character at position %d in IRI %q", i, iri)
		}
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
			return fmt.Errorf("invalid character %q at position %d in IRI %q", r, i, iri)
		}
	}
	return nil
}
