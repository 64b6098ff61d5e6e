// Package rdf canonicalizes RDF datasets.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// It turns a set of quads into a unique N-Quads document that does not depend on
// blank node labels or statement order:
//   - Canonicalize() returns the canonical N-Quads text.
//   - CanonicalizeDataset() also returns the relabeled quads and the issued labels.
//   - CanonicalizeReader() decodes N-Quads, N-Triples or JSON-LD first.
//
// Supported algorithms are URDNA2015 (also accepted as RDFC-1.0) and the legacy
// URGNA2012. Runs are bounded by a work budget, see OptMaxPermutations and
// OptMaxNDegreeCalls, and by the context deadline.
//
// Example:
//
//	quads, err := rdf.ReadQuads(ctx, strings.NewReader(input), rdf.FormatNQuads)
//	if err != nil {
//	    // handle error
//	}
//	canonical, err := rdf.Canonicalize(ctx, quads)
//	if errors.Is(err, rdf.ErrBudgetExceeded) {
//	    // the dataset is too symmetric for the configured budget
//	}
//
// JSON-LD input is converted with json-gold. Contexts are never fetched unless a
// loader built with NewContextLoader(..., true, ...) is supplied via OptJSONLD.
package rdf
