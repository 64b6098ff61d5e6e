package rdf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// CanonStats reports the work done by one canonicalization run.
type CanonStats struct {
	Quads        int
	BlankNodes   int
	NDegreeCalls int64
	Permutations int64
}

// CanonicalDataset is the result of canonicalizing a dataset.
type CanonicalDataset struct {
	// NQuads is the canonical N-Quads document.
	NQuads string
	// Quads holds the relabeled quads in canonical order.
	Quads []Quad
	// IssuedIdentifiers maps input blank node IDs to canonical IDs (c14nN), without "_:".
	IssuedIdentifiers map[string]string
	Algorithm         Algorithm
	Stats             CanonStats
}

// Hash returns the hex SHA-256 digest of the canonical document.
func (d *CanonicalDataset) Hash() string {
	sum := sha256.Sum256([]byte(d.NQuads))
	return hex.EncodeToString(sum[:])
}

type canonicalizer struct {
	ctx       context.Context
	opts      CanonOptions
	logger    *log.Logger
	quads     []Quad
	nodes     map[string]*blankNodeInfo
	canonical *identifierIssuer
	stats     CanonStats
}

// Canonicalize returns the canonical N-Quads form of quads.
func Canonicalize(ctx context.Context, quads []Quad, opts ...CanonOption) (string, error) {
	result, err := CanonicalizeDataset(ctx, quads, opts...)
	if err != nil {
		return "", err
	}
	return result.NQuads, nil
}

// CanonicalizeDataset canonicalizes quads and reports the issued labels.
// Duplicate statements are collapsed. No partial result is returned on error.
func CanonicalizeDataset(ctx context.Context, quads []Quad, opts ...CanonOption) (*CanonicalDataset, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	options, err := applyCanonOptions(opts)
	if err != nil {
		return nil, err
	}
	unique, err := uniqueQuads(quads)
	if err != nil {
		return nil, err
	}

	c := &canonicalizer{
		ctx:       ctx,
		opts:      options,
		logger:    options.Logger,
		quads:     unique,
		nodes:     indexBlankNodes(unique),
		canonical: newIdentifierIssuer(canonicalPrefix),
	}
	c.stats.Quads = len(unique)
	c.stats.BlankNodes = len(c.nodes)
	return c.run()
}

// CanonicalizeReader decodes r in the given format and canonicalizes the result.
func CanonicalizeReader(ctx context.Context, r io.Reader, format Format, opts ...CanonOption) (*CanonicalDataset, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var options CanonOptions
	for _, opt := range opts {
		opt(&options)
	}
	quads, err := ReadQuads(ctx, r, format, options.Parse...)
	if err != nil {
		return nil, err
	}
	return CanonicalizeDataset(ctx, quads, opts...)
}

func uniqueQuads(quads []Quad) ([]Quad, error) {
	seen := make(map[string]struct{}, len(quads))
	unique := make([]Quad, 0, len(quads))
	for _, q := range quads {
		if err := q.validate(); err != nil {
			return nil, err
		}
		line := formatNQuad(q)
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		unique = append(unique, q)
	}
	return unique, nil
}

func (c *canonicalizer) run() (*CanonicalDataset, error) {
	if err := c.checkBudget(); err != nil {
		return nil, err
	}
	c.logger.Debug("canonicalize", "algorithm", c.opts.Algorithm, "quads", c.stats.Quads, "blank_nodes", c.stats.BlankNodes)

	labels := make([]string, 0, len(c.nodes))
	for label := range c.nodes {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	// First-degree hashes do not depend on canonical labels, so one pass
	// finds every uniquely hashed node.
	byHash := make(map[string][]string)
	for _, label := range labels {
		hash := c.hashFirstDegree(label)
		byHash[hash] = append(byHash[hash], label)
	}
	hashes := make([]string, 0, len(byHash))
	for hash := range byHash {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	var shared []string
	for _, hash := range hashes {
		if ids := byHash[hash]; len(ids) == 1 {
			c.canonical.issue(ids[0])
			continue
		}
		shared = append(shared, hash)
	}
	c.logger.Debug("first degree", "unique", len(hashes)-len(shared), "shared", len(shared))

	type nDegreeResult struct {
		hash   string
		issuer *identifierIssuer
	}
	for _, hash := range shared {
		var results []nDegreeResult
		for _, id := range byHash[hash] {
			if c.canonical.has(id) {
				continue
			}
			temporary := newIdentifierIssuer(temporaryPrefix)
			temporary.issue(id)
			resultHash, issuer, err := c.hashNDegree(id, temporary)
			if err != nil {
				c.logger.Debug("n-degree aborted", "err", err, "calls", c.stats.NDegreeCalls, "permutations", c.stats.Permutations)
				return nil, err
			}
			results = append(results, nDegreeResult{hash: resultHash, issuer: issuer})
		}
		sort.SliceStable(results, func(i, j int) bool { return results[i].hash < results[j].hash })
		for _, result := range results {
			for _, label := range result.issuer.order {
				c.canonical.issue(label)
			}
		}
	}
	c.logger.Debug("n-degree", "calls", c.stats.NDegreeCalls, "permutations", c.stats.Permutations)

	return c.relabel(), nil
}

func (c *canonicalizer) relabel() *CanonicalDataset {
	relabeled := make([]Quad, len(c.quads))
	lines := make([]string, len(c.quads))
	for i, q := range c.quads {
		q.S = c.canonicalTerm(q.S)
		q.O = c.canonicalTerm(q.O)
		q.G = c.canonicalTerm(q.G)
		relabeled[i] = q
		lines[i] = formatNQuad(q)
	}

	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return lines[order[i]] < lines[order[j]] })

	var out strings.Builder
	sorted := make([]Quad, len(order))
	for i, idx := range order {
		out.WriteString(lines[idx])
		sorted[i] = relabeled[idx]
	}

	issued := make(map[string]string, len(c.canonical.issued))
	for label, id := range c.canonical.issued {
		issued[label] = strings.TrimPrefix(id, "_:")
	}
	return &CanonicalDataset{
		NQuads:            out.String(),
		Quads:             sorted,
		IssuedIdentifiers: issued,
		Algorithm:         c.opts.Algorithm,
		Stats:             c.stats,
	}
}

func (c *canonicalizer) canonicalTerm(term Term) Term {
	b, ok := term.(BlankNode)
	if !ok {
		return term
	}
	return BlankNode{ID: strings.TrimPrefix(c.canonical.issue(b.ID), "_:")}
}
