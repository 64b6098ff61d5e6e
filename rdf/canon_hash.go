package rdf

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

func (c *canonicalizer) digest(s string) string {
	h := c.opts.Hash.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// hashFirstDegree hashes the quads mentioning id with id replaced by _:a and
// every other blank node by _:z.
func (c *canonicalizer) hashFirstDegree(id string) string {
	info := c.nodes[id]
	if info.hash != "" {
		return info.hash
	}
	lines := make([]string, 0, len(info.quads))
	for _, idx := range info.quads {
		q := c.quads[idx]
		q.S = c.firstDegreeTerm(q.S, id, false)
		q.O = c.firstDegreeTerm(q.O, id, false)
		q.G = c.firstDegreeTerm(q.G, id, true)
		lines = append(lines, formatNQuad(q))
	}
	sort.Strings(lines)
	info.hash = c.digest(strings.Join(lines, ""))
	return info.hash
}

func (c *canonicalizer) firstDegreeTerm(term Term, id string, graph bool) Term {
	b, ok := term.(BlankNode)
	if !ok {
		return term
	}
	if graph && c.opts.Algorithm == AlgorithmURGNA2012 {
		return BlankNode{ID: "g"}
	}
	if b.ID == id {
		return BlankNode{ID: "a"}
	}
	return BlankNode{ID: "z"}
}

// hashRelated hashes a blank node adjacent to the one being hashed, as seen from position.
func (c *canonicalizer) hashRelated(related string, q Quad, issuer *identifierIssuer, position string) string {
	id, ok := c.canonical.lookup(related)
	if !ok {
		id, ok = issuer.lookup(related)
	}
	if !ok {
		id = c.hashFirstDegree(related)
	}

	var input strings.Builder
	input.WriteString(position)
	if position != "g" {
		if c.opts.Algorithm == AlgorithmURGNA2012 {
			input.WriteString(q.P.Value)
		} else {
			writeIRI(&input, q.P.Value)
		}
	}
	input.WriteString(id)
	return c.digest(input.String())
}

func (c *canonicalizer) hashToRelated(id string, issuer *identifierIssuer) map[string][]string {
	related := make(map[string][]string)
	add := func(label string, q Quad, position string) {
		hash := c.hashRelated(label, q, issuer, position)
		related[hash] = append(related[hash], label)
	}

	for _, idx := range c.nodes[id].quads {
		q := c.quads[idx]
		if c.opts.Algorithm == AlgorithmURGNA2012 {
			if b, ok := q.S.(BlankNode); ok && b.ID != id {
				add(b.ID, q, "p")
			} else if b, ok := q.O.(BlankNode); ok && b.ID != id {
				add(b.ID, q, "r")
			}
			continue
		}
		for _, pos := range [...]struct {
			term Term
			tag  string
		}{{q.S, "s"}, {q.O, "o"}, {q.G, "g"}} {
			if b, ok := pos.term.(BlankNode); ok && b.ID != id {
				add(b.ID, q, pos.tag)
			}
		}
	}
	return related
}

// hashNDegree computes the N-degree hash of id. The issuer passed in is never
// modified; the issuer reflecting the chosen labeling is returned instead.
func (c *canonicalizer) hashNDegree(id string, issuer *identifierIssuer) (string, *identifierIssuer, error) {
	c.stats.NDegreeCalls++
	if err := c.checkBudget(); err != nil {
		return "", nil, err
	}

	related := c.hashToRelated(id, issuer)
	hashes := make([]string, 0, len(related))
	for hash := range related {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	var data strings.Builder
	for _, hash := range hashes {
		data.WriteString(hash)

		var (
			chosenPath   string
			chosenIssuer *identifierIssuer
		)
		perm := newPermutator(related[hash])
		for perm.hasNext() {
			permutation := perm.next()
			c.stats.Permutations++
			if err := c.checkBudget(); err != nil {
				return "", nil, err
			}

			candidate := issuer.fork()
			var path strings.Builder
			var recursion []string
			pruned := false
			for _, label := range permutation {
				if canonicalID, ok := c.canonical.lookup(label); ok {
					path.WriteString(canonicalID)
				} else {
					if !candidate.has(label) {
						recursion = append(recursion, label)
					}
					path.WriteString(candidate.issue(label))
				}
				if worsePath(path.String(), chosenPath) {
					pruned = true
					break
				}
			}
			if pruned {
				continue
			}

			for _, label := range recursion {
				resultHash, resultIssuer, err := c.hashNDegree(label, candidate)
				if err != nil {
					return "", nil, err
				}
				path.WriteString(candidate.issue(label))
				path.WriteString("<" + resultHash + ">")
				candidate = resultIssuer
				if worsePath(path.String(), chosenPath) {
					pruned = true
					break
				}
			}
			if pruned {
				continue
			}

			if p := path.String(); chosenIssuer == nil || p < chosenPath {
				chosenPath = p
				chosenIssuer = candidate
			}
		}

		data.WriteString(chosenPath)
		issuer = chosenIssuer
	}
	return c.digest(data.String()), issuer, nil
}

// worsePath reports whether path can no longer beat the best path found so far.
func worsePath(path, chosen string) bool {
	return chosen != "" && len(path) >= len(chosen) && path > chosen
}

func (c *canonicalizer) checkBudget() error {
	if err := c.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBudgetExceeded, err)
	}
	if max := c.opts.MaxNDegreeCalls; max > 0 && c.stats.NDegreeCalls > max {
		return fmt.Errorf("%w: more than %d n-degree hash calls", ErrBudgetExceeded, max)
	}
	if max := c.opts.MaxPermutations; max > 0 && c.stats.Permutations > max {
		return fmt.Errorf("%w: more than %d permutations", ErrBudgetExceeded, max)
	}
	return nil
}
