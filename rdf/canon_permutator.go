package rdf

import "sort"

// permutator enumerates every ordering of a set of distinct strings using the
// Steinhaus-Johnson-Trotter algorithm, starting from sorted order.
type permutator struct {
	current []string
	left    []bool
	done    bool
}

func newPermutator(items []string) *permutator {
	current := make([]string, len(items))
	copy(current, items)
	sort.Strings(current)
	left := make([]bool, len(current))
	for i := range left {
		left[i] = true
	}
	return &permutator{current: current, left: left}
}

func (p *permutator) hasNext() bool { return !p.done }

// next returns the current permutation and advances to the following one.
func (p *permutator) next() []string {
	out := make([]string, len(p.current))
	copy(out, p.current)

	n := len(p.current)
	pos := -1
	for i, element := range p.current {
		if pos >= 0 && element <= p.current[pos] {
			continue
		}
		if p.left[i] && i > 0 && element > p.current[i-1] ||
			!p.left[i] && i < n-1 && element > p.current[i+1] {
			pos = i
		}
	}
	if pos < 0 {
		p.done = true
		return out
	}

	k := p.current[pos]
	swap := pos + 1
	if p.left[pos] {
		swap = pos - 1
	}
	p.current[pos], p.current[swap] = p.current[swap], p.current[pos]
	p.left[pos], p.left[swap] = p.left[swap], p.left[pos]
	for i, element := range p.current {
		if element > k {
			p.left[i] = !p.left[i]
		}
	}
	return out
}
