package rdf

import "strconv"

const (
	canonicalPrefix = "_:c14n"
	temporaryPrefix = "_:b"
)

// identifierIssuer hands out sequential blank node identifiers and remembers
// the order in which existing labels received them.
type identifierIssuer struct {
	prefix  string
	counter int
	issued  map[string]string
	order   []string
}

func newIdentifierIssuer(prefix string) *identifierIssuer {
	return &identifierIssuer{prefix: prefix, issued: make(map[string]string)}
}

// issue returns the identifier for label, minting one if needed.
// An empty label always mints a fresh identifier without recording it.
func (i *identifierIssuer) issue(label string) string {
	if label != "" {
		if id, ok := i.issued[label]; ok {
			return id
		}
	}
	id := i.prefix + strconv.Itoa(i.counter)
	i.counter++
	if label != "" {
		i.issued[label] = id
		i.order = append(i.order, label)
	}
	return id
}

func (i *identifierIssuer) has(label string) bool {
	_, ok := i.issued[label]
	return ok
}

func (i *identifierIssuer) lookup(label string) (string, bool) {
	id, ok := i.issued[label]
	return id, ok
}

func (i *identifierIssuer) fork() *identifierIssuer {
	issued := make(map[string]string, len(i.issued))
	for k, v := range i.issued {
		issued[k] = v
	}
	order := make([]string, len(i.order))
	copy(order, i.order)
	return &identifierIssuer{prefix: i.prefix, counter: i.counter, issued: issued, order: order}
}
