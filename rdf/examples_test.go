package rdf

import (
	"context"
	"fmt"
	"strings"
)

func ExampleCanonicalize() {
	input := `_:person <http://schema.org/knows> _:friend .
_:friend <http://schema.org/name> "Bob" .
`
	quads, err := ReadQuads(context.Background(), strings.NewReader(input), FormatNQuads)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	canonical, err := Canonicalize(context.Background(), quads)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Print(canonical)

	// Output:
	// _:c14n0 <http://schema.org/knows> _:c14n1 .
	// _:c14n1 <http://schema.org/name> "Bob" .
}

func ExampleCanonicalizeDataset() {
	quads := []Quad{
		{S: BlankNode{ID: "a"}, P: IRI{Value: "http://example.org/p"}, O: BlankNode{ID: "b"}},
		{S: BlankNode{ID: "b"}, P: IRI{Value: "http://example.org/p"}, O: BlankNode{ID: "a"}},
	}
	result, err := CanonicalizeDataset(context.Background(), quads, OptAlgorithm(AlgorithmURGNA2012))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(result.Algorithm, len(result.IssuedIdentifiers))
	fmt.Print(result.NQuads)

	// Output:
	// URGNA2012 2
	// _:c14n0 <http://example.org/p> _:c14n1 .
	// _:c14n1 <http://example.org/p> _:c14n0 .
}
