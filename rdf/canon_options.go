package rdf

import (
	"crypto"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Algorithm names a canonicalization algorithm.
type Algorithm string

const (
	// AlgorithmURDNA2015 is the Universal RDF Dataset Normalization Algorithm 2015,
	// published as RDFC-1.0.
	AlgorithmURDNA2015 Algorithm = "URDNA2015"
	// AlgorithmURGNA2012 is the legacy Universal RDF Graph Normalization Algorithm 2012.
	AlgorithmURGNA2012 Algorithm = "URGNA2012"
)

const (
	// DefaultMaxPermutations bounds the permutations evaluated in one canonicalization run.
	DefaultMaxPermutations = 1 << 20
	// DefaultMaxNDegreeCalls bounds the N-degree hash invocations in one run.
	DefaultMaxNDegreeCalls = 1 << 18
)

// ParseAlgorithm resolves an algorithm name. Names are case-insensitive and
// RDFC-1.0 is accepted as an alias of URDNA2015.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "URDNA2015", "RDFC-1.0", "RDFC10":
		return AlgorithmURDNA2015, nil
	case "URGNA2012":
		return AlgorithmURGNA2012, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
}

func (a Algorithm) String() string { return string(a) }

// CanonOptions configures a canonicalization run.
// Zero values use defaults. Negative limits disable the corresponding bound.
type CanonOptions struct {
	Algorithm       Algorithm
	Hash            crypto.Hash
	MaxPermutations int64
	MaxNDegreeCalls int64
	Logger          *log.Logger
	Parse           []Option
}

// CanonOption configures canonicalization.
type CanonOption func(*CanonOptions)

// OptAlgorithm selects the canonicalization algorithm.
func OptAlgorithm(algorithm Algorithm) CanonOption {
	return func(opts *CanonOptions) {
		opts.Algorithm = algorithm
	}
}

// OptHash overrides the digest. URDNA2015 accepts SHA-256 and SHA-384;
// URGNA2012 only SHA-1.
func OptHash(hash crypto.Hash) CanonOption {
	return func(opts *CanonOptions) {
		opts.Hash = hash
	}
}

// OptMaxPermutations bounds the total number of permutations evaluated.
func OptMaxPermutations(n int64) CanonOption {
	return func(opts *CanonOptions) {
		opts.MaxPermutations = n
	}
}

// OptMaxNDegreeCalls bounds the number of N-degree hash invocations.
func OptMaxNDegreeCalls(n int64) CanonOption {
	return func(opts *CanonOptions) {
		opts.MaxNDegreeCalls = n
	}
}

// OptCanonLogger sets the logger receiving debug traces of the run.
func OptCanonLogger(logger *log.Logger) CanonOption {
	return func(opts *CanonOptions) {
		opts.Logger = logger
	}
}

// OptParseOptions sets the decoder options used by CanonicalizeReader.
func OptParseOptions(parse ...Option) CanonOption {
	return func(opts *CanonOptions) {
		opts.Parse = append(opts.Parse, parse...)
	}
}

// hashAvailable reports whether a digest is linked into the binary.
var hashAvailable = func(h crypto.Hash) bool { return h.Available() }

func applyCanonOptions(opts []CanonOption) (CanonOptions, error) {
	options := CanonOptions{Algorithm: AlgorithmURDNA2015}
	for _, opt := range opts {
		opt(&options)
	}

	algorithm, err := ParseAlgorithm(string(options.Algorithm))
	if err != nil {
		return CanonOptions{}, err
	}
	options.Algorithm = algorithm

	switch algorithm {
	case AlgorithmURDNA2015:
		if options.Hash == 0 {
			options.Hash = crypto.SHA256
		}
		if options.Hash != crypto.SHA256 && options.Hash != crypto.SHA384 {
			return CanonOptions{}, fmt.Errorf("%w: %s cannot use %s", ErrUnsupportedAlgorithm, algorithm, options.Hash)
		}
	case AlgorithmURGNA2012:
		if options.Hash == 0 {
			options.Hash = crypto.SHA1
		}
		if options.Hash != crypto.SHA1 {
			return CanonOptions{}, fmt.Errorf("%w: %s cannot use %s", ErrUnsupportedAlgorithm, algorithm, options.Hash)
		}
	}
	if !hashAvailable(options.Hash) {
		return CanonOptions{}, fmt.Errorf("%w: %s", ErrDigestUnavailable, options.Hash)
	}

	switch {
	case options.MaxPermutations == 0:
		options.MaxPermutations = DefaultMaxPermutations
	case options.MaxPermutations < 0:
		options.MaxPermutations = 0
	}
	switch {
	case options.MaxNDegreeCalls == 0:
		options.MaxNDegreeCalls = DefaultMaxNDegreeCalls
	case options.MaxNDegreeCalls < 0:
		options.MaxNDegreeCalls = 0
	}
	if options.Logger == nil {
		options.Logger = log.New(io.Discard)
	}
	return options, nil
}
