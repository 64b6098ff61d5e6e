package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdf-canon/internal/config"
	"github.com/geoknoesis/rdf-canon/rdf"
)

// canonOpts holds the flags of the canonicalize command.
type canonOpts struct {
	format          string        // input format; inferred from the file extension when empty
	algorithm       string        // overrides canon.algorithm
	hash            string        // overrides canon.hash
	maxPermutations int64         // overrides canon.max_permutations when set
	maxNDegreeCalls int64         // overrides canon.max_ndegree_calls when set
	timeout         time.Duration // overrides canon.timeout when set
	output          string        // output path; stdout when empty
	labels          bool          // emit JSON with the issued identifiers
	digest          bool          // emit only the SHA-256 of the canonical document
	noLimits        bool          // disable decoder limits for trusted input
}

// canonicalOutput is the JSON document written by --labels.
type canonicalOutput struct {
	NQuads    string            `json:"nquads"`
	Hash      string            `json:"hash"`
	Algorithm string            `json:"algorithm"`
	Labels    map[string]string `json:"labels"`
}

func newCanonicalizeCmd(g *globalOpts) *cobra.Command {
	var opts canonOpts

	cmd := &cobra.Command{
		Use:     "canonicalize [file]",
		Aliases: []string{"c14n", "normalize"},
		Short:   "Canonicalize an RDF dataset to N-Quads",
		Long: `Canonicalize reads an RDF dataset (N-Quads, N-Triples or JSON-LD) from a file
or stdin and writes its canonical N-Quads form.

Examples:
  rdfc canonicalize data.nq
  rdfc canonicalize --algorithm URGNA2012 data.nt
  cat doc.jsonld | rdfc canonicalize --format jsonld --digest`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 && args[0] != "-" {
				path = args[0]
			}
			cfg, baseDir, err := g.loadConfig()
			if err != nil {
				return err
			}
			applyCanonFlags(cmd, cfg, &opts)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runCanonicalize(cmd, cfg, baseDir, path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: nquads, ntriples, jsonld (default: from extension, else nquads)")
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "", "canonicalization algorithm: URDNA2015, RDFC-1.0, URGNA2012")
	cmd.Flags().StringVar(&opts.hash, "hash", "", "hash function override: SHA256, SHA384")
	cmd.Flags().Int64Var(&opts.maxPermutations, "max-permutations", 0, "permutation budget (negative for unlimited)")
	cmd.Flags().Int64Var(&opts.maxNDegreeCalls, "max-ndegree-calls", 0, "n-degree hash call budget (negative for unlimited)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort canonicalization after this duration")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "write JSON including the issued blank node labels")
	cmd.Flags().BoolVar(&opts.digest, "digest", false, "write only the SHA-256 hex digest of the canonical document")
	cmd.Flags().BoolVar(&opts.noLimits, "no-limits", false, "disable input size limits")

	return cmd
}

// applyCanonFlags overlays explicitly set flags onto the loaded configuration.
func applyCanonFlags(cmd *cobra.Command, cfg *config.Config, opts *canonOpts) {
	if opts.algorithm != "" {
		cfg.Canon.Algorithm = opts.algorithm
	}
	if opts.hash != "" {
		cfg.Canon.Hash = opts.hash
	}
	if cmd.Flags().Changed("max-permutations") {
		cfg.Canon.MaxPermutations = opts.maxPermutations
	}
	if cmd.Flags().Changed("max-ndegree-calls") {
		cfg.Canon.MaxNDegreeCalls = opts.maxNDegreeCalls
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Canon.Timeout = opts.timeout
	}
}

func runCanonicalize(cmd *cobra.Command, cfg *config.Config, baseDir, path string, opts canonOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	var in io.Reader = cmd.InOrStdin()
	source := "stdin"
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
		source = path
	}

	format, in, err := resolveFormat(opts.format, path, in)
	if err != nil {
		return err
	}

	canonOptions, err := cfg.CanonOptions()
	if err != nil {
		return err
	}
	parseOptions, err := parseOptions(cfg, baseDir, !opts.noLimits)
	if err != nil {
		return err
	}
	canonOptions = append(canonOptions, rdf.OptCanonLogger(logger), rdf.OptParseOptions(parseOptions...))

	if cfg.Canon.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Canon.Timeout)
		defer cancel()
	}

	logger.Debug("Canonicalizing", "source", source, "format", format, "algorithm", cfg.Canon.Algorithm)
	prog := newProgress(logger)
	result, err := rdf.CanonicalizeReader(ctx, in, format, canonOptions...)
	if err != nil {
		return fmt.Errorf("canonicalize %s: %w", source, err)
	}
	prog.done(fmt.Sprintf("Canonicalized %d quads, %d blank nodes", result.Stats.Quads, result.Stats.BlankNodes))
	logger.Debug("Work", "ndegree_calls", result.Stats.NDegreeCalls, "permutations", result.Stats.Permutations)

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	return writeResult(out, result, opts)
}

func writeResult(w io.Writer, result *rdf.CanonicalDataset, opts canonOpts) error {
	switch {
	case opts.digest:
		_, err := fmt.Fprintln(w, result.Hash())
		return err
	case opts.labels:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(canonicalOutput{
			NQuads:    result.NQuads,
			Hash:      result.Hash(),
			Algorithm: result.Algorithm.String(),
			Labels:    result.IssuedIdentifiers,
		})
	default:
		_, err := io.WriteString(w, result.NQuads)
		return err
	}
}

// resolveFormat picks the input format from the flag, then the file
// extension, then the content itself, falling back to N-Quads.
func resolveFormat(flag, path string, in io.Reader) (rdf.Format, io.Reader, error) {
	if flag != "" {
		format, ok := rdf.ParseFormat(flag)
		if !ok {
			return "", in, fmt.Errorf("%w: %q", rdf.ErrUnsupportedFormat, flag)
		}
		return format, in, nil
	}
	if format, ok := rdf.FormatFromPath(path); ok {
		return format, in, nil
	}
	format, replay, ok := rdf.DetectFormat(in)
	if !ok {
		format = rdf.FormatNQuads
	}
	return format, replay, nil
}

// parseOptions builds decoder options from the jsonld section; safe applies
// the limits for untrusted input.
func parseOptions(cfg *config.Config, baseDir string, safe bool) ([]rdf.Option, error) {
	loader, err := cfg.ContextLoader(baseDir)
	if err != nil {
		return nil, err
	}
	opts := []rdf.Option{rdf.OptJSONLD(rdf.JSONLDOptions{DocumentLoader: loader})}
	if safe {
		opts = append(opts, rdf.OptSafeLimits())
	}
	return opts, nil
}
