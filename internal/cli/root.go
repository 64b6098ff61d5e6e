package cli

import (
	"context"
	"fmt"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdf-canon/internal/config"
)

var (
	version = "dev" // semantic version (e.g., "v1.2.3")
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information reported by the version command.
// It is called by main with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// globalOpts holds the persistent flags shared by every command.
type globalOpts struct {
	verbose    bool
	configPath string
}

// loadConfig returns the defaults overlaid with the --config file, if any,
// and the directory relative context paths are resolved against.
func (g *globalOpts) loadConfig() (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	baseDir := "."
	if g.configPath != "" {
		loaded, err := config.LoadFromFile(g.configPath)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
		baseDir = filepath.Dir(g.configPath)
	}
	return cfg, baseDir, nil
}

// Execute runs the rdfc CLI with ctx and returns an error if any command fails.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	g := &globalOpts{}

	root := &cobra.Command{
		Use:           "rdfc",
		Short:         "rdfc canonicalizes RDF datasets",
		Long:          `rdfc computes the canonical N-Quads form of an RDF dataset with URDNA2015 (RDFC-1.0) or URGNA2012, so that isomorphic datasets produce identical bytes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if g.verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "path to a YAML configuration file")

	root.AddCommand(newCanonicalizeCmd(g))
	root.AddCommand(newServeCmd(g))
	root.AddCommand(newConfigCmd(g))
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rdfc %s\n", version)
			if commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", commit)
			}
			if date != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", date)
			}
		},
	}
}
