package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oasforge/oasforge"
)

// Execute runs the oasforge CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command. Generation runs on the
// root command itself; version is the only subcommand.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "oasforge",
		Short:   "Generate an OpenAPI document from annotated Go source",
		Version: a.version,
		Long: `Oasforge scans Go source for @openapi annotations and standalone
YAML/JSON fragments, resolves fragments, generic blueprints, and smart
references, and merges everything into a single OpenAPI document.

Exactly one input must carry the top-level 'openapi' and 'info' keys;
all other snippets merge into it.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE:              a.runGenerate,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is .oasforge.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.Flags().StringSliceP("input", "i", nil, "input directories to scan for Go files and OpenAPI fragments")
	rootCmd.Flags().StringSlice("include", nil, "specific files to include (e.g. .json, .yaml)")
	rootCmd.Flags().StringP("output", "o", "", "output file for the generated OpenAPI definition (default openapi.yaml)")

	rootCmd.SetVersionTemplate("oasforge {{.Version}}\n")

	rootCmd.AddCommand(a.newVersionCommand())

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	inputs, _ := cmd.Flags().GetStringSlice("input")
	includes, _ := cmd.Flags().GetStringSlice("include")
	output, _ := cmd.Flags().GetString("output")

	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	logLevel := mustGetString(cmd, "log-level")

	a.config.UpdateFromFlags(inputs, includes, output, verbose, quiet, noColor, logLevel)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// runGenerate wires the configuration into a Generator and runs it.
func (a *App) runGenerate(cmd *cobra.Command, _ []string) error {
	gen := oasforge.New(
		oasforge.WithInput(a.config.Inputs...),
		oasforge.WithInclude(a.config.Includes...),
		oasforge.WithOutput(a.config.Output),
		oasforge.WithVersion(a.version),
		oasforge.WithLogger(a.logger),
	)
	return gen.Generate(cmd.Context())
}

// newVersionCommand reports detailed build information.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "oasforge %s (commit %s, built %s)\n", a.version, a.commit, a.date)
			return err
		},
	}
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't
// exist. This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't
// exist. This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
