// Package commands implements the CLI commands for the bb build tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/bb/internal/app"
	"go.trai.ch/bb/internal/build"
	"go.trai.ch/bb/internal/core/domain"
)

// CLI represents the command line interface for bb.
type CLI struct {
	app     Application
	logging LoggingConfigurer
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, opts app.BuildOptions) (*domain.BuildResult, error)
	Watch(ctx context.Context, opts app.BuildOptions) error
}

// LoggingConfigurer applies the global logging flags.
type LoggingConfigurer interface {
	ConfigureLogging(json, quiet bool)
}

// New creates a new CLI instance with the given app. A nil logging
// configurer ignores the logging flags.
func New(a Application, logging LoggingConfigurer) *CLI {
	rootCmd := &cobra.Command{
		Use:           "bb",
		Short:         "An incremental TypeScript build tool for Bobril projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("json-log", false, "Write log records as JSON")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log warnings and errors")
	rootCmd.PersistentFlags().Bool("verbose", false, "Report the duration of every build stage")
	rootCmd.PersistentFlags().StringP("dir", "C", "", "Directory to search for bb.yaml (default: working directory)")

	c := &CLI{
		app:     a,
		logging: logging,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if c.logging == nil {
			return
		}
		jsonLog, _ := cmd.Flags().GetBool("json-log")
		quiet, _ := cmd.Flags().GetBool("quiet")
		c.logging.ConfigureLogging(jsonLog, quiet)
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// addOverrideFlags registers the flags that take precedence over bb.yaml.
func addOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().String("main", "", "Entry module, replacing main and entries from bb.yaml")
	cmd.Flags().StringP("out", "o", "", "Output directory")
	cmd.Flags().Bool("sprites", false, "Merge sprites into a single atlas")
	cmd.Flags().Bool("release", false, "Shape style definitions for release")
	cmd.Flags().Bool("total-bundle", false, "Concatenate all modules into one bundle")
}

func buildOptions(cmd *cobra.Command) app.BuildOptions {
	dir, _ := cmd.Flags().GetString("dir")
	verbose, _ := cmd.Flags().GetBool("verbose")
	entry, _ := cmd.Flags().GetString("main")
	out, _ := cmd.Flags().GetString("out")
	sprites, _ := cmd.Flags().GetBool("sprites")
	release, _ := cmd.Flags().GetBool("release")
	totalBundle, _ := cmd.Flags().GetBool("total-bundle")

	return app.BuildOptions{
		Dir:     dir,
		Verbose: verbose,
		Overrides: domain.Overrides{
			Main:        entry,
			OutDir:      out,
			SpriteMerge: sprites,
			Release:     release,
			TotalBundle: totalBundle,
		},
	}
}
