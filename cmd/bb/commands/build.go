package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the project once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := buildOptions(cmd)
			opts.Force, _ = cmd.Flags().GetBool("force")
			_, err := c.app.Build(cmd.Context(), opts)
			return err
		},
	}
	addOverrideFlags(cmd)
	cmd.Flags().BoolP("force", "f", false, "Rebuild every file regardless of freshness")
	return cmd
}
