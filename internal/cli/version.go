package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aboutcode-org/nuget-inspector/internal/version"
)

// addVersionCommand adds the version command.
func (app *App) addVersionCommand(rootCmd *cobra.Command) {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the version of nugettest with build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			detailed, _ := cmd.Flags().GetBool("detailed")
			if detailed {
				fmt.Printf("nugettest %s\n", version.GetDetailedVersion())
			} else {
				fmt.Printf("nugettest %s\n", version.GetVersion())
			}
		},
	}

	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
	rootCmd.AddCommand(versionCmd)
}
