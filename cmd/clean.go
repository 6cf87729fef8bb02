package cmd

import (
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:          "clean",
	Short:        "Clear the build cache",
	Long:         `Remove all cached build artifacts and the run history.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return clearCache()
	},
}
