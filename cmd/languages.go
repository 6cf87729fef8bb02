package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runx-dev/runx/internal/language"
)

var languagesCmd = &cobra.Command{
	Use:          "languages",
	Short:        "List supported languages",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "EXTENSION\tLANGUAGE\tSTRATEGY\tTOOLCHAIN")

		for _, spec := range language.Default().Specs() {
			tool := spec.Runner
			if spec.Compiler != "" {
				tool = spec.Compiler
			}

			fmt.Fprintf(w, ".%s\t%s\t%s\t%s\n", spec.Extension, spec.Name, spec.Strategy, tool)
		}

		return w.Flush()
	},
}
