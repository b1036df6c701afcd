package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("askdocs version %s\n", version)
	},
}

func init() {
	versionCmd.Annotations = map[string]string{skipBootstrap: "true"}
	rootCmd.AddCommand(versionCmd)
}
