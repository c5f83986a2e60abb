package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pitwall-sim/pitwall/sim/catalog"
)

// catalogCmd prints the effective catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the effective catalog as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := catalog.Load(catalogPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		data, err := cat.Marshal()
		if err != nil {
			logrus.Fatalf("rendering catalog: %v", err)
		}
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			logrus.Fatalf("writing catalog: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
