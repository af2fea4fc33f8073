package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/healthplot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long:  "Prints the configuration after defaults, config.yaml, .env and HEALTHPLOT_* environment variables are applied.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return dumpConfig(cmd.OutOrStdout(), cfg)
	},
}

func dumpConfig(out io.Writer, c *config.Config) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return eris.Wrap(err, "config: encode yaml")
	}
	return eris.Wrap(enc.Close(), "config: flush yaml")
}

func init() {
	rootCmd.AddCommand(configCmd)
}
