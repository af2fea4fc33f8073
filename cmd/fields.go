package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/healthplot/internal/model"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the plottable fields",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("fields"); err != nil {
			return err
		}
		return formatFields(cmd.OutOrStdout(), model.DefaultCatalog())
	},
}

func formatFields(out io.Writer, cat *model.Catalog) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tAXIS\tLABEL\tTOOLTIP\tDEFAULT")
	for _, a := range model.Axes {
		for _, f := range cat.ForAxis(a) {
			def := ""
			if f.Default {
				def = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%q\t%s\n", f.Key, f.Axis, f.DisplayLabel, f.TooltipLabel, def)
		}
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
