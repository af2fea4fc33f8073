package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/healthplot/internal/controller"
	"github.com/sells-group/healthplot/internal/model"
	"github.com/sells-group/healthplot/internal/render/svgchart"
)

var (
	renderX        string
	renderY        string
	renderOut      string
	renderTitle    string
	renderTooltips bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the scatter plot to SVG",
	Long:  "Loads the dataset, selects the requested X and Y fields and writes the resulting chart as SVG.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "render"))

		if err := cfg.Validate("render"); err != nil {
			return err
		}

		recs, err := loadRecords(ctx, cfg, log)
		if err != nil {
			return err
		}

		engine := svgchart.New(svgchart.Options{PointRadius: cfg.Chart.PointRadius, Title: renderTitle})
		ctrl, err := controller.New(recs, nil, engine, controllerOptions(cfg), log)
		if err != nil {
			return err
		}
		if err := ctrl.Mount(ctx, svgViewport(cfg)); err != nil {
			return err
		}
		if err := applySelection(ctx, ctrl, model.FieldKey(renderX), model.FieldKey(renderY)); err != nil {
			return err
		}

		if err := writeSVG(engine, renderOut, cmd.OutOrStdout()); err != nil {
			return err
		}

		if renderTooltips {
			tips, err := engine.Tooltips()
			if err != nil {
				return err
			}
			for _, tip := range tips {
				fmt.Fprintln(cmd.ErrOrStderr(), tip)
				fmt.Fprintln(cmd.ErrOrStderr())
			}
		}

		sel := ctrl.Selection()
		log.Info("chart rendered",
			zap.String("x", string(sel.X)),
			zap.String("y", string(sel.Y)),
			zap.String("out", renderOut),
			zap.Int("records", len(ctrl.Records())),
		)
		return nil
	},
}

// writeSVG writes the chart to path, or to stdout when path is "-".
func writeSVG(engine *svgchart.Engine, path string, stdout io.Writer) error {
	if path == "-" {
		return engine.Render(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	if err := engine.Render(f); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "render: close %s", path)
}

func init() {
	renderCmd.Flags().StringVar(&renderX, "x", "", "x field: poverty, age or income (default poverty)")
	renderCmd.Flags().StringVar(&renderY, "y", "", "y field: healthcare, smokes or obesity (default healthcare)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "chart.svg", "output file, - for stdout")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "chart title")
	renderCmd.Flags().BoolVar(&renderTooltips, "tooltips", false, "print every state's tooltip to stderr")
	rootCmd.AddCommand(renderCmd)
}
