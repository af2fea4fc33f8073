package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/healthplot/internal/controller"
	"github.com/sells-group/healthplot/internal/model"
	"github.com/sells-group/healthplot/internal/render/termchart"
	"github.com/sells-group/healthplot/internal/session"
	"github.com/sells-group/healthplot/internal/viewport"
)

var exploreFrames int

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Explore the dataset interactively in the terminal",
	Long: `Draws the scatter plot in the terminal.
Keys: 1-3 select the X field, 4-6 select the Y field, arrows or h/l move
between states, q or Esc quits. Resizing the terminal redraws the chart
with the default fields.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "explore"))

		if err := cfg.Validate("explore"); err != nil {
			return err
		}

		recs, err := loadRecords(ctx, cfg, log)
		if err != nil {
			return err
		}

		term, err := session.OpenTerminal()
		if err != nil {
			return err
		}
		defer term.Close() //nolint:errcheck

		// stderr shares the screen with the chart
		quiet := log.WithOptions(zap.IncreaseLevel(zapcore.ErrorLevel))

		catalog := model.DefaultCatalog()
		engine := termchart.New(os.Stdout, termchart.Options{Frames: exploreFrames})
		ctrl, err := controller.New(recs, catalog, engine, controllerOptions(cfg), quiet)
		if err != nil {
			return err
		}

		s := session.New(ctrl, catalog, engine, session.Options{
			In:     os.Stdin,
			Size:   term.Size(viewport.TerminalMargin),
			Resize: term.Resize(),
		}, quiet)

		if err := s.Run(ctx); err != nil {
			return err
		}
		_ = engine.Teardown()
		log.Info("explore finished", zap.String("session_id", s.ID))
		return nil
	},
}

func init() {
	exploreCmd.Flags().IntVar(&exploreFrames, "frames", 12, "animation frames per axis transition")
	rootCmd.AddCommand(exploreCmd)
}
