package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/healthplot/internal/config"
)

var (
	cfg        *config.Config
	dataSource string
)

var rootCmd = &cobra.Command{
	Use:   "healthplot",
	Short: "Interactive scatter plot of state health-survey data",
	Long:  "Loads per-state poverty, age, income, healthcare, smoking and obesity figures and plots any X field against any Y field, as SVG or in the terminal.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		if dataSource != "" {
			cfg.Data.Source = dataSource
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataSource, "data", "", "dataset path or URL (overrides data.source)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
