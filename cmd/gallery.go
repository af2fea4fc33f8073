package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/healthplot/internal/config"
	"github.com/sells-group/healthplot/internal/controller"
	"github.com/sells-group/healthplot/internal/model"
	"github.com/sells-group/healthplot/internal/render/svgchart"
)

var galleryDir string

// galleryEntry describes one rendered combination in manifest.yaml.
type galleryEntry struct {
	X       model.FieldKey `yaml:"x"`
	Y       model.FieldKey `yaml:"y"`
	File    string         `yaml:"file"`
	XDomain [2]float64     `yaml:"x_domain,flow"`
	YDomain [2]float64     `yaml:"y_domain,flow"`
}

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Render every X/Y field combination",
	Long:  "Renders one SVG per X and Y field pair into a directory, plus a manifest.yaml describing each chart's domains.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "gallery"))

		if galleryDir != "" {
			cfg.Gallery.Dir = galleryDir
		}
		if err := cfg.Validate("gallery"); err != nil {
			return err
		}

		recs, err := loadRecords(ctx, cfg, log)
		if err != nil {
			return err
		}

		entries, err := renderGallery(ctx, cfg, recs, model.DefaultCatalog(), log)
		if err != nil {
			return err
		}

		log.Info("gallery complete", zap.Int("charts", len(entries)), zap.String("dir", cfg.Gallery.Dir))
		return nil
	},
}

// renderGallery draws all combinations with bounded concurrency, each on its
// own controller and engine, and writes the manifest.
func renderGallery(ctx context.Context, c *config.Config, recs []model.Record, cat *model.Catalog, log *zap.Logger) ([]galleryEntry, error) {
	if err := os.MkdirAll(c.Gallery.Dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "gallery: create dir")
	}

	xs, ys := cat.ForAxis(model.AxisX), cat.ForAxis(model.AxisY)
	entries := make([]galleryEntry, len(xs)*len(ys))

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Gallery.Concurrency)

	for i, xf := range xs {
		for j, yf := range ys {
			idx := i*len(ys) + j
			g.Go(func() error {
				e, err := renderCombination(gctx, c, recs, cat, xf.Key, yf.Key, log)
				if err != nil {
					return eris.Wrapf(err, "gallery: %s vs %s", xf.Key, yf.Key)
				}
				entries[idx] = e

				mu.Lock()
				done++
				log.Debug("chart written", zap.String("file", e.File), zap.Int("done", done))
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data, err := yaml.Marshal(map[string]any{"source": c.Data.Source, "charts": entries})
	if err != nil {
		return nil, eris.Wrap(err, "gallery: marshal manifest")
	}
	if err := os.WriteFile(filepath.Join(c.Gallery.Dir, "manifest.yaml"), data, 0o644); err != nil {
		return nil, eris.Wrap(err, "gallery: write manifest")
	}
	return entries, nil
}

func renderCombination(ctx context.Context, c *config.Config, recs []model.Record, cat *model.Catalog, x, y model.FieldKey, log *zap.Logger) (galleryEntry, error) {
	engine := svgchart.New(svgchart.Options{
		PointRadius: c.Chart.PointRadius,
		Title:       fmt.Sprintf("%s vs %s", cat.ByKey(y).DisplayLabel, cat.ByKey(x).DisplayLabel),
	})
	opts := controllerOptions(c)
	opts.Transition = 0
	ctrl, err := controller.New(recs, cat, engine, opts, log)
	if err != nil {
		return galleryEntry{}, err
	}
	if err := ctrl.Mount(ctx, svgViewport(c)); err != nil {
		return galleryEntry{}, err
	}
	if err := applySelection(ctx, ctrl, x, y); err != nil {
		return galleryEntry{}, err
	}

	name := fmt.Sprintf("%s_%s.svg", x, y)
	if err := writeSVG(engine, filepath.Join(c.Gallery.Dir, name), nil); err != nil {
		return galleryEntry{}, err
	}

	e := galleryEntry{X: x, Y: y, File: name}
	e.XDomain[0], e.XDomain[1] = ctrl.Scale(model.AxisX).Domain()
	e.YDomain[0], e.YDomain[1] = ctrl.Scale(model.AxisY).Domain()
	return e, nil
}

func init() {
	galleryCmd.Flags().StringVar(&galleryDir, "dir", "", "output directory (overrides gallery.dir)")
	rootCmd.AddCommand(galleryCmd)
}
