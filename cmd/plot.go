package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/healthplot/internal/config"
	"github.com/sells-group/healthplot/internal/controller"
	"github.com/sells-group/healthplot/internal/dataset"
	"github.com/sells-group/healthplot/internal/fetcher"
	"github.com/sells-group/healthplot/internal/model"
	"github.com/sells-group/healthplot/internal/scale"
	"github.com/sells-group/healthplot/internal/viewport"
)

func newLoader(c *config.Config, log *zap.Logger) (*dataset.Loader, error) {
	format, err := dataset.ParseFormat(c.Data.Format)
	if err != nil {
		return nil, err
	}
	return &dataset.Loader{
		Fetchers: fetcher.Set{
			HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
				UserAgent:  c.HTTP.UserAgent,
				Timeout:    time.Duration(c.HTTP.TimeoutSecs) * time.Second,
				MaxRetries: c.HTTP.MaxRetries,
				RatePerSec: c.HTTP.RatePerSec,
			}),
			FTP: fetcher.NewFTPFetcher(fetcher.FTPOptions{
				Timeout: time.Duration(c.FTP.TimeoutSecs) * time.Second,
			}),
			File: fetcher.NewFileFetcher(),
		},
		Format: format,
		Sheet:  c.Data.Sheet,
		Log:    log,
	}, nil
}

func loadRecords(ctx context.Context, c *config.Config, log *zap.Logger) ([]model.Record, error) {
	loader, err := newLoader(c, log)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, c.Data.Source)
}

func controllerOptions(c *config.Config) controller.Options {
	return controller.Options{
		Padding:    scale.Padding{Low: c.Chart.PaddingLow, High: c.Chart.PaddingHigh},
		Transition: c.Chart.Transition(),
	}
}

func svgViewport(c *config.Config) viewport.Viewport {
	m := c.Chart.Margin
	return viewport.New(c.Chart.Width, c.Chart.Height, viewport.Margin{
		Top:    m.Top,
		Right:  m.Right,
		Bottom: m.Bottom,
		Left:   m.Left,
	})
}

// applySelection clicks the requested fields; empty keys keep the defaults.
func applySelection(ctx context.Context, ctrl *controller.Controller, x, y model.FieldKey) error {
	if x != "" {
		if _, err := ctrl.Click(ctx, model.AxisX, x); err != nil {
			return err
		}
	}
	if y != "" {
		if _, err := ctrl.Click(ctx, model.AxisY, y); err != nil {
			return err
		}
	}
	return nil
}
