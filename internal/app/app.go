// Package app runs the tool's linear pipeline: resolve a location, fetch the
// daily series, reduce it and render the report.
package app

import (
	"context"
	"fmt"
	"io"

	input "github.com/tcnksm/go-input"
	"go.uber.org/zap"

	"github.com/kjstillabower/openmeteo-stats/internal/models"
	"github.com/kjstillabower/openmeteo-stats/internal/stats"
	"github.com/kjstillabower/openmeteo-stats/internal/validation"
)

// Exit codes of the command-line surface.
const (
	ExitOK          = 0 // success
	ExitNoData      = 1 // upstream returned no data points (also generic failures)
	ExitFetchFailed = 2 // weather fetch failed
)

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, city string) (models.Location, error)
}

// Fetcher retrieves the daily temperature series for a location and range.
type Fetcher interface {
	Fetch(ctx context.Context, loc models.Location, dates models.DateRange, useCache bool) (models.DailySeries, error)
}

// Options are the parsed command-line inputs. Latitude/Longitude are nil when
// the corresponding flag was not supplied.
type Options struct {
	Latitude  *float64
	Longitude *float64
	City      string
	Start     string
	End       string
	NoCache   bool
}

// App wires the pipeline. Stdout carries the report, Stderr carries errors;
// Stdin is only read when an interactive city prompt is needed.
type App struct {
	Geocoder Geocoder
	Fetcher  Fetcher
	Logger   *zap.Logger
	Stdout   io.Writer
	Stderr   io.Writer
	Stdin    io.Reader
}

// Run executes the pipeline and returns the process exit code. States run in
// order with no branching back: validate, resolve location, fetch, empty
// check, summarize and report.
func (a *App) Run(ctx context.Context, opts Options) int {
	if err := validation.ValidateDateRange(opts.Start, opts.End); err != nil {
		fmt.Fprintln(a.Stderr, "Error:", err)
		return ExitNoData
	}

	loc, err := a.resolveLocation(ctx, opts)
	if err != nil {
		// Pre-fetch failures terminate with the generic abnormal status.
		fmt.Fprintln(a.Stderr, "Error:", err)
		return ExitNoData
	}

	dates := models.DateRange{Start: opts.Start, End: opts.End}
	series, err := a.Fetcher.Fetch(ctx, loc, dates, !opts.NoCache)
	if err != nil {
		fmt.Fprintln(a.Stderr, "Error fetching temperatures:", err)
		return ExitFetchFailed
	}

	if series.Empty() {
		fmt.Fprintln(a.Stdout, "No temperature points returned.")
		return ExitNoData
	}

	summary := stats.Summarize(series.MeanC)
	a.writeReport(series, summary)
	return ExitOK
}

// resolveLocation applies the strict priority chain: city, then explicit
// coordinates, then an interactive prompt. Coordinates are ignored whenever
// a city is present, even if both were supplied.
func (a *App) resolveLocation(ctx context.Context, opts Options) (models.Location, error) {
	if opts.City != "" {
		city, err := validation.ValidateCity(opts.City)
		if err != nil {
			return models.Location{}, err
		}
		return a.Geocoder.Resolve(ctx, city)
	}

	if opts.Latitude != nil && opts.Longitude != nil {
		if err := validation.ValidateCoordinates(*opts.Latitude, *opts.Longitude); err != nil {
			return models.Location{}, err
		}
		return models.Location{Latitude: *opts.Latitude, Longitude: *opts.Longitude}, nil
	}

	city, err := a.promptCity()
	if err != nil {
		return models.Location{}, err
	}
	return a.Geocoder.Resolve(ctx, city)
}

// promptCity asks for a city name on the terminal.
func (a *App) promptCity() (string, error) {
	ui := &input.UI{
		Writer: a.Stdout,
		Reader: a.Stdin,
	}
	answer, err := ui.Ask("Enter a city name (e.g. London)", &input.Options{
		Required: true,
		Loop:     true,
		ValidateFunc: func(s string) error {
			_, err := validation.ValidateCity(s)
			return err
		},
	})
	if err != nil {
		return "", fmt.Errorf("read city name: %w", err)
	}
	city, err := validation.ValidateCity(answer)
	if err != nil {
		return "", err
	}
	a.Logger.Debug("city entered interactively", zap.String("city", city))
	return city, nil
}
