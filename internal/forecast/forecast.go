package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/kjstillabower/openmeteo-stats/internal/client"
	"github.com/kjstillabower/openmeteo-stats/internal/models"
)

// ErrMissingData is returned when the forecast response lacks the daily
// object, any of its required series, or returns empty temperature series.
var ErrMissingData = errors.New("no daily temperature data returned")

// Fetcher retrieves daily max/min 2-meter air temperatures from the
// Open-Meteo forecast endpoint and derives per-day means.
type Fetcher struct {
	client *client.Client
	url    string
	logger *zap.Logger
}

// NewFetcher creates a Fetcher calling the given endpoint URL.
func NewFetcher(c *client.Client, endpointURL string, logger *zap.Logger) *Fetcher {
	return &Fetcher{client: c, url: endpointURL, logger: logger}
}

// forecastResponse models the daily block with explicit optional fields so
// absent series are detected deterministically rather than by truthiness.
type forecastResponse struct {
	Daily *struct {
		Time           []string  `json:"time"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// Fetch retrieves the daily series for loc over the inclusive date range.
// useCache routes the request through the response cache when one is
// configured. Returns client.ErrRequestFailed (wrapped) on HTTP failure and
// ErrMissingData when the response lacks any required series, when either
// temperature series is empty, or when the series lengths disagree.
// MeanC[i] = (MaxC[i]+MinC[i])/2, unrounded; rounding happens only at
// display time.
func (f *Fetcher) Fetch(ctx context.Context, loc models.Location, dates models.DateRange, useCache bool) (models.DailySeries, error) {
	params := url.Values{}
	params.Set("latitude", formatCoord(loc.Latitude))
	params.Set("longitude", formatCoord(loc.Longitude))
	params.Set("start_date", dates.Start)
	params.Set("end_date", dates.End)
	params.Set("daily", "temperature_2m_max,temperature_2m_min")
	params.Set("timezone", "UTC")

	body, err := f.client.Get(ctx, f.url, params, useCache)
	if err != nil {
		return models.DailySeries{}, fmt.Errorf("fetch forecast: %w", err)
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.DailySeries{}, fmt.Errorf("parse forecast response: %w", err)
	}

	d := resp.Daily
	if d == nil || d.Time == nil || d.TemperatureMax == nil || d.TemperatureMin == nil {
		return models.DailySeries{}, fmt.Errorf("%w: missing daily series", ErrMissingData)
	}
	if len(d.TemperatureMax) == 0 || len(d.TemperatureMin) == 0 {
		return models.DailySeries{}, fmt.Errorf("%w: empty temperature series", ErrMissingData)
	}
	if len(d.Time) != len(d.TemperatureMax) || len(d.Time) != len(d.TemperatureMin) {
		return models.DailySeries{}, fmt.Errorf("%w: series length mismatch (time=%d max=%d min=%d)",
			ErrMissingData, len(d.Time), len(d.TemperatureMax), len(d.TemperatureMin))
	}

	series := models.DailySeries{
		Dates: d.Time,
		MaxC:  d.TemperatureMax,
		MinC:  d.TemperatureMin,
		MeanC: make([]float64, len(d.TemperatureMax)),
	}
	for i := range series.MeanC {
		series.MeanC[i] = (d.TemperatureMax[i] + d.TemperatureMin[i]) / 2.0
	}

	f.logger.Debug("forecast fetched",
		zap.Int("days", len(series.MeanC)),
		zap.String("start", dates.Start),
		zap.String("end", dates.End),
	)
	return series, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
