package geocode

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

// ErrNoResults is returned when the geocoding endpoint finds no match for
// the requested city name.
var ErrNoResults = errors.New("no geocoding results")

// Geocoder resolves free-text city names to coordinates via the Open-Meteo
// geocoding endpoint. The upstream ranking is trusted as-is: the first match
// wins, no disambiguation or fuzzy matching is attempted.
type Geocoder struct {
	client *client.Client
	url    string
	logger *zap.Logger
}

// NewGeocoder creates a Geocoder calling the given endpoint URL.
func NewGeocoder(c *client.Client, endpointURL string, logger *zap.Logger) *Geocoder {
	return &Geocoder{client: c, url: endpointURL, logger: logger}
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
		Country   string  `json:"country"`
	} `json:"results"`
}

// Resolve looks up city and returns the highest-ranked match's coordinates.
// Returns ErrNoResults when the response contains zero matches and
// client.ErrRequestFailed (wrapped) on HTTP failure. Geocoding requests are
// never cached: the lookup is cheap and city rankings can change.
func (g *Geocoder) Resolve(ctx context.Context, city string) (models.Location, error) {
	params := url.Values{}
	params.Set("name", city)
	params.Set("count", strconv.Itoa(1))

	body, err := g.client.Get(ctx, g.url, params, false)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocode %q: %w", city, err)
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.Location{}, fmt.Errorf("parse geocoding response: %w", err)
	}

	if len(resp.Results) == 0 {
		return models.Location{}, fmt.Errorf("%w for city: %s", ErrNoResults, city)
	}

	first := resp.Results[0]
	g.logger.Debug("geocoded city",
		zap.String("city", city),
		zap.String("match", first.Name),
		zap.String("country", first.Country),
		zap.Float64("lat", first.Latitude),
		zap.Float64("lon", first.Longitude),
	)
	return models.Location{Latitude: first.Latitude, Longitude: first.Longitude}, nil
}
