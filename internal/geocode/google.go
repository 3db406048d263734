// Package geocode resolves free-form addresses to coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/i474232898/activity-ranking/internal/weather"
)

var (
	ErrEmptyAddress    = errors.New("address is empty")
	ErrAddressNotFound = errors.New("no location found for address")
	ErrNotConfigured   = errors.New("geocoding is not configured")
	ErrLookupFailed    = errors.New("geocoding request failed")
)

// Place is a resolved address.
type Place struct {
	FormattedAddress string           `json:"formattedAddress"`
	Location         weather.Location `json:"location"`
}

// GoogleGeocoder resolves addresses with the Google Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder creates a geocoder for the given API key. Extra client
// options (base URL, HTTP client) are passed through to the maps client.
func NewGoogleGeocoder(apiKey string, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}

	return &GoogleGeocoder{client: client}, nil
}

// Geocode returns the best match for address.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (Place, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Place{}, ErrEmptyAddress
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  address,
		Language: "en",
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return Place{}, ErrAddressNotFound
		}
		return Place{}, fmt.Errorf("%w: %q: %v", ErrLookupFailed, address, err)
	}

	if len(results) == 0 {
		return Place{}, ErrAddressNotFound
	}

	best := results[0]
	return Place{
		FormattedAddress: best.FormattedAddress,
		Location: weather.Location{
			Latitude:  best.Geometry.Location.Lat,
			Longitude: best.Geometry.Location.Lng,
		},
	}, nil
}
