// Package geolocation answers one-shot "current position" queries.
package geolocation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"collection-points/internal/common/errors"
	commonhttp "collection-points/internal/common/http"
	"collection-points/internal/models"
)

// HTTPProvider resolves the caller's position from an ip-api style endpoint:
// GET {base}/json -> {"status":"success","lat":..,"lon":..}.
type HTTPProvider struct {
	http *commonhttp.Client
}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{http: commonhttp.NewClient(baseURL, timeout)}
}

type lookupResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

func (p *HTTPProvider) CurrentCoordinate(ctx context.Context) (models.GeoCoordinate, error) {
	var resp lookupResponse
	if err := p.http.GetJSON(ctx, "json", &resp); err != nil {
		return models.GeoCoordinate{}, errors.NewPositionUnavailableError(err)
	}
	if resp.Status != "" && !strings.EqualFold(resp.Status, "success") {
		return models.GeoCoordinate{}, errors.NewPositionUnavailableError(
			fmt.Errorf("lookup status %s: %s", resp.Status, resp.Message))
	}
	if resp.Lat == nil || resp.Lon == nil {
		return models.GeoCoordinate{}, errors.NewPositionUnavailableError(fmt.Errorf("lookup returned no fix"))
	}
	coord := models.GeoCoordinate{Latitude: *resp.Lat, Longitude: *resp.Lon}
	if !IsFinite(coord) {
		return models.GeoCoordinate{}, errors.NewPositionUnavailableError(fmt.Errorf("lookup returned non-finite fix"))
	}
	return coord, nil
}

// StaticProvider always reports the same fix.
type StaticProvider struct {
	Coordinate models.GeoCoordinate
}

func NewStaticProvider(latitude, longitude float64) *StaticProvider {
	return &StaticProvider{Coordinate: models.GeoCoordinate{Latitude: latitude, Longitude: longitude}}
}

func (p *StaticProvider) CurrentCoordinate(ctx context.Context) (models.GeoCoordinate, error) {
	if err := ctx.Err(); err != nil {
		return models.GeoCoordinate{}, errors.NewPositionUnavailableError(err)
	}
	return p.Coordinate, nil
}

// Unavailable is the provider used when no position source is configured.
type Unavailable struct{}

func (Unavailable) CurrentCoordinate(context.Context) (models.GeoCoordinate, error) {
	return models.GeoCoordinate{}, errors.NewPositionUnavailableError(fmt.Errorf("no position source configured"))
}

// IsFinite reports whether both components are finite numbers.
func IsFinite(c models.GeoCoordinate) bool {
	return !math.IsNaN(c.Latitude) && !math.IsInf(c.Latitude, 0) &&
		!math.IsNaN(c.Longitude) && !math.IsInf(c.Longitude, 0)
}
