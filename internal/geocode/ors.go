// server/internal/geocode/ors.go
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shipment-tracking-api-server/config"
	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/metrics"
	"shipment-tracking-api-server/internal/models"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder resolves addresses with OpenRouteService /geocode/search.
// Each call makes a single request; callers bound it with their context.
type ORSGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	country string
}

func NewORSGeocoder(cfg config.GeocodingConfig) *ORSGeocoder {
	return &ORSGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		country: cfg.Country,
	}
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrGeocodeUnavailable, fmt.Sprintf(format, args...))
}

func (o *ORSGeocoder) Resolve(ctx context.Context, address string) (coords models.Coordinates, err error) {
	start := time.Now()
	defer func() {
		metrics.GeocodeDuration.Observe(time.Since(start).Seconds())
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.GeocodeRequestsTotal.WithLabelValues(result).Inc()
	}()

	if o.apiKey == "" {
		return coords, unavailable("no api key configured")
	}
	norm := Normalize(address)
	if norm == "" {
		return coords, unavailable("empty address")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/geocode/search", nil)
	if err != nil {
		return coords, unavailable("create request: %v", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("text", norm)
	q.Set("size", "1")
	if o.country != "" {
		q.Set("boundary.country", o.country)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := o.session.Do(req)
	if err != nil {
		return coords, fmt.Errorf("%w: %w", apperrors.ErrGeocodeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return coords, unavailable("unexpected status: %d", resp.StatusCode)
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return coords, unavailable("decode response: %v", err)
	}
	if len(decoded.Features) == 0 {
		return coords, unavailable("no results for %q", norm)
	}

	point := decoded.Features[0].Geometry.Coordinates
	if len(point) != 2 {
		return coords, unavailable("invalid coordinate format for %q", norm)
	}

	// ORS answers [lon, lat]
	return models.Coordinates{Lat: point[1], Lng: point[0]}, nil
}
