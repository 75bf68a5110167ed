package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/DioGolang/GoPlaces/internal/application/port/outbound"
	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/logger"
	"github.com/DioGolang/GoPlaces/pkg/metrics"
)

const (
	DefaultGeocodingBaseURL = "https://maps.googleapis.com"
	geocodePath             = "/maps/api/geocode/json"
	reverseGeocodeOperation = "reverse_geocode"
)

type GeocodingConfig struct {
	APIKey       string
	BaseURL      string
	LanguageCode string
	RegionCode   string
}

// GeocodingClient resolves coordinates to address parts with the Google
// Geocoding API.
type GeocodingClient struct {
	cfg        GeocodingConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     logger.Logger
	metrics    metrics.Metrics
}

func NewGeocodingClient(
	cfg GeocodingConfig,
	httpClient *http.Client,
	breaker *gobreaker.CircuitBreaker,
	log logger.Logger,
	m metrics.Metrics,
) *GeocodingClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeocodingBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &GeocodingClient{
		cfg:        cfg,
		httpClient: httpClient,
		breaker:    breaker,
		logger:     log.With(logger.String("component", "geocoding_client")),
		metrics:    m,
	}
}

func (g *GeocodingClient) ReverseGeocode(ctx context.Context, lat, lng float64) (outbound.Address, error) {
	start := time.Now()
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.reverse(ctx, lat, lng)
	})

	status := "ok"
	switch {
	case isBreakerRejection(err):
		status = "rejected"
		err = fmt.Errorf("%w: %w", entity.ErrProviderUnavailable, err)
	case err != nil:
		status = "error"
	}
	g.metrics.ObserveProviderCall(reverseGeocodeOperation, status, time.Since(start))

	if err != nil {
		return outbound.Address{}, err
	}
	return out.(outbound.Address), nil
}

func (g *GeocodingClient) reverse(ctx context.Context, lat, lng float64) (outbound.Address, error) {
	params := url.Values{}
	params.Set("latlng", strconv.FormatFloat(lat, 'f', 6, 64)+","+strconv.FormatFloat(lng, 'f', 6, 64))
	params.Set("key", g.cfg.APIKey)
	if g.cfg.LanguageCode != "" {
		params.Set("language", g.cfg.LanguageCode)
	}
	if g.cfg.RegionCode != "" {
		params.Set("region", g.cfg.RegionCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+geocodePath+"?"+params.Encode(), nil)
	if err != nil {
		return outbound.Address{}, fmt.Errorf("building geocode request: %w", err)
	}

	g.logger.Debug(ctx, "calling reverse geocode",
		logger.Float64("lat", lat),
		logger.Float64("lng", lng),
	)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return outbound.Address{}, fmt.Errorf("%w: %w", entity.ErrProviderUnavailable, redactKey(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return outbound.Address{}, fmt.Errorf("%w: %s", entity.ErrProviderStatus, describeErrorBody(resp))
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return outbound.Address{}, fmt.Errorf("%w: decoding response: %w", entity.ErrProviderStatus, err)
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return outbound.Address{}, entity.ErrGeocodeNoResult
	default:
		return outbound.Address{}, fmt.Errorf("%w: %s %s", entity.ErrProviderStatus, payload.Status, payload.ErrorMessage)
	}
	if len(payload.Results) == 0 {
		return outbound.Address{}, entity.ErrGeocodeNoResult
	}

	return addressFrom(payload.Results[0].AddressComponents), nil
}

// addressFrom picks the nearest named feature, the street, the locality and
// the country out of the result's components.
func addressFrom(components []addressComponent) outbound.Address {
	var addr outbound.Address
	var number, route string
	for _, c := range components {
		switch {
		case addr.Name == "" && hasAnyType(c, "premise", "point_of_interest", "establishment"):
			addr.Name = c.LongName
		case hasAnyType(c, "street_number"):
			number = c.LongName
		case hasAnyType(c, "route"):
			route = c.LongName
		case addr.City == "" && hasAnyType(c, "locality", "postal_town"):
			addr.City = c.LongName
		case hasAnyType(c, "country"):
			addr.Country = c.LongName
		}
	}
	addr.Street = strings.TrimSpace(number + " " + route)
	return addr
}

func hasAnyType(c addressComponent, types ...string) bool {
	for _, t := range types {
		if slices.Contains(c.Types, t) {
			return true
		}
	}
	return false
}

// redactKey masks the key query parameter in transport errors, which carry
// the full request URL into every log line they reach.
func redactKey(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	redacted := "[redacted url]"
	if u, perr := url.Parse(ue.URL); perr == nil {
		q := u.Query()
		if q.Has("key") {
			q.Set("key", "REDACTED")
			u.RawQuery = q.Encode()
		}
		redacted = u.String()
	}
	return &url.Error{Op: ue.Op, URL: redacted, Err: ue.Err}
}
