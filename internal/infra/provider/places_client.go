package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/logger"
	"github.com/DioGolang/GoPlaces/pkg/metrics"
)

const (
	DefaultPlacesBaseURL = "https://places.googleapis.com"
	searchTextPath       = "/v1/places:searchText"
	searchTextFieldMask  = "places.id,places.displayName,places.formattedAddress,places.shortFormattedAddress,places.location,places.types"
	searchTextOperation  = "search_text"
	maxErrorBody         = 1 << 10
)

// Waiter hands out provider call slots.
type Waiter interface {
	Wait(ctx context.Context) error
}

type PlacesConfig struct {
	APIKey       string
	BaseURL      string
	LanguageCode string
	MaxResults   int
}

// PlacesClient issues one rate-limited text search per call. Failures come
// back as errors wrapping entity.ErrProviderUnavailable or
// entity.ErrProviderStatus; the resolver decides what they mean.
type PlacesClient struct {
	cfg        PlacesConfig
	httpClient *http.Client
	limiter    Waiter
	breaker    *gobreaker.CircuitBreaker
	logger     logger.Logger
	metrics    metrics.Metrics
}

func NewPlacesClient(
	cfg PlacesConfig,
	httpClient *http.Client,
	limiter Waiter,
	breaker *gobreaker.CircuitBreaker,
	log logger.Logger,
	m metrics.Metrics,
) *PlacesClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultPlacesBaseURL
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &PlacesClient{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    limiter,
		breaker:    breaker,
		logger:     log.With(logger.String("component", "places_client")),
		metrics:    m,
	}
}

func (c *PlacesClient) Search(ctx context.Context, query string, box entity.BoundingBox, regionHint string) ([]entity.Place, error) {
	start := time.Now()

	// An open breaker rejects before the limiter, so no slot is burnt.
	out, err := c.breaker.Execute(func() (interface{}, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.searchText(ctx, query, box, regionHint)
	})

	status := "ok"
	switch {
	case isBreakerRejection(err):
		status = "rejected"
		err = fmt.Errorf("%w: %w", entity.ErrProviderUnavailable, err)
	case err != nil:
		status = "error"
	}
	c.metrics.ObserveProviderCall(searchTextOperation, status, time.Since(start))

	if err != nil {
		return nil, err
	}
	return out.([]entity.Place), nil
}

func (c *PlacesClient) searchText(ctx context.Context, query string, box entity.BoundingBox, regionHint string) ([]entity.Place, error) {
	body, err := json.Marshal(searchTextRequest{
		TextQuery:      query,
		MaxResultCount: c.cfg.MaxResults,
		RegionCode:     regionHint,
		LanguageCode:   c.cfg.LanguageCode,
		LocationRestriction: locationRestriction{Rectangle: rectangle{
			Low:  latLng{Latitude: box.Low.Lat, Longitude: box.Low.Lng},
			High: latLng{Latitude: box.High.Lat, Longitude: box.High.Lng},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+searchTextPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.cfg.APIKey)
	req.Header.Set("X-Goog-FieldMask", searchTextFieldMask)

	c.logger.Debug(ctx, "calling places text search",
		logger.String("query", query),
		logger.String("region", regionHint),
		logger.Lazy("box", func() any { return formatBox(box) }),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", entity.ErrProviderStatus, describeErrorBody(resp))
	}

	var payload searchTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", entity.ErrProviderStatus, err)
	}

	results := payload.Places
	if len(results) > c.cfg.MaxResults {
		results = results[:c.cfg.MaxResults]
	}
	places := make([]entity.Place, len(results))
	for i, r := range results {
		places[i] = toPlace(r)
	}
	return places, nil
}

// toPlace fills gaps in a provider record with placeholders instead of failing.
func toPlace(r placeResult) entity.Place {
	name := entity.DefaultPlaceName
	if r.DisplayName != nil && strings.TrimSpace(r.DisplayName.Text) != "" {
		name = r.DisplayName.Text
	}
	address := entity.DefaultAddress
	if strings.TrimSpace(r.FormattedAddress) != "" {
		address = r.FormattedAddress
	}
	var coords entity.Coordinates
	if r.Location != nil {
		coords = entity.Coordinates{Lat: r.Location.Latitude, Lng: r.Location.Longitude}
	}
	return entity.NewPlace(entity.PlaceParams{
		ID:               r.ID,
		Name:             name,
		FormattedAddress: address,
		Coordinates:      coords,
		Types:            r.Types,
		Vicinity:         r.ShortFormattedAddress,
	})
}

func describeErrorBody(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var apiErr apiErrorResponse
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Sprintf("status %d %s: %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}

func formatBox(b entity.BoundingBox) string {
	return fmt.Sprintf("%.4f,%.4f;%.4f,%.4f", b.Low.Lat, b.Low.Lng, b.High.Lat, b.High.Lng)
}
