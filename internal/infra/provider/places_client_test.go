package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/logger"
	"github.com/DioGolang/GoPlaces/pkg/metrics"
)

type countingWaiter struct {
	calls atomic.Int32
	err   error
}

func (w *countingWaiter) Wait(context.Context) error {
	w.calls.Add(1)
	return w.err
}

var metroBox = entity.BoundingBox{
	Low:  entity.Coordinates{Lat: 6.78, Lng: 79.82},
	High: entity.Coordinates{Lat: 7.05, Lng: 80.05},
}

func newTestMetrics() metrics.Metrics {
	return metrics.NewPrometheusMetrics(prometheus.NewRegistry(), "provider-test")
}

func newTestPlacesClient(t *testing.T, baseURL string, waiter Waiter, failures uint32) *PlacesClient {
	t.Helper()
	m := newTestMetrics()
	breaker := NewBreaker(BreakerConfig{Name: "places-test", ConsecutiveFailures: failures, OpenTimeout: time.Minute}, logger.NewNop(), m)
	return NewPlacesClient(PlacesConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		MaxResults: 5,
	}, &http.Client{Timeout: 2 * time.Second}, waiter, breaker, logger.NewNop(), m)
}

func TestPlacesClient_Search_WireFormat(t *testing.T) {
	var got searchTextRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/places:searchText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.displayName")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places":[
			{"id":"ChIJ1","displayName":{"text":"University of Colombo"},"formattedAddress":"94 Cumaratunga Munidasa Mawatha, Colombo","location":{"latitude":6.9022,"longitude":79.8607},"types":["university"],"shortFormattedAddress":"Colombo 03"},
			{"id":"ChIJ2"}
		]}`))
	}))
	defer server.Close()

	waiter := &countingWaiter{}
	client := newTestPlacesClient(t, server.URL, waiter, 5)

	places, err := client.Search(context.Background(), "university", metroBox, "lk")

	require.NoError(t, err)
	assert.Equal(t, int32(1), waiter.calls.Load())
	assert.Equal(t, "university", got.TextQuery)
	assert.Equal(t, 5, got.MaxResultCount)
	assert.Equal(t, "lk", got.RegionCode)
	assert.Equal(t, "en", got.LanguageCode)
	assert.Equal(t, 6.78, got.LocationRestriction.Rectangle.Low.Latitude)
	assert.Equal(t, 80.05, got.LocationRestriction.Rectangle.High.Longitude)

	require.Len(t, places, 2)
	assert.Equal(t, "University of Colombo", places[0].Name())
	assert.Equal(t, entity.Coordinates{Lat: 6.9022, Lng: 79.8607}, places[0].Coordinates())
	assert.Equal(t, "Colombo 03", places[0].Vicinity())
	assert.Equal(t, []string{"university"}, places[0].Types())

	assert.Equal(t, "ChIJ2", places[1].ID())
	assert.Equal(t, entity.DefaultPlaceName, places[1].Name())
	assert.Equal(t, entity.DefaultAddress, places[1].FormattedAddress())
	assert.Equal(t, entity.Coordinates{}, places[1].Coordinates())
}

func TestPlacesClient_Search_EmptyBodyIsZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	places, err := newTestPlacesClient(t, server.URL, &countingWaiter{}, 5).
		Search(context.Background(), "nowhere", metroBox, "lk")

	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestPlacesClient_Search_CapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"places":[{"id":"1"},{"id":"2"},{"id":"3"},{"id":"4"},{"id":"5"},{"id":"6"},{"id":"7"}]}`))
	}))
	defer server.Close()

	places, err := newTestPlacesClient(t, server.URL, &countingWaiter{}, 5).
		Search(context.Background(), "station", metroBox, "lk")

	require.NoError(t, err)
	assert.Len(t, places, 5)
	assert.Equal(t, "1", places[0].ID())
}

func TestPlacesClient_Search_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "Should wrap provider status on 403",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
			},
			wantErr: entity.ErrProviderStatus,
		},
		{
			name: "Should wrap provider status on malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"places": [`))
			},
			wantErr: entity.ErrProviderStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			places, err := newTestPlacesClient(t, server.URL, &countingWaiter{}, 5).
				Search(context.Background(), "uni", metroBox, "lk")

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, places)
		})
	}
}

func TestPlacesClient_Search_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestPlacesClient(t, url, &countingWaiter{}, 5).
		Search(context.Background(), "uni", metroBox, "lk")

	assert.ErrorIs(t, err, entity.ErrProviderUnavailable)
}

func TestPlacesClient_Search_OpenBreakerSkipsLimiterAndHTTP(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	waiter := &countingWaiter{}
	client := newTestPlacesClient(t, server.URL, waiter, 2)

	for i := 0; i < 2; i++ {
		_, err := client.Search(context.Background(), "uni", metroBox, "lk")
		require.ErrorIs(t, err, entity.ErrProviderStatus)
	}
	_, err := client.Search(context.Background(), "uni", metroBox, "lk")

	assert.ErrorIs(t, err, entity.ErrProviderUnavailable)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, int32(2), waiter.calls.Load())
}

func TestPlacesClient_Search_LimiterErrorStopsCall(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	waiter := &countingWaiter{err: context.Canceled}

	_, err := newTestPlacesClient(t, server.URL, waiter, 5).Search(ctx, "uni", metroBox, "lk")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), hits.Load())
}

func TestPlacesClient_Search_DebugLogsCompactBox(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	log := logger.NewLogger("provider-test", false, logger.WithLevel("debug"), logger.WithOutput(zapcore.AddSync(&buf)))
	m := newTestMetrics()
	breaker := NewBreaker(BreakerConfig{Name: "places-log", ConsecutiveFailures: 5, OpenTimeout: time.Minute}, logger.NewNop(), m)
	client := NewPlacesClient(PlacesConfig{APIKey: "test-key", BaseURL: server.URL, MaxResults: 5},
		&http.Client{Timeout: 2 * time.Second}, &countingWaiter{}, breaker, log, m)

	_, err := client.Search(context.Background(), "university", metroBox, "lk")

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"box":"6.7800,79.8200;7.0500,80.0500"`)
	assert.NotContains(t, buf.String(), "test-key")
}
