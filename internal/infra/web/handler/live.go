package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/DioGolang/GoPlaces/internal/application/usecase/location"
	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/clock"
	"github.com/DioGolang/GoPlaces/pkg/logger"
)

const (
	maxLiveMessage  = 4 << 10
	liveWriteWait   = 10 * time.Second
	liveResolveWait = 30 * time.Second

	defaultResolveEvery = time.Second
	defaultResolveBurst = 3

	msgSearch        = "search"
	msgResolve       = "resolve"
	msgPin           = "pin"
	msgSearchResults = "search_results"
	msgPinResult     = "pin_result"
	msgError         = "error"
)

type LiveOptions struct {
	SearchDelay  time.Duration
	ReverseDelay time.Duration
	// CheckOrigin defaults to gorilla's same-origin check.
	CheckOrigin func(r *http.Request) bool
	Clock       clock.Clock
	// ResolveEvery and ResolveBurst cap immediate resolves per session.
	ResolveEvery time.Duration
	ResolveBurst int
}

// Live hosts one location-picking session per WebSocket connection. Clients
// stream keystrokes and map movements; the server answers once input settles.
type Live struct {
	resolve  location.ResolveUseCase
	reverse  location.ReverseGeocodeUseCase
	opts     LiveOptions
	upgrader websocket.Upgrader
	logger   logger.Logger
}

type liveRequest struct {
	Type  string  `json:"type"`
	Query string  `json:"query,omitempty"`
	Lat   float64 `json:"lat,omitempty"`
	Lng   float64 `json:"lng,omitempty"`
}

type liveMessage struct {
	Type   string                 `json:"type"`
	Query  string                 `json:"query,omitempty"`
	Places []location.PlaceOutput `json:"places,omitempty"`
	Place  *location.PlaceOutput  `json:"place,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func NewLiveHandler(resolve location.ResolveUseCase, reverse location.ReverseGeocodeUseCase, log logger.Logger, opts LiveOptions) *Live {
	if opts.ResolveEvery <= 0 {
		opts.ResolveEvery = defaultResolveEvery
	}
	if opts.ResolveBurst <= 0 {
		opts.ResolveBurst = defaultResolveBurst
	}
	return &Live{
		resolve: resolve,
		reverse: reverse,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		logger: log.With(logger.String("component", "live_handler")),
	}
}

func (h *Live) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the client.
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.WithError(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s := &liveSession{conn: conn, logger: h.logger}
	resolveLimit := rate.NewLimiter(rate.Every(h.opts.ResolveEvery), h.opts.ResolveBurst)
	engine := location.NewEngine(ctx, h.resolve, h.reverse, h.logger, location.EngineOptions{
		SearchDelay:  h.opts.SearchDelay,
		ReverseDelay: h.opts.ReverseDelay,
		Clock:        h.opts.Clock,
		OnSearchResults: func(query string, places []entity.Place) {
			s.send(ctx, searchResults(query, places))
		},
		OnReverseResult: func(place entity.Place) {
			out := location.NewPlaceOutput(place)
			s.send(ctx, liveMessage{Type: msgPinResult, Place: &out})
		},
	})
	defer engine.Close()

	h.logger.Info(ctx, "live session opened", logger.String("remote", r.RemoteAddr))
	conn.SetReadLimit(maxLiveMessage)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn(ctx, "live session read failed", logger.WithError(err))
			}
			h.logger.Info(ctx, "live session closed", logger.String("remote", r.RemoteAddr))
			return
		}

		var req liveRequest
		if err := json.Unmarshal(data, &req); err != nil {
			s.send(ctx, liveMessage{Type: msgError, Error: "malformed message"})
			continue
		}

		switch req.Type {
		case msgSearch:
			engine.ScheduleSearch(req.Query)
		case msgResolve:
			if !resolveLimit.Allow() {
				s.send(ctx, liveMessage{Type: msgError, Query: req.Query, Error: "too many resolve requests"})
				continue
			}
			go h.resolveNow(ctx, s, engine, req.Query)
		case msgPin:
			c := entity.Coordinates{Lat: req.Lat, Lng: req.Lng}
			if err := c.Validate(); err != nil {
				s.send(ctx, liveMessage{Type: msgError, Error: err.Error()})
				continue
			}
			engine.ScheduleReverseGeocode(c)
		default:
			s.send(ctx, liveMessage{Type: msgError, Error: "unknown message type " + req.Type})
		}
	}
}

// resolveNow skips the debounce, as when the user submits the field.
func (h *Live) resolveNow(ctx context.Context, s *liveSession, engine *location.Engine, query string) {
	ctx, cancel := context.WithTimeout(ctx, liveResolveWait)
	defer cancel()

	places, err := engine.Resolve(ctx, query)
	if err != nil {
		h.logger.Debug(ctx, "live resolve abandoned", logger.WithError(err))
		return
	}
	s.send(ctx, searchResults(query, places))
}

func searchResults(query string, places []entity.Place) liveMessage {
	out := make([]location.PlaceOutput, len(places))
	for i, p := range places {
		out[i] = location.NewPlaceOutput(p)
	}
	return liveMessage{Type: msgSearchResults, Query: query, Places: out}
}

// liveSession serialises writes; gorilla connections allow one writer.
type liveSession struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	logger logger.Logger
}

func (s *liveSession) send(ctx context.Context, msg liveMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug(ctx, "live session write failed",
			logger.String("type", msg.Type),
			logger.WithError(err),
		)
	}
}
