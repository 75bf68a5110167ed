package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/DioGolang/GoPlaces/internal/application/usecase/location"
	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/logger"
)

type Place struct {
	ResolveUseCase location.ResolveUseCase
	ReverseUseCase location.ReverseGeocodeUseCase
	logger         logger.Logger
}

func NewPlaceHandler(resolve location.ResolveUseCase, reverse location.ReverseGeocodeUseCase, log logger.Logger) *Place {
	return &Place{
		ResolveUseCase: resolve,
		ReverseUseCase: reverse,
		logger:         log.With(logger.String("component", "place_handler")),
	}
}

// Search answers GET /places/search?q=. A blank query is not an error; it
// yields an empty result list.
func (h *Place) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	res, err := h.ResolveUseCase.ResolveDetailed(r.Context(), query)
	if err != nil {
		// Only the caller's own context ends a resolution early.
		h.logger.Debug(r.Context(), "search abandoned by client", logger.WithError(err))
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, location.NewResolveOutput(res))
}

// Reverse answers GET /places/reverse?lat=&lng=.
func (h *Place) Reverse(w http.ResponseWriter, r *http.Request) {
	c, err := parseCoordinates(r.URL.Query().Get("lat"), r.URL.Query().Get("lng"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	place := h.ReverseUseCase.Lookup(r.Context(), c)
	writeJSON(w, http.StatusOK, location.NewPlaceOutput(place))
}

func parseCoordinates(rawLat, rawLng string) (entity.Coordinates, error) {
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return entity.Coordinates{}, errors.Join(entity.ErrInvalidCoordinates, err)
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return entity.Coordinates{}, errors.Join(entity.ErrInvalidCoordinates, err)
	}
	c := entity.Coordinates{Lat: lat, Lng: lng}
	if err := c.Validate(); err != nil {
		return entity.Coordinates{}, err
	}
	return c, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
