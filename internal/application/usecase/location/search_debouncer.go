package location

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/clock"
	"github.com/DioGolang/GoPlaces/pkg/logger"
)

const (
	DefaultSearchDelay = 3 * time.Second
	minQueryLength     = 2
)

type SearchResultsFunc func(query string, places []entity.Place)

// SearchDebouncer collapses a burst of keystrokes into one resolve call,
// fired a fixed delay after the last keystroke.
type SearchDebouncer struct {
	ctx       context.Context
	resolver  ResolveUseCase
	onResults SearchResultsFunc
	logger    logger.Logger
	debounce  *debouncer
}

func NewSearchDebouncer(
	ctx context.Context,
	resolver ResolveUseCase,
	clk clock.Clock,
	delay time.Duration,
	onResults SearchResultsFunc,
	log logger.Logger,
) *SearchDebouncer {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &SearchDebouncer{
		ctx:       ctx,
		resolver:  resolver,
		onResults: onResults,
		logger:    log.With(logger.String("component", "search_debouncer")),
		debounce:  newDebouncer(clk, delay),
	}
}

// OnKeystroke takes the full current contents of the search field.
func (s *SearchDebouncer) OnKeystroke(query string) {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < minQueryLength {
		s.debounce.cancel()
		if trimmed == "" {
			s.emit(query, []entity.Place{})
		}
		return
	}

	s.debounce.schedule(func(gen uint64) {
		places, err := s.resolver.Resolve(s.ctx, query)
		if err != nil {
			s.logger.Debug(s.ctx, "debounced search abandoned", logger.WithError(err))
			return
		}
		if !s.debounce.current(gen) {
			s.logger.Debug(s.ctx, "discarding stale search results", logger.String("query", query))
			return
		}
		s.emit(query, places)
	})
}

func (s *SearchDebouncer) Cancel() {
	s.debounce.cancel()
}

func (s *SearchDebouncer) emit(query string, places []entity.Place) {
	if s.onResults != nil {
		s.onResults(query, places)
	}
}
