package service

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// Filterer switches the active title filter.
type Filterer interface {
	SetFilter(ctx context.Context, filter string) (SyncResult, error)
}

type searchService struct {
	filterer  Filterer
	debouncer *Debouncer
	logger    *logger.Logger
}

// NewSearchService debounces type-ahead input before it becomes a filter
// change.
func NewSearchService(filterer Filterer, quietPeriod time.Duration, logger *logger.Logger) SearchService {
	return &searchService{
		filterer:  filterer,
		debouncer: NewDebouncer(quietPeriod),
		logger:    logger,
	}
}

func (s *searchService) Input(ctx context.Context, text string) {
	s.debouncer.Call(ctx, func(ctx context.Context) {
		_, err := s.filterer.SetFilter(ctx, text)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn().Err(err).Str("func", "searchService.Input").Str("filter", text).Msg("search sync failed")
		}
	})
}

func (s *searchService) Stop() {
	s.debouncer.Stop()
}
