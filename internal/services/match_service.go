package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carelinkhq/carelink/internal/matching"
	"github.com/carelinkhq/carelink/pkg/logger"
	"github.com/carelinkhq/carelink/pkg/metrics"
)

// MatchService ranks active providers against a seeker preference vector.
// Selection is read-only and safe to run concurrently for different seekers.
type MatchService struct {
	providers *ProviderService
	log       *zap.Logger
}

// NewMatchService constructs a MatchService.
func NewMatchService(db *gorm.DB) (*MatchService, error) {
	if db == nil {
		return nil, errors.New("match service: db is required")
	}

	providers, err := NewProviderService(db)
	if err != nil {
		return nil, err
	}

	return &MatchService{
		providers: providers,
		log:       logger.WithModule("matching"),
	}, nil
}

// SelectMatches scores the full active-provider set against the preference
// and returns the ranked, tiered result. An empty preference is valid input;
// absence of matches yields the none tier, never an error.
func (s *MatchService) SelectMatches(ctx context.Context, pref matching.Preference) (matching.Result, error) {
	active, err := s.providers.ListActive(ctx)
	if err != nil {
		return matching.Result{}, err
	}

	result := matching.Select(pref, active)
	metrics.MatchRequests.WithLabelValues(string(result.Tier)).Inc()

	s.log.Debug("match selection",
		zap.Int("candidates", len(active)),
		zap.String("tier", string(result.Tier)),
		zap.Int("matches", len(result.Matches)),
	)

	return result, nil
}
