package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carelinkhq/carelink/internal/liquidity"
	"github.com/carelinkhq/carelink/internal/models"
	"github.com/carelinkhq/carelink/pkg/crypto"
	"github.com/carelinkhq/carelink/pkg/logger"
	"github.com/carelinkhq/carelink/pkg/mail"
	"github.com/carelinkhq/carelink/pkg/metrics"
)

const (
	defaultLiquidityTarget = 3
	defaultInviteExpiry    = 7 * 24 * time.Hour
	defaultTokenBytes      = 32
)

// AdmissionOption customises AdmissionService behaviour.
type AdmissionOption func(*AdmissionService)

// WithLiquidityTarget overrides the desired number of active providers per niche.
func WithLiquidityTarget(target int) AdmissionOption {
	return func(s *AdmissionService) {
		if target > 0 {
			s.target = target
		}
	}
}

// WithInviteExpiry overrides the invitation window.
func WithInviteExpiry(d time.Duration) AdmissionOption {
	return func(s *AdmissionService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInviteBaseURL configures the base URL used to build registration links.
func WithInviteBaseURL(url string) AdmissionOption {
	return func(s *AdmissionService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTokenSize adjusts the random token length in bytes.
func WithTokenSize(size int) AdmissionOption {
	return func(s *AdmissionService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithAdmissionClock injects a custom clock primarily for testing.
func WithAdmissionClock(clock func() time.Time) AdmissionOption {
	return func(s *AdmissionService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// AdmissionService runs the periodic liquidity pipeline: it measures per-niche
// supply against the liquidity target, promotes the oldest pending applicant
// of each under-supplied niche, and expires elapsed invitations.
type AdmissionService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	waitlist    *WaitlistService
	providers   *ProviderService
	baseURL     string
	target      int
	expiry      time.Duration
	tokenLength int
	now         func() time.Time
	log         *zap.Logger
}

// NewAdmissionService constructs an AdmissionService. The mailer may be nil,
// in which case invitations are recorded but not delivered.
func NewAdmissionService(db *gorm.DB, mailer mail.Mailer, opts ...AdmissionOption) (*AdmissionService, error) {
	if db == nil {
		return nil, errors.New("admission service: db is required")
	}

	waitlist, err := NewWaitlistService(db)
	if err != nil {
		return nil, err
	}
	providers, err := NewProviderService(db)
	if err != nil {
		return nil, err
	}

	service := &AdmissionService{
		db:          db,
		mailer:      mailer,
		waitlist:    waitlist,
		providers:   providers,
		target:      defaultLiquidityTarget,
		expiry:      defaultInviteExpiry,
		tokenLength: defaultTokenBytes,
		now:         time.Now,
		log:         logger.WithModule("admission"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// PassSummary reports the outcome of one admission pass.
type PassSummary struct {
	NichesEvaluated  int `json:"niches_evaluated"`
	InvitationsSent  int `json:"invitations_sent"`
	DeliveryFailures int `json:"delivery_failures"`
	ConflictsSkipped int `json:"conflicts_skipped"`
}

// SweepSummary reports the outcome of one expiry sweep.
type SweepSummary struct {
	ExpiredCount int64 `json:"expired_count"`
}

// RunAdmissionPass evaluates every niche with pending applicants and promotes
// at most one applicant per under-supplied niche, strictly oldest first.
// Niches are processed independently: a failure in one never aborts the pass.
func (s *AdmissionService) RunAdmissionPass(ctx context.Context) (PassSummary, error) {
	summary := PassSummary{}

	pending, err := s.waitlist.FindPending(ctx)
	if err != nil {
		return summary, err
	}
	if len(pending) == 0 {
		s.log.Info("admission pass: no pending applicants")
		metrics.AdmissionPasses.Inc()
		return summary, nil
	}

	active, err := s.providers.ListActive(ctx)
	if err != nil {
		return summary, err
	}

	niches := liquidity.Aggregate(pending)
	for _, niche := range niches {
		summary.NichesEvaluated++

		supply := liquidity.CountSupply(niche, active)
		if supply >= s.target {
			continue
		}

		oldest, ok := oldestInNiche(niche, pending)
		if !ok {
			// One-off niche with no queued applicant left: a no-op, not an error.
			s.log.Info("admission pass: no pending applicant for niche",
				zap.String("price_range", niche.PriceLabel))
			continue
		}

		if err := s.promote(ctx, oldest, &summary); err != nil {
			s.log.Error("admission pass: promotion failed",
				zap.String("entry_id", oldest.ID),
				zap.Error(err))
			continue
		}
	}

	metrics.AdmissionPasses.Inc()
	s.log.Info("admission pass complete",
		zap.Int("niches_evaluated", summary.NichesEvaluated),
		zap.Int("invitations_sent", summary.InvitationsSent),
		zap.Int("delivery_failures", summary.DeliveryFailures),
	)
	return summary, nil
}

// promote transitions a single entry to invited. The update is a conditional
// write scoped to "status still pending" so that overlapping passes cannot
// double-promote the same applicant.
func (s *AdmissionService) promote(ctx context.Context, entry models.WaitlistEntry, summary *PassSummary) error {
	rawToken, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.expiry)

	result := s.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ? AND status = ?", entry.ID, models.WaitlistPending).
		Updates(map[string]any{
			"status":                models.WaitlistInvited,
			"token_hash":            TokenHash(rawToken),
			"invited_at":            now,
			"invitation_expires_at": expiresAt,
		})
	if result.Error != nil {
		return fmt.Errorf("mark invited: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost the race to a concurrent pass. Normal skip.
		summary.ConflictsSkipped++
		s.log.Info("admission pass: entry promoted concurrently, skipping",
			zap.String("entry_id", entry.ID))
		return nil
	}

	summary.InvitationsSent++
	metrics.InvitationsSent.Inc()

	// Delivery failure never rolls back the transition: the invite lifecycle
	// is driven by its expiry time, not by delivery confirmation.
	if err := s.sendInvitation(ctx, entry, rawToken, expiresAt); err != nil {
		summary.DeliveryFailures++
		metrics.InvitationDeliveryFailures.Inc()
		s.log.Warn("admission pass: invitation delivery failed",
			zap.String("entry_id", entry.ID),
			zap.String("email", entry.Email),
			zap.Error(err))
	}

	return nil
}

// RunExpirySweep transitions every invited entry whose window has elapsed to
// the terminal expired state, clearing its token fields. The operation is
// idempotent and safe to run at any cadence.
func (s *AdmissionService) RunExpirySweep(ctx context.Context) (SweepSummary, error) {
	result := s.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("status = ? AND invitation_expires_at < ?", models.WaitlistInvited, s.now()).
		Updates(map[string]any{
			"status":                models.WaitlistExpired,
			"token_hash":            nil,
			"invitation_expires_at": nil,
		})
	if result.Error != nil {
		return SweepSummary{}, fmt.Errorf("admission service: expiry sweep: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.InvitationsExpired.Add(float64(result.RowsAffected))
	}
	s.log.Info("expiry sweep complete", zap.Int64("expired", result.RowsAffected))
	return SweepSummary{ExpiredCount: result.RowsAffected}, nil
}

func (s *AdmissionService) sendInvitation(ctx context.Context, entry models.WaitlistEntry, token string, expiresAt time.Time) error {
	if s.mailer == nil {
		return nil
	}

	message := mail.Message{
		To:      []string{entry.Email},
		Subject: "Your Carelink registration slot is ready",
		Body:    s.invitationBody(entry, token, expiresAt),
	}
	if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		return err
	}
	return nil
}

func (s *AdmissionService) invitationBody(entry models.WaitlistEntry, token string, expiresAt time.Time) string {
	return fmt.Sprintf(
		"Hello %s,\n\nA slot has opened up for your profile. Complete your registration here:\n%s\n\nThe link is valid until %s.\n",
		entry.FullName,
		s.invitationLink(token),
		expiresAt.Format("January 2, 2006"),
	)
}

func (s *AdmissionService) invitationLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/register?token=%s", s.baseURL, token)
}

// oldestInNiche returns the first entry belonging to the niche. The input is
// already sorted by created_at ascending, so the first hit is the oldest.
func oldestInNiche(niche liquidity.Niche, pending []models.WaitlistEntry) (models.WaitlistEntry, bool) {
	for _, entry := range pending {
		if liquidity.EntryBelongs(niche, entry) {
			return entry, true
		}
	}
	return models.WaitlistEntry{}, false
}
