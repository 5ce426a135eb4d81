package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/carelinkhq/carelink/internal/models"
)

// WaitlistOption customises WaitlistService behaviour.
type WaitlistOption func(*WaitlistService)

// WithWaitlistClock injects a custom clock primarily for testing.
func WithWaitlistClock(clock func() time.Time) WaitlistOption {
	return func(s *WaitlistService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WaitlistService manages intake and redemption of provider applications.
// Promotion from pending to invited is owned by the AdmissionService.
type WaitlistService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewWaitlistService constructs a WaitlistService.
func NewWaitlistService(db *gorm.DB, opts ...WaitlistOption) (*WaitlistService, error) {
	if db == nil {
		return nil, errors.New("waitlist service: db is required")
	}

	service := &WaitlistService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// JoinRequest carries the attributes of a provider pre-registration.
type JoinRequest struct {
	Email           string
	FullName        string
	Phone           string
	PriceRangeLabel string
	SessionPrice    int
	Topics          []string
	Practices       []string
}

// Join queues a new pending application. At most one non-terminal entry may
// exist per email at a time.
func (s *WaitlistService) Join(ctx context.Context, req JoinRequest) (*models.WaitlistEntry, error) {
	email := normaliseEmail(req.Email)
	if email == "" {
		return nil, errors.New("waitlist service: email is required")
	}

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("email = ? AND status IN ?", email, []models.WaitlistStatus{models.WaitlistPending, models.WaitlistInvited}).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("waitlist service: check existing: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyWaitlisted
	}

	entry := models.WaitlistEntry{
		Email:           email,
		FullName:        strings.TrimSpace(req.FullName),
		Phone:           strings.TrimSpace(req.Phone),
		PriceRangeLabel: strings.TrimSpace(req.PriceRangeLabel),
		SessionPrice:    req.SessionPrice,
		Topics:          datatypes.JSONSlice[string](normaliseTags(req.Topics)),
		Practices:       datatypes.JSONSlice[string](normaliseTags(req.Practices)),
		Status:          models.WaitlistPending,
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAlreadyWaitlisted
		}
		return nil, fmt.Errorf("waitlist service: create entry: %w", err)
	}
	return &entry, nil
}

// LookupInvite resolves an invitation token to its invited entry, rejecting
// unknown tokens and elapsed invitation windows.
func (s *WaitlistService) LookupInvite(ctx context.Context, token string) (*models.WaitlistEntry, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInviteNotFound
	}

	var entry models.WaitlistEntry
	if err := s.db.WithContext(ctx).
		Where("token_hash = ? AND status = ?", TokenHash(token), models.WaitlistInvited).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("waitlist service: find invite: %w", err)
	}

	if entry.InvitationExpiresAt == nil || entry.InvitationExpiresAt.Before(s.now()) {
		return nil, ErrInviteExpired
	}
	return &entry, nil
}

// Redeem completes a registration: the invited entry transitions to the
// terminal registered state and its token fields are cleared. The update is
// conditional on the entry still being invited, so a concurrent expiry sweep
// cannot be overwritten.
func (s *WaitlistService) Redeem(ctx context.Context, token string) (*models.WaitlistEntry, error) {
	entry, err := s.LookupInvite(ctx, token)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ? AND status = ?", entry.ID, models.WaitlistInvited).
		Updates(map[string]any{
			"status":                models.WaitlistRegistered,
			"token_hash":            nil,
			"invitation_expires_at": nil,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("waitlist service: mark registered: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrInviteConflict
	}

	entry.Status = models.WaitlistRegistered
	entry.TokenHash = nil
	entry.InvitationExpiresAt = nil
	return entry, nil
}

// FindPending returns pending entries in FIFO order (oldest first).
func (s *WaitlistService) FindPending(ctx context.Context) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.WaitlistPending).
		Order("created_at asc, id asc").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("waitlist service: find pending: %w", err)
	}
	return entries, nil
}

// TokenHash returns the hex-encoded SHA-256 digest stored in place of the
// raw invitation token.
func TokenHash(token string) string {
	checksum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(checksum[:])
}
