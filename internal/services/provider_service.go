package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/carelinkhq/carelink/internal/models"
)

// ProviderService reads and manages provider profiles. The matching engine
// only reads active providers; status flips happen through onboarding.
type ProviderService struct {
	db *gorm.DB
}

// NewProviderService constructs a ProviderService.
func NewProviderService(db *gorm.DB) (*ProviderService, error) {
	if db == nil {
		return nil, errors.New("provider service: db is required")
	}
	return &ProviderService{db: db}, nil
}

// ListActive returns every provider currently accepting seekers.
func (s *ProviderService) ListActive(ctx context.Context) ([]models.Provider, error) {
	var providers []models.Provider
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.ProviderActive).
		Order("id asc").
		Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("provider service: list active: %w", err)
	}
	return providers, nil
}

// GetByID fetches a single provider.
func (s *ProviderService) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	var provider models.Provider
	if err := s.db.WithContext(ctx).First(&provider, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("provider service: get: %w", err)
	}
	return &provider, nil
}

// CreateFromWaitlist materialises a pending provider profile from a redeemed
// waitlist entry. The profile stays pending until onboarding activates it.
func (s *ProviderService) CreateFromWaitlist(ctx context.Context, entry *models.WaitlistEntry, gender string) (*models.Provider, error) {
	if entry == nil {
		return nil, errors.New("provider service: entry is required")
	}

	provider := models.Provider{
		FullName:        entry.FullName,
		Email:           entry.Email,
		Status:          models.ProviderPending,
		Gender:          gender,
		SessionPrice:    entry.SessionPrice,
		PriceRangeLabel: entry.PriceRangeLabel,
		Topics:          datatypes.JSONSlice[string](normaliseTags(entry.Topics)),
		Practices:       datatypes.JSONSlice[string](normaliseTags(entry.Practices)),
	}

	if err := s.db.WithContext(ctx).Create(&provider).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("provider service: profile already exists for %s", entry.Email)
		}
		return nil, fmt.Errorf("provider service: create: %w", err)
	}
	return &provider, nil
}

// Activate flips a pending or inactive provider to active.
func (s *ProviderService) Activate(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Provider{}).
		Where("id = ?", id).
		Update("status", models.ProviderActive)
	if result.Error != nil {
		return fmt.Errorf("provider service: activate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProviderNotFound
	}
	return nil
}
