package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carelinkhq/carelink/internal/models"
	"github.com/carelinkhq/carelink/internal/services"
	appErrors "github.com/carelinkhq/carelink/pkg/errors"
	"github.com/carelinkhq/carelink/pkg/response"
)

// WaitlistHandler serves provider pre-registration and invite redemption.
type WaitlistHandler struct {
	waitlist  *services.WaitlistService
	providers *services.ProviderService
}

// NewWaitlistHandler constructs a WaitlistHandler.
func NewWaitlistHandler(waitlist *services.WaitlistService, providers *services.ProviderService) *WaitlistHandler {
	return &WaitlistHandler{waitlist: waitlist, providers: providers}
}

type joinWaitlistRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	FullName     string   `json:"full_name" validate:"required,max=128"`
	Phone        string   `json:"phone" validate:"omitempty,max=32"`
	PriceRange   string   `json:"price_range" validate:"required,max=32"`
	SessionPrice int      `json:"session_price" validate:"omitempty,min=0"`
	Topics       []string `json:"topics" validate:"omitempty,max=20,dive,max=64"`
	Practices    []string `json:"practices" validate:"omitempty,max=20,dive,max=64"`
}

type waitlistEntryDTO struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	PriceRange string     `json:"price_range"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	InvitedAt  *time.Time `json:"invited_at,omitempty"`
	ExpiresAt  *time.Time `json:"invitation_expires_at,omitempty"`
}

type redeemInviteRequest struct {
	Token  string `json:"token" validate:"required"`
	Gender string `json:"gender" validate:"omitempty,max=32"`
}

// POST /api/waitlist
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req joinWaitlistRequest
	if !bindAndValidate(c, &req) {
		return
	}

	entry, err := h.waitlist.Join(requestContext(c), services.JoinRequest{
		Email:           req.Email,
		FullName:        req.FullName,
		Phone:           req.Phone,
		PriceRangeLabel: req.PriceRange,
		SessionPrice:    req.SessionPrice,
		Topics:          req.Topics,
		Practices:       req.Practices,
	})
	if err != nil {
		if errors.Is(err, services.ErrAlreadyWaitlisted) {
			response.Error(c, appErrors.NewConflict("An application is already queued for this email"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, entryDTO(entry))
}

// GET /api/waitlist/invites/:token
func (h *WaitlistHandler) LookupInvite(c *gin.Context) {
	entry, err := h.waitlist.LookupInvite(requestContext(c), c.Param("token"))
	if err != nil {
		response.Error(c, inviteError(err))
		return
	}

	response.Success(c, http.StatusOK, entryDTO(entry))
}

// POST /api/waitlist/redeem
func (h *WaitlistHandler) Redeem(c *gin.Context) {
	var req redeemInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)

	entry, err := h.waitlist.Redeem(ctx, req.Token)
	if err != nil {
		response.Error(c, inviteError(err))
		return
	}

	provider, err := h.providers.CreateFromWaitlist(ctx, entry, req.Gender)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"entry":    entryDTO(entry),
		"provider": gin.H{"id": provider.ID, "status": provider.Status},
	})
}

func entryDTO(entry *models.WaitlistEntry) waitlistEntryDTO {
	return waitlistEntryDTO{
		ID:         entry.ID,
		Email:      entry.Email,
		FullName:   entry.FullName,
		PriceRange: entry.PriceRangeLabel,
		Status:     string(entry.Status),
		CreatedAt:  entry.CreatedAt,
		InvitedAt:  entry.InvitedAt,
		ExpiresAt:  entry.InvitationExpiresAt,
	}
}

func inviteError(err error) error {
	switch {
	case errors.Is(err, services.ErrInviteNotFound):
		return appErrors.ErrNotFound
	case errors.Is(err, services.ErrInviteExpired), errors.Is(err, services.ErrInviteConflict):
		return appErrors.ErrInviteInvalid
	default:
		return err
	}
}
