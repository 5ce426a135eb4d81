package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carelinkhq/carelink/internal/matching"
	"github.com/carelinkhq/carelink/internal/services"
	"github.com/carelinkhq/carelink/pkg/response"
)

// MatchHandler serves match selection requests.
type MatchHandler struct {
	matches *services.MatchService
}

// NewMatchHandler constructs a MatchHandler.
func NewMatchHandler(matches *services.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

type selectMatchesRequest struct {
	PriceRange string   `json:"price_range" validate:"omitempty,max=32"`
	Topics     []string `json:"topics" validate:"omitempty,max=20,dive,max=64"`
	Approaches []string `json:"approaches" validate:"omitempty,max=20,dive,max=64"`
	Gender     string   `json:"gender" validate:"omitempty,max=32"`
	Practices  []string `json:"practices" validate:"omitempty,max=20,dive,max=64"`
}

type matchDTO struct {
	ProviderID   string   `json:"provider_id"`
	FullName     string   `json:"full_name"`
	SessionPrice int      `json:"session_price"`
	Score        int      `json:"score"`
	Criteria     []string `json:"criteria"`
}

type selectMatchesResponse struct {
	Tier    string     `json:"tier"`
	Matches []matchDTO `json:"matches"`
	Note    string     `json:"note,omitempty"`
}

// POST /api/matches
func (h *MatchHandler) Select(c *gin.Context) {
	var req selectMatchesRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pref := matching.Preference{
		PriceRange: req.PriceRange,
		Topics:     req.Topics,
		Approaches: req.Approaches,
		Gender:     req.Gender,
		Practices:  req.Practices,
	}

	result, err := h.matches.SelectMatches(requestContext(c), pref)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := selectMatchesResponse{
		Tier:    string(result.Tier),
		Matches: make([]matchDTO, 0, len(result.Matches)),
		Note:    result.Note,
	}
	for _, match := range result.Matches {
		payload.Matches = append(payload.Matches, matchDTO{
			ProviderID:   match.Provider.ID,
			FullName:     match.Provider.FullName,
			SessionPrice: match.Provider.SessionPrice,
			Score:        match.Score,
			Criteria:     match.Criteria,
		})
	}

	response.Success(c, http.StatusOK, payload)
}
