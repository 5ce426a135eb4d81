package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carelinkhq/carelink/internal/services"
	"github.com/carelinkhq/carelink/pkg/response"
)

// LiquidityHandler exposes on-demand triggers for the background jobs.
type LiquidityHandler struct {
	admissions *services.AdmissionService
}

// NewLiquidityHandler constructs a LiquidityHandler.
func NewLiquidityHandler(admissions *services.AdmissionService) *LiquidityHandler {
	return &LiquidityHandler{admissions: admissions}
}

// POST /api/admin/liquidity/admission-pass
func (h *LiquidityHandler) RunAdmissionPass(c *gin.Context) {
	summary, err := h.admissions.RunAdmissionPass(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// POST /api/admin/liquidity/expiry-sweep
func (h *LiquidityHandler) RunExpirySweep(c *gin.Context) {
	summary, err := h.admissions.RunExpirySweep(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}
