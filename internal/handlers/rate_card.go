package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/proserv/engagement-api/internal/dto"
	apperrors "github.com/proserv/engagement-api/internal/errors"
	"github.com/proserv/engagement-api/internal/middleware"
	"github.com/proserv/engagement-api/internal/services"
)

// RateCardHandler serves the rate card endpoints.
type RateCardHandler struct {
	rateCards *services.RateCardService
}

// NewRateCardHandler creates a new RateCardHandler.
func NewRateCardHandler(rateCards *services.RateCardService) *RateCardHandler {
	return &RateCardHandler{rateCards: rateCards}
}

// ListRateCards returns every card in the caller's organization together with
// the active role catalog. Listing also backfills missing entries first.
func (h *RateCardHandler) ListRateCards(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	cards, roles, err := h.rateCards.ListRateCards(caller)
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RateCardListResponse{
		Data:  dto.ToRateCardDTOs(cards),
		Roles: dto.ToRoleRefDTOs(roles),
	})
}

// GetRateCard returns a single rate card with entries.
func (h *RateCardHandler) GetRateCard(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	card, err := h.rateCards.GetRateCard(caller, c.Param("id"))
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRateCardDTO(*card))
}

// CreateRateCard creates a card with one entry per active role.
func (h *RateCardHandler) CreateRateCard(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req dto.CreateRateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}

	validFrom, _, err := parseOptionalDate(req.ValidFrom)
	if err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}
	validTo, _, err := parseOptionalDate(req.ValidTo)
	if err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}

	card, err := h.rateCards.CreateRateCard(caller, services.CreateRateCardInput{
		Name:      req.Name,
		Currency:  req.Currency,
		ValidFrom: validFrom,
		ValidTo:   validTo,
		Entries:   toEntryOverrides(req.Entries),
	})
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRateCardDTO(*card))
}

// UpdateRateCard applies a partial update. A currency change rewrites every
// entry for the new currency.
func (h *RateCardHandler) UpdateRateCard(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req dto.UpdateRateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}

	validFrom, validFromSet, err := parseOptionalDate(req.ValidFrom)
	if err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}
	validTo, validToSet, err := parseOptionalDate(req.ValidTo)
	if err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}

	card, err := h.rateCards.UpdateRateCard(caller, c.Param("id"), services.UpdateRateCardInput{
		Name:         req.Name,
		Currency:     req.Currency,
		ValidFrom:    validFrom,
		ValidFromSet: validFromSet,
		ValidTo:      validTo,
		ValidToSet:   validToSet,
		Entries:      toEntryOverrides(req.Entries),
	})
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRateCardDTO(*card))
}

// parseOptionalDate maps the three wire states of an optional date field:
// absent leaves the value unchanged, empty string clears it, anything else
// must parse.
func parseOptionalDate(raw *string) (*time.Time, bool, error) {
	if raw == nil {
		return nil, false, nil
	}
	if *raw == "" {
		return nil, true, nil
	}
	parsed, err := dto.ParseDate(*raw)
	if err != nil {
		return nil, false, err
	}
	return &parsed, true, nil
}

func toEntryOverrides(inputs []dto.RateCardEntryInput) []services.EntryOverride {
	overrides := make([]services.EntryOverride, len(inputs))
	for i, input := range inputs {
		overrides[i] = services.EntryOverride{
			RoleID:   input.RoleID,
			BillRate: decimal.NewFromFloat(input.BillRate),
			CostRate: decimal.NewFromFloat(input.CostRate),
		}
	}
	return overrides
}
