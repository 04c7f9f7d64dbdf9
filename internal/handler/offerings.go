package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pliva-retreat/booking-api/internal/model"
	"github.com/pliva-retreat/booking-api/internal/service"
)

// OfferingHandler serves the public offering catalog.
type OfferingHandler struct {
	Catalog *service.Catalog
	Timeout time.Duration
	Log     *zap.Logger
}

func NewOfferingHandler(catalog *service.Catalog, timeout time.Duration, log *zap.Logger) *OfferingHandler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OfferingHandler{Catalog: catalog, Timeout: timeout, Log: log}
}

// OfferingDTO is an offering as exposed by the API.  Prices are decimal
// amounts, not cents.
type OfferingDTO struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	PricePerNight float64  `json:"price_per_night"`
	MaxGuests     int      `json:"max_guests"`
	Amenities     []string `json:"amenities"`
	Photos        []string `json:"photos"`
}

func toOfferingDTO(o model.Offering) OfferingDTO {
	dto := OfferingDTO{
		ID:            o.ID,
		Title:         o.Title,
		Description:   o.Description,
		PricePerNight: model.CentsToAmount(o.PricePerNightCents),
		MaxGuests:     o.MaxGuests,
		Amenities:     o.Amenities,
		Photos:        o.Photos,
	}
	if dto.Amenities == nil {
		dto.Amenities = []string{}
	}
	if dto.Photos == nil {
		dto.Photos = []string{}
	}
	return dto
}

// List handles GET /v1/offerings.
func (h *OfferingHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	items, err := h.Catalog.List(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]OfferingDTO, 0, len(items))
	for _, o := range items {
		out = append(out, toOfferingDTO(o))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
