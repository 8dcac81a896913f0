package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aperture-science/city-lens-api/internal/model"
	"github.com/aperture-science/city-lens-api/internal/service"
)

// ListingHandler serves the canned read-only report listings. Every
// endpoint requires a resolvable token but no ownership filter applies.
type ListingHandler struct {
	Listings *service.ListingService
}

func NewListingHandler(listings *service.ListingService) *ListingHandler {
	return &ListingHandler{Listings: listings}
}

func (h *ListingHandler) respond(c echo.Context, rows []model.ReportRow, err error) error {
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reportRowsOut(rows))
}

// Latest lists all reports, newest first.
func (h *ListingHandler) Latest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rows, err := h.Listings.Latest(ctx, bearerToken(c))
	return h.respond(c, rows, err)
}

// Oldest lists all reports, oldest first.
func (h *ListingHandler) Oldest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rows, err := h.Listings.Oldest(ctx, bearerToken(c))
	return h.respond(c, rows, err)
}

// Active lists reports without a resolution date, newest first.
func (h *ListingHandler) Active(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rows, err := h.Listings.Active(ctx, bearerToken(c))
	return h.respond(c, rows, err)
}

// RecentlyResolved lists resolved reports, most recently resolved
// first.
func (h *ListingHandler) RecentlyResolved(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rows, err := h.Listings.RecentlyResolved(ctx, bearerToken(c))
	return h.respond(c, rows, err)
}
