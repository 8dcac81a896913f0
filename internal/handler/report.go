package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aperture-science/city-lens-api/internal/model"
	"github.com/aperture-science/city-lens-api/internal/service"
)

// ReportHandler bundles dependencies for the report mutation and
// zipcode-search endpoints.
type ReportHandler struct {
	Reports  *service.ReportService
	Listings *service.ListingService
}

func NewReportHandler(reports *service.ReportService, listings *service.ListingService) *ReportHandler {
	return &ReportHandler{Reports: reports, Listings: listings}
}

// ----- DTOs -----

type createReportReq struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Direction    string  `json:"direction"`
	Zipcode      string  `json:"zipcode"`
	Municipality string  `json:"municipality"`
	ImageURL     *string `json:"image_url"`
}

// Update and delete address the report by id in the JSON body.
type updateReportReq struct {
	ID             string     `json:"id"`
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Status         *string    `json:"status"`
	ResolutionDate *time.Time `json:"resolution_date"`
}

type deleteReportReq struct {
	ID string `json:"id"`
}

// createReportResp embeds the stored location so the client sees the
// assigned location id without a second round trip.
type createReportResp struct {
	reportJSON
	Location *model.Location `json:"location"`
}

// Create files a new report. Validation runs in a fixed order and the
// first failing check decides the response; a valid request persists
// location, optional image and report in one transaction and returns
// 201 with status "open" and a null resolution date.
func (h *ReportHandler) Create(c echo.Context) error {
	var req createReportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rep, loc, err := h.Reports.Create(ctx, bearerToken(c), service.CreateReportInput{
		Title:        req.Title,
		Description:  req.Description,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Direction:    req.Direction,
		Zipcode:      req.Zipcode,
		Municipality: req.Municipality,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, createReportResp{reportJSON: reportOut(rep), Location: loc})
}

// Update applies a partial update to a report owned by the caller.
func (h *ReportHandler) Update(c echo.Context) error {
	var req updateReportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rep, err := h.Reports.Update(ctx, bearerToken(c), service.UpdateReportInput{
		ID:             id,
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		ResolutionDate: req.ResolutionDate,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reportOut(rep))
}

// Delete removes a report together with its location and image. Owners
// may delete their own reports; admins may delete any.
func (h *ReportHandler) Delete(c echo.Context) error {
	var req deleteReportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reports.Delete(ctx, bearerToken(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": id.String()})
}

// Search returns the reports filed at the zipcode given in the query
// string. `ascending=true` flips the default newest-first order.
func (h *ReportHandler) Search(c echo.Context) error {
	zipcode := c.QueryParam("zipcode")
	ascending := false
	if v := c.QueryParam("ascending"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ascending flag"})
		}
		ascending = b
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Listings.SearchByZipcode(ctx, bearerToken(c), zipcode, ascending)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reportRowsOut(rows))
}
