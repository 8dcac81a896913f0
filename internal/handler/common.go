package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aperture-science/city-lens-api/internal/model"
	"github.com/aperture-science/city-lens-api/internal/repository"
	"github.com/aperture-science/city-lens-api/internal/service"
)

// bearerToken extracts the session token from the Authorization header.
// Clients send the raw token; a "Bearer " prefix is tolerated.
func bearerToken(c echo.Context) string {
	h := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// fail maps a service/repository error onto the HTTP error taxonomy:
// validation problems are 400 with the reason, auth problems 401,
// ownership/role denials 403, missing records 404, everything else a
// generic 500.
func fail(c echo.Context, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Reason})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, service.ErrSessionActive):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user already has an active session"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrReportNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// ----- shared response shapes -----

// userJSON is the public projection of a user. The password hash never
// leaves the server.
type userJSON struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func publicUser(u *model.User) userJSON {
	return userJSON{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
	}
}

// reportJSON is the wire shape of a single report. Resolution date is
// null until the report is resolved.
type reportJSON struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	LocationID     int64      `json:"location_id"`
	ImageID        *string    `json:"image_id"`
	CreationDate   time.Time  `json:"creation_date"`
	ResolutionDate *time.Time `json:"resolution_date"`
}

func reportOut(r *model.Report) reportJSON {
	out := reportJSON{
		ID:             r.ID.String(),
		UserID:         r.UserID.String(),
		Title:          r.Title,
		Description:    r.Description,
		Status:         r.Status,
		LocationID:     r.LocationID,
		CreationDate:   r.CreationDate,
		ResolutionDate: r.ResolutionDate,
	}
	if r.ImageID != nil {
		s := r.ImageID.String()
		out.ImageID = &s
	}
	return out
}

// reportRowJSON is a report with its full location embedded, as
// returned by the listing and search endpoints.
type reportRowJSON struct {
	reportJSON
	Location model.Location `json:"location"`
	ImageURL *string        `json:"image_url"`
}

func reportRowsOut(rows []model.ReportRow) []reportRowJSON {
	out := make([]reportRowJSON, 0, len(rows))
	for i := range rows {
		out = append(out, reportRowJSON{
			reportJSON: reportOut(&rows[i].Report),
			Location:   rows[i].Location,
			ImageURL:   rows[i].ImageURL,
		})
	}
	return out
}
