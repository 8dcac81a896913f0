package repository

import (
    "context"

    "github.com/google/uuid"

    "github.com/aperture-science/city-lens-api/internal/model"
)

// UserStore is the storage port for user records. Implementations must
// treat email as unique and surface a duplicate as ErrEmailExists.
type UserStore interface {
    CreateUser(ctx context.Context, u *model.User) error
    GetUserByEmail(ctx context.Context, email string) (*model.User, error)
    GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
    UpdateUser(ctx context.Context, u *model.User) error
}

// SessionStore is the storage port for session tokens. A token row is
// keyed by its value; at most one row may exist per user.
type SessionStore interface {
    SaveToken(ctx context.Context, t *model.SessionToken) error
    GetToken(ctx context.Context, token string) (*model.SessionToken, error)
    GetTokenByUser(ctx context.Context, userID uuid.UUID) (*model.SessionToken, error)
    DeleteToken(ctx context.Context, token string) error
}

// ReportStore is the storage port for reports together with their
// composed location and optional image. CreateReport and DeleteReport
// are single transactions covering the whole composition, so a crash
// can never leave an orphaned location or image row behind.
type ReportStore interface {
    // CreateReport persists loc, img (may be nil) and rep in one
    // transaction, filling loc.ID and wiring rep.LocationID/ImageID.
    CreateReport(ctx context.Context, rep *model.Report, loc *model.Location, img *model.Image) error
    GetReport(ctx context.Context, id uuid.UUID) (*model.Report, error)
    UpdateReport(ctx context.Context, rep *model.Report) error
    // DeleteReport removes the report's image (if any), its location
    // and the report row itself in one transaction.
    DeleteReport(ctx context.Context, rep *model.Report) error

    LocationExists(ctx context.Context, latitude, longitude float64) (bool, error)
    GetLocation(ctx context.Context, id int64) (*model.Location, error)
    GetImage(ctx context.Context, id uuid.UUID) (*model.Image, error)

    // Canned read-only queries, each returning reports joined with
    // their location (and image URL when present).
    ListLatest(ctx context.Context) ([]model.ReportRow, error)
    ListOldest(ctx context.Context) ([]model.ReportRow, error)
    ListActive(ctx context.Context) ([]model.ReportRow, error)
    ListRecentlyResolved(ctx context.Context) ([]model.ReportRow, error)
    SearchByZipcode(ctx context.Context, zipcode string, ascending bool) ([]model.ReportRow, error)
}
