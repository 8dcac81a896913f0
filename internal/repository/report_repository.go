package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/aperture-science/city-lens-api/internal/model"
)

// ReportRepo is the MySQL implementation of ReportStore. Report
// creation and deletion each run inside a single transaction spanning
// the location, the optional image and the report row, so a failure
// mid-sequence rolls everything back instead of leaving orphans.
type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

// reportRowSelect is the shared projection for report reads: the
// report joined with its location and, when present, its image URL.
const reportRowSelect = `SELECT
		r.report_uuid, r.user_uuid, r.title, r.description, r.status,
		r.creation_date, r.resolution_date, r.image_uuid,
		l.location_id, l.latitude, l.longitude, l.direction, l.zipcode, l.municipality,
		i.image_url
	FROM reports r
	JOIN locations l ON l.location_id = r.location_id
	LEFT JOIN images i ON i.image_uuid = r.image_uuid`

// CreateReport persists the location, the optional image and the
// report in that order, all in one transaction. On success loc.ID,
// rep.LocationID and rep.ImageID are populated.
func (r *ReportRepo) CreateReport(ctx context.Context, rep *model.Report, loc *model.Location, img *model.Image) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"INSERT INTO locations (latitude, longitude, direction, zipcode, municipality) VALUES (?,?,?,?,?)",
		loc.Latitude, loc.Longitude, loc.Direction, loc.Zipcode, loc.Municipality)
	if err != nil {
		return err
	}
	var locID int64
	locID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	loc.ID = locID
	rep.LocationID = locID

	if img != nil {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO images (image_uuid, image_url) VALUES (?,?)",
			img.ID.String(), img.URL); err != nil {
			return err
		}
		id := img.ID
		rep.ImageID = &id
	}

	var imageID any
	if rep.ImageID != nil {
		imageID = rep.ImageID.String()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (report_uuid, user_uuid, title, description, status,
		 location_id, image_uuid, creation_date, resolution_date)
		 VALUES (?,?,?,?,?,?,?,?,NULL)`,
		rep.ID.String(), rep.UserID.String(), rep.Title, rep.Description, rep.Status,
		rep.LocationID, imageID, rep.CreationDate.UTC())
	return err
}

// GetReport fetches a single report row (without its location).
func (r *ReportRepo) GetReport(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT report_uuid, user_uuid, title, description, status,
		 location_id, image_uuid, creation_date, resolution_date
		 FROM reports WHERE report_uuid=? LIMIT 1`, id.String())
	var (
		rep        model.Report
		repID      string
		userID     string
		imageID    sql.NullString
		resolved   sql.NullTime
	)
	if err := row.Scan(&repID, &userID, &rep.Title, &rep.Description, &rep.Status,
		&rep.LocationID, &imageID, &rep.CreationDate, &resolved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	var err error
	if rep.ID, err = uuid.Parse(repID); err != nil {
		return nil, err
	}
	if rep.UserID, err = uuid.Parse(userID); err != nil {
		return nil, err
	}
	if imageID.Valid {
		parsed, err := uuid.Parse(imageID.String)
		if err != nil {
			return nil, err
		}
		rep.ImageID = &parsed
	}
	if resolved.Valid {
		t := resolved.Time
		rep.ResolutionDate = &t
	}
	return &rep, nil
}

// UpdateReport overwrites the mutable columns of a report. The owning
// user, location, image and creation date never change here.
func (r *ReportRepo) UpdateReport(ctx context.Context, rep *model.Report) error {
	var resolved any
	if rep.ResolutionDate != nil {
		resolved = rep.ResolutionDate.UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reports SET title=?, description=?, status=?, resolution_date=? WHERE report_uuid=?",
		rep.Title, rep.Description, rep.Status, resolved, rep.ID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either missing or a no-op update; only the former is an error.
		if _, err := r.GetReport(ctx, rep.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteReport removes the report's image (if any), then its location,
// then the report row, all within one transaction.
func (r *ReportRepo) DeleteReport(ctx context.Context, rep *model.Report) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	// The report row references both the image and the location, so it
	// has to go first; the composed rows follow inside the same tx.
	var res sql.Result
	res, err = tx.ExecContext(ctx, "DELETE FROM reports WHERE report_uuid=?", rep.ID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrReportNotFound
		return err
	}
	if rep.ImageID != nil {
		if _, err = tx.ExecContext(ctx, "DELETE FROM images WHERE image_uuid=?", rep.ImageID.String()); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx, "DELETE FROM locations WHERE location_id=?", rep.LocationID)
	return err
}

// LocationExists reports whether a location row already occupies the
// exact (latitude, longitude) pair.
func (r *ReportRepo) LocationExists(ctx context.Context, latitude, longitude float64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM locations WHERE latitude=? AND longitude=?",
		latitude, longitude).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetLocation fetches a location by id.
func (r *ReportRepo) GetLocation(ctx context.Context, id int64) (*model.Location, error) {
	var l model.Location
	err := r.DB.QueryRowContext(ctx,
		"SELECT location_id, latitude, longitude, direction, zipcode, municipality FROM locations WHERE location_id=? LIMIT 1",
		id).Scan(&l.ID, &l.Latitude, &l.Longitude, &l.Direction, &l.Zipcode, &l.Municipality)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetImage fetches an image by id.
func (r *ReportRepo) GetImage(ctx context.Context, id uuid.UUID) (*model.Image, error) {
	var (
		img   model.Image
		rawID string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT image_uuid, image_url FROM images WHERE image_uuid=? LIMIT 1",
		id.String()).Scan(&rawID, &img.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, err
	}
	img.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// ListLatest returns all reports newest first.
func (r *ReportRepo) ListLatest(ctx context.Context) ([]model.ReportRow, error) {
	return r.queryRows(ctx, reportRowSelect+" ORDER BY r.creation_date DESC")
}

// ListOldest returns all reports oldest first.
func (r *ReportRepo) ListOldest(ctx context.Context) ([]model.ReportRow, error) {
	return r.queryRows(ctx, reportRowSelect+" ORDER BY r.creation_date ASC")
}

// ListActive returns unresolved reports, newest first.
func (r *ReportRepo) ListActive(ctx context.Context) ([]model.ReportRow, error) {
	return r.queryRows(ctx, reportRowSelect+" WHERE r.resolution_date IS NULL ORDER BY r.creation_date DESC")
}

// ListRecentlyResolved returns resolved reports, most recently
// resolved first.
func (r *ReportRepo) ListRecentlyResolved(ctx context.Context) ([]model.ReportRow, error) {
	return r.queryRows(ctx, reportRowSelect+" WHERE r.resolution_date IS NOT NULL ORDER BY r.resolution_date DESC")
}

// SearchByZipcode returns the reports whose location matches the
// zipcode, ordered by creation date in the requested direction.
func (r *ReportRepo) SearchByZipcode(ctx context.Context, zipcode string, ascending bool) ([]model.ReportRow, error) {
	order := " ORDER BY r.creation_date DESC"
	if ascending {
		order = " ORDER BY r.creation_date ASC"
	}
	return r.queryRows(ctx, reportRowSelect+" WHERE l.zipcode = ?"+order, zipcode)
}

func (r *ReportRepo) queryRows(ctx context.Context, query string, args ...any) ([]model.ReportRow, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ReportRow{}
	for rows.Next() {
		var (
			row      model.ReportRow
			repID    string
			userID   string
			imageID  sql.NullString
			resolved sql.NullTime
			imageURL sql.NullString
		)
		if err := rows.Scan(
			&repID, &userID, &row.Title, &row.Description, &row.Status,
			&row.CreationDate, &resolved, &imageID,
			&row.Location.ID, &row.Location.Latitude, &row.Location.Longitude,
			&row.Location.Direction, &row.Location.Zipcode, &row.Location.Municipality,
			&imageURL,
		); err != nil {
			return nil, err
		}
		if row.ID, err = uuid.Parse(repID); err != nil {
			return nil, err
		}
		if row.UserID, err = uuid.Parse(userID); err != nil {
			return nil, err
		}
		if imageID.Valid {
			parsed, err := uuid.Parse(imageID.String)
			if err != nil {
				return nil, err
			}
			row.ImageID = &parsed
		}
		if resolved.Valid {
			t := resolved.Time
			row.ResolutionDate = &t
		}
		if imageURL.Valid {
			u := imageURL.String
			row.ImageURL = &u
		}
		row.LocationID = row.Location.ID
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
