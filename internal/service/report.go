package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aperture-science/city-lens-api/internal/model"
	"github.com/aperture-science/city-lens-api/internal/queue"
	"github.com/aperture-science/city-lens-api/internal/repository"
)

// EventPublisher is the outbound port for report lifecycle events. A
// nil publisher disables eventing without touching the business flow.
type EventPublisher interface {
	PublishReportEvent(ctx context.Context, ev queue.ReportEvent) error
}

// ReportService owns the report lifecycle: validated creation,
// owner-checked update, owner-or-admin cascading deletion. All
// validation runs before any write, and both multi-record mutations
// happen inside a single storage transaction.
type ReportService struct {
	sessions *SessionManager
	reports  repository.ReportStore
	events   EventPublisher
	now      func() time.Time
}

func NewReportService(sessions *SessionManager, reports repository.ReportStore, events EventPublisher) *ReportService {
	return &ReportService{sessions: sessions, reports: reports, events: events, now: time.Now}
}

// CreateReportInput is the payload of report creation. ImageURL is
// optional; everything else is required.
type CreateReportInput struct {
	Title        string
	Description  string
	Latitude     float64
	Longitude    float64
	Direction    string
	Zipcode      string
	Municipality string
	ImageURL     *string
}

// UpdateReportInput is a partial update of an existing report. Nil
// fields are preserved.
type UpdateReportInput struct {
	ID             uuid.UUID
	Title          *string
	Description    *string
	Status         *string
	ResolutionDate *time.Time
}

// Create validates the input in a fixed order (first failing check
// wins) and then persists the location, the optional image and the
// report in one transaction. A freshly created report has status
// "open", a server-assigned creation timestamp and no resolution date.
func (s *ReportService) Create(ctx context.Context, token string, in CreateReportInput) (*model.Report, *model.Location, error) {
	if token == "" {
		return nil, nil, ErrUnauthorized
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return nil, nil, invalid("invalid latitude")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return nil, nil, invalid("invalid longitude")
	}
	if in.Title == "" {
		return nil, nil, invalid("title must not be empty")
	}
	if in.Description == "" {
		return nil, nil, invalid("description must not be empty")
	}
	if in.Municipality == "" {
		return nil, nil, invalid("municipality must not be empty")
	}
	if in.Zipcode == "" {
		return nil, nil, invalid("zipcode must not be empty")
	}
	user, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if err == ErrUnauthorized {
			return nil, nil, invalid("invalid token")
		}
		return nil, nil, err
	}
	exists, err := s.reports.LocationExists(ctx, in.Latitude, in.Longitude)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, invalid("report already exists")
	}

	loc := &model.Location{
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Direction:    in.Direction,
		Zipcode:      in.Zipcode,
		Municipality: in.Municipality,
	}
	var img *model.Image
	if in.ImageURL != nil && *in.ImageURL != "" {
		img = &model.Image{ID: uuid.New(), URL: *in.ImageURL}
	}
	rep := &model.Report{
		ID:           uuid.New(),
		UserID:       user.ID,
		Title:        in.Title,
		Description:  in.Description,
		Status:       model.StatusOpen,
		CreationDate: s.now().UTC(),
	}
	if err := s.reports.CreateReport(ctx, rep, loc, img); err != nil {
		return nil, nil, err
	}

	s.publish(queue.ReportEvent{
		Kind:         queue.KindReportCreated,
		ReportID:     rep.ID.String(),
		UserID:       user.ID.String(),
		Title:        rep.Title,
		Status:       rep.Status,
		Zipcode:      loc.Zipcode,
		Municipality: loc.Municipality,
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
		OccurredAt:   rep.CreationDate.Format(time.RFC3339),
	})
	return rep, loc, nil
}

// Update applies a partial update to a report. Only the owning user
// may update; provided-but-empty strings are rejected; a resolution
// date must not precede the creation timestamp.
func (s *ReportService) Update(ctx context.Context, token string, in UpdateReportInput) (*model.Report, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	if in.Title != nil && *in.Title == "" {
		return nil, invalid("title must not be empty")
	}
	if in.Description != nil && *in.Description == "" {
		return nil, invalid("description must not be empty")
	}
	if in.Status != nil && *in.Status == "" {
		return nil, invalid("status must not be empty")
	}
	rep, err := s.reports.GetReport(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if in.ResolutionDate != nil && in.ResolutionDate.Before(rep.CreationDate) {
		return nil, invalid("resolution date must not precede creation date")
	}
	user, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if user.ID != rep.UserID {
		return nil, ErrForbidden
	}

	if in.Title != nil {
		rep.Title = *in.Title
	}
	if in.Description != nil {
		rep.Description = *in.Description
	}
	if in.Status != nil {
		rep.Status = *in.Status
	}
	if in.ResolutionDate != nil {
		t := in.ResolutionDate.UTC()
		rep.ResolutionDate = &t
	}
	if err := s.reports.UpdateReport(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// Delete removes a report and cascades over its image and location in
// one transaction. The owner may delete their own report; an admin
// may delete any report.
func (s *ReportService) Delete(ctx context.Context, token string, id uuid.UUID) error {
	if token == "" {
		return ErrUnauthorized
	}
	rep, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return err
	}
	user, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return err
	}
	switch user.Role {
	case model.RoleAdmin:
		// admins may delete any report
	case model.RoleUser:
		if user.ID != rep.UserID {
			return ErrForbidden
		}
	default:
		return ErrForbidden
	}
	if err := s.reports.DeleteReport(ctx, rep); err != nil {
		return err
	}

	s.publish(queue.ReportEvent{
		Kind:       queue.KindReportDeleted,
		ReportID:   rep.ID.String(),
		UserID:     user.ID.String(),
		Title:      rep.Title,
		Status:     rep.Status,
		OccurredAt: s.now().UTC().Format(time.RFC3339),
	})
	return nil
}

// publish fires the event without blocking the request. Failures are
// logged inside the publisher and deliberately dropped: the mutation
// has already committed.
func (s *ReportService) publish(ev queue.ReportEvent) {
	if s.events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.PublishReportEvent(ctx, ev); err != nil {
			logrus.WithError(err).Debug("report event dropped")
		}
	}()
}
