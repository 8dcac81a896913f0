package service

import (
	"context"

	"github.com/aperture-science/city-lens-api/internal/model"
	"github.com/aperture-science/city-lens-api/internal/repository"
)

// ListingService is the read-only query side of reports. Every
// operation requires a resolvable token but applies no ownership
// filter: any authenticated user may browse all reports. Rows come
// back with their full location embedded.
type ListingService struct {
	sessions *SessionManager
	reports  repository.ReportStore
}

func NewListingService(sessions *SessionManager, reports repository.ReportStore) *ListingService {
	return &ListingService{sessions: sessions, reports: reports}
}

// Latest returns all reports, newest first.
func (s *ListingService) Latest(ctx context.Context, token string) ([]model.ReportRow, error) {
	if _, err := s.sessions.Resolve(ctx, token); err != nil {
		return nil, err
	}
	return s.reports.ListLatest(ctx)
}

// Oldest returns all reports, oldest first.
func (s *ListingService) Oldest(ctx context.Context, token string) ([]model.ReportRow, error) {
	if _, err := s.sessions.Resolve(ctx, token); err != nil {
		return nil, err
	}
	return s.reports.ListOldest(ctx)
}

// Active returns reports without a resolution date, newest first.
func (s *ListingService) Active(ctx context.Context, token string) ([]model.ReportRow, error) {
	if _, err := s.sessions.Resolve(ctx, token); err != nil {
		return nil, err
	}
	return s.reports.ListActive(ctx)
}

// RecentlyResolved returns resolved reports, most recently resolved
// first.
func (s *ListingService) RecentlyResolved(ctx context.Context, token string) ([]model.ReportRow, error) {
	if _, err := s.sessions.Resolve(ctx, token); err != nil {
		return nil, err
	}
	return s.reports.ListRecentlyResolved(ctx)
}

// SearchByZipcode returns the reports filed at the given postal code,
// ordered by creation date (descending unless ascending is set). The
// zipcode must be present and exactly 5 characters.
func (s *ListingService) SearchByZipcode(ctx context.Context, token, zipcode string, ascending bool) ([]model.ReportRow, error) {
	if zipcode == "" {
		return nil, invalid("zipcode must not be empty")
	}
	if len(zipcode) != 5 {
		return nil, invalid("zipcode must have 5 characters")
	}
	if _, err := s.sessions.Resolve(ctx, token); err != nil {
		return nil, err
	}
	return s.reports.SearchByZipcode(ctx, zipcode, ascending)
}
