package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/aperture-science/city-lens-api/internal/model"
)

// MemoryStore is an in-memory implementation of UserStore,
// SessionStore and ReportStore. It backs the test suite, where it
// substitutes for MySQL behind the same ports the services consume.
// All methods are safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]model.User
	tokens    map[string]model.SessionToken
	reports   map[uuid.UUID]model.Report
	locations map[int64]model.Location
	images    map[uuid.UUID]model.Image
	nextLocID int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     map[uuid.UUID]model.User{},
		tokens:    map[string]model.SessionToken{},
		reports:   map[uuid.UUID]model.Report{},
		locations: map[int64]model.Location{},
		images:    map[uuid.UUID]model.Image{},
	}
}

// ----- UserStore -----

func (s *MemoryStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrEmailExists
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := u
	return &out, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for id, existing := range s.users {
		if id != u.ID && existing.Email == u.Email {
			return ErrEmailExists
		}
	}
	s.users[u.ID] = *u
	return nil
}

// ----- SessionStore -----

func (s *MemoryStore) SaveToken(_ context.Context, t *model.SessionToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.Token] = *t
	return nil
}

func (s *MemoryStore) GetToken(_ context.Context, token string) (*model.SessionToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	out := t
	return &out, nil
}

func (s *MemoryStore) GetTokenByUser(_ context.Context, userID uuid.UUID) (*model.SessionToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tokens {
		if t.UserID == userID {
			out := t
			return &out, nil
		}
	}
	return nil, ErrTokenNotFound
}

func (s *MemoryStore) DeleteToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token]; !ok {
		return ErrTokenNotFound
	}
	delete(s.tokens, token)
	return nil
}

// ----- ReportStore -----

func (s *MemoryStore) CreateReport(_ context.Context, rep *model.Report, loc *model.Location, img *model.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLocID++
	loc.ID = s.nextLocID
	rep.LocationID = loc.ID
	s.locations[loc.ID] = *loc
	if img != nil {
		s.images[img.ID] = *img
		id := img.ID
		rep.ImageID = &id
	}
	s.reports[rep.ID] = *rep
	return nil
}

func (s *MemoryStore) GetReport(_ context.Context, id uuid.UUID) (*model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	out := rep
	return &out, nil
}

func (s *MemoryStore) UpdateReport(_ context.Context, rep *model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[rep.ID]; !ok {
		return ErrReportNotFound
	}
	s.reports[rep.ID] = *rep
	return nil
}

func (s *MemoryStore) DeleteReport(_ context.Context, rep *model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[rep.ID]; !ok {
		return ErrReportNotFound
	}
	if rep.ImageID != nil {
		delete(s.images, *rep.ImageID)
	}
	delete(s.locations, rep.LocationID)
	delete(s.reports, rep.ID)
	return nil
}

func (s *MemoryStore) LocationExists(_ context.Context, latitude, longitude float64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.locations {
		if l.Latitude == latitude && l.Longitude == longitude {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) GetLocation(_ context.Context, id int64) (*model.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locations[id]
	if !ok {
		return nil, ErrLocationNotFound
	}
	out := l
	return &out, nil
}

func (s *MemoryStore) GetImage(_ context.Context, id uuid.UUID) (*model.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[id]
	if !ok {
		return nil, ErrImageNotFound
	}
	out := img
	return &out, nil
}

func (s *MemoryStore) ListLatest(ctx context.Context) ([]model.ReportRow, error) {
	rows := s.collect(func(model.Report) bool { return true })
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreationDate.After(rows[j].CreationDate) })
	return rows, nil
}

func (s *MemoryStore) ListOldest(ctx context.Context) ([]model.ReportRow, error) {
	rows := s.collect(func(model.Report) bool { return true })
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreationDate.Before(rows[j].CreationDate) })
	return rows, nil
}

func (s *MemoryStore) ListActive(ctx context.Context) ([]model.ReportRow, error) {
	rows := s.collect(func(r model.Report) bool { return r.ResolutionDate == nil })
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreationDate.After(rows[j].CreationDate) })
	return rows, nil
}

func (s *MemoryStore) ListRecentlyResolved(ctx context.Context) ([]model.ReportRow, error) {
	rows := s.collect(func(r model.Report) bool { return r.ResolutionDate != nil })
	sort.Slice(rows, func(i, j int) bool { return rows[i].ResolutionDate.After(*rows[j].ResolutionDate) })
	return rows, nil
}

func (s *MemoryStore) SearchByZipcode(ctx context.Context, zipcode string, ascending bool) ([]model.ReportRow, error) {
	rows := s.collect(func(r model.Report) bool {
		l, ok := s.locations[r.LocationID]
		return ok && l.Zipcode == zipcode
	})
	sort.Slice(rows, func(i, j int) bool {
		if ascending {
			return rows[i].CreationDate.Before(rows[j].CreationDate)
		}
		return rows[i].CreationDate.After(rows[j].CreationDate)
	})
	return rows, nil
}

// collect snapshots every report passing the filter, joined with its
// location and image URL.
func (s *MemoryStore) collect(keep func(model.Report) bool) []model.ReportRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := []model.ReportRow{}
	for _, rep := range s.reports {
		if !keep(rep) {
			continue
		}
		row := model.ReportRow{Report: rep}
		if loc, ok := s.locations[rep.LocationID]; ok {
			row.Location = loc
		}
		if rep.ImageID != nil {
			if img, ok := s.images[*rep.ImageID]; ok {
				u := img.URL
				row.ImageURL = &u
			}
		}
		rows = append(rows, row)
	}
	return rows
}
