package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aperture-science/city-lens-api/internal/model"
	"github.com/aperture-science/city-lens-api/internal/repository"
)

func validInput() CreateReportInput {
	return CreateReportInput{
		Title:        "Pothole",
		Description:  "Large pothole",
		Latitude:     19.43,
		Longitude:    -99.13,
		Zipcode:      "01000",
		Municipality: "CDMX",
	}
}

// loginUser registers and logs a fresh user in, returning the live
// token value.
func (e *env) loginUser(t *testing.T, email string) (string, *model.User) {
	t.Helper()
	u := e.register(t, email)
	token, _, err := e.accounts.Login(context.Background(), email, "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return token.Token, u
}

func TestCreateValidationOrder(t *testing.T) {
	e := newEnv(t, PolicyReplace)
	reports := NewReportService(e.sessions, e.store, nil)
	ctx := context.Background()
	token, _ := e.loginUser(t, "ada@example.com")

	cases := []struct {
		name   string
		token  string
		mutate func(*CreateReportInput)
		reason string
	}{
		{"latitude too high", token, func(in *CreateReportInput) { in.Latitude = 90.5 }, "invalid latitude"},
		{"latitude too low", token, func(in *CreateReportInput) { in.Latitude = -91 }, "invalid latitude"},
		{"longitude out of range", token, func(in *CreateReportInput) { in.Longitude = 180.1 }, "invalid longitude"},
		{"empty title", token, func(in *CreateReportInput) { in.Title = "" }, "title must not be empty"},
		{"empty description", token, func(in *CreateReportInput) { in.Description = "" }, "description must not be empty"},
		{"empty municipality", token, func(in *CreateReportInput) { in.Municipality = "" }, "municipality must not be empty"},
		{"empty zipcode", token, func(in *CreateReportInput) { in.Zipcode = "" }, "zipcode must not be empty"},
		// Field checks run before the token is resolved, so a bad
		// coordinate wins even when the token is garbage.
		{"latitude beats bad token", "bogus", func(in *CreateReportInput) { in.Latitude = 120 }, "invalid latitude"},
		{"bad token after valid fields", "bogus", func(in *CreateReportInput) {}, "invalid token"},
	}
	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		_, _, err := reports.Create(ctx, tc.token, in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: got %v, want validation error", tc.name, err)
		}
		if ve.Reason != tc.reason {
			t.Fatalf("%s: reason %q, want %q", tc.name, ve.Reason, tc.reason)
		}
	}

	// No writes happened for any rejected request.
	rows, err := e.store.ListLatest(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rejected creates left %d rows behind", len(rows))
	}
}

func TestCreateWithoutToken(t *testing.T) {
	e := newEnv(t, PolicyReplace)
	reports := NewReportService(e.sessions, e.store, nil)
	if _, _, err := reports.Create(context.Background(), "", validInput()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestCreateDefaults(t *testing.T) {
	e := newEnv(t, PolicyReplace)
	reports := NewReportService(e.sessions, e.store, nil)
	ctx := context.Background()
	token, u := e.loginUser(t, "ada@example.com")

	in := validInput()
	url := "https://img.example.com/1.jpg"
	in.ImageURL = &url
	rep, loc, err := reports.Create(ctx, token, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rep.ID == uuid.Nil {
		t.Fatalf("report got no id")
	}
	if rep.Status != model.StatusOpen {
		t.Fatalf("status %q, want %q", rep.Status, model.StatusOpen)
	}
	if rep.ResolutionDate != nil {
		t.Fatalf("fresh report carries a resolution date")
	}
	if rep.UserID != u.ID {
		t.Fatalf("report owner %s, want %s", rep.UserID, u.ID)
	}
	if loc.ID == 0 || rep.LocationID != loc.ID {
		t.Fatalf("location not linked: loc=%d rep=%d", loc.ID, rep.LocationID)
	}
	if rep.ImageID == nil {
		t.Fatalf("image url provided but no image stored")
	}
	img, err := e.store.GetImage(ctx, *rep.ImageID)
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	if img.URL != url {
		t.Fatalf("image url %q, want %q", img.URL, url)
	}
}

func TestCreateDuplicateLocation(t *testing.T) {
	e := newEnv(t, PolicyReplace)
	reports := NewReportService(e.sessions, e.store, nil)
	ctx := context.Background()
	token, _ := e.loginUser(t, "ada@example.com")

	if _, _, err := reports.Create(ctx, token, validInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	in := validInput()
	in.Title = "Same spot, new report"
	_, _, err := reports.Create(ctx, token, in)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Reason != "report already exists" {
		t.Fatalf("got %v, want \"report already exists\"", err)
	}
}

func TestUpdateReport(t *testing.T) {
	e := newEnv(t, PolicyReplace)
	reports := NewReportService(e.sessions, e.store, nil)
	ctx := context.Background()
	token, _ := e.loginUser(t, "ada@example.com")

	rep, _, err := reports.Create(ctx, token, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status := "resolved"
	resolved := rep.CreationDate.Add(48 * time.Hour)
	updated, err := reports.Update(ctx, token, UpdateReportInput{ID: rep.ID, Status: &status, ResolutionDate: &resolved})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != "resolved" || updated.ResolutionDate == nil {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Title != rep.Title {
		t.Fatalf("unset field changed: %q", updated.Title)
	}
}

func TestUpdateRejections(t *testing.T) {
	e := newEnv(t, PolicyReplace)
	reports := NewReportService(e.sessions, e.store, nil)
	ctx := context.Background()
	token, _ := e.loginUser(t, "ada@example.com")

	rep, _, err := reports.Create(ctx, token, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	empty := ""
	if _, err := reports.Update(ctx, token, UpdateReportInput{ID: rep.ID, Title: &empty}); err == nil {
		t.Fatalf("empty title accepted")
	}
	early := rep.CreationDate.Add(-time.Hour)
	_, err = reports.Update(ctx, token, UpdateReportInput{ID: rep.ID, ResolutionDate: &early})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("resolution before creation: got %v, want validation error", err)
	}
	if _, err := reports.Update(ctx, token, UpdateReportInput{ID: uuid.New()}); !errors.Is(err, repository.ErrReportNotFound) {
		t.Fatalf("missing report: got %v, want ErrReportNotFound", err)
	}

	// Another user may not update someone else's report.
	otherToken, _ := e.loginUser(t, "eve@example.com")
	title := "Hijacked"
	if _, err := reports.Update(ctx, otherToken, UpdateReportInput{ID: rep.ID, Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner update: got %v, want ErrForbidden", err)
	}
}

func TestDeleteCascade(t *testing.T) {
	e := newEnv(t, PolicyReplace)
	reports := NewReportService(e.sessions, e.store, nil)
	ctx := context.Background()
	token, _ := e.loginUser(t, "ada@example.com")

	in := validInput()
	url := "https://img.example.com/1.jpg"
	in.ImageURL = &url
	rep, loc, err := reports.Create(ctx, token, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	imgID := *rep.ImageID

	if err := reports.Delete(ctx, token, rep.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.store.GetReport(ctx, rep.ID); !errors.Is(err, repository.ErrReportNotFound) {
		t.Fatalf("report survived delete: %v", err)
	}
	if _, err := e.store.GetLocation(ctx, loc.ID); !errors.Is(err, repository.ErrLocationNotFound) {
		t.Fatalf("location survived delete: %v", err)
	}
	if _, err := e.store.GetImage(ctx, imgID); !errors.Is(err, repository.ErrImageNotFound) {
		t.Fatalf("image survived delete: %v", err)
	}

	// The spot is free again after the cascade.
	if _, _, err := reports.Create(ctx, token, validInput()); err != nil {
		t.Fatalf("recreate at freed location: %v", err)
	}
}

func TestDeleteAuthorization(t *testing.T) {
	e := newEnv(t, PolicyReplace)
	reports := NewReportService(e.sessions, e.store, nil)
	ctx := context.Background()
	ownerToken, _ := e.loginUser(t, "ada@example.com")

	rep, _, err := reports.Create(ctx, ownerToken, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A plain user who does not own the report is denied.
	otherToken, _ := e.loginUser(t, "eve@example.com")
	if err := reports.Delete(ctx, otherToken, rep.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner delete: got %v, want ErrForbidden", err)
	}

	// An admin may delete anyone's report.
	adminToken, admin := e.loginUser(t, "root@example.com")
	admin.Role = model.RoleAdmin
	if err := e.store.UpdateUser(ctx, admin); err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	if err := reports.Delete(ctx, adminToken, rep.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	if err := reports.Delete(ctx, adminToken, rep.ID); !errors.Is(err, repository.ErrReportNotFound) {
		t.Fatalf("double delete: got %v, want ErrReportNotFound", err)
	}
}
