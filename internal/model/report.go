package model

import (
    "time"

    "github.com/google/uuid"
)

// StatusOpen is the status every report carries at creation. Status is
// otherwise an opaque label: clients may move a report through any
// convention they like and the server only enforces the resolution
// timestamp ordering, never a fixed state machine.
const StatusOpen = "open"

// Location is the geographic record owned by exactly one report. It is
// created inside the same transaction as its report and deleted with
// it; clients can never address a location on its own.
//
// Fields:
//  ID           – auto-increment primary key (locations.location_id).
//  Latitude     – degrees, must lie in [-90, 90].
//  Longitude    – degrees, must lie in [-180, 180].
//  Direction    – free-text street address / directions.
//  Zipcode      – postal code, exactly 5 characters.
//  Municipality – municipality name.
type Location struct {
    ID           int64   `json:"id"`
    Latitude     float64 `json:"latitude"`
    Longitude    float64 `json:"longitude"`
    Direction    string  `json:"direction"`
    Zipcode      string  `json:"zipcode"`
    Municipality string  `json:"municipality"`
}

// Image is an optional attachment of a report. The binary content
// lives elsewhere; only the URL is stored. Like Location it exists
// solely as part of a report and is removed by the delete cascade.
type Image struct {
    ID  uuid.UUID `json:"id"`
    URL string    `json:"url"`
}

// Report is the central record of the system: a user-filed, location
// tagged issue. CreationDate is assigned by the server and immutable;
// ResolutionDate is optional and must never precede CreationDate.
//
// Fields:
//  ID             – primary key (reports.report_uuid).
//  UserID         – owning user; only the owner may update the report.
//  Title          – short summary, non-empty.
//  Description    – free-text body, non-empty.
//  Status         – opaque status label, "open" at creation.
//  LocationID     – the report's composed location row.
//  ImageID        – optional composed image row.
//  CreationDate   – server-assigned, immutable.
//  ResolutionDate – optional, >= CreationDate when set.
type Report struct {
    ID             uuid.UUID  // reports.report_uuid
    UserID         uuid.UUID  // reports.user_uuid
    Title          string     // reports.title
    Description    string     // reports.description
    Status         string     // reports.status
    LocationID     int64      // reports.location_id
    ImageID        *uuid.UUID // reports.image_uuid (nullable)
    CreationDate   time.Time  // reports.creation_date
    ResolutionDate *time.Time // reports.resolution_date (nullable)
}

// ReportRow is a report joined with its location and, when present,
// the URL of its image. The canned listing/search queries return rows
// in this shape so responses can embed full location details without a
// second lookup per report.
type ReportRow struct {
    Report
    Location Location
    ImageURL *string
}
