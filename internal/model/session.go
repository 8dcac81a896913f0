package model

import (
    "time"

    "github.com/google/uuid"
)

// SessionToken models a row in the `session_tokens` table. The token
// string is both the primary key and the bearer credential: it is a
// SHA-256 hex digest derived from the owner's email and the issuance
// instant, so it carries no decodable claims and can only be resolved
// through storage. A user holds at most one live token at a time
// (enforced by a uniqueness constraint on UserID plus the configured
// session policy).
//
// Fields:
//  Token     – sha256 hex digest, primary key and bearer value.
//  UserID    – owner of the session (users.user_uuid).
//  CreatedAt – issuance timestamp.
type SessionToken struct {
    Token     string    // session_tokens.token
    UserID    uuid.UUID // session_tokens.user_uuid
    CreatedAt time.Time // session_tokens.created_at
}
