package utils // package utils provides hashing helpers shared by the auth services

import (
    "crypto/sha256" // SHA-256 digests for session token derivation
    "encoding/hex"  // hex encoding of digests
    "strconv"       // integer formatting for the token seed
    "time"          // issuance instant used in the token seed
)

// HashSHA256 returns the SHA-256 digest of the input as a lowercase
// hex string. It is deterministic and one-way; the session manager
// uses it to derive token values.
func HashSHA256(value string) string {
    sum := sha256.Sum256([]byte(value))
    return hex.EncodeToString(sum[:])
}

// NewSessionTokenValue derives an opaque session token for a user.
// The seed is the user's email plus the issuance instant in
// nanoseconds, which makes collisions across issuances practically
// impossible while keeping the value undecodable for clients.
func NewSessionTokenValue(email string, issuedAt time.Time) string {
    return HashSHA256(email + strconv.FormatInt(issuedAt.UnixNano(), 10))
}
