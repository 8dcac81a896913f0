package model

import "github.com/google/uuid"

// Role is the closed set of authorization levels a user can hold.
// Reports may be deleted by their owner or by an admin; every other
// mutation is owner-only. The zero value is not a valid role — use
// ParseRole when reading from untrusted input or the database.
type Role string

const (
    // RoleUser is a standard account: may create reports and mutate
    // only reports it owns.
    RoleUser Role = "user"
    // RoleAdmin is the elevated role: may delete any report.
    RoleAdmin Role = "admin"
)

// ParseRole maps a stored role string onto the enum. Unknown values
// fall back to RoleUser so that a corrupted row never silently grants
// elevated rights.
func ParseRole(s string) Role {
    switch Role(s) {
    case RoleAdmin:
        return RoleAdmin
    default:
        return RoleUser
    }
}

// User represents an application user as stored in the `users` table.
// The password is only ever held in hashed form; handlers expose a
// separate public projection and must never serialize PasswordHash.
//
// Fields:
//  ID           – primary key (users.user_uuid).
//  Email        – unique email address.
//  FirstName    – given name.
//  LastName     – family name.
//  PasswordHash – bcrypt hash of the password.
//  Role         – authorization level (user/admin).
type User struct {
    ID           uuid.UUID // users.user_uuid
    Email        string    // users.email
    FirstName    string    // users.first_name
    LastName     string    // users.last_name
    PasswordHash string    // users.password_hash
    Role         Role      // users.role
}
