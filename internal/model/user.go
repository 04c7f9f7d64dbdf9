package model

import "time"

// User represents a registered guest as stored in the `users` table.  The
// json tags are omitted because these structs are used by the store and
// service layers; handlers define their own response types.
//
// Fields:
//  ID           – opaque record identifier (UUID).
//  Name         – full name given at registration.
//  Email        – unique, case-sensitive identity key.
//  PasswordHash – bcrypt hash of the password.
//  AvatarURL    – optional profile image reference.
//  CreatedAt    – registration timestamp.
type User struct {
	ID           string    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	AvatarURL    *string   // users.avatar_url (nullable)
	CreatedAt    time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token is kept; the raw value is handed to the client
// once and never stored.
type RefreshToken struct {
	ID        string     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
