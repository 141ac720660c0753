package admin

import "time"

// Config drives the shared-password admin gate.
type Config struct {
	// Password is compared in constant time. PasswordHash, a bcrypt hash, wins when both are set.
	Password     string
	PasswordHash string
	Secret       string
	TokenTTL     time.Duration
	DefaultUser  string
}

// LoginRequest captures the admin login payload.
type LoginRequest struct {
	Password string `json:"password"`
	User     string `json:"user,omitempty"`
}

// LoginResponse returns the signed session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      string    `json:"user"`
}

// Claims are extracted from an admin session token.
type Claims struct {
	User      string
	ExpiresAt time.Time
}

// UnauthorizedMessage is returned for every failed admin check so callers cannot tell a missing
// password from a wrong one.
const UnauthorizedMessage = "Sorry, the FAQ could not be added because admin authentication did not succeed. " +
	"This usually means the admin password configured for this client is missing or incorrect.\n\n" +
	"If you are an admin, double-check the password and try again. Once the credentials are valid the FAQ will be added."

// UnconfiguredMessage is returned when the server has no admin password at all.
const UnconfiguredMessage = "Error: Admin password is not configured on the server. Please contact the administrator."
