package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Contact type is not carried; middleware resolves it per request.
type AccessTokenPayload struct {
	UserID     int64
	Username   string
	SystemRole *enums.SystemRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID     int64             `json:"user_id"`
	Username   string            `json:"username"`
	SystemRole *enums.SystemRole `json:"system_role,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token carries the admin system role.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c.SystemRole != nil && *c.SystemRole == enums.SystemRoleAdmin
}

func subjectFor(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
