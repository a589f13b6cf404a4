package session

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

// Resolver turns raw bearer tokens into Sessions. Tokens are minted by the
// upstream backend with a shared secret; the gateway only verifies and reads
// them.
type Resolver struct {
	secret []byte
}

// NewResolver constructs a Resolver.
func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret)}
}

// Resolve validates the token and extracts the session identity.
func (r *Resolver) Resolve(token string) (*models.Session, error) {
	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return r.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}

	return &models.Session{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   models.UserRole(claims.Role),
		Token:  token,
	}, nil
}
