package shopify

import (
	"errors"
	"fmt"
	"time"

	"shopnotes-app/internal/domain/shops"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionClaims are the claims of an App Bridge session token.
type SessionClaims struct {
	Dest string `json:"dest"`
	Sid  string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// ParseSessionToken verifies an HS256 session token signed with the app
// secret and returns the normalized shop domain from its dest claim.
func ParseSessionToken(raw, apiKey, apiSecret string) (string, *SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(apiSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(apiKey),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil || !token.Valid {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}

	shop, err := shops.NormalizeDomain(claims.Dest)
	if err != nil {
		return "", nil, fmt.Errorf("%w: dest %q", ErrInvalidSessionToken, claims.Dest)
	}
	return shop, claims, nil
}

// MintSessionToken signs a token the way App Bridge would. Used by the CLI
// and tests.
func MintSessionToken(shop, apiKey, apiSecret string, now time.Time, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		Dest: ShopOrigin(shop),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ShopOrigin(shop) + "/admin",
			Audience:  jwt.ClaimStrings{apiKey},
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(apiSecret))
}
