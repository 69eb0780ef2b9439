package utils

import (
	"errors"
	"time"

	"ratesvc/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenOptions describes the operator token to mint.
type TokenOptions struct {
	Secret  string
	Issuer  string
	TTL     time.Duration
	Address string
	Role    string
	Now     time.Time
}

// GenerateToken signs an HS256 token for the given ledger address. Permissions
// are derived from the role.
func GenerateToken(opts TokenOptions) (string, error) {
	if opts.Secret == "" {
		return "", errors.New("JWT secret not configured")
	}
	if opts.Address == "" {
		return "", errors.New("address is required")
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	claims := models.RateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(opts.Now.Add(opts.TTL)),
			IssuedAt:  jwt.NewNumericDate(opts.Now),
			Issuer:    opts.Issuer,
			Subject:   opts.Address,
		},
		Address:     opts.Address,
		Role:        opts.Role,
		Permissions: models.GetDefaultPermissions(opts.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(opts.Secret))
}

// ParseToken parses and validates a JWT token string. A non-empty issuer must
// match the token's iss claim.
func ParseToken(secret, issuer, tokenStr string) (*models.RateClaims, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not configured")
	}

	var opts []jwt.ParserOption
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.RateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.RateClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
