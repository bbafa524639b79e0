package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated caller carried by an access token. Guests
// have an empty UserID.
type Principal struct {
	UserID string
	Name   string
	Role   models.Role
}

// Claims are the registered claims plus the principal fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"uid,omitempty"`
	Name   string      `json:"name,omitempty"`
	Role   models.Role `json:"role"`
}

func GenerateToken(p Principal, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: p.UserID,
		Name:   p.Name,
		Role:   p.Role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParsePrincipal validates an HS256 token and returns its principal.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// validation common.ErrInvalidToken.
func ParsePrincipal(tokenString string, secretKey []byte) (Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, common.ErrTokenExpired
		}
		return Principal{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return Principal{}, common.ErrInvalidToken
	}

	if claims.Role.Persisted() && claims.UserID == "" {
		return Principal{}, fmt.Errorf("%w: missing user id", common.ErrInvalidToken)
	}

	return Principal{UserID: claims.UserID, Name: claims.Name, Role: claims.Role}, nil
}
