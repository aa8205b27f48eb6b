// Package auth signs and verifies bearer tokens and hashes account secrets.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/researchdt/internal/common"
	"github.com/dmitrijs2005/researchdt/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the registered claims plus the token kind. The subject is
// the user id and the JWT ID is unique per token.
type Claims struct {
	jwt.RegisteredClaims
	TokenType models.TokenKind `json:"token_type"`
}

// now is replaced in tests.
var now = time.Now

// GenerateToken signs an HS256 token of the given kind for userID.
func GenerateToken(userID string, kind models.TokenKind, secretKey []byte, validityDuration time.Duration) (string, *models.TokenClaims, error) {
	issued := now().Truncate(time.Second)
	expires := issued.Add(validityDuration)
	id := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		TokenType: kind,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", nil, err
	}

	return tokenString, &models.TokenClaims{
		UserID:    userID,
		TokenID:   id,
		Kind:      kind,
		IssuedAt:  issued,
		ExpiresAt: expires,
	}, nil
}

// ParseToken verifies signature and expiry and returns the token claims.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// verification yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*models.TokenClaims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, common.ErrInvalidToken
	}
	if claims.TokenType != models.TokenAccess && claims.TokenType != models.TokenRefresh {
		return nil, common.ErrInvalidToken
	}

	out := &models.TokenClaims{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		Kind:      claims.TokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
