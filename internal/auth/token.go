package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/codeup/novabook/internal"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		now:                time.Now,
	}
}

// WithClock replaces the time source used for issuing and checking expiry.
func (j *JWTTokenGenerator) WithClock(now func() time.Time) *JWTTokenGenerator {
	j.now = now
	return j
}

func (j *JWTTokenGenerator) AccessTTL() time.Duration {
	return j.AccessTokenTTL
}

func (j *JWTTokenGenerator) GenerateAccessToken(acct *Account) (string, error) {
	return j.sign(acct, TokenTypeAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(acct *Account) (string, error) {
	return j.sign(acct, TokenTypeRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, TokenTypeAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, TokenTypeRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(acct *Account, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	issuedAt := j.now()
	claims := &Claims{
		UserID:    acct.ID,
		Email:     acct.Email,
		Name:      acct.Name,
		Roles:     acct.Roles,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(acct.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return tokenString, nil
}

func (j *JWTTokenGenerator) parse(tokenString, tokenType string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	if !token.Valid || claims.TokenType != tokenType || claims.UserID <= 0 {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
