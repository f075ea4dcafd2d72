package auth

import (
	"time"

	"github.com/codeup/novabook/internal"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	tokenIssuer = "novabook"
)

// Account is the login view of a user: credentials plus role names.
type Account struct {
	ID           int64    `db:"id"`
	Email        string   `db:"email"`
	Name         string   `db:"name"`
	PasswordHash string   `db:"password_hash"`
	Active       bool     `db:"active"`
	Roles        []string `db:"-"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID    int64    `json:"user_id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Roles     []string `json:"roles"`
	TokenType string   `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) Session() *internal.Session {
	return &internal.Session{
		UserID: c.UserID,
		Email:  c.Email,
		Name:   c.Name,
		Roles:  c.Roles,
	}
}

// TokenGeneratorAPI issues and parses the HS256 token pair. Access and refresh
// tokens are signed with different secrets.
type TokenGeneratorAPI interface {
	GenerateAccessToken(acct *Account) (string, error)
	GenerateRefreshToken(acct *Account) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
	AccessTTL() time.Duration
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	now                func() time.Time
}
