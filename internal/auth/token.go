package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("token inválido ou expirado")

// Token kinds carried in the "typ" claim. A token is only accepted where
// its kind is expected.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims are the custom claims embedded in every token.
type Claims struct {
	UserID   uint     `json:"user_id"`
	Username string   `json:"username"`
	Perfis   []string `json:"perfis"`
	Tipo     string   `json:"typ"`
	jwt.RegisteredClaims
}

// Caller converts verified claims into the identity handed to services.
func (c *Claims) Caller() *Caller {
	return &Caller{UserID: c.UserID, Username: c.Username, Perfis: c.Perfis}
}

// Tokens signs and verifies HS256 tokens with a shared secret.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Issue signs an access token for caller valid for ttl.
func (t *Tokens) Issue(caller Caller, ttl time.Duration) (string, error) {
	return t.issue(caller, TokenAccess, ttl)
}

// IssueRefresh signs a refresh token, usable only on /login/refresh.
func (t *Tokens) IssueRefresh(caller Caller, ttl time.Duration) (string, error) {
	return t.issue(caller, TokenRefresh, ttl)
}

func (t *Tokens) issue(caller Caller, tipo string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   caller.UserID,
		Username: caller.Username,
		Perfis:   caller.Perfis,
		Tipo:     tipo,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies an access token and returns its claims.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	return t.parse(raw, TokenAccess)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (t *Tokens) ParseRefresh(raw string) (*Claims, error) {
	return t.parse(raw, TokenRefresh)
}

func (t *Tokens) parse(raw, tipo string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid || claims.Tipo != tipo {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
