package echoapi

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core/user"
)

const (
	contextPrincipalKey = "principal"
	bearerPrefix        = "Bearer "
)

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued elsewhere; this API only verifies them.
type Claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// NewClaims builds the claims identifying p, valid for ttl.
func NewClaims(p user.Principal, issuer string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:  p.Name,
		Email: p.Email,
		Roles: p.Roles,
	}
}

func (c Claims) Principal() user.Principal {
	return user.Principal{
		ID:    c.Subject,
		Name:  c.Name,
		Email: c.Email,
		Roles: user.CleanRoles(c.Roles),
	}
}

// GenerateToken generates a HS256 signed JWT token string representing the Claims.
func GenerateToken(secret string, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// authMiddleware verifies the bearer token and stores the caller's user.Principal in the context.
func authMiddleware(secret, issuer string) echo.MiddlewareFunc {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
	)
	keyFunc := func(*jwt.Token) (interface{}, error) { return key, nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, bearerPrefix)
			if !ok || strings.TrimSpace(raw) == "" {
				return errMissingToken
			}

			claims := new(Claims)
			if _, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, keyFunc); err != nil {
				return errInvalidToken.WithInternal(err)
			}
			if claims.Subject == "" {
				return errInvalidToken
			}
			ctx.Set(contextPrincipalKey, claims.Principal())
			return next(ctx)
		}
	}
}

func getContextPrincipal(ctx echo.Context) (user.Principal, error) {
	if p, ok := ctx.Get(contextPrincipalKey).(user.Principal); ok {
		return p, nil
	}
	return user.Principal{}, errUnauthorized
}
