package middleware

import (
	"net/http"

	"github.com/audora-app/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// AccessTokenCookie is the name of the HTTP-only session cookie.
const AccessTokenCookie = "accessToken"

// ContextUserKey is the echo context key the verified claims are stored under.
const ContextUserKey = "user"

// JWTAuth verifies the accessToken cookie and stores the claims in the
// request context. Requests without a valid token are rejected with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := claimsFromCookie(c, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized.")
			}
			c.Set(ContextUserKey, claims)
			return next(c)
		}
	}
}

// OptionalJWTAuth is JWTAuth for endpoints that work both ways: a valid
// cookie attaches the viewer, anything else proceeds anonymously.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, err := claimsFromCookie(c, secret); err == nil {
				c.Set(ContextUserKey, claims)
			}
			return next(c)
		}
	}
}

func claimsFromCookie(c echo.Context, secret string) (*models.JwtCustomClaims, error) {
	cookie, err := c.Cookie(AccessTokenCookie)
	if err != nil {
		return nil, err
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
