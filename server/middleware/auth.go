package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/kbukum/nanodraw/errors"
)

// ClaimsKey is the Gin context key holding validated token claims.
const ClaimsKey = "auth_claims"

// AuthConfig configures the bearer authentication middleware.
type AuthConfig struct {
	// TokenValidator validates a token string and returns the claims.
	TokenValidator func(token string) (gojwt.MapClaims, error)
	// SkipPaths are URL path prefixes that bypass authentication.
	SkipPaths []string
}

// Auth returns a Gin middleware that validates Bearer tokens using the
// configured TokenValidator. Validated claims are stored under ClaimsKey.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := cfg.TokenValidator(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, reason string) {
	appErr := apperrors.Unauthorized(reason)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// HS256Validator returns a TokenValidator that accepts only HS256 tokens signed
// with secret. Expiry is enforced when the token carries "exp"; issuer is
// checked when non-empty.
func HS256Validator(secret, issuer string) func(string) (gojwt.MapClaims, error) {
	key := []byte(secret)
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
	}
	if issuer != "" {
		opts = append(opts, gojwt.WithIssuer(issuer))
	}

	return func(tokenString string) (gojwt.MapClaims, error) {
		claims := gojwt.MapClaims{}
		token, err := gojwt.ParseWithClaims(tokenString, claims, func(t *gojwt.Token) (interface{}, error) {
			if t.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("jwt: unexpected signing method: %s", t.Method.Alg())
			}
			return key, nil
		}, opts...)
		if err != nil {
			return nil, fmt.Errorf("jwt: parse token: %w", err)
		}
		if !token.Valid {
			return nil, errors.New("jwt: invalid token")
		}
		return claims, nil
	}
}
