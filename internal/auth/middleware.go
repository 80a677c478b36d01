package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "auth_claims"

var (
	errNoBearer = errors.New("missing bearer token")
	errRevoked  = errors.New("token revoked")
)

// AuthMiddleware admits requests carrying a valid bearer token. With a
// repo it also rejects tokens whose version no longer matches the user's.
func AuthMiddleware(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c.Request.Context(), tokens, repo, c.GetHeader("Authorization"))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, errNoBearer) {
				msg = err.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func authenticate(ctx context.Context, tokens TokenService, repo *Repo, header string) (*Claims, error) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
		return nil, errNoBearer
	}
	claims, err := tokens.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return claims, nil
	}
	version, found, err := repo.GetTokenVersion(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !found || version != claims.TokenVersion {
		return nil, errRevoked
	}
	return claims, nil
}

// ClaimsFrom returns the claims stored by AuthMiddleware, or nil on a
// route that is not protected.
func ClaimsFrom(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
