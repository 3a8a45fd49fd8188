package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/supply-desk-api/internal/service"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
	"github.com/noah-isme/supply-desk-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing gateway identity claims.
const ContextIdentityKey = "currentParticipant"

// Identity protects routes by requiring a valid gateway identity token.
func Identity(identityService *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := identityService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, claims)
		c.Next()
	}
}
