// internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/services"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

// SecurityLogger receives authentication and authorization failures.
type SecurityLogger interface {
	LogSecurityEvent(ctx context.Context, entry services.SecurityEntry)
}

var errMalformedHeader = errors.New("malformed authorization header")

// actorFromRequest returns the actor of a Bearer token, nil when no
// Authorization header is present.
func actorFromRequest(c *gin.Context) (*models.Actor, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, nil
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errMalformedHeader
	}

	claims, err := utils.ValidateJWT(parts[1])
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, err
	}
	role := models.Role(claims.Role)
	if !role.IsValid() {
		return nil, errors.New("token carries an unknown role")
	}

	return &models.Actor{ID: id, Username: claims.Username, Role: role}, nil
}

func AuthRequired(security SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		actor, err := actorFromRequest(c)
		if err != nil {
			key := i18n.KeyAuthInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				key = i18n.KeyAuthTokenExpired
			} else if security != nil {
				security.LogSecurityEvent(c.Request.Context(), services.SecurityEntry{
					Type:      services.SecurityInvalidToken,
					Severity:  services.SeverityWarning,
					IP:        c.ClientIP(),
					UserAgent: c.Request.UserAgent(),
					Details:   models.JSONB{"path": c.Request.URL.Path},
				})
			}
			utils.UnauthorizedResponse(c, i18n.T(lang, key))
			c.Abort()
			return
		}
		if actor == nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		utils.SetActor(c, actor)
		c.Next()
	}
}

// OptionalAuth sets the actor when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, err := actorFromRequest(c); err == nil && actor != nil {
			utils.SetActor(c, actor)
		}
		c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired(security SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := utils.GetActorFromContext(c)
		if !actor.IsAdmin() {
			if security != nil {
				entry := services.SecurityEntry{
					Type:      services.SecurityAccessDenied,
					Severity:  services.SeverityWarning,
					UserID:    actor.IDPtr(),
					IP:        c.ClientIP(),
					UserAgent: c.Request.UserAgent(),
					Details:   models.JSONB{"path": c.Request.URL.Path},
				}
				security.LogSecurityEvent(c.Request.Context(), entry)
			}
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
