package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-engine/internal/domain/admin"
	apperrors "github.com/yanqian/faq-engine/pkg/errors"
)

// adminMiddleware accepts either a bearer session token or the admin password header.
func adminMiddleware(svc admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "invalid authorization header", nil))
				return
			}
			claims, err := svc.ValidateToken(c.Request.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				abortWithError(c, fromAppError(err))
				return
			}
			setClaims(c, claims)
			c.Next()
			return
		}

		password := admin.PasswordFromHeaders(c.GetHeader)
		if err := svc.Authorize(c.Request.Context(), password); err != nil {
			abortWithError(c, fromAppError(err))
			return
		}
		c.Next()
	}
}
