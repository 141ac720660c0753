package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-engine/internal/domain/admin"
)

const adminClaimsKey = "admin_claims"

func setClaims(c *gin.Context, claims admin.Claims) {
	c.Set(adminClaimsKey, claims)
}

func getClaims(c *gin.Context) (admin.Claims, bool) {
	value, ok := c.Get(adminClaimsKey)
	if !ok {
		return admin.Claims{}, false
	}
	claims, ok := value.(admin.Claims)
	return claims, ok
}
