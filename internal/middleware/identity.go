package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/sidelinehq/coach-backend/internal/quota"
)

// ContextKeyIdentity is the gin context key carrying the resolved client
// identity.
const ContextKeyIdentity = "clientIdentity"

// IdentityMiddleware resolves the client identity from the network address.
// Clients without a resolvable address all share the quota fallback bucket,
// so an unresolvable client cannot mint itself a fresh quota per request.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.ClientIP()
		if identity == "" {
			identity = quota.FallbackIdentity
		}
		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// ClientIdentity returns the identity resolved by IdentityMiddleware, or the
// fallback bucket if the middleware did not run.
func ClientIdentity(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := v.(string); ok && identity != "" {
			return identity
		}
	}
	return quota.FallbackIdentity
}
