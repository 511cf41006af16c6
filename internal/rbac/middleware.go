package rbac

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sales-crm/internal/auth"
)

// RequireAnyRole allows access if the caller has any of the provided roles.
// Admins pass every check; unknown roles never do.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		u, ok := auth.UserFrom(c.Request.Context())
		role := u.Role
		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role required"})
			return
		}
		if !IsKnownRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		if IsAdmin(role) {
			c.Next()
			return
		}
		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireWriter rejects read-only callers on mutating routes. Safe methods
// pass through so a group can mix reads and writes.
func RequireWriter() gin.HandlerFunc {
	check := RequireAnyRole(Writers...)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		check(c)
	}
}
