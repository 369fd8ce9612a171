package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/navai/internal/utils"
)

func roleSet(allowed []string) map[string]struct{} {
	allow := map[string]struct{}{}
	for _, a := range allowed {
		a = strings.TrimSpace(strings.ToLower(a))
		if a != "" {
			allow[a] = struct{}{}
		}
	}
	return allow
}

func forbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, apiError{
		Code:    utils.CodeForbidden,
		Message: "forbidden",
	})
}

func callerRole(c *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(c.GetString(CtxRole)))
}

// RequireOwnerOrRole lets the request through when the path parameter param
// names the caller, or when the caller holds one of allowed.
func RequireOwnerOrRole(param string, allowed ...string) gin.HandlerFunc {
	allow := roleSet(allowed)

	return func(c *gin.Context) {
		if owner := c.GetString(CtxOwnerID); owner != "" && owner == c.Param(param) {
			c.Next()
			return
		}
		if _, ok := allow[callerRole(c)]; ok {
			c.Next()
			return
		}
		forbidden(c)
	}
}

// HasRole reports whether the caller's token carries role, compared the same
// way RequireOwnerOrRole compares it.
func HasRole(c *gin.Context, role string) bool {
	return callerRole(c) == strings.ToLower(strings.TrimSpace(role))
}
