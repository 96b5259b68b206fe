package middlewares

import (
	"hotelmaint/src/lib"
	"hotelmaint/src/types"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// RequireRole aborts with 403 unless the session role is one of roles.
func RequireRole(roles ...types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s := CurrentSession(ctx)
		if s == nil || !slices.Contains(roles, s.Role) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": lib.T(Translator(ctx), "forbidden"),
				"code":  "forbidden",
			})
			return
		}
		ctx.Next()
	}
}
