package middlewares

import (
	"clubdesk/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RoleOf reads the role stored by AuthMiddleware.
func RoleOf(ctx *gin.Context) types.Role {
	v, ok := ctx.Get("role")
	if !ok {
		return ""
	}
	role, _ := v.(types.Role)
	return role
}

func Can(ctx *gin.Context, capability types.Capability) bool {
	return types.Can(RoleOf(ctx), capability)
}

func RequireCapability(capability types.Capability) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !Can(ctx, capability) {
			log.Printf("Access denied to %s for user [%d] with role %q\n", capability, ctx.GetUint("id"), RoleOf(ctx))
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		ctx.Next()
	}
}
