package main

import (
	"clubdesk/src/controllers"
	"clubdesk/src/middlewares"
	"clubdesk/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func accountHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/me", func(ctx *gin.Context) {
			user, status, err := controllers.AccountsMe(ctx)
			if err != nil {
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		POST("/auth/sign-out", func(ctx *gin.Context) {
			status, err := controllers.AuthSignOut(ctx)
			if err != nil {
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(status)
		})

	users := g.Group("/users", middlewares.RequireCapability(types.CAP_USERS_MANAGE))
	users.
		GET("", func(ctx *gin.Context) {
			list, status, err := controllers.AccountsList(ctx)
			if err != nil {
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": list, "count": len(list)})
		}).
		PATCH("/:id/role", func(ctx *gin.Context) {
			user, status, err := controllers.AccountsUpdateRole(ctx)
			if err != nil {
				log.Printf("[AccountsUpdateRole] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		})
	return g
}
