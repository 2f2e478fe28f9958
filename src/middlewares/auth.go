package middlewares

import (
	"clubdesk/src/db"
	"clubdesk/src/models"
	"clubdesk/src/utils"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer ") {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	reqToken := strings.TrimSpace(strings.TrimPrefix(bearerToken, "Bearer "))
	if reqToken == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	claims, err := utils.ParseJWT(reqToken)
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	// The role is read from the database so a role change applies to
	// tokens issued before it.
	var user models.User
	if err := db.GetDb().
		Model(&models.User{}).
		Select("id", "name", "email", "role").
		Where("id = ?", uint(uid)).
		Limit(1).
		Find(&user).
		Error; err != nil || user.ID == 0 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}
	ctx.Set("id", user.ID)
	ctx.Set("name", user.Name)
	ctx.Set("email", user.Email)
	ctx.Set("role", user.Role)
}
