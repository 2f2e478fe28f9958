package main

import (
	"clubdesk/src/common"
	"clubdesk/src/db"
	"clubdesk/src/middlewares"
	"clubdesk/src/models"
	"clubdesk/src/types"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

func dashboardHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/dashboard/summary", middlewares.RequireCapability(types.CAP_CATALOG_READ), func(ctx *gin.Context) {
			summary, err := common.DashboardSummary(ctx, time.Now())
			if err != nil {
				log.Printf("Error building dashboard summary: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": summary})
		})
	return g
}

func settingsHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	admin := g.Group("", middlewares.RequireCapability(types.CAP_SETTINGS_MANAGE))
	admin.
		POST("/settings", func(ctx *gin.Context) {
			var body types.CreateSettingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			setting := models.Setting{
				SettingKey:   body.Key,
				SettingValue: types.JSONBAny{Inner: body.Value},
				Group:        body.Group,
			}
			err := db.GetDb().
				WithContext(ctx).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "setting_key"}, {Name: "group"}},
					DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
				}).
				Create(&setting).
				Error
			if err != nil {
				log.Printf("Error saving setting %s: %s\n", body.Key, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": setting})
		}).
		GET("/settings", func(ctx *gin.Context) {
			var settings []models.Setting
			q := db.GetDb().WithContext(ctx)
			if group := ctx.Query("group"); group != "" {
				q = q.Where(`"group" = ?`, group)
			}
			if err := q.Find(&settings).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": settings})
		}).
		GET("/jobs/runs", func(ctx *gin.Context) {
			var runs []models.JobRun
			q := db.GetDb().WithContext(ctx)
			if name := ctx.Query("name"); name != "" {
				q = q.Where("name = ?", name)
			}
			if err := q.Order("started_at desc").Limit(100).Find(&runs).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": runs, "count": len(runs)})
		})
	return g
}
