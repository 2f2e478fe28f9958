package main

import (
	"clubdesk/src/common"
	"clubdesk/src/middlewares"
	"clubdesk/src/types"
	"clubdesk/src/utils"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func activityFailure(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, utils.ErrInvalidDate):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrActivityNotFound), errors.Is(err, common.ErrUserNotFound):
		status = http.StatusNotFound
	default:
		log.Printf("Error in activity ledger: %s\n", err.Error())
	}
	ctx.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func activityHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	write := middlewares.RequireCapability(types.CAP_ACTIVITY_WRITE)

	g.
		PUT("/activity", write, func(ctx *gin.Context) {
			var body types.UpsertActivityRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			entry, err := common.UpsertActivity(ctx, body.UserID, body.Date, body.HasActivity, body.Description)
			if err != nil {
				activityFailure(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": entry.ToResponse()})
		}).
		DELETE("/activity/:userId/:date", write, func(ctx *gin.Context) {
			var params types.ActivityEntryParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			if err := common.DeleteActivity(ctx, params.UserID, params.Date); err != nil {
				activityFailure(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true})
		}).
		GET("/activity/:userId", func(ctx *gin.Context) {
			var params types.ActivityUserParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			if params.UserID != ctx.GetUint("id") && !middlewares.Can(ctx, types.CAP_ACTIVITY_READ) {
				ctx.JSON(http.StatusForbidden, gin.H{"success": false, "error": "insufficient permissions"})
				return
			}
			var query types.ActivityMonthQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			entries, err := common.ListActivityMonth(ctx, params.UserID, query.Year, query.Month)
			if err != nil {
				activityFailure(ctx, err)
				return
			}
			data := make([]types.APIResponseActivityEntry, 0, len(entries))
			for i := range entries {
				data = append(data, entries[i].ToResponse())
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": len(data)})
		})

	g.
		GET("/stats/activity", middlewares.RequireCapability(types.CAP_STATS_READ), func(ctx *gin.Context) {
			var query types.StatsQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			stats, err := common.ActivityStats(ctx, query.Year)
			if err != nil {
				log.Printf("Error computing activity stats: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": stats})
		})
	return g
}
