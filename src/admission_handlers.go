package main

import (
	"clubdesk/src/common"
	"clubdesk/src/middlewares"
	"clubdesk/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func admissionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/scans/validate", middlewares.RequireCapability(types.CAP_SCANNER_OPERATE), func(ctx *gin.Context) {
			var body types.ValidateScanRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("[%s] Error validating request: %s\n", ctx.GetString("request_id"), err.Error())
				ctx.JSON(http.StatusBadRequest, types.RejectedScan(types.SCAN_UNKNOWN_ERROR))
				return
			}
			validator := common.Validator{
				ID:        ctx.GetUint("id"),
				Name:      ctx.GetString("name"),
				RequestID: ctx.GetString("request_id"),
			}
			outcome := common.ValidateGuestCode(ctx, body.Code, validator, body.Source)
			if outcome.ErrorCode == types.SCAN_UNKNOWN_ERROR {
				ctx.JSON(http.StatusInternalServerError, outcome)
				return
			}
			ctx.JSON(http.StatusOK, outcome)
		}).
		GET("/scans/history", middlewares.RequireCapability(types.CAP_SCANS_HISTORY), func(ctx *gin.Context) {
			var query types.ScanHistoryQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			rows, err := common.ScanHistory(query.Limit, query.EventID)
			if err != nil {
				log.Printf("Error retrieving scan history: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
		})
	return g
}
