package main

import (
	"clubdesk/src/common"
	"clubdesk/src/db"
	"clubdesk/src/middlewares"
	"clubdesk/src/models"
	"clubdesk/src/types"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func requestErrorStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrRequestNotFound),
		errors.Is(err, common.ErrEventNotFound),
		errors.Is(err, common.ErrTableNotFound),
		errors.Is(err, common.ErrPackageNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrRequestNotPending),
		errors.Is(err, common.ErrEventNotOpen):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// visibleRequests limits non-deciders to the requests they filed.
func visibleRequests(ctx *gin.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if middlewares.Can(ctx, types.CAP_REQUESTS_READ_ALL) {
			return db
		}
		return db.Where("requested_by = ?", ctx.GetUint("id"))
	}
}

func requestHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	create := middlewares.RequireCapability(types.CAP_REQUESTS_CREATE)
	decide := middlewares.RequireCapability(types.CAP_REQUESTS_DECIDE)

	g.
		POST("/requests", create, func(ctx *gin.Context) {
			var body types.CreateGuestRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			request, err := common.CreateGuestRequest(ctx, &body, ctx.GetUint("id"))
			if err != nil {
				log.Printf("Error creating guest request: %s\n", err.Error())
				ctx.JSON(requestErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": request})
		}).
		GET("/requests", create, func(ctx *gin.Context) {
			var filters types.GuestRequestQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var requests []models.GuestRequest
			q := db.GetDb().
				WithContext(ctx).
				Preload("Event").
				Preload("Guests").
				Scopes(visibleRequests(ctx))
			if filters.Status != "" {
				q = q.Where("status = ?", filters.Status)
			}
			if filters.EventID > 0 {
				q = q.Where("event_id = ?", filters.EventID)
			}
			if err := q.Order("created_at desc").Limit(200).Find(&requests).Error; err != nil {
				log.Printf("Error retrieving guest requests: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": requests, "count": len(requests)})
		}).
		GET("/requests/:id", create, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var request models.GuestRequest
			if err := db.GetDb().
				WithContext(ctx).
				Preload("Event").
				Preload("Table").
				Preload("Package").
				Preload("Guests").
				Scopes(visibleRequests(ctx)).
				Where("id = ?", params.ID).
				First(&request).
				Error; err != nil {
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": request})
		}).
		PATCH("/requests/:id/approve", decide, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			issued, err := common.ApproveGuestRequest(ctx, params.ID, ctx.GetUint("id"))
			if err != nil {
				log.Printf("Error approving guest request [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(requestErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			var request models.GuestRequest
			if err := db.GetDb().Preload("Event").Where("id = ?", params.ID).First(&request).Error; err != nil {
				log.Printf("Error loading approved request [%d]: %s\n", params.ID, err.Error())
			} else if request.Event != nil && len(issued) > 0 {
				go common.DeliverGuestCodes(issued, *request.Event)
			}
			ctx.JSON(http.StatusOK, gin.H{"data": issued, "count": len(issued)})
		}).
		PATCH("/requests/:id/reject", decide, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.RejectGuestRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := common.RejectGuestRequest(ctx, params.ID, ctx.GetUint("id"), body.Reason); err != nil {
				log.Printf("Error rejecting guest request [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(requestErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/requests/:id/guests/:guestId/qr", create, func(ctx *gin.Context) {
			var params types.GuestQRParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var query types.GuestQRQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var entry models.GuestEntry
			err := db.GetDb().
				WithContext(ctx).
				Model(&models.GuestEntry{}).
				Joins("JOIN guest_requests ON guest_requests.id = guest_entries.request_id").
				Where("guest_entries.id = ? AND guest_entries.request_id = ?", params.GuestID, params.ID).
				Scopes(func(db *gorm.DB) *gorm.DB {
					if middlewares.Can(ctx, types.CAP_REQUESTS_READ_ALL) {
						return db
					}
					return db.Where("guest_requests.requested_by = ?", ctx.GetUint("id"))
				}).
				First(&entry).
				Error
			if err != nil {
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			if entry.Code == nil {
				ctx.JSON(http.StatusConflict, gin.H{"error": "guest has no code issued"})
				return
			}
			path, url, err := common.GuestQR(ctx, &entry)
			if err != nil {
				log.Printf("Error rendering QR for guest [%d]: %s\n", entry.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if query.ShareLink {
				if url == nil {
					ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage is not configured"})
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"url": url}})
				return
			}
			ctx.FileAttachment(path, fmt.Sprintf("%s.jpeg", *entry.Code))
		})
	return g
}
