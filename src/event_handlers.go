package main

import (
	"bytes"
	"clubdesk/src/boot"
	"clubdesk/src/common"
	"clubdesk/src/config"
	"clubdesk/src/db"
	awslib "clubdesk/src/lib/aws"
	"clubdesk/src/middlewares"
	"clubdesk/src/models"
	"clubdesk/src/models/scopes"
	"clubdesk/src/types"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var flyerExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func flyerKey(eventID uint, ext string) string {
	return fmt.Sprintf("flyers/%d%s", eventID, ext)
}

func eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	read := middlewares.RequireCapability(types.CAP_CATALOG_READ)
	manage := middlewares.RequireCapability(types.CAP_CATALOG_MANAGE)

	g.
		GET("/events", read, func(ctx *gin.Context) {
			var filters types.EventQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var events []models.Event
			q := db.GetDb().WithContext(ctx).Scopes(scopes.WithStatus(filters.Status))
			if filters.Upcoming {
				q = q.Scopes(scopes.Upcoming(time.Now())).Order("date_time asc")
			} else {
				q = q.Order("date_time desc")
			}
			if err := q.Limit(100).Find(&events).Error; err != nil {
				log.Printf("Error retrieving events: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events, "count": len(events)})
		}).
		GET("/events/:id", read, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var event models.Event
			if err := db.GetDb().WithContext(ctx).Scopes(scopes.WithID(params.ID)).First(&event).Error; err != nil {
				log.Printf("Error finding event %d: %s\n", params.ID, err.Error())
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		POST("/events", manage, func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			event, err := common.CreateEvent(ctx, &body, ctx.GetUint("id"))
			if err != nil {
				log.Printf("error creating event: %s", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": event})
		}).
		PUT("/events/:id", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates := map[string]any{}
			if body.Name != nil {
				updates["name"] = *body.Name
			}
			if body.Description != nil {
				updates["description"] = *body.Description
			}
			if body.Capacity != nil {
				updates["capacity"] = *body.Capacity
			}
			if body.DateTime != nil {
				dt, err := time.Parse(config.TIME_PARSE_FORMAT, *body.DateTime)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				updates["date_time"] = dt
			}
			if len(updates) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
				return
			}
			var event models.Event
			err := db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("id = ?", params.ID).First(&event).Error; err != nil {
					return err
				}
				if event.Status == types.EVENT_COMPLETED || event.Status == types.EVENT_CANCELED {
					return common.ErrInvalidTransition
				}
				if err := tx.Model(&event).Updates(updates).Error; err != nil {
					return err
				}
				return tx.Where("id = ?", params.ID).First(&event).Error
			})
			if err != nil {
				if errors.Is(err, common.ErrInvalidTransition) {
					ctx.JSON(http.StatusConflict, gin.H{"error": "event can no longer be edited"})
					return
				}
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		PATCH("/events/:id/status", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateEventStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := common.UpdateEventStatus(ctx, params.ID, body.Status); err != nil {
				if errors.Is(err, common.ErrInvalidTransition) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			if body.Status == types.EVENT_PUBLISHED {
				var event models.Event
				if err := db.GetDb().Select("id", "date_time").Where("id = ?", params.ID).First(&event).Error; err == nil {
					boot.ScheduleEventCompletion(event.ID, event.DateTime.Add(config.EventCompleteAfter()))
				}
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/events/:id", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := common.DeleteEvent(ctx, params.ID); err != nil {
				if errors.Is(err, common.ErrInvalidTransition) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Error deleting event %d: %s\n", params.ID, err.Error())
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/events/:id/flyer", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			fh, err := ctx.FormFile("flyer")
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			maxBytes := config.FlyerMaxBytes()
			if fh.Size > maxBytes {
				ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("flyer exceeds %d bytes", maxBytes)})
				return
			}
			f, err := fh.Open()
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			defer f.Close()
			data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if int64(len(data)) > maxBytes {
				ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("flyer exceeds %d bytes", maxBytes)})
				return
			}
			mtype := mimetype.Detect(data)
			ext, ok := flyerExtensions[mtype.String()]
			if !ok {
				ctx.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("unsupported flyer type %s", mtype.String())})
				return
			}

			var event models.Event
			if err := db.GetDb().WithContext(ctx).Select("id").Where("id = ?", params.ID).First(&event).Error; err != nil {
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			key := flyerKey(event.ID, ext)
			var url *string
			if awslib.StorageEnabled() {
				url, err = awslib.S3UploadAsset(ctx, key, bytes.NewReader(data), mtype.String(), config.QRURLTTL())
				if err != nil {
					log.Printf("Error uploading asset to S3 bucket: %s\n", err.Error())
					ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not store flyer"})
					return
				}
			} else {
				target := path.Join(config.TempDir(), key)
				if err := os.MkdirAll(path.Dir(target), 0o755); err == nil {
					err = os.WriteFile(target, data, 0o644)
				}
				if err != nil {
					log.Printf("Error saving flyer for event [%d]: %s\n", event.ID, err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not store flyer"})
					return
				}
			}
			if err := db.GetDb().Model(&models.Event{}).Where("id = ?", event.ID).Update("image_key", key).Error; err != nil {
				log.Printf("Error saving flyer key for event [%d]: %s\n", event.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"key": key, "url": url, "content_type": mtype.String()}})
		}).
		GET("/events/:id/flyer", read, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var event models.Event
			if err := db.GetDb().WithContext(ctx).Select("id", "image_key").Where("id = ?", params.ID).First(&event).Error; err != nil {
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			if event.ImageKey == nil || *event.ImageKey == "" {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "event has no flyer"})
				return
			}
			key := *event.ImageKey
			if awslib.StorageEnabled() {
				url, err := awslib.S3PresignAsset(ctx, key, config.QRURLTTL())
				if err != nil {
					log.Printf("Error presigning flyer [%s]: %s\n", key, err.Error())
					ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not retrieve flyer"})
					return
				}
				ctx.Redirect(http.StatusTemporaryRedirect, *url)
				return
			}
			if strings.Contains(key, "..") {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "event has no flyer"})
				return
			}
			ctx.File(path.Join(config.TempDir(), key))
		})

	return g
}
