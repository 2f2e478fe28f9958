package main

import (
	"clubdesk/src/common"
	"clubdesk/src/db"
	"clubdesk/src/middlewares"
	"clubdesk/src/models"
	"clubdesk/src/types"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func notFoundOr(ctx *gin.Context, err error, status int) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

func venueHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	read := middlewares.RequireCapability(types.CAP_CATALOG_READ)
	manage := middlewares.RequireCapability(types.CAP_CATALOG_MANAGE)

	g.
		GET("/sectors", read, func(ctx *gin.Context) {
			var sectors []models.Sector
			q := db.GetDb().WithContext(ctx).Order("name asc")
			if ctx.Query("include") == "tables" {
				q = q.Preload("Tables")
			}
			if err := q.Find(&sectors).Error; err != nil {
				log.Printf("Error retrieving sectors: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": sectors, "count": len(sectors)})
		}).
		POST("/sectors", manage, func(ctx *gin.Context) {
			var body types.SectorRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			sector, err := common.CreateSector(ctx, &body)
			if err != nil {
				log.Printf("Error creating sector: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": sector})
		}).
		PUT("/sectors/:id", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.SectorRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var sector models.Sector
			err := db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("id = ?", params.ID).First(&sector).Error; err != nil {
					return err
				}
				sector.Name = body.Name
				sector.Description = body.Description
				sector.Capacity = body.Capacity
				if body.Active != nil {
					sector.Active = *body.Active
				}
				return tx.Select("name", "description", "capacity", "active").Save(&sector).Error
			})
			if err != nil {
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": sector})
		}).
		DELETE("/sectors/:id", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res := db.GetDb().WithContext(ctx).Where("id = ?", params.ID).Delete(&models.Sector{})
			if res.Error != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})

	g.
		GET("/tables", read, func(ctx *gin.Context) {
			var filters types.TableQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var tables []models.VenueTable
			q := db.GetDb().WithContext(ctx).Preload("Sector").Order("name asc")
			if filters.SectorID > 0 {
				q = q.Where("sector_id = ?", filters.SectorID)
			}
			if err := q.Find(&tables).Error; err != nil {
				log.Printf("Error retrieving tables: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tables, "count": len(tables)})
		}).
		POST("/tables", manage, func(ctx *gin.Context) {
			var body types.TableRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			table := models.VenueTable{
				SectorID: body.SectorID,
				Name:     body.Name,
				Capacity: body.Capacity,
				MinSpend: body.MinSpend,
				Active:   body.Active == nil || *body.Active,
			}
			err := db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := tx.Select("id").Where("id = ?", body.SectorID).First(&models.Sector{}).Error; err != nil {
					return err
				}
				return tx.Create(&table).Error
			})
			if err != nil {
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": table})
		}).
		PUT("/tables/:id", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.TableRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var table models.VenueTable
			err := db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("id = ?", params.ID).First(&table).Error; err != nil {
					return err
				}
				table.SectorID = body.SectorID
				table.Name = body.Name
				table.Capacity = body.Capacity
				table.MinSpend = body.MinSpend
				if body.Active != nil {
					table.Active = *body.Active
				}
				return tx.Select("sector_id", "name", "capacity", "min_spend", "active").Save(&table).Error
			})
			if err != nil {
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": table})
		}).
		DELETE("/tables/:id", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res := db.GetDb().WithContext(ctx).Where("id = ?", params.ID).Delete(&models.VenueTable{})
			if res.Error != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})

	g.
		GET("/packages", read, func(ctx *gin.Context) {
			var packages []models.Package
			q := db.GetDb().WithContext(ctx).Order("name asc")
			if ctx.Query("active") == "true" {
				q = q.Where("active = ?", true)
			}
			if err := q.Find(&packages).Error; err != nil {
				log.Printf("Error retrieving packages: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": packages, "count": len(packages)})
		}).
		POST("/packages", manage, func(ctx *gin.Context) {
			var body types.PackageRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			pkg := models.Package{
				Name:        body.Name,
				Description: body.Description,
				Price:       body.Price,
				Currency:    body.Currency,
				Includes:    datatypes.JSONSlice[string](body.Includes),
				Active:      body.Active == nil || *body.Active,
			}
			if err := db.GetDb().WithContext(ctx).Create(&pkg).Error; err != nil {
				log.Printf("Error creating package: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": pkg})
		}).
		PUT("/packages/:id", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.PackageRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var pkg models.Package
			err := db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("id = ?", params.ID).First(&pkg).Error; err != nil {
					return err
				}
				pkg.Name = body.Name
				pkg.Description = body.Description
				pkg.Price = body.Price
				pkg.Currency = body.Currency
				pkg.Includes = datatypes.JSONSlice[string](body.Includes)
				if body.Active != nil {
					pkg.Active = *body.Active
				}
				return tx.Select("name", "description", "price", "currency", "includes", "active").Save(&pkg).Error
			})
			if err != nil {
				notFoundOr(ctx, err, http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": pkg})
		}).
		DELETE("/packages/:id", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res := db.GetDb().WithContext(ctx).Where("id = ?", params.ID).Delete(&models.Package{})
			if res.Error != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
