package controllers

import (
	"clubdesk/src/common"
	"clubdesk/src/db"
	"clubdesk/src/models"
	"clubdesk/src/types"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var ErrLastAdmin = errors.New("cannot demote the last administrator")

func AccountsMe(ctx *gin.Context) (user *types.APIResponseUser, status int, err error) {
	var muser models.User
	if err := db.GetDb().
		WithContext(ctx).
		Where("id = ?", ctx.GetUint("id")).
		First(&muser).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusNotFound, err
		}
		return nil, http.StatusInternalServerError, err
	}
	res := muser.ToResponse()
	return &res, http.StatusOK, nil
}

func AccountsList(ctx *gin.Context) (users []types.APIResponseUser, status int, err error) {
	var musers []models.User
	q := db.GetDb().WithContext(ctx).Order("name asc")
	if role := ctx.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&musers).Error; err != nil {
		log.Printf("Error retrieving users: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	users = make([]types.APIResponseUser, 0, len(musers))
	for i := range musers {
		users = append(users, musers[i].ToResponse())
	}
	return users, http.StatusOK, nil
}

// AccountsUpdateRole changes the role of a user. At least one ADMIN must
// remain.
func AccountsUpdateRole(ctx *gin.Context) (user *types.APIResponseUser, status int, err error) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return nil, http.StatusBadRequest, err
	}
	var body types.UpdateRoleRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	actor := ctx.GetUint("id")
	var muser models.User
	err = db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", params.ID).First(&muser).Error; err != nil {
			return err
		}
		if muser.Role == types.ROLE_ADMIN && body.Role != types.ROLE_ADMIN {
			var admins int64
			if err := tx.
				Model(&models.User{}).
				Where("role = ?", types.ROLE_ADMIN).
				Count(&admins).
				Error; err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}
		previous := muser.Role
		if err := tx.
			Model(&models.User{}).
			Where("id = ?", muser.ID).
			Update("role", body.Role).
			Error; err != nil {
			return err
		}
		muser.Role = body.Role
		return common.RecordTrail(tx, "user.role_changed", actor, "users", fmt.Sprintf("%d", muser.ID), types.JSONB{
			"from": previous,
			"to":   body.Role,
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, http.StatusNotFound, err
		case errors.Is(err, ErrLastAdmin):
			return nil, http.StatusConflict, err
		}
		log.Printf("Error updating role of user [%d]: %s\n", params.ID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	res := muser.ToResponse()
	return &res, http.StatusOK, nil
}
