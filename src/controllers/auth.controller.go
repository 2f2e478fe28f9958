package controllers

import (
	"clubdesk/src/config"
	"clubdesk/src/db"
	"clubdesk/src/lib"
	"clubdesk/src/models"
	"clubdesk/src/types"
	"clubdesk/src/utils"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrTooManyAttempts    = errors.New("too many sign-in attempts, try again later")
)

func signInKey(email string) string {
	return fmt.Sprintf("auth:attempts:%s", email)
}

// AuthSignUp registers a USER account. Elevated roles are granted by an
// administrator afterwards.
func AuthSignUp(ctx *gin.Context) (user *types.APIResponseUser, status int, err error) {
	var body types.SignUpRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		log.Printf("Error hashing password: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	newUser := models.User{
		Name:         strings.TrimSpace(body.Name),
		Email:        strings.ToLower(body.Email),
		PasswordHash: hash,
		Role:         types.ROLE_USER,
	}
	err = db.GetDb().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.User{}).
			Where("email = ?", newUser.Email).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Create(&newUser).Error
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, http.StatusConflict, err
		}
		log.Printf("Error creating user: %s\n", err.Error())
		return nil, http.StatusInternalServerError, errors.New("could not complete registration")
	}
	res := newUser.ToResponse()
	return &res, http.StatusCreated, nil
}

func AuthSignIn(ctx *gin.Context) (token *string, user *types.APIResponseUser, status int, err error) {
	var body types.SignInRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, nil, http.StatusBadRequest, err
	}
	email := strings.ToLower(body.Email)
	limit, window := config.SignInLimit()
	allowed, err := lib.AllowAttempt(ctx, signInKey(email), limit, window)
	if err != nil {
		log.Printf("[redis] Error checking sign-in attempts: %s\n", err.Error())
		allowed = true
	}
	if !allowed {
		return nil, nil, http.StatusTooManyRequests, ErrTooManyAttempts
	}

	var muser models.User
	err = db.GetDb().
		WithContext(ctx).
		Where("email = ?", email).
		Limit(1).
		Find(&muser).
		Error
	if err != nil {
		log.Printf("Error retrieving user: %s\n", err.Error())
		return nil, nil, http.StatusInternalServerError, errors.New("could not complete sign in")
	}
	if muser.ID == 0 || !utils.CheckPassword(body.Password, muser.PasswordHash) {
		return nil, nil, http.StatusUnauthorized, ErrInvalidCredentials
	}

	jwt, err := utils.GenerateJWT(muser.ID, muser.Name, muser.Role)
	if err != nil {
		log.Printf("Error generating token for user [%d]: %s\n", muser.ID, err.Error())
		return nil, nil, http.StatusInternalServerError, err
	}
	now := time.Now()
	if err := db.GetDb().
		Model(&models.User{}).
		Where("id = ?", muser.ID).
		Update("last_active", now).
		Error; err != nil {
		log.Printf("Error updating last activity of user [%d]: %s\n", muser.ID, err.Error())
	}
	muser.LastActive = &now
	lib.ResetAttempts(ctx, signInKey(email))
	res := muser.ToResponse()
	return &jwt, &res, http.StatusOK, nil
}

// AuthSignOut stamps the last activity. Tokens are stateless and expire on
// their own.
func AuthSignOut(ctx *gin.Context) (status int, err error) {
	id := ctx.GetUint("id")
	if err := db.GetDb().
		WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_active", time.Now()).
		Error; err != nil {
		log.Printf("Error signing out user [%d]: %s\n", id, err.Error())
		return http.StatusInternalServerError, err
	}
	return http.StatusNoContent, nil
}
