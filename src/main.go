package main

import (
	"clubdesk/src/boot"
	"clubdesk/src/config"
	"clubdesk/src/controllers"
	"clubdesk/src/middlewares"
	"clubdesk/src/types"
	"clubdesk/src/utils"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	apiPrefix string = "/api/v1"
)

var futureDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	return datetime.After(time.Now())
}

var isoDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := utils.ParseISODate(date)
	return err == nil
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("futuredate", futureDateValidatorFunc)
		v.RegisterValidation("isodate", isoDateValidatorFunc)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders, middlewares.RequestID)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		if config.MaintenanceMode() {
			log.Println("server is under maintenance")
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "server is under maintenance"})
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	guest := apiv1.Group("/auth")
	guest.
		POST("/sign-in", func(ctx *gin.Context) {
			token, user, status, err := controllers.AuthSignIn(ctx)
			if err != nil {
				log.Printf("[AuthSignIn] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}

			ctx.JSON(http.StatusOK, gin.H{
				"token": token,
				"user":  user,
			})
		}).
		POST("/sign-up", func(ctx *gin.Context) {
			user, status, err := controllers.AuthSignUp(ctx)
			if err != nil {
				log.Printf("[AuthSignUp] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}

			ctx.JSON(status, gin.H{"data": user})
		})
	return guest
}

// authorizedRoutes mounts everything that needs a signed-in user. Handlers
// guard their own capabilities.
func authorizedRoutes(g *gin.Engine) *gin.RouterGroup {
	authorized := g.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		accountHandlers(authorized)
		venueHandlers(authorized)
		eventHandlers(authorized)
		requestHandlers(authorized)
		admissionHandlers(authorized)
		activityHandlers(authorized)
		dashboardHandlers(authorized)
		settingsHandlers(authorized)
	}
	return authorized
}

func initLogger() {
	cwd, _ := os.Getwd()
	logsDir := path.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		log.Printf("Could not create logs dir: %s\n", err.Error())
		return
	}
	serverLogs := path.Join(logsDir, "server.log")
	apiLogs := path.Join(logsDir, "api.log")
	gin.ForceConsoleColor()

	f, err := os.Create(apiLogs)
	if err == nil {
		gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func corsMiddleware() gin.HandlerFunc {
	if config.APIEnv() == string(types.Local) {
		return cors.Default()
	}
	appHost := config.AppHost()
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", middlewares.RequestIDHeader)
	cc.ExposeHeaders = append(cc.ExposeHeaders, middlewares.RequestIDHeader)
	cc.AllowOriginFunc = func(origin string) bool {
		if appHost == "" {
			return false
		}
		match, _ := regexp.MatchString(regexp.QuoteMeta(appHost), origin)
		return match
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

func main() {
	if os.Getenv("API_ENV") == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("No .env loaded: %s\n", err.Error())
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitTempDir()
	if err := boot.SeedAdmin(); err != nil {
		log.Printf("Error seeding administrator: %s\n", err.Error())
	}
	boot.InitScheduler()
	defer boot.StopScheduler()

	if config.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter()
	router.Use(corsMiddleware())
	registerValidators()

	router = maintenanceModeMiddleware(router)

	guestAuthRoutes(router)

	authorizedRoutes(router)

	addr := ":" + config.APIPort()
	if config.TLSEnabled() {
		cwd, _ := os.Getwd()
		certpath := path.Join(cwd, "certificates", "localhost.pem")
		keypath := path.Join(cwd, "certificates", "localhost-key.pem")
		if err := router.RunTLS(addr, certpath, keypath); err != nil {
			log.Fatalf("Failed to start server: %s", err)
		}
	}
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
