package main

import (
	"context"
	"errors"
	"hotelmaint/src/boot"
	"hotelmaint/src/config"
	"hotelmaint/src/lib"
	"hotelmaint/src/lib/mailer"
	"hotelmaint/src/middlewares"
	"hotelmaint/src/repository"
	"hotelmaint/src/services"
	"hotelmaint/src/session"
	"hotelmaint/src/types"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
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

// app holds the services the route groups are built on.
type app struct {
	store         *repository.Store
	feed          lib.Feed
	hub           *session.Hub
	cache         session.Cache
	secret        []byte
	debounce      time.Duration
	tickets       *services.TicketService
	dashboard     *services.DashboardService
	directory     *services.DirectoryService
	checklists    *services.ChecklistService
	notifications *services.NotificationService
}

type appDeps struct {
	Store       *repository.Store
	Feed        lib.Feed
	Cache       session.Cache
	Storage     services.ObjectStorage
	Idempotency services.KeyClaimer
	Notifier    services.Notifier
	Secret      []byte
}

func newApp(d appDeps) *app {
	hub := session.NewHub()
	media := &services.MediaService{Storage: d.Storage}
	return &app{
		store:  d.Store,
		feed:   d.Feed,
		hub:    hub,
		cache:  d.Cache,
		secret: d.Secret,
		tickets: &services.TicketService{
			Store:       d.Store,
			Notifier:    d.Notifier,
			Feed:        d.Feed,
			Media:       media,
			Idempotency: d.Idempotency,
		},
		dashboard:     &services.DashboardService{Store: d.Store},
		directory:     &services.DirectoryService{Store: d.Store, Cache: d.Cache, Hub: hub},
		checklists:    &services.ChecklistService{Store: d.Store},
		notifications: &services.NotificationService{Store: d.Store, Feed: d.Feed},
	}
}

func enumValidator(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	}
}

var (
	ticketPriorityValidatorFunc = enumValidator(func(s string) bool { _, err := types.ParseTicketPriority(s); return err == nil })
	ticketStatusValidatorFunc   = enumValidator(func(s string) bool { _, err := types.ParseTicketStatus(s); return err == nil })
	ticketCategoryValidatorFunc = enumValidator(func(s string) bool { _, err := types.ParseTicketCategory(s); return err == nil })
	roomStatusValidatorFunc     = enumValidator(func(s string) bool { _, err := types.ParseRoomStatus(s); return err == nil })
	userRoleValidatorFunc       = enumValidator(func(s string) bool { _, err := types.ParseRole(s); return err == nil })
)

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("ticketpriority", ticketPriorityValidatorFunc)
		v.RegisterValidation("ticketstatus", ticketStatusValidatorFunc)
		v.RegisterValidation("ticketcategory", ticketCategoryValidatorFunc)
		v.RegisterValidation("roomstatus", roomStatusValidatorFunc)
		v.RegisterValidation("userrole", userRoleValidatorFunc)
		if err := lib.RegisterValidatorTranslations(v); err != nil {
			log.Printf("Error registering validator translations: %s\n", err.Error())
		}
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		if config.MaintenanceMode() {
			log.Println("server is under maintenance")
			trans := lib.Translator(ctx.GetHeader("Accept-Language"))
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": lib.T(trans, "maintenance"),
				"code":  "maintenance",
			})
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func corsMiddleware() gin.HandlerFunc {
	if config.Env() == "local" {
		return cors.Default()
	}
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "Idempotency-Key", "Accept-Language")
	cc.AllowOrigins = config.AllowedOrigins()
	cc.AllowCredentials = true
	return cors.New(cc)
}

// routes mounts the authorized API on router.
func (a *app) routes(router *gin.Engine) *gin.Engine {
	router = maintenanceModeMiddleware(router)

	authorized := apiv1Group(router)
	authorized.Use(
		middlewares.AuthMiddleware(a.store.Users, a.cache, a.secret),
		middlewares.Locale,
		middlewares.RequestLogger(),
	)
	ticketHandlers(authorized, a)
	dashboardHandlers(authorized, a)
	hotelHandlers(authorized, a)
	userHandlers(authorized, a)
	checklistHandlers(authorized, a)
	notificationHandlers(authorized, a)
	realtimeHandlers(authorized, a)
	return router
}

func initLogger() {
	cwd, _ := os.Getwd()
	logsDir := path.Join(cwd, "logs")
	_ = os.MkdirAll(logsDir, 0o755)
	serverLogs := path.Join(logsDir, "server.log")
	apiLogs := path.Join(logsDir, "api.log")
	gin.ForceConsoleColor()

	f, err := os.Create(apiLogs)
	if err != nil {
		gin.DefaultWriter = os.Stdout
	} else {
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

func main() {
	if config.Env() == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("Error loading .env: %s\n", err.Error())
		}
	}
	initLogger()

	secret := []byte(config.JWTSecret())
	if len(secret) == 0 {
		log.Fatalln("JWT_SECRET is required")
	}

	ctx := context.Background()
	store := boot.InitStore()
	feed := boot.InitFeed()
	notifier := &services.AssignmentNotifier{
		Store:   store,
		Mailer:  boot.InitMailer(ctx),
		Feed:    feed,
		From:    mailer.DefaultFrom(),
		AppHost: config.AppHost(),
		Timeout: 30 * time.Second,
	}
	a := newApp(appDeps{
		Store:       store,
		Feed:        feed,
		Cache:       boot.InitSessionCache(),
		Storage:     boot.InitStorage(ctx),
		Idempotency: boot.InitIdempotency(),
		Notifier:    notifier,
		Secret:      secret,
	})

	if err := boot.InitScheduler(a.tickets); err != nil {
		log.Printf("Escalation job disabled: %s\n", err.Error())
	}

	registerValidators()
	router := setupRouter()
	router.Use(corsMiddleware())
	a.routes(router)

	srv := &http.Server{
		Addr:    ":" + config.Port(),
		Handler: router,
	}
	go func() {
		log.Printf("API listening on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), boot.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %s\n", err.Error())
	}
	boot.StopScheduler()
	notifier.Wait()
	log.Println("Server exited")
}
