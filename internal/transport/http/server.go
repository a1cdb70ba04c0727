package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "template-tester-server/internal/app"
	"template-tester-server/internal/bootstrap"
	"template-tester-server/internal/cache"
	"template-tester-server/internal/platform/rabbitmq"
	"template-tester-server/internal/repository"
	"template-tester-server/internal/transport/http/handler"
	"template-tester-server/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	eventPublisher := rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.AuthEventQueue)
	userCache := cache.NewUserCache(app.Redis, time.Duration(app.Config.Redis.UserCacheTTLSecond)*time.Second)
	authService := appsvc.NewAuthService(
		userRepo,
		eventPublisher,
		userCache,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	userService := appsvc.NewUserService(userRepo)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	api := router.Group("/api")
	authGroup := api.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	userGroup.GET("/search", userHandler.Search)

	return router
}
