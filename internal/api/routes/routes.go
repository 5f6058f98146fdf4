// internal/api/routes/routes.go
package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"container-yard-api-server/config"
	"container-yard-api-server/internal/api/handlers"
	"container-yard-api-server/internal/api/middleware"
	"container-yard-api-server/internal/auth"
	"container-yard-api-server/internal/logger"
	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/socket"
	"container-yard-api-server/internal/validation"
	"container-yard-api-server/internal/yard"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Config     config.Config
	Tokens     *auth.TokenManager
	Users      *auth.Service
	Containers *yard.ContainerService
	References *yard.ReferenceService
	Dashboard  *yard.DashboardService
	Hub        *socket.Hub
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// SetupRouter wires every handler under /api.
func SetupRouter(d Deps) *gin.Engine {
	if err := validation.RegisterGin(); err != nil {
		logger.Log.WithError(err).Warn("custom binding rules not installed")
	}

	router := gin.New()
	router.Use(logger.Middleware(), gin.Recovery(), cors.New(corsConfig(d.Config.Server.CORSOrigins)))

	userHandler := &handlers.UserHandler{Service: d.Users}
	containerHandler := &handlers.ContainerHandler{Service: d.Containers}
	dashboardHandler := &handlers.DashboardHandler{Service: d.Dashboard}
	webSocketHandler := &handlers.WebSocketHandler{Hub: d.Hub}

	router.GET("/health", handlers.Health)

	api := router.Group("/api")
	api.GET("/health", handlers.Health)

	// === PUBLIC ===
	api.POST("/auth/login", userHandler.Login)

	// === PROTECTED ===
	protected := api.Group("/")
	protected.Use(middleware.Authenticate(d.Tokens))
	{
		protected.GET("/ws", webSocketHandler.ServeWs)
		protected.PUT("/auth/profile", userHandler.UpdateProfile)
		protected.GET("/users/me", userHandler.Me)

		users := protected.Group("/users")
		users.Use(middleware.Authorize(models.RoleAdmin))
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		referenceRoutes(protected, "/shipping-lines", models.KindShippingLine, d.References)
		referenceRoutes(protected, "/iso-codes", models.KindIsoCode, d.References)
		referenceRoutes(protected, "/clients", models.KindClient, d.References)

		read := middleware.RequirePermission("read:containers")
		create := middleware.RequirePermission("create:containers")
		update := middleware.RequirePermission("update:containers")
		del := middleware.RequirePermission("delete:containers")

		containers := protected.Group("/containers")
		{
			containers.GET("", read, containerHandler.ListContainers)
			containers.POST("", create, containerHandler.CreateLineEntry)
			containers.POST("/client", create, containerHandler.CreateClientEntry)

			containers.GET("/number/:number", read, containerHandler.GetByNumber)
			containers.POST("/number/:number/exit", update, containerHandler.ExitByNumber)
			containers.GET("/client/number/:number", read, containerHandler.GetClientContainer)
			containers.POST("/client/number/:number/exit", update, containerHandler.ClientExitByNumber)
			containers.POST("/client/:id/exit", update, containerHandler.ClientExitByID)

			containers.GET("/:id", read, containerHandler.GetContainer)
			containers.PUT("/:id", update, containerHandler.UpdateContainer)
			containers.DELETE("/:id", del, containerHandler.DeleteContainer)
			containers.POST("/:id/exit", update, containerHandler.ExitByID)
			containers.POST("/:id/photos", update, containerHandler.UploadPhoto)
		}

		protected.GET("/dashboard/stats", read, dashboardHandler.Stats)
	}

	return router
}

// referenceRoutes mounts the CRUD screens of one reference kind, guarded by
// the kind's read/create/update/delete grants.
func referenceRoutes(rg *gin.RouterGroup, path string, kind models.ReferenceKind, svc *yard.ReferenceService) {
	h := &handlers.ReferenceHandler{Service: svc, Kind: kind}
	resource := strings.TrimPrefix(path, "/")

	g := rg.Group(path)
	g.GET("", middleware.RequirePermission("read:"+resource), h.List)
	g.POST("", middleware.RequirePermission("create:"+resource), h.Create)
	g.GET("/:id", middleware.RequirePermission("read:"+resource), h.Get)
	g.PUT("/:id", middleware.RequirePermission("update:"+resource), h.Update)
	g.DELETE("/:id", middleware.RequirePermission("delete:"+resource), h.Delete)
}
