// server/internal/api/routes/routes.go
package routes

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sppg-kitchen-api-server/config"
	"sppg-kitchen-api-server/internal/advisor"
	"sppg-kitchen-api-server/internal/api/handlers"
	"sppg-kitchen-api-server/internal/api/middleware"
	"sppg-kitchen-api-server/internal/auth"
	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/distribution"
	"sppg-kitchen-api-server/internal/metrics"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/remotesync"
	"sppg-kitchen-api-server/internal/socket"
	"sppg-kitchen-api-server/internal/store"
)

// Dependencies is everything the router wires into its handlers.
type Dependencies struct {
	Config  config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Issuer  *auth.Issuer
	Clock   clock.Clock
	NewID   func() string

	Stock         *store.Repository[models.StockItem]
	Transactions  *store.Repository[models.Transaction]
	MenuPlans     *store.Repository[models.MenuPlan]
	Procurements  *store.Repository[models.Procurement]
	Distributions *store.Repository[models.Distribution]
	Users         *store.Repository[models.User]
	Volunteers    *store.Repository[models.Volunteer]

	// SerialCounters may be nil; numbering then only sees live records.
	SerialCounters *store.Repository[models.SerialCounter]

	Destinations []models.Destination
	CancelPolicy distribution.CancelPolicy
	Photos       handlers.PhotoStore
	Advisor      *advisor.Advisor
	Syncer       *remotesync.Syncer
	Hub          *socket.Hub
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// SetupRouter builds the gin engine with every route.
func SetupRouter(d Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Log.Named("http")))
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(cors.New(corsConfig(d.Config.Server.AllowedOrigins)))

	authHandler := &handlers.AuthHandler{Users: d.Users, Issuer: d.Issuer, Log: d.Log}
	stockHandler := &handlers.StockHandler{Stock: d.Stock, Transactions: d.Transactions, Clock: d.Clock, NewID: d.NewID, Metrics: d.Metrics}
	menuHandler := &handlers.MenuHandler{MenuPlans: d.MenuPlans, Clock: d.Clock, NewID: d.NewID}
	procurementHandler := &handlers.ProcurementHandler{
		Procurements: d.Procurements, MenuPlans: d.MenuPlans, Stock: d.Stock,
		Photos: d.Photos, Clock: d.Clock, NewID: d.NewID,
	}
	serials := distribution.SerialLedger{Counters: d.SerialCounters}
	distributionHandler := &handlers.DistributionHandler{
		Distributions: d.Distributions,
		Destinations:  d.Destinations,
		Planner:       distribution.Planner{Clock: d.Clock, NewID: d.NewID, LastIssued: serials.LastIssued},
		Serials:       serials,
		CancelPolicy:  d.CancelPolicy,
		RecipientName: d.Config.Distribution.RecipientName,
		Photos:        d.Photos,
		Metrics:       d.Metrics,
		Log:           d.Log,
	}
	dashboardHandler := &handlers.DashboardHandler{
		Stock: d.Stock, Transactions: d.Transactions, MenuPlans: d.MenuPlans,
		Procurements: d.Procurements, Distributions: d.Distributions,
		TargetPortions: d.Config.Dashboard.TargetPortions,
	}
	userHandler := &handlers.UserHandler{Users: d.Users, Volunteers: d.Volunteers, NewID: d.NewID, Log: d.Log}
	volunteerHandler := &handlers.VolunteerHandler{Volunteers: d.Volunteers, Users: d.Users, Clock: d.Clock, NewID: d.NewID}
	advisorHandler := &handlers.AdvisorHandler{Advisor: d.Advisor, Stock: d.Stock}
	syncHandler := &handlers.SyncHandler{Syncer: d.Syncer}
	webSocketHandler := &handlers.WebSocketHandler{Hub: d.Hub, Issuer: d.Issuer, Log: d.Log}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "remote": d.Syncer.Status().Remote})
	})
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)
		apiV1.POST("/auth/login", authHandler.Login)

		// === everything below needs a valid token ===
		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate(d.Issuer))

		protected.GET("/auth/me", authHandler.Me)

		stock := protected.Group("/stock")
		{
			stock.GET("", stockHandler.ListStock)
			stock.GET("/report", stockHandler.StockReport)
			stock.GET("/:id", stockHandler.GetStockItem)

			manage := stock.Group("", middleware.RequirePermission(models.PermManageStock))
			manage.POST("", stockHandler.CreateStockItem)
			manage.PUT("/:id", stockHandler.UpdateStockItem)
			manage.DELETE("/:id", stockHandler.DeleteStockItem)
			manage.POST("/:id/mutations", stockHandler.Mutate)
		}

		transactions := protected.Group("/transactions")
		{
			transactions.GET("", stockHandler.ListTransactions)
			transactions.DELETE("/:id", middleware.RequirePermission(models.PermManageStock), stockHandler.DeleteTransaction)
		}

		menus := protected.Group("/menus")
		{
			menus.GET("", menuHandler.ListMenus)
			menus.GET("/:id", menuHandler.GetMenu)
			menus.GET("/:id/pdf", menuHandler.MenuPDF)
			menus.POST("", middleware.RequirePermission(models.PermCreateMenu), menuHandler.CreateMenu)
			menus.DELETE("/:id", middleware.RequirePermission(models.PermCreateMenu), menuHandler.DeleteMenu)
			menus.POST("/:id/procurement", middleware.RequirePermission(models.PermOrder), procurementHandler.CreateFromMenu)
		}

		procurements := protected.Group("/procurements")
		{
			procurements.GET("", procurementHandler.ListProcurements)
			procurements.GET("/report", procurementHandler.ProcurementReport)
			procurements.GET("/:id", procurementHandler.GetProcurement)

			order := procurements.Group("", middleware.RequirePermission(models.PermOrder))
			order.POST("", procurementHandler.CreateProcurement)
			order.PATCH("/:id", procurementHandler.EditProcurement)
			order.POST("/:id/order", procurementHandler.OrderProcurement)
			order.POST("/:id/invoice", procurementHandler.AttachInvoice)
			order.DELETE("/:id", procurementHandler.DeleteProcurement)

			procurements.POST("/:id/receive", middleware.RequirePermission(models.PermReceive), procurementHandler.Receive)
		}

		protected.GET("/destinations", distributionHandler.ListDestinations)

		distributions := protected.Group("/distributions")
		{
			distributions.GET("", distributionHandler.ListDistributions)
			distributions.GET("/delivery-notes", distributionHandler.DeliveryNotes)
			distributions.GET("/:id", distributionHandler.GetDistribution)

			manage := distributions.Group("", middleware.RequirePermission(models.PermDistribute))
			manage.POST("/bulk", distributionHandler.CreateBulk)
			manage.POST("/clear-history", distributionHandler.ClearHistory)
			manage.POST("/:id/start", distributionHandler.StartDelivery)
			manage.POST("/:id/deliver", distributionHandler.CaptureDelivery)
			manage.POST("/:id/pickup", distributionHandler.SchedulePickup)
			manage.POST("/:id/finalize", distributionHandler.FinalizePickup)
			manage.DELETE("/:id", distributionHandler.CancelDistribution)
		}

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/summary", dashboardHandler.Summary)
			dashboard.GET("/activities", dashboardHandler.Activities)
			dashboard.GET("/gallery", dashboardHandler.Gallery)
			dashboard.DELETE("/activities/:type/:sourceId", middleware.Authorize(models.RoleAdmin), dashboardHandler.DeleteActivity)
		}

		volunteers := protected.Group("/volunteers")
		{
			volunteers.GET("", volunteerHandler.ListVolunteers)

			admin := volunteers.Group("", middleware.Authorize(models.RoleAdmin))
			admin.POST("", volunteerHandler.CreateVolunteer)
			admin.PUT("/:id", volunteerHandler.UpdateVolunteer)
			admin.DELETE("/:id", volunteerHandler.DeleteVolunteer)
		}

		advisorRoutes := protected.Group("/advisor")
		{
			advisorRoutes.POST("/menu", advisorHandler.MenuRecommendation)
			advisorRoutes.POST("/stock-analysis", advisorHandler.StockAnalysis)
		}

		// === admin only ===
		admin := protected.Group("/")
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			users := admin.Group("/users")
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)

			admin.GET("/sync/status", syncHandler.Status)
			admin.POST("/sync/flush", syncHandler.Flush)
		}
	}

	return router
}
