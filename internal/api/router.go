package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/partybus-booking-backend/internal/auth"
	"github.com/nekogravitycat/partybus-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/partybus-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/partybus-booking-backend/internal/bus"
	busHttp "github.com/nekogravitycat/partybus-booking-backend/internal/bus/http"
	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
	contactHttp "github.com/nekogravitycat/partybus-booking-backend/internal/contact/http"
	"github.com/nekogravitycat/partybus-booking-backend/internal/corporate"
	corporateHttp "github.com/nekogravitycat/partybus-booking-backend/internal/corporate/http"
	"github.com/nekogravitycat/partybus-booking-backend/internal/driver"
	driverHttp "github.com/nekogravitycat/partybus-booking-backend/internal/driver/http"
	"github.com/nekogravitycat/partybus-booking-backend/internal/logger"
	"github.com/nekogravitycat/partybus-booking-backend/internal/metrics"
	paymentHttp "github.com/nekogravitycat/partybus-booking-backend/internal/payment/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ProdOrigins  []string

	Log         *logrus.Logger
	Metrics     *metrics.Metrics
	MetricsPath string // empty disables the endpoint

	JWTManager *auth.JWTManager
	Admins     Authenticator

	BookingService   booking.Service
	BusService       bus.Service
	DriverService    driver.Service
	ContactService   contact.Service
	CorporateService corporate.Service

	// Provisioner is nil when calendar sync is disabled.
	Provisioner driverHttp.CalendarProvisioner
	Location    *time.Location

	Payments               paymentHttp.Processor
	PaymentSignatureKey    string
	PaymentNotificationURL string

	Changes ChangeSource
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Metrics, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Global Middleware:
	// - Logger: Logs one structured line per request.
	// - Metrics: Observes request latency per route.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logger.GinMiddleware(cfg.Log), cfg.Metrics.GinMiddleware(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = cfg.ProdOrigins
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000", // Web app
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	if len(corsConfig.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if cfg.MetricsPath != "" && cfg.Metrics != nil {
		r.GET(cfg.MetricsPath, gin.WrapH(cfg.Metrics.Handler()))
	}

	// authMiddleware: Validates the JWT and that it still belongs to the configured admin.
	jwtMiddleware := auth.AuthRequired(cfg.JWTManager)
	adminMiddleware := RequireAdmin(cfg.Admins)
	authMiddleware := func(c *gin.Context) {
		jwtMiddleware(c)
		if c.IsAborted() {
			return
		}
		adminMiddleware(c)
	}

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	authHandler := NewAuthHandler(cfg.Admins, cfg.JWTManager)
	streamHandler := NewStreamHandler(cfg.Changes)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.CorporateService)
	busHandler := busHttp.NewHandler(cfg.BusService)
	driverHandler := driverHttp.NewHandler(cfg.DriverService, cfg.BookingService, cfg.Provisioner, cfg.Location, cfg.Log)
	contactHandler := contactHttp.NewHandler(cfg.ContactService)
	corporateHandler := corporateHttp.NewHandler(cfg.CorporateService)
	paymentHandler := paymentHttp.NewHandler(cfg.Payments, cfg.PaymentSignatureKey, cfg.PaymentNotificationURL, cfg.Log)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		v1.POST("/auth/login", authHandler.Login)
		v1.GET("/me", authMiddleware, authHandler.Me)
		if cfg.Changes != nil {
			v1.GET("/admin/stream", authMiddleware, streamHandler.Stream)
		}

		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		busHttp.RegisterRoutes(v1, busHandler, authMiddleware)
		driverHttp.RegisterRoutes(v1, driverHandler, authMiddleware)
		contactHttp.RegisterRoutes(v1, contactHandler, authMiddleware)
		corporateHttp.RegisterRoutes(v1, corporateHandler, authMiddleware)
		paymentHttp.RegisterRoutes(v1, paymentHandler)
	}

	return r
}
