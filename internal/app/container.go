package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/partybus-booking-backend/internal/api"
	"github.com/nekogravitycat/partybus-booking-backend/internal/auth"
	"github.com/nekogravitycat/partybus-booking-backend/internal/booking"
	"github.com/nekogravitycat/partybus-booking-backend/internal/bus"
	"github.com/nekogravitycat/partybus-booking-backend/internal/calendarsync"
	"github.com/nekogravitycat/partybus-booking-backend/internal/config"
	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
	"github.com/nekogravitycat/partybus-booking-backend/internal/corporate"
	"github.com/nekogravitycat/partybus-booking-backend/internal/db"
	"github.com/nekogravitycat/partybus-booking-backend/internal/driver"
	driverHttp "github.com/nekogravitycat/partybus-booking-backend/internal/driver/http"
	"github.com/nekogravitycat/partybus-booking-backend/internal/metrics"
	"github.com/nekogravitycat/partybus-booking-backend/internal/payment"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/imaging"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	Env      *config.Config
	Features *config.FeatureConfig
	DBPool   *pgxpool.Pool
	Log      *logrus.Logger
	// Changes feeds the admin stream; nil disables it.
	Changes *db.Hub
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Metrics    *metrics.Metrics
	Bookings   booking.Service
}

// NewContainer initializes all modules and returns the container.
// The calendar provider is dialed here, so ctx bounds its setup.
func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	features := cfg.Features

	loc, err := time.LoadLocation(features.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	if err := auth.CheckHash(cfg.Env.AdminPasswordHash); err != nil {
		return nil, err
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.Env.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.Env.JWTSecret, cfg.Env.JWTAccessTokenTTL)
	admins := auth.NewAdminAuthenticator(cfg.Env.AdminEmail, cfg.Env.AdminPasswordHash, passwordHasher)
	images := imaging.NewProcessor()
	txManager := db.NewTxManager(cfg.DBPool)

	var m *metrics.Metrics
	if features.Metrics.Enabled {
		m = metrics.New()
	}

	// Contact Module
	contactRepo := contact.NewPgxRepository(cfg.DBPool)
	contactService := contact.NewService(contactRepo)

	// Corporate Module
	corporateRepo := corporate.NewPgxRepository(cfg.DBPool)
	corporateService := corporate.NewService(corporateRepo, txManager, contactService, contactRepo)

	// Fleet Modules
	busService := bus.NewService(bus.NewPgxRepository(cfg.DBPool), images)
	driverService := driver.NewService(driver.NewPgxRepository(cfg.DBPool), images)

	// Calendar Sync Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	var (
		calendar    booking.CalendarSyncer
		provisioner driverHttp.CalendarProvisioner
	)
	if features.Calendar.Enabled {
		provider, err := calendarsync.NewGoogleProvider(ctx, features.Calendar)
		if err != nil {
			return nil, fmt.Errorf("init calendar provider: %w", err)
		}
		syncService := calendarsync.NewService(provider, driverService, bookingRepo, features.Calendar, m, cfg.Log)
		calendar = syncService
		provisioner = syncService
	} else {
		cfg.Log.Info("calendar sync disabled")
	}

	// Booking Module
	bookingService := booking.NewService(booking.Deps{
		Repo:     bookingRepo,
		Tx:       txManager,
		Buses:    busService,
		Drivers:  driverService,
		Contacts: contactService,
		Calendar: calendar,
		Metrics:  m,
		Log:      cfg.Log,
		Location: loc,
	})

	// Payment Module
	paymentService := payment.NewService(contactService, bookingService, features.Payment, cfg.Log)

	// API Router Config
	routerParams := api.Config{
		IsProduction:           cfg.Env.IsProduction,
		ProdOrigins:            cfg.Env.ProdOrigins,
		Log:                    cfg.Log,
		Metrics:                m,
		JWTManager:             jwtManager,
		Admins:                 admins,
		BookingService:         bookingService,
		BusService:             busService,
		DriverService:          driverService,
		ContactService:         contactService,
		CorporateService:       corporateService,
		Provisioner:            provisioner,
		Location:               loc,
		Payments:               paymentService,
		PaymentSignatureKey:    cfg.Env.PaymentSignatureKey,
		PaymentNotificationURL: features.Payment.NotificationURL,
	}
	if m != nil {
		routerParams.MetricsPath = features.Metrics.Path
	}
	if cfg.Changes != nil {
		routerParams.Changes = cfg.Changes
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Metrics:    m,
		Bookings:   bookingService,
	}, nil
}
