package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	authPostgres "github.com/frahmantamala/transport-management/internal/auth/postgres"
	"github.com/frahmantamala/transport-management/internal/availability"
	availabilityPostgres "github.com/frahmantamala/transport-management/internal/availability/postgres"
	"github.com/frahmantamala/transport-management/internal/core/events"
	"github.com/frahmantamala/transport-management/internal/fleet"
	fleetPostgres "github.com/frahmantamala/transport-management/internal/fleet/postgres"
	"github.com/frahmantamala/transport-management/internal/maintenance"
	maintenancePostgres "github.com/frahmantamala/transport-management/internal/maintenance/postgres"
	"github.com/frahmantamala/transport-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/transport-management/internal/notification/postgres"
	"github.com/frahmantamala/transport-management/internal/tada"
	tadaPostgres "github.com/frahmantamala/transport-management/internal/tada/postgres"
	"github.com/frahmantamala/transport-management/internal/transport/rest"
	"github.com/frahmantamala/transport-management/internal/trip"
	tripPostgres "github.com/frahmantamala/transport-management/internal/trip/postgres"
	"github.com/frahmantamala/transport-management/internal/user"
	userPostgres "github.com/frahmantamala/transport-management/internal/user/postgres"
	"github.com/frahmantamala/transport-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Config, deps.Handlers, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitWithLevel(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	// audit sink: one notification row per workflow transition
	notificationRepo := notificationPostgres.NewNotificationRepository(gormDB)
	notificationService := notification.NewService(notificationRepo, lg)
	notificationService.RegisterSubscriptions(eventBus)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewAuthRepository(gormDB), tokenGen)

	userService := user.NewService(userPostgres.NewUserRepository(gormDB), lg)

	tripService := trip.NewService(tripPostgres.NewTripRepository(gormDB), userService, eventBus, lg)

	availabilityService := availability.NewService(availabilityPostgres.NewAvailabilityRepository(gormDB), lg)

	tadaService := tada.NewService(
		tadaPostgres.NewClaimRepository(gormDB),
		tadaPostgres.NewTripGateway(gormDB),
		eventBus,
		lg,
	)

	maintenanceService := maintenance.NewService(
		maintenancePostgres.NewMaintenanceRepository(gormDB),
		maintenancePostgres.NewEntitledVehicleGateway(gormDB),
		maintenancePostgres.NewVehicleGateway(gormDB),
		eventBus,
		lg,
	)

	fleetService := fleet.NewService(
		fleetPostgres.NewFleetRepository(gormDB),
		fleetPostgres.NewUserGateway(gormDB),
		lg,
	)

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService),
		User:         user.NewHandler(userService),
		Trip:         trip.NewHandler(tripService),
		Availability: availability.NewHandler(availabilityService),
		Tada:         tada.NewHandler(tadaService),
		Maintenance:  maintenance.NewHandler(maintenanceService),
		Fleet:        fleet.NewHandler(fleetService),
		Notification: notification.NewHandler(notificationService),
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		Router:   chi.NewRouter(),
		Handlers: handlers,
		Logger:   lg,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
