package main

import (
	"context"
	"time"

	"crm-service/internal/handler"
	"crm-service/internal/middleware"
	"crm-service/internal/repository"
	"crm-service/pkg/config"
	"crm-service/pkg/database"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"
	"crm-service/pkg/response"
	"crm-service/pkg/secrets"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting CRM service...", cfg.LogConfig()...)

	// Initialize JWT utilities
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)

	// Resolve database credentials, preferring the managed secret
	dsn := cfg.DB.GetDSN()
	if cfg.Secrets.DatabaseSecretARN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		provider, err := secrets.NewProvider(ctx, &cfg.Secrets)
		if err != nil {
			log.Fatal("Failed to initialize secrets provider", zap.Error(err))
		}
		dsn, err = provider.DatabaseDSN(ctx, cfg.Secrets.DatabaseSecretARN)
		if err != nil {
			log.Fatal("Failed to resolve database secret", zap.Error(err))
		}
		log.Info("Database credentials resolved from secrets manager")
	}

	// Initialize database and run migrations
	db, err := database.Connect(cfg, dsn)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed",
		zap.String("db_host", cfg.DB.Host),
		zap.String("db_name", cfg.DB.DBName))

	// Repositories
	customers := repository.NewCustomerRepository(db)
	deals := repository.NewDealRepository(db)
	tasks := repository.NewTaskRepository(db)
	activities := repository.NewActivityRepository(db)
	users := repository.NewUserRepository(db)
	tenants := repository.NewTenantRepository(db)
	userTenants := repository.NewUserTenantRepository(db)

	// Handlers
	customerHandler := handler.NewCustomerHandler(customers)
	dealHandler := handler.NewDealHandler(deals, customers)
	taskHandler := handler.NewTaskHandler(tasks)
	activityHandler := handler.NewActivityHandler(activities, deals)
	userHandler := handler.NewUserHandler(users, tenants, userTenants)
	healthHandler := handler.NewHealthHandler(db)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = response.ErrorHandler()

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(prometheus.Middleware())
	e.Use(logger.Middleware(log))

	// Routes
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(prometheus.Handler()))

	api := e.Group("")
	if cfg.Auth.Enabled {
		api.Use(middleware.AuthMiddleware)
	}

	registerEntityRoutes(api, "/customers", customerHandler.List, customerHandler.Get, customerHandler.Create, customerHandler.Update, customerHandler.Delete)
	registerEntityRoutes(api, "/deals", dealHandler.List, dealHandler.Get, dealHandler.Create, dealHandler.Update, dealHandler.Delete)
	registerEntityRoutes(api, "/tasks", taskHandler.List, taskHandler.Get, taskHandler.Create, taskHandler.Update, taskHandler.Delete)
	registerEntityRoutes(api, "/activities", activityHandler.List, activityHandler.Get, activityHandler.Create, activityHandler.Update, activityHandler.Delete)
	registerEntityRoutes(api, "/users", userHandler.List, userHandler.Get, userHandler.Create, userHandler.Update, userHandler.Delete)

	// Start server
	log.Info("Server starting", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Server failed to start", zap.Error(err))
	}
}

// registerEntityRoutes wires the five standard verbs for one entity.
func registerEntityRoutes(g *echo.Group, prefix string, list, get, create, update, del echo.HandlerFunc) {
	g.GET(prefix, list)
	g.GET(prefix+"/:uuid", get)
	g.POST(prefix, create)
	g.PUT(prefix+"/:uuid", update)
	g.DELETE(prefix+"/:uuid", del)
}
