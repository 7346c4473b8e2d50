package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opskernel/admin-api/internal/api/handler"
	"github.com/opskernel/admin-api/internal/api/middleware"
	"github.com/opskernel/admin-api/internal/core/domain"
	"github.com/opskernel/admin-api/internal/core/service"
	"github.com/opskernel/admin-api/internal/core/token"
	mongodb "github.com/opskernel/admin-api/internal/infrastructure/db/mongo"
	redisdb "github.com/opskernel/admin-api/internal/infrastructure/db/redis"
	"github.com/opskernel/admin-api/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	// Request metrics get a registry per router so rebuilding the router
	// (tests do) never double-registers collectors globally.
	promRegistry := prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "adminapi",
		Registerer: promRegistry,
	}))

	// --- Dependencies ---
	users := mongodb.NewUserRepository(db)
	roles := mongodb.NewRoleRepository(db)
	audits := mongodb.NewAuditRepository(db)
	sessions := redisdb.NewSessionStore(rdb, cfg.AppName)

	tokens := token.NewService(token.NewSigner(cfg.AppSecret), sessions, cfg.TokenTTL(), log)
	authService := service.NewAuthService(users, roles, tokens, log)

	security := middleware.NewSecurity(tokens, authService, audits, cfg.TokenHeader, cfg.SuperAdminID, log)
	authHandler := handler.NewAuthHandler(authService, tokens, cfg.TokenHeader)

	// --- Auth routes ---
	auth := e.Group("/admin/auth")
	auth.POST("/login-password", authHandler.Login, security.Middleware(middleware.Config{
		LogTitle: "登陆",
		LogType:  domain.LogTypeLogin,
	}))
	auth.GET("/user-info", authHandler.UserInfo, security.Middleware(middleware.Config{
		RequireAuth: true,
	}))
	auth.POST("/logout", authHandler.Logout, security.Middleware(middleware.Config{
		RequireAuth: true,
	}))

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{promRegistry, prometheus.DefaultGatherer},
	}))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	return e
}
