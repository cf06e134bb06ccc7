package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ledgerport/order-admission/internal/api/handler"
	"github.com/ledgerport/order-admission/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	clients ports.ClientService,
	orders ports.OrderService,
	scenarios ports.ScenarioService,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("ledger"))

	clientHandler := handler.NewClientHandler(clients)
	orderHandler := handler.NewOrderHandler(orders)
	scenarioHandler := handler.NewScenarioHandler(scenarios)

	// --- Clients ---
	e.POST("/v1/clients", clientHandler.Create)
	e.GET("/v1/clients", clientHandler.List)
	e.GET("/v1/clients/profit", clientHandler.ProfitRange)
	e.GET("/v1/clients/:id", clientHandler.Get)
	e.PUT("/v1/clients/:id", clientHandler.Update)
	e.PATCH("/v1/clients/:id/status", clientHandler.SetStatus)
	e.GET("/v1/clients/:id/orders", clientHandler.Orders)
	e.GET("/v1/clients/:id/profit", clientHandler.Profit)

	// --- Orders ---
	e.POST("/v1/orders", orderHandler.Create)
	e.GET("/v1/orders", orderHandler.List)
	e.GET("/v1/orders/:id", orderHandler.Get)
	e.PUT("/v1/orders/:id", orderHandler.Update)
	e.DELETE("/v1/orders/:id", orderHandler.Delete)

	// --- Scenarios ---
	e.POST("/v1/scenarios/duplicates", scenarioHandler.Duplicates)
	e.POST("/v1/scenarios/descending", scenarioHandler.Descending)
	e.POST("/v1/scenarios/deactivation", scenarioHandler.Deactivation)

	// --- Health probes & metrics ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
