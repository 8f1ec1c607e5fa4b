// Package main provides the ProCanvas API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/procanvas/procanvas/pkg/auth"
	"github.com/procanvas/procanvas/pkg/eventbus"
	"github.com/procanvas/procanvas/pkg/persistence"
	"github.com/procanvas/procanvas/pkg/services"
	"github.com/procanvas/procanvas/pkg/tenant"
	"github.com/procanvas/procanvas/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	sessions    auth.SessionStore
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	sessions auth.SessionStore,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		sessions:    sessions,
		eventBus:    eventBus,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.persistence, a.eventBus)
	transitionService := services.NewTransition(a.persistence, a.eventBus, a.tracer)
	commentService := services.NewComment(a.persistence, a.eventBus)
	provisioner := tenant.NewProvisioner(a.persistence.TenantRepository(), a.persistence.ProfileRepository(), a.logger)

	handlers := web.NewAPIHandlers(workflowService, transitionService, commentService, provisioner, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("ProCanvas API")
	})

	app.Get("/health", handlers.HealthCheck)

	authed := app.Group("/", web.NewIdentityMiddleware(a.sessions, a.persistence.ProfileRepository()))
	authed.Get("/me", handlers.GetIdentity)
	authed.Post("/tenants", handlers.ProvisionTenant)

	w := authed.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/latest", handlers.GetLatestWorkflow)
	w.Get("/metrics", handlers.GetMetrics)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/submit", handlers.SubmitWorkflow)
	w.Post("/:id/approve", handlers.ApproveWorkflow)
	w.Post("/:id/publish", handlers.PublishWorkflow)

	w.Get("/:id/nodes/:nodeId/comments", handlers.GetComments)
	w.Post("/:id/nodes/:nodeId/comments", handlers.PostComment)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
