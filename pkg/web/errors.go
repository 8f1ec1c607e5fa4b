package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/procanvas/procanvas/pkg/persistence"
	"github.com/procanvas/procanvas/pkg/services"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func unauthorized(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(401).
		WithInstance(c.Path()).
		WithType("unauthorized").
		WithDetail(detail)

	return c.Status(fiber.StatusUnauthorized).JSON(problem)
}

func forbidden(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(403).
		WithInstance(c.Path()).
		WithType("forbidden").
		WithDetail(detail)

	return c.Status(fiber.StatusForbidden).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case services.IsForbiddenError(err):
		return forbidden(c, err.Error())

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case persistence.IsWorkflowNotFound(err):
		return notFound(c, "workflow not found")

	case persistence.IsTenantNotFound(err):
		return notFound(c, "tenant not found")

	default:
		return internalError(c, err)
	}
}
