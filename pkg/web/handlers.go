package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/procanvas/procanvas/pkg/lifecycle"
	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
	"github.com/procanvas/procanvas/pkg/services"
	"github.com/procanvas/procanvas/pkg/tenant"
)

type APIHandlers struct {
	workflowService   *services.Workflow
	transitionService *services.Transition
	commentService    *services.Comment
	provisioner       *tenant.Provisioner
	validator         *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	transitionService *services.Transition,
	commentService *services.Comment,
	provisioner *tenant.Provisioner,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService:   workflowService,
		transitionService: transitionService,
		commentService:    commentService,
		provisioner:       provisioner,
		validator:         validator,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, ok := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetIdentity(c fiber.Ctx) error {
	identity := identityFrom(c)

	return c.JSON(IdentityResponse{
		UserID:   identity.UserID,
		FullName: identity.FullName(),
		TenantID: identity.TenantID(),
		Role:     identity.Role(),
	})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	identity := identityFrom(c)

	req, err := h.parseListWorkflowsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	req.TenantID = identity.TenantID()
	req.ActorRole = identity.Role()

	result, err := h.workflowService.ListWorkflows(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":     result.Workflows,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
	})
}

func (h *APIHandlers) parseListWorkflowsRequest(c fiber.Ctx) (*services.ListWorkflowsRequest, error) {
	req := &services.ListWorkflowsRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	req.CreatedBy = c.Query("created_by")

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.WorkflowStatus(statusStr)
		req.Status = &status
	}

	if publishedStr := c.Query("published_only"); publishedStr != "" {
		publishedOnly, err := strconv.ParseBool(publishedStr)
		if err != nil {
			return nil, err
		}

		req.PublishedOnly = publishedOnly
	}

	req.SortBy = c.Query("sort_by")
	req.SortOrder = c.Query("sort_order")

	return req, nil
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchForActor(c.Context(), id, identityFrom(c).Profile)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) GetLatestWorkflow(c fiber.Ctx) error {
	identity := identityFrom(c)

	workflow, err := h.workflowService.LatestForUser(c.Context(), identity.TenantID(), identity.UserID)
	if err != nil {
		return handleServiceError(c, err)
	}

	if workflow == nil {
		return notFound(c, "no workflows yet")
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) GetMetrics(c fiber.Ctx) error {
	identity := identityFrom(c)

	switch identity.Role() {
	case models.RoleOwner, models.RoleAdmin:
	default:
		return forbidden(c, "metrics are restricted to owners and admins")
	}

	metrics, err := h.workflowService.Metrics(c.Context(), identity.TenantID())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(metrics)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	identity := identityFrom(c)

	if !lifecycle.CanEdit(identity.Role(), models.WorkflowStatusDraft) {
		return forbidden(c, "role may not create workflows")
	}

	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := &models.Workflow{
		TenantID:  identity.TenantID(),
		Name:      req.Name,
		Nodes:     req.Nodes,
		Edges:     req.Edges,
		Status:    models.WorkflowStatusDraft,
		CreatedBy: identity.UserID,
	}

	created, err := h.workflowService.Create(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	identity := identityFrom(c)

	existing, err := h.workflowService.FetchForActor(c.Context(), id, identity.Profile)
	if err != nil {
		return handleServiceError(c, err)
	}

	if !lifecycle.CanEdit(identity.Role(), existing.Status) {
		return forbidden(c, "workflow is not editable at its current status for this role")
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Nodes != nil {
		existing.Nodes = req.Nodes
	}

	if req.Edges != nil {
		existing.Edges = req.Edges
	}

	updated, err := h.workflowService.Update(c.Context(), id, existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	identity := identityFrom(c)

	err := h.workflowService.Delete(c.Context(), id, identity.Profile)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "workflow not found")
		}

		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SubmitWorkflow(c fiber.Ctx) error {
	return h.transition(c, h.transitionService.Submit)
}

func (h *APIHandlers) ApproveWorkflow(c fiber.Ctx) error {
	return h.transition(c, h.transitionService.Approve)
}

func (h *APIHandlers) PublishWorkflow(c fiber.Ctx) error {
	return h.transition(c, h.transitionService.Publish)
}

type transitionFunc func(ctx context.Context, workflowID string, actor *models.Profile) (*models.Workflow, error)

func (h *APIHandlers) transition(c fiber.Ctx, apply transitionFunc) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := apply(c.Context(), id, identityFrom(c).Profile)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) GetComments(c fiber.Ctx) error {
	workflowID := c.Params("id")
	nodeID := c.Params("nodeId")

	if workflowID == "" || nodeID == "" {
		return badRequest(c, "Workflow ID and node ID are required")
	}

	comments, err := h.commentService.ListThread(c.Context(), workflowID, nodeID, identityFrom(c).Profile)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(comments)
}

func (h *APIHandlers) PostComment(c fiber.Ctx) error {
	workflowID := c.Params("id")
	nodeID := c.Params("nodeId")

	if workflowID == "" || nodeID == "" {
		return badRequest(c, "Workflow ID and node ID are required")
	}

	var req PostCommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	identity := identityFrom(c)
	if identity.Profile == nil {
		return forbidden(c, "no profile for this user")
	}

	created, err := h.commentService.Post(c.Context(), workflowID, nodeID, identity.Profile, req.Content)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) ProvisionTenant(c fiber.Ctx) error {
	var req ProvisionTenantRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	identity := identityFrom(c)

	created, err := h.provisioner.Provision(c.Context(), identity.UserID, req.Name)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}
