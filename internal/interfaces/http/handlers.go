package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stokstak/procurement/internal/apperr"
	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/application/service"
	"github.com/stokstak/procurement/internal/domain/workflow"
)

// actorHeader carries the authenticated actor id, supplied by the excluded
// auth layer in front of this service
const actorHeader = "X-Actor-ID"

// Handlers contains all HTTP request handlers
type Handlers struct {
	requestService     service.RequestService
	workflowService    service.WorkflowService
	itemService        service.ItemService
	fulfillmentService service.FulfillmentService
	roleOracle         port.RoleOracle
	logger             Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	requestService service.RequestService,
	workflowService service.WorkflowService,
	itemService service.ItemService,
	fulfillmentService service.FulfillmentService,
	roleOracle port.RoleOracle,
	logger Logger,
) *Handlers {
	return &Handlers{
		requestService:     requestService,
		workflowService:    workflowService,
		itemService:        itemService,
		fulfillmentService: fulfillmentService,
		roleOracle:         roleOracle,
		logger:             logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// TransitionBody is the payload for a request-level status transition
type TransitionBody struct {
	TargetStatus string `json:"target_status" binding:"required"`
	Comment      string `json:"comment"`
}

// DecisionBody is the payload for a line item decision
type DecisionBody struct {
	Action   string  `json:"action" binding:"required"`
	Quantity float64 `json:"quantity"`
	Comment  string  `json:"comment"`
}

// ListRequestsQuery represents query parameters for listing requests
type ListRequestsQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// CreateRequest handles POST /api/companies/:companyId/requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	companyID, actorID, _, ok := h.resolveActor(c)
	if !ok {
		return
	}

	var input service.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	detail, err := h.requestService.CreateRequest(c.Request.Context(), companyID, actorID, input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: detail})
}

// ListRequests handles GET /api/companies/:companyId/requests
func (h *Handlers) ListRequests(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	var query ListRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	requests, err := h.requestService.ListRequests(c.Request.Context(), companyID, query.Limit, query.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// GetRequest handles GET /api/companies/:companyId/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	requestID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.requestService.GetRequest(c.Request.Context(), companyID, requestID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: detail})
}

// GetRequestEvents handles GET /api/companies/:companyId/requests/:id/events
func (h *Handlers) GetRequestEvents(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	requestID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	events, err := h.requestService.GetEvents(c.Request.Context(), companyID, requestID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: events})
}

// TransitionRequest handles POST /api/companies/:companyId/requests/:id/transition
func (h *Handlers) TransitionRequest(c *gin.Context) {
	companyID, actorID, role, ok := h.resolveActor(c)
	if !ok {
		return
	}
	requestID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var body TransitionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "target_status is required")
		return
	}

	req, err := h.workflowService.RequestTransition(
		c.Request.Context(), companyID, requestID, actorID, role,
		workflow.Status(body.TargetStatus), body.Comment)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: req})
}

// DecideItem handles POST /api/companies/:companyId/items/:id/decision
func (h *Handlers) DecideItem(c *gin.Context) {
	companyID, actorID, role, ok := h.resolveActor(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var body DecisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "action is required")
		return
	}

	item, err := h.itemService.DecideItem(
		c.Request.Context(), companyID, itemID, actorID, role,
		service.ItemDecision{
			Action:   service.DecisionAction(body.Action),
			Quantity: body.Quantity,
			Comment:  body.Comment,
		})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: item})
}

// FulfillRequest handles POST /api/companies/:companyId/requests/:id/fulfill
func (h *Handlers) FulfillRequest(c *gin.Context) {
	companyID, actorID, role, ok := h.resolveActor(c)
	if !ok {
		return
	}
	requestID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.fulfillmentService.FulfillToInventory(c.Request.Context(), companyID, requestID, actorID, role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// companyID extracts the tenant id from the path
func (h *Handlers) companyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("companyId"), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, "invalid company id")
		return 0, false
	}
	return id, true
}

// pathID extracts a numeric id path parameter
func (h *Handlers) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// resolveActor extracts the actor id and resolves their role within the
// company before the core re-validates it against the gate
func (h *Handlers) resolveActor(c *gin.Context) (int64, string, workflow.Role, bool) {
	companyID, ok := h.companyID(c)
	if !ok {
		return 0, "", "", false
	}

	actorID := c.GetHeader(actorHeader)
	if actorID == "" {
		h.badRequest(c, actorHeader+" header is required")
		return 0, "", "", false
	}

	role, err := h.roleOracle.RoleOf(c.Request.Context(), companyID, actorID)
	if err != nil {
		h.writeError(c, err)
		return 0, "", "", false
	}
	if role == "" {
		c.JSON(http.StatusForbidden, Response{
			Success: false,
			Error:   "no active membership in this company",
			Kind:    string(apperr.KindForbidden),
		})
		return 0, "", "", false
	}

	return companyID, actorID, role, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
		Kind:    string(apperr.KindInvalidArgument),
	})
}

// writeError maps the error taxonomy onto HTTP status codes
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindInvalidArgument:
		status = http.StatusBadRequest
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindDependencyFailure:
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Unhandled error", "error", err)
	}

	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
		Kind:    string(apperr.KindOf(err)),
	})
}
