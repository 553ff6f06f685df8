package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/auth"
	"github.com/promatch-inc/promatch-engine/pkg/models"
	"github.com/promatch-inc/promatch-engine/pkg/services"
)

// ProjectsHandler handles project HTTP requests.
type ProjectsHandler struct {
	projectService services.ProjectService
	logger         *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projectService services.ProjectService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// RegisterRoutes registers the project handler's routes on the given mux.
// Listing and detail are public; posting, cancelling, and viewing proposals
// require authentication.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope ScopeMiddleware) {
	mux.HandleFunc("GET /api/projects", scope(h.ListProjects))
	mux.HandleFunc("POST /api/projects", authMiddleware.RequireAuth(scope(h.CreateProject)))
	mux.HandleFunc("GET /api/projects/{pid}", scope(h.GetProject))
	mux.HandleFunc("DELETE /api/projects/{pid}", authMiddleware.RequireAuth(scope(h.CancelProject)))
	mux.HandleFunc("GET /api/projects/{pid}/proposals", authMiddleware.RequireAuth(scope(h.ListProposals)))
}

type createProjectRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    string     `json:"location"`
	BudgetMin   *int64     `json:"budget_min"`
	BudgetMax   *int64     `json:"budget_max"`
	Deadline    *time.Time `json:"deadline"`
}

// CreateProject handles POST /api/projects
func (h *ProjectsHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), callerID, services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Deadline:    req.Deadline,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: project}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListProjects handles GET /api/projects
// Returns the public listing of open projects.
func (h *ProjectsHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	projects, err := h.projectService.ListOpenProjects(r.Context(), services.ListOpenProjectsFilter{
		Category: q.Get("category"),
		Location: q.Get("location"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if projects == nil {
		projects = make([]*models.Project, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: projects}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetProject handles GET /api/projects/{pid}
func (h *ProjectsHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(r.Context(), projectID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: project}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// CancelProject handles DELETE /api/projects/{pid}
func (h *ProjectsHandler) CancelProject(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.projectService.CancelProject(r.Context(), projectID, callerID); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Project cancelled"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListProposals handles GET /api/projects/{pid}/proposals
// Only the project owner sees the proposals on their project.
func (h *ProjectsHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	proposals, err := h.projectService.ListProjectProposals(r.Context(), projectID, callerID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if proposals == nil {
		proposals = make([]*models.Proposal, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: proposals}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
