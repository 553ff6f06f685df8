package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/auth"
	"github.com/promatch-inc/promatch-engine/pkg/models"
	"github.com/promatch-inc/promatch-engine/pkg/services"
)

// ProposalsHandler handles proposal HTTP requests.
type ProposalsHandler struct {
	lifecycleService services.LifecycleService
	logger           *zap.Logger
}

// NewProposalsHandler creates a new proposals handler.
func NewProposalsHandler(lifecycleService services.LifecycleService, logger *zap.Logger) *ProposalsHandler {
	return &ProposalsHandler{
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// RegisterRoutes registers the proposal handler's routes on the given mux.
func (h *ProposalsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope ScopeMiddleware) {
	mux.HandleFunc("POST /api/projects/{pid}/proposals",
		authMiddleware.RequireAuth(scope(h.SubmitProposal)))
	mux.HandleFunc("POST /api/proposals/{prid}/accept",
		authMiddleware.RequireAuth(scope(h.AcceptProposal)))
	mux.HandleFunc("POST /api/proposals/{prid}/reject",
		authMiddleware.RequireAuth(scope(h.RejectProposal)))
	mux.HandleFunc("POST /api/proposals/{prid}/withdraw",
		authMiddleware.RequireAuth(scope(h.WithdrawProposal)))
}

type submitProposalRequest struct {
	Amount      int64               `json:"amount"`
	Description string              `json:"description"`
	WorkPlan    string              `json:"work_plan"`
	Attachments []models.Attachment `json:"attachments"`
}

// SubmitProposal handles POST /api/projects/{pid}/proposals
func (h *ProposalsHandler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req submitProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	proposal, err := h.lifecycleService.SubmitProposal(r.Context(), projectID, callerID, services.SubmitProposalInput{
		Amount:      req.Amount,
		Description: req.Description,
		WorkPlan:    req.WorkPlan,
		Attachments: req.Attachments,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: proposal}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// AcceptProposal handles POST /api/proposals/{prid}/accept
// Returns the contract created by the acceptance.
func (h *ProposalsHandler) AcceptProposal(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	proposalID, ok := ParseProposalID(w, r, h.logger)
	if !ok {
		return
	}

	contract, err := h.lifecycleService.AcceptProposal(r.Context(), proposalID, callerID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: contract}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// RejectProposal handles POST /api/proposals/{prid}/reject
func (h *ProposalsHandler) RejectProposal(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	proposalID, ok := ParseProposalID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.lifecycleService.RejectProposal(r.Context(), proposalID, callerID); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Proposal rejected"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// WithdrawProposal handles POST /api/proposals/{prid}/withdraw
func (h *ProposalsHandler) WithdrawProposal(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	proposalID, ok := ParseProposalID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.lifecycleService.WithdrawProposal(r.Context(), proposalID, callerID); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Proposal withdrawn"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
