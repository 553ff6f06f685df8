package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/auth"
	"github.com/promatch-inc/promatch-engine/pkg/models"
	"github.com/promatch-inc/promatch-engine/pkg/services"
)

// ContractsHandler handles contract HTTP requests.
type ContractsHandler struct {
	contractService  services.ContractService
	lifecycleService services.LifecycleService
	logger           *zap.Logger
}

// NewContractsHandler creates a new contracts handler.
func NewContractsHandler(contractService services.ContractService, lifecycleService services.LifecycleService, logger *zap.Logger) *ContractsHandler {
	return &ContractsHandler{
		contractService:  contractService,
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// RegisterRoutes registers the contract handler's routes on the given mux.
func (h *ContractsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope ScopeMiddleware) {
	mux.HandleFunc("GET /api/contracts",
		authMiddleware.RequireAuth(scope(h.ListContracts)))
	mux.HandleFunc("GET /api/contracts/{cid}",
		authMiddleware.RequireAuth(scope(h.GetContract)))
	mux.HandleFunc("POST /api/contracts/{cid}/complete",
		authMiddleware.RequireAuth(scope(h.CompleteContract)))
	mux.HandleFunc("POST /api/contracts/{cid}/cancel",
		authMiddleware.RequireAuth(scope(h.CancelContract)))
}

// ListContracts handles GET /api/contracts
// Returns every contract where the caller is a party.
func (h *ContractsHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	contracts, err := h.contractService.ListUserContracts(r.Context(), callerID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if contracts == nil {
		contracts = make([]*models.Contract, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: contracts}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetContract handles GET /api/contracts/{cid}
func (h *ContractsHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	contractID, ok := ParseContractID(w, r, h.logger)
	if !ok {
		return
	}

	contract, err := h.contractService.GetContract(r.Context(), contractID, callerID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: contract}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// CompleteContract handles POST /api/contracts/{cid}/complete
func (h *ContractsHandler) CompleteContract(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	contractID, ok := ParseContractID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.lifecycleService.CompleteContract(r.Context(), contractID, callerID); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Contract completed"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type cancelContractRequest struct {
	Reason string `json:"reason"`
}

// CancelContract handles POST /api/contracts/{cid}/cancel
func (h *ContractsHandler) CancelContract(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	contractID, ok := ParseContractID(w, r, h.logger)
	if !ok {
		return
	}

	var req cancelContractRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
	}

	if err := h.lifecycleService.CancelContract(r.Context(), contractID, callerID, req.Reason); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Contract cancelled"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
