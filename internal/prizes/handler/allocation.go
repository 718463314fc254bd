package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"giveaway/internal/prizes/service"
	httputil "giveaway/pkg/http"
	"giveaway/pkg/logger"
	"giveaway/pkg/model"
)

type AllocationHandler struct {
	service service.AllocationService
	log     *logger.Logger
}

func NewAllocationHandler(service service.AllocationService, log *logger.Logger) *AllocationHandler {
	return &AllocationHandler{
		service: service,
		log:     log,
	}
}

type allocateRequest struct {
	IdentityToken string `json:"identity_token"`
}

type ackResponse struct {
	Status string `json:"status"`
}

func (h *AllocationHandler) Allocate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, "Allocate", http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	allocation, err := h.service.Allocate(r.Context(), req.IdentityToken)
	if err != nil {
		h.writeError(w, "Allocate", err)
		return
	}

	if err := httputil.WriteCreated(w, allocation); err != nil {
		h.log.Error("failed to write created response", "handler", "Allocate", "error", err)
	}
}

func (h *AllocationHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Confirm(r.Context(), id); err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	if err := httputil.WriteSuccess(w, ackResponse{Status: model.StatusConfirmed}); err != nil {
		h.log.Error("failed to write success response", "handler", "Confirm", "error", err)
	}
}

func (h *AllocationHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Release(r.Context(), id, service.ReleaseReasonCaller); err != nil {
		h.writeError(w, "Release", err)
		return
	}

	if err := httputil.WriteSuccess(w, ackResponse{Status: model.StatusReleased}); err != nil {
		h.log.Error("failed to write success response", "handler", "Release", "error", err)
	}
}

func (h *AllocationHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "error", err)
	}
}

func (h *AllocationHandler) ListReservations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListReservations", err)
		return
	}

	query := r.URL.Query()
	identity := query.Get("identity")
	status := query.Get("status")

	if status != "" && status != model.StatusReserved && status != model.StatusConfirmed && status != model.StatusReleased {
		h.writeJSON(w, "ListReservations", http.StatusBadRequest, httputil.ErrorResponse{
			Error: "status must be one of: reserved, confirmed, released",
		})
		return
	}

	reservations, total, err := h.service.ListReservations(r.Context(), identity, status, limit, offset)
	if err != nil {
		h.writeError(w, "ListReservations", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListReservations", "error", err)
	}
}

func (h *AllocationHandler) ListPrizes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	prizes, err := h.service.ListPrizes(r.Context())
	if err != nil {
		h.writeError(w, "ListPrizes", err)
		return
	}

	if err := httputil.WriteSuccess(w, prizes); err != nil {
		h.log.Error("failed to write success response", "handler", "ListPrizes", "error", err)
	}
}

func (h *AllocationHandler) ResetPrize(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var prize model.Prize
	if err := json.NewDecoder(r.Body).Decode(&prize); err != nil {
		h.writeJSON(w, "ResetPrize", http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.ResetPrize(r.Context(), id, &prize); err != nil {
		h.writeError(w, "ResetPrize", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AllocationHandler) ResetAllPrizes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.ResetAllPrizes(r.Context()); err != nil {
		h.writeError(w, "ResetAllPrizes", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AllocationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/allocations", h.Allocate)
	router.POST("/api/v1/allocations/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/allocations/id/:id/release", h.Release)
	router.GET("/api/v1/stats", h.Stats)
	router.GET("/api/v1/reservations", h.ListReservations)
	router.GET("/api/v1/prizes", h.ListPrizes)
	router.PUT("/api/v1/prizes/id/:id", h.ResetPrize)
	router.POST("/api/v1/prizes/reset", h.ResetAllPrizes)
}

func (h *AllocationHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *AllocationHandler) writeJSON(w http.ResponseWriter, handlerName string, statusCode int, data any) {
	if err := httputil.WriteJSON(w, statusCode, data); err != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "error", err)
	}
}
