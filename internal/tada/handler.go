package tada

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/transport"
	"github.com/frahmantamala/transport-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor *auth.User, tripID int64, dto CreateClaimDTO) (*Claim, error)
	CreateBatch(ctx context.Context, actor *auth.User, tripID int64, dto CreateBatchDTO) ([]*Claim, error)
	Decide(ctx context.Context, actor *auth.User, claimID int64, dto DecideClaimDTO) (*Claim, error)
	ListByTrip(actor *auth.User, tripID int64) ([]*Claim, error)
	ListPending(actor *auth.User, limit, offset int) ([]*Claim, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tripID, ok := h.pathID(w, r, "tripID", "invalid trip ID")
	if !ok {
		return
	}

	var dto CreateClaimDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Service.Create(r.Context(), user, tripID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, claim)
}

func (h *Handler) CreateClaimBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tripID, ok := h.pathID(w, r, "tripID", "invalid trip ID")
	if !ok {
		return
	}

	var dto CreateBatchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := h.Service.CreateBatch(r.Context(), user, tripID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"claims": claims,
		"count":  len(claims),
	})
}

func (h *Handler) DecideClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	claimID, ok := h.pathID(w, r, "id", "invalid claim ID")
	if !ok {
		return
	}

	var dto DecideClaimDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Service.Decide(r.Context(), user, claimID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) ListTripClaims(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tripID, ok := h.pathID(w, r, "tripID", "invalid trip ID")
	if !ok {
		return
	}

	claims, err := h.Service.ListByTrip(user, tripID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"claims": claims,
	})
}

func (h *Handler) ListPendingClaims(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	claims, err := h.Service.ListPending(user, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"claims": claims,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param, message string) (int64, bool) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, message)
		return 0, false
	}
	return id, true
}
