package trip

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
	Create(ctx context.Context, actor *auth.User, dto CreateTripDTO) (*Trip, error)
	Decide(ctx context.Context, actor *auth.User, tripID int64, dto DecideTripDTO) (*Trip, error)
	Assign(ctx context.Context, actor *auth.User, tripID int64, dto AssignTripDTO) (*Trip, error)
	Start(ctx context.Context, actor *auth.User, tripID int64) (*Trip, error)
	Complete(ctx context.Context, actor *auth.User, tripID int64) (*Trip, error)
	Cancel(ctx context.Context, actor *auth.User, tripID int64) (*Trip, error)
	GetByID(actor *auth.User, tripID int64) (*Trip, error)
	ListOwn(actor *auth.User, limit, offset int) ([]*Trip, error)
	ListAll(actor *auth.User, limit, offset int) ([]*Trip, error)
	ListPending(actor *auth.User, limit, offset int) ([]*Trip, error)
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

func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateTripDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trip, err := h.Service.Create(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, trip)
}

func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tripID, ok := h.tripID(w, r)
	if !ok {
		return
	}

	trip, err := h.Service.GetByID(user, tripID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, trip)
}

func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)

	var (
		trips []*Trip
		err   error
	)
	if user.IsStaff() {
		trips, err = h.Service.ListAll(user, limit, offset)
	} else {
		trips, err = h.Service.ListOwn(user, limit, offset)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trips":  trips,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) ListPendingTrips(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)

	trips, err := h.Service.ListPending(user, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trips":  trips,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) DecideTrip(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tripID, ok := h.tripID(w, r)
	if !ok {
		return
	}

	var dto DecideTripDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trip, err := h.Service.Decide(r.Context(), user, tripID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, trip)
}

func (h *Handler) AssignTrip(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tripID, ok := h.tripID(w, r)
	if !ok {
		return
	}

	var dto AssignTripDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trip, err := h.Service.Assign(r.Context(), user, tripID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, trip)
}

func (h *Handler) StartTrip(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.Service.Start)
}

func (h *Handler) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.Service.Complete)
}

func (h *Handler) CancelTrip(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.Service.Cancel)
}

func (h *Handler) simpleTransition(w http.ResponseWriter, r *http.Request, fn func(context.Context, *auth.User, int64) (*Trip, error)) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tripID, ok := h.tripID(w, r)
	if !ok {
		return
	}

	trip, err := fn(r.Context(), user, tripID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, trip)
}

func (h *Handler) tripID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid trip ID")
		return 0, false
	}
	return id, true
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

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

	return limit, offset
}
