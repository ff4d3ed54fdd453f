package maintenance

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
	CreateForEntitled(ctx context.Context, actor *auth.User, dto CreateEntitledDTO) (*Request, error)
	CreateFleet(ctx context.Context, actor *auth.User, dto CreateFleetDTO) (*Request, error)
	Decide(ctx context.Context, actor *auth.User, requestID int64, dto DecideDTO) (*Request, error)
	Start(ctx context.Context, actor *auth.User, requestID int64) (*Request, error)
	Complete(ctx context.Context, actor *auth.User, requestID int64, dto CompleteDTO) (*Request, error)
	ReportIssue(ctx context.Context, actor *auth.User, requestID int64, dto ReportIssueDTO) (*Request, error)
	GetByID(actor *auth.User, requestID int64) (*Request, error)
	ListOwn(actor *auth.User, limit, offset int) ([]*Request, error)
	ListAll(actor *auth.User, limit, offset int) ([]*Request, error)
	ListPending(actor *auth.User, limit, offset int) ([]*Request, error)
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

func (h *Handler) CreateEntitledRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateEntitledDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.CreateForEntitled(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, request)
}

func (h *Handler) CreateFleetRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateFleetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.CreateFleet(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, request)
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	request, err := h.Service.GetByID(user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, request)
}

// ListRequests returns all requests for staff, own requests for employees.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)

	var (
		requests []*Request
		err      error
	)
	if user.IsStaff() {
		requests, err = h.Service.ListAll(user, limit, offset)
	} else {
		requests, err = h.Service.ListOwn(user, limit, offset)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)

	requests, err := h.Service.ListPending(user, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) DecideRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto DecideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.Decide(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) StartRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	request, err := h.Service.Start(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) CompleteRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto CompleteDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	request, err := h.Service.Complete(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) ReportIssue(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto ReportIssueDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.ReportIssue(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid maintenance request ID")
		return 0, false
	}
	return id, true
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
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
