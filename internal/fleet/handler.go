package fleet

import (
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
	CreateDriver(actor *auth.User, dto CreateDriverDTO) (*Driver, error)
	UpdateDriver(actor *auth.User, id int64, dto UpdateDriverDTO) (*Driver, error)
	ListDrivers(actor *auth.User, includeInactive bool) ([]*Driver, error)
	DeactivateDriver(actor *auth.User, id int64) (*Driver, error)
	ReactivateDriver(actor *auth.User, id int64) (*Driver, error)
	DeleteDriver(actor *auth.User, id int64) error

	CreateVehicle(actor *auth.User, dto CreateVehicleDTO) (*Vehicle, error)
	UpdateVehicle(actor *auth.User, id int64, dto UpdateVehicleDTO) (*Vehicle, error)
	ListVehicles(actor *auth.User, includeInactive bool) ([]*Vehicle, error)
	DeactivateVehicle(actor *auth.User, id int64) (*Vehicle, error)
	ReactivateVehicle(actor *auth.User, id int64) (*Vehicle, error)
	DeleteVehicle(actor *auth.User, id int64) error

	CreateEntitledVehicle(actor *auth.User, dto CreateEntitledVehicleDTO) (*EntitledVehicle, error)
	ListEntitledVehicles(actor *auth.User, userID int64) ([]*EntitledVehicle, error)
	DeactivateEntitledVehicle(actor *auth.User, id int64) (*EntitledVehicle, error)
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

func (h *Handler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateDriverDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	driver, err := h.Service.CreateDriver(user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, driver)
}

func (h *Handler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto UpdateDriverDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	driver, err := h.Service.UpdateDriver(user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, driver)
}

func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	drivers, err := h.Service.ListDrivers(user, includeInactive)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"drivers": drivers,
	})
}

func (h *Handler) DeactivateDriver(w http.ResponseWriter, r *http.Request) {
	h.setDriverActive(w, r, false)
}

func (h *Handler) ReactivateDriver(w http.ResponseWriter, r *http.Request) {
	h.setDriverActive(w, r, true)
}

func (h *Handler) setDriverActive(w http.ResponseWriter, r *http.Request, active bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var (
		driver *Driver
		err    error
	)
	if active {
		driver, err = h.Service.ReactivateDriver(user, id)
	} else {
		driver, err = h.Service.DeactivateDriver(user, id)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, driver)
}

func (h *Handler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteDriver(user, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateVehicleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vehicle, err := h.Service.CreateVehicle(user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, vehicle)
}

func (h *Handler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto UpdateVehicleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vehicle, err := h.Service.UpdateVehicle(user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, vehicle)
}

func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	vehicles, err := h.Service.ListVehicles(user, includeInactive)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"vehicles": vehicles,
	})
}

func (h *Handler) DeactivateVehicle(w http.ResponseWriter, r *http.Request) {
	h.setVehicleActive(w, r, false)
}

func (h *Handler) ReactivateVehicle(w http.ResponseWriter, r *http.Request) {
	h.setVehicleActive(w, r, true)
}

func (h *Handler) setVehicleActive(w http.ResponseWriter, r *http.Request, active bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var (
		vehicle *Vehicle
		err     error
	)
	if active {
		vehicle, err = h.Service.ReactivateVehicle(user, id)
	} else {
		vehicle, err = h.Service.DeactivateVehicle(user, id)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, vehicle)
}

func (h *Handler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteVehicle(user, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateEntitledVehicle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateEntitledVehicleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ev, err := h.Service.CreateEntitledVehicle(user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ev)
}

func (h *Handler) ListEntitledVehicles(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var userID int64
	if userIDStr := r.URL.Query().Get("user_id"); userIDStr != "" {
		id, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		userID = id
	}

	vehicles, err := h.Service.ListEntitledVehicles(user, userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entitled_vehicles": vehicles,
	})
}

func (h *Handler) DeactivateEntitledVehicle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ev, err := h.Service.DeactivateEntitledVehicle(user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ev)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid ID")
		return 0, false
	}
	return id, true
}
