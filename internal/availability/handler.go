package availability

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/transport"
	"github.com/frahmantamala/transport-management/pkg/logger"
)

type ServiceAPI interface {
	FindAvailable(actor *auth.User, window Window) (*Availability, error)
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

// FindAvailable handles GET /availability?from=...&to=... with RFC 3339
// timestamps.
func (h *Handler) FindAvailable(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")

	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid 'from' timestamp")
		return
	}

	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid 'to' timestamp")
		return
	}

	result, err := h.Service.FindAvailable(user, Window{FromTime: from, ToTime: to})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
