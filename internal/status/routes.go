package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/yamaha-hub-go/internal/api"
	"github.com/strefethen/yamaha-hub-go/internal/apperrors"
)

// RegisterRoutes wires status snapshot routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodGet, "/v1/status", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteList(w, r.URL.Path, service.All(), false)
	}))

	router.Method(http.MethodGet, "/v1/receivers/{receiver_id}/status", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID := chi.URLParam(r, "receiver_id")

		snapshot := service.Latest(receiverID)
		if snapshot == nil {
			// Force a poll for receivers registered since the last pass.
			snapshot = service.Poll(r.Context(), receiverID)
		}
		if snapshot == nil {
			return apperrors.NewNotFoundResource("Receiver", receiverID)
		}
		return api.WriteResource(w, http.StatusOK, snapshot)
	}))
}
