package devices

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/yamaha-hub-go/internal/api"
	"github.com/strefethen/yamaha-hub-go/internal/apperrors"
)

// RegisterRoutes wires receiver registry routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodGet, "/v1/receivers", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receivers := service.List()
		formatted := make([]receiverSummary, 0, len(receivers))
		for _, receiver := range receivers {
			formatted = append(formatted, summarize(receiver))
		}
		return api.WriteList(w, r.URL.Path, formatted, false)
	}))

	router.Method(http.MethodPost, "/v1/receivers/scan", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		found, durationMs, err := service.Scan(r.Context())
		if err != nil {
			return apperrors.NewInternalError("Receiver scan failed")
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"receivers_found": found,
			"duration_ms":     durationMs,
		})
	}))

	router.Method(http.MethodGet, "/v1/receivers/{receiver_id}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID := chi.URLParam(r, "receiver_id")
		receiver := service.Get(receiverID)
		if receiver == nil {
			return apperrors.NewNotFoundResource("Receiver", receiverID)
		}
		return api.WriteResource(w, http.StatusOK, summarize(*receiver))
	}))

	router.Method(http.MethodGet, "/v1/receivers/{receiver_id}/capabilities", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID := chi.URLParam(r, "receiver_id")
		receiver := service.Get(receiverID)
		if receiver == nil {
			return apperrors.NewNotFoundResource("Receiver", receiverID)
		}
		return api.WriteResource(w, http.StatusOK, receiver.Record.Capabilities)
	}))

	router.Method(http.MethodPost, "/v1/receivers/{receiver_id}/rediscover", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID := chi.URLParam(r, "receiver_id")
		receiver, err := service.Rediscover(r.Context(), receiverID)
		if err != nil {
			return err
		}
		if receiver == nil {
			return apperrors.NewNotFoundResource("Receiver", receiverID)
		}
		return api.WriteResource(w, http.StatusOK, summarize(*receiver))
	}))

	router.Method(http.MethodDelete, "/v1/receivers/{receiver_id}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID := chi.URLParam(r, "receiver_id")
		removed, err := service.Remove(receiverID)
		if err != nil {
			return apperrors.NewInternalError("Failed to remove receiver")
		}
		if !removed {
			return apperrors.NewNotFoundResource("Receiver", receiverID)
		}
		return api.WriteNoContent(w)
	}))
}
