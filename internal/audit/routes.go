package audit

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/yamaha-hub-go/internal/api"
	"github.com/strefethen/yamaha-hub-go/internal/apperrors"
)

// RegisterRoutes wires audit log routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodGet, "/v1/audit", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		receiverID := r.URL.Query().Get("receiver_id")

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				return apperrors.NewValidationError("limit must be a positive integer", map[string]any{
					"limit": raw,
				})
			}
			limit = parsed
		}

		entries, err := service.List(receiverID, limit)
		if err != nil {
			return apperrors.NewInternalError("Failed to load audit log")
		}
		return api.WriteList(w, r.URL.Path, entries, false)
	}))
}
