package scheduler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/yamaha-hub-go/internal/api"
	"github.com/strefethen/yamaha-hub-go/internal/apperrors"
	"github.com/strefethen/yamaha-hub-go/internal/control"
)

type routineRequest struct {
	Name       string `json:"name"`
	Enabled    *bool  `json:"enabled,omitempty"`
	ReceiverID string `json:"receiver_id"`
	Zone       string `json:"zone,omitempty"`
	Action     string `json:"action"`
	Parameter  string `json:"parameter,omitempty"`
	CronExpr   string `json:"cron_expr"`
}

func (body routineRequest) validate() *apperrors.AppError {
	if body.Name == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	if body.ReceiverID == "" {
		return apperrors.NewValidationError("receiver_id is required", nil)
	}
	if !control.KnownAction(body.Action) {
		return apperrors.NewValidationError("unknown routine action", map[string]any{
			"action": body.Action,
			"known":  control.KnownActions,
		})
	}
	if _, err := ParseCron(body.CronExpr); err != nil {
		return apperrors.NewAppError(apperrors.ErrorCodeInvalidSchedule,
			err.Error(), http.StatusBadRequest, map[string]any{
				"cron_expr": body.CronExpr,
			})
	}
	return nil
}

// RegisterRoutes wires routine CRUD routes to the router.
func RegisterRoutes(router chi.Router, repo *Repository) {
	router.Method(http.MethodGet, "/v1/routines", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		routines, err := repo.List()
		if err != nil {
			return apperrors.NewInternalError("Failed to load routines")
		}
		return api.WriteList(w, r.URL.Path, routines, false)
	}))

	router.Method(http.MethodPost, "/v1/routines", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		var body routineRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := body.validate(); err != nil {
			return err
		}

		enabled := true
		if body.Enabled != nil {
			enabled = *body.Enabled
		}
		routine := Routine{
			Name:       body.Name,
			Enabled:    enabled,
			ReceiverID: body.ReceiverID,
			Zone:       body.Zone,
			Action:     body.Action,
			Parameter:  body.Parameter,
			CronExpr:   body.CronExpr,
		}
		if err := repo.Create(&routine); err != nil {
			return apperrors.NewInternalError("Failed to create routine")
		}

		created, err := repo.Get(routine.RoutineID)
		if err != nil || created == nil {
			return apperrors.NewInternalError("Failed to load created routine")
		}
		return api.WriteResource(w, http.StatusCreated, created)
	}))

	router.Method(http.MethodGet, "/v1/routines/{routine_id}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		routineID := chi.URLParam(r, "routine_id")
		routine, err := repo.Get(routineID)
		if err != nil {
			return apperrors.NewInternalError("Failed to load routine")
		}
		if routine == nil {
			return routineNotFound(routineID)
		}
		return api.WriteResource(w, http.StatusOK, routine)
	}))

	router.Method(http.MethodPut, "/v1/routines/{routine_id}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		routineID := chi.URLParam(r, "routine_id")
		var body routineRequest
		if err := api.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		if err := body.validate(); err != nil {
			return err
		}

		enabled := true
		if body.Enabled != nil {
			enabled = *body.Enabled
		}
		updated, err := repo.Update(Routine{
			RoutineID:  routineID,
			Name:       body.Name,
			Enabled:    enabled,
			ReceiverID: body.ReceiverID,
			Zone:       body.Zone,
			Action:     body.Action,
			Parameter:  body.Parameter,
			CronExpr:   body.CronExpr,
		})
		if err != nil {
			return apperrors.NewInternalError("Failed to update routine")
		}
		if !updated {
			return routineNotFound(routineID)
		}

		routine, err := repo.Get(routineID)
		if err != nil || routine == nil {
			return apperrors.NewInternalError("Failed to load updated routine")
		}
		return api.WriteResource(w, http.StatusOK, routine)
	}))

	router.Method(http.MethodDelete, "/v1/routines/{routine_id}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		routineID := chi.URLParam(r, "routine_id")
		deleted, err := repo.Delete(routineID)
		if err != nil {
			return apperrors.NewInternalError("Failed to delete routine")
		}
		if !deleted {
			return routineNotFound(routineID)
		}
		return api.WriteNoContent(w)
	}))
}

func routineNotFound(routineID string) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrorCodeRoutineNotFound,
		"Routine not found: "+routineID, http.StatusNotFound, map[string]any{
			"routine_id": routineID,
		})
}
