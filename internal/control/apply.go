package control

import (
	"context"
	"strconv"

	"github.com/strefethen/yamaha-hub-go/internal/apperrors"
	"github.com/strefethen/yamaha-hub-go/internal/audit"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha"
)

// Apply executes a named action against a receiver zone outside the HTTP
// surface. Routines drive this path; it shares the per-receiver lock and
// audit trail with interactive commands.
func (service *Service) Apply(ctx context.Context, receiverID, zone, action, parameter string) error {
	session, err := service.session(receiverID, zone)
	if err != nil {
		return err
	}

	fn, err := actionFunc(ctx, action, parameter)
	if err != nil {
		return err
	}

	lock := service.lockFor(receiverID)
	lock.Lock()
	cmdErr := fn(session)
	lock.Unlock()

	entry := audit.Entry{
		ReceiverID: receiverID,
		Zone:       session.Zone(),
		Action:     action,
		Parameter:  parameter,
		Outcome:    "ok",
	}
	if cmdErr != nil {
		appErr := mapDomainError(cmdErr)
		entry.Outcome = "error"
		entry.ErrorCode = string(appErr.Code)
		service.recordAudit(entry)
		return appErr
	}
	service.recordAudit(entry)
	return nil
}

func actionFunc(ctx context.Context, action, parameter string) (func(*yamaha.Session) error, error) {
	switch action {
	case "power_on":
		return func(s *yamaha.Session) error { return s.SetPower(ctx, true) }, nil
	case "power_off":
		return func(s *yamaha.Session) error { return s.SetPower(ctx, false) }, nil
	case "mute_on":
		return func(s *yamaha.Session) error { return s.SetMute(ctx, true) }, nil
	case "mute_off":
		return func(s *yamaha.Session) error { return s.SetMute(ctx, false) }, nil
	case "volume":
		db, err := strconv.ParseFloat(parameter, 64)
		if err != nil {
			return nil, apperrors.NewValidationError("volume parameter must be a number in dB", map[string]any{
				"parameter": parameter,
			})
		}
		return func(s *yamaha.Session) error { return s.SetVolume(ctx, db) }, nil
	case "input":
		return func(s *yamaha.Session) error { return s.SetInput(ctx, parameter) }, nil
	case "scene":
		return func(s *yamaha.Session) error { return s.SetScene(ctx, parameter) }, nil
	case "surround":
		return func(s *yamaha.Session) error { return s.SetSurroundProgram(ctx, parameter) }, nil
	case "sleep":
		return func(s *yamaha.Session) error { return s.SetSleep(ctx, parameter) }, nil
	case "net_radio":
		return func(s *yamaha.Session) error { return s.PlayNetRadio(ctx, parameter) }, nil
	case "server":
		return func(s *yamaha.Session) error { return s.PlayServer(ctx, parameter) }, nil
	default:
		return nil, apperrors.NewValidationError("unknown routine action", map[string]any{
			"action": action,
		})
	}
}

// KnownActions lists every action a routine may carry.
var KnownActions = []string{
	"power_on", "power_off", "mute_on", "mute_off", "volume",
	"input", "scene", "surround", "sleep", "net_radio", "server",
}

// KnownAction reports whether a routine action is part of the set.
func KnownAction(action string) bool {
	for _, known := range KnownActions {
		if known == action {
			return true
		}
	}
	return false
}
