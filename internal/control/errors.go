package control

import (
	"errors"
	"net/http"

	"github.com/strefethen/yamaha-hub-go/internal/apperrors"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha/desc"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha/ync"
)

// mapDomainError translates protocol and capability failures into HTTP error
// responses. Anything unrecognized falls through as an internal error.
func mapDomainError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var rejected *ync.RejectedError
	if errors.As(err, &rejected) {
		return apperrors.NewAppError(apperrors.ErrorCodeReceiverRejected,
			"Receiver rejected the command", http.StatusBadGateway, map[string]any{
				"operation": rejected.Op,
				"rc":        rejected.RC,
			})
	}

	var timeout *ync.TimeoutError
	if errors.As(err, &timeout) {
		return apperrors.NewAppError(apperrors.ErrorCodeReceiverTimeout,
			"Receiver did not respond in time", http.StatusGatewayTimeout, map[string]any{
				"operation": timeout.Op,
			})
	}

	var unreachable *ync.UnreachableError
	if errors.As(err, &unreachable) {
		return apperrors.NewAppError(apperrors.ErrorCodeReceiverUnreachable,
			"Receiver is unreachable", http.StatusBadGateway, map[string]any{
				"operation": unreachable.Op,
			})
	}

	var parse *ync.ParseError
	if errors.As(err, &parse) {
		return apperrors.NewAppError(apperrors.ErrorCodeReceiverRejected,
			"Receiver returned a malformed response", http.StatusBadGateway, map[string]any{
				"operation": parse.Op,
			})
	}

	var descriptor *desc.DescriptorError
	if errors.As(err, &descriptor) {
		return apperrors.NewAppError(apperrors.ErrorCodeDescriptorInvalid,
			"Receiver descriptor could not be parsed", http.StatusBadGateway, map[string]any{
				"document": descriptor.Doc,
				"reason":   descriptor.Reason,
			})
	}

	var validation *yamaha.ValidationError
	if errors.As(err, &validation) {
		return apperrors.NewValidationError(validation.Error(), map[string]any{
			"kind": validation.Kind,
			"name": validation.Name,
		})
	}

	var unsupported *yamaha.UnsupportedOperationError
	if errors.As(err, &unsupported) {
		return apperrors.NewUnsupportedOperationError(unsupported.Error(), map[string]any{
			"source": unsupported.Source,
			"action": unsupported.Action,
		})
	}

	var menuUnavailable *yamaha.MenuUnavailableError
	if errors.As(err, &menuUnavailable) {
		return apperrors.NewUnsupportedOperationError(menuUnavailable.Error(), map[string]any{
			"input": menuUnavailable.Input,
		})
	}

	var traversal *yamaha.MenuTraversalError
	if errors.As(err, &traversal) {
		details := map[string]any{
			"path":     traversal.Path,
			"attempts": traversal.Attempts,
		}
		if traversal.LastStatus != nil {
			details["last_layer"] = traversal.LastStatus.Layer
			details["last_menu"] = traversal.LastStatus.Name
		}
		return apperrors.NewAppError(apperrors.ErrorCodeMenuTraversalFailed,
			"Menu traversal gave up before reaching the target", http.StatusBadGateway, details)
	}

	return apperrors.NewInternalError("Receiver command failed")
}
