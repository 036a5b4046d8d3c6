package pod

import (
	"errors"

	"idhealth/internal/platform/apperr"
)

// AppError traduce errores del store a la taxonomía de la aplicación.
// Cualquier error no reconocido (transporte, 5xx) es NetworkFailure.
func AppError(err error, target string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.Wrap(err, apperr.KindNotFound, "POD_NOT_FOUND", "resource not found").With("target", target)
	case errors.Is(err, ErrUnauthorized):
		return apperr.Unauthorized("pod rejected credentials", err).With("target", target)
	case errors.Is(err, ErrPreconditionFailed):
		return apperr.Conflict(err, "concurrent modification").With("target", target)
	default:
		return apperr.NetworkFailure(err, target)
	}
}
