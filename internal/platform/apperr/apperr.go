package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind clasifica los errores que cruzan la frontera de los servicios.
type Kind string

const (
	KindUnauthorized     Kind = "unauthorized"
	KindNotFound         Kind = "not_found"
	KindNetworkFailure   Kind = "network_failure"
	KindInsufficientData Kind = "insufficient_data"
	KindServerError      Kind = "server_error"
	KindInvalidInput     Kind = "invalid_input"
	KindConflict         Kind = "conflict"
)

// Error es un error de aplicación con contexto estructurado para logs.
type Error struct {
	Kind     Kind
	Code     string
	Message  string
	Internal error
	Context  map[string]any
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Internal
}

// Is compara por Kind contra los sentinels de este paquete.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return e.Kind == t.Kind
}

// With agrega un campo de contexto y devuelve el mismo error.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// LogFields devuelve los campos para el logger estructurado.
func (e *Error) LogFields() map[string]any {
	fields := map[string]any{
		"error_kind":    string(e.Kind),
		"error_code":    e.Code,
		"error_message": e.Message,
	}
	if e.Internal != nil {
		fields["internal_error"] = e.Internal.Error()
	}
	for k, v := range e.Context {
		fields[k] = v
	}
	return fields
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(err error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Internal: err}
}

// Sentinels por Kind, para usar con errors.Is.
var (
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrNetworkFailure   = &Error{Kind: KindNetworkFailure}
	ErrInsufficientData = &Error{Kind: KindInsufficientData}
	ErrServerError      = &Error{Kind: KindServerError}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrConflict         = &Error{Kind: KindConflict}
)

func Unauthorized(message string, err error) *Error {
	return Wrap(err, KindUnauthorized, "UNAUTHORIZED", message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, "NOT_FOUND", message)
}

func NetworkFailure(err error, target string) *Error {
	return Wrap(err, KindNetworkFailure, "NETWORK_FAILURE", fmt.Sprintf("%s unreachable", target)).
		With("target", target)
}

func InsufficientData(message string) *Error {
	return New(KindInsufficientData, "INSUFFICIENT_DATA", message)
}

func ServerError(err error, target string) *Error {
	return Wrap(err, KindServerError, "SERVER_ERROR", fmt.Sprintf("%s failed", target)).
		With("target", target)
}

func InvalidInput(message string) *Error {
	return New(KindInvalidInput, "INVALID_INPUT", message)
}

func Conflict(err error, message string) *Error {
	return Wrap(err, KindConflict, "CONFLICT", message)
}

// KindOf devuelve el Kind del primer *Error en la cadena, o "" si no hay.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// HTTPStatus traduce el error a un status HTTP.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInsufficientData:
		return http.StatusUnprocessableEntity
	case KindNetworkFailure, KindServerError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
