package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("loading day: %w", NotFound("record not found"))

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is(err, ErrNotFound)")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatalf("did not expect unauthorized match")
	}
}

func TestUnwrap_ReachesInternal(t *testing.T) {
	root := errors.New("dial tcp: refused")
	err := NetworkFailure(root, "pod")

	if !errors.Is(err, root) {
		t.Fatalf("expected internal error to be reachable")
	}
	if err.Context["target"] != "pod" {
		t.Fatalf("expected target context, got %v", err.Context)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{InvalidInput("bad"), http.StatusBadRequest},
		{Unauthorized("role", nil), http.StatusUnauthorized},
		{NotFound("x"), http.StatusNotFound},
		{Conflict(nil, "x"), http.StatusConflict},
		{InsufficientData("x"), http.StatusUnprocessableEntity},
		{ServerError(nil, "model"), http.StatusBadGateway},
		{NetworkFailure(nil, "pod"), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestLogFields_IncludesContext(t *testing.T) {
	err := ServerError(errors.New("status=500"), "model").With("endpoint", "/predict")
	f := err.LogFields()

	if f["error_kind"] != string(KindServerError) {
		t.Fatalf("unexpected kind field: %v", f["error_kind"])
	}
	if f["endpoint"] != "/predict" {
		t.Fatalf("expected endpoint field, got %v", f)
	}
	if f["internal_error"] != "status=500" {
		t.Fatalf("expected internal_error field, got %v", f["internal_error"])
	}
}
