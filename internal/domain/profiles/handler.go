package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"idhealth/internal/middleware"
	"idhealth/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

// ForceLogoutHeader le indica a la UI que descarte la sesión.
const ForceLogoutHeader = "X-Force-Logout"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.With(RequireRole(svc)).Get("/me/profile", getProfileHandler())
}

// RequireRole resuelve el perfil del usuario autenticado y lo deja en el
// context. Sin roles exige solo un rol válido.
func RequireRole(svc *Service, roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := middleware.GetClaims(r.Context())
			if !ok || strings.TrimSpace(claims.UserID) == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := withForget(r.Context(), func(ctx context.Context) {
				svc.Forget(ctx, claims.UserID)
			})
			r = r.WithContext(ctx)

			p, err := svc.Resolve(ctx, claims.UserID)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			if len(roles) > 0 && !hasRole(p.Role, roles) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), p)))
		})
	}
}

func hasRole(r Role, allowed []Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// getProfileHandler godoc
// @Summary Perfil del usuario autenticado
// @Description Resuelve nombre, email, storage y rol desde el pod del usuario. Si el rol falta o no es patient/doctor responde 401 con `X-Force-Logout: true`.
// @Tags profiles
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Success 200 {object} Profile
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "webid not found"
// @Failure 502 {string} string "pod unreachable"
// @Router /me/profile [get]
func getProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

type forgetKey struct{}

func withForget(ctx context.Context, fn func(context.Context)) context.Context {
	return context.WithValue(ctx, forgetKey{}, fn)
}

// WriteError responde con el status de la taxonomía de errores. Los demás
// módulos lo usan para que Unauthorized siempre fuerce logout y descarte
// el perfil cacheado del usuario.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusUnauthorized {
		w.Header().Set(ForceLogoutHeader, "true")
		if forget, ok := r.Context().Value(forgetKey{}).(func(context.Context)); ok {
			forget(context.WithoutCancel(r.Context()))
		}
	}

	msg := "internal error"
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}
	http.Error(w, msg, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
