package training

import (
	"encoding/json"
	"net/http"

	"idhealth/internal/domain/profiles"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, profilesSvc *profiles.Service) {
	r.Route("/training", func(tr chi.Router) {
		tr.Use(profiles.RequireRole(profilesSvc, profiles.RolePatient))
		tr.Post("/", triggerHandler(svc))
		tr.Get("/events", eventsHandler(svc))
	})
}

type triggerResponse struct {
	Values   []float64 `json:"values"`
	Message  string    `json:"message,omitempty"`
	Recorded bool      `json:"recorded"`
	Event    string    `json:"event,omitempty"`
}

type eventsResponse struct {
	Events []string `json:"events"`
}

// triggerHandler godoc
// @Summary Entrenar el modelo
// @Description Envía al servicio de entrenamiento los valores distintos de insulina predichos hoy. Requiere al menos 6. Si el entrenamiento sale bien registra la fecha en training_date/.
// @Tags training
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Success 200 {object} triggerResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 422 {string} string "valores insuficientes"
// @Failure 502 {string} string "servicio de entrenamiento falló"
// @Router /training [post]
func triggerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())

		res, err := svc.TriggerFromPredictions(r.Context(), p.StorageLocation)
		if err != nil {
			profiles.WriteError(w, r, err)
			return
		}

		out := triggerResponse{Values: res.Values, Message: res.Message, Recorded: res.Recorded}
		if res.Event != nil {
			out.Event = res.Event.String()
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// eventsHandler godoc
// @Summary Historial de entrenamientos
// @Tags training
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Success 200 {object} eventsResponse
// @Failure 401 {string} string "unauthorized"
// @Router /training/events [get]
func eventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())

		events, err := svc.ListEvents(r.Context(), p.StorageLocation)
		if err != nil {
			profiles.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, eventsResponse{Events: events})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
