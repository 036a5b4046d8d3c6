package measurements

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"idhealth/internal/domain/profiles"
	"idhealth/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, profilesSvc *profiles.Service, doctors DoctorAccess) {
	r.Route("/measurements", func(mr chi.Router) {
		mr.Use(profiles.RequireRole(profilesSvc, profiles.RolePatient))
		mr.Get("/count", countHandler(svc))
		mr.Get("/", listHandler(svc))
		mr.Post("/", insertHandler(svc))
		mr.Delete("/{date}/{recordID}", deleteHandler(svc))
	})

	// Doctor: lectura del pod de un paciente que lo autorizó en su ficha.
	r.With(profiles.RequireRole(profilesSvc, profiles.RoleDoctor)).
		Get("/doctor/measurements", doctorListHandler(svc, doctors))
}

type insertRequest struct {
	Date     string  `json:"date"` // YYYY-MM-DD opcional, default hoy
	Value    float64 `json:"value"`
	TimeSlot string  `json:"time_slot"`
}

type entryResponse struct {
	ID         string   `json:"id"`
	Date       string   `json:"date"`
	Value      float64  `json:"value"`
	TimeSlot   TimeSlot `json:"time_slot"`
	InsertedAt string   `json:"inserted_at"`
}

type countResponse struct {
	Total int `json:"total"`
}

// countHandler godoc
// @Summary Total de mediciones
// @Description Suma los registros de todos los contenedores diarios de measuraments/.
// @Tags measurements
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Success 200 {object} countResponse
// @Failure 401 {string} string "unauthorized (X-Force-Logout)"
// @Failure 502 {string} string "pod unreachable"
// @Router /measurements/count [get]
func countHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())

		n, err := svc.CountAll(r.Context(), p.StorageLocation)
		if err != nil {
			profiles.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, countResponse{Total: n})
	}
}

// listHandler godoc
// @Summary Mediciones de un día
// @Tags measurements
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Param date query string false "YYYY-MM-DD, default hoy"
// @Success 200 {array} entryResponse
// @Failure 400 {string} string "date inválida"
// @Failure 401 {string} string "unauthorized"
// @Router /measurements [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())
		date := dateParam(r, svc)

		items, err := svc.ListForDate(r.Context(), p.StorageLocation, date)
		if err != nil {
			profiles.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponses(items))
	}
}

// insertHandler godoc
// @Summary Registrar medición
// @Description Agrega una medición de glucosa (mg/dL) al contenedor del día. time_slot debe ser una de las seis franjas ("G at Waking", "G at 09:30", "G at 13:00", "G at 15:00", "G at 18:00", "G at 20:00").
// @Tags measurements
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Param payload body insertRequest true "Medición"
// @Success 201 {object} entryResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {string} string "concurrent modification"
// @Router /measurements [post]
func insertHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())

		var req insertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		date := strings.TrimSpace(req.Date)
		if date == "" {
			date = svc.Today()
		}

		e, err := svc.Insert(r.Context(), p.StorageLocation, date, NewEntry{
			Value:    req.Value,
			TimeSlot: req.TimeSlot,
		})
		if err != nil {
			profiles.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEntryResponse(e))
	}
}

// deleteHandler godoc
// @Summary Borrar medición
// @Tags measurements
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Param date path string true "YYYY-MM-DD"
// @Param recordID path string true "ID del registro"
// @Success 204
// @Failure 404 {string} string "measurement not found"
// @Router /measurements/{date}/{recordID} [delete]
func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())

		err := svc.Delete(r.Context(), p.StorageLocation, chi.URLParam(r, "date"), chi.URLParam(r, "recordID"))
		if err != nil {
			profiles.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// doctorListHandler godoc
// @Summary Mediciones de un paciente (doctor)
// @Description Solo para pods cuyo host está en IDHEALTH_DOCTOR_POD_HOSTS y cuya ficha de paciente lista al doctor en `doctors`.
// @Tags measurements
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Param storage query string true "Raíz de storage del paciente"
// @Param date query string false "YYYY-MM-DD, default hoy"
// @Success 200 {array} entryResponse
// @Failure 400 {string} string "storage requerido"
// @Failure 403 {string} string "forbidden"
// @Router /doctor/measurements [get]
func doctorListHandler(svc *Service, access DoctorAccess) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())

		storage, err := access.authorize(r.Context(), r.URL.Query().Get("storage"), p.WebID)
		if err != nil {
			writeDoctorError(w, r, err)
			return
		}

		items, err := svc.ListForDate(r.Context(), storage, dateParam(r, svc))
		if err != nil {
			writeDoctorError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponses(items))
	}
}

// writeDoctorError responde 403 si el pod del paciente rechaza al doctor,
// sin forzar su logout.
func writeDoctorError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errPodHostNotAllowed), errors.Is(err, errNotGranted), errors.Is(err, apperr.ErrUnauthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		profiles.WriteError(w, r, err)
	}
}

func dateParam(r *http.Request, svc *Service) string {
	if d := strings.TrimSpace(r.URL.Query().Get("date")); d != "" {
		return d
	}
	return svc.Today()
}

func toEntryResponses(items []Entry) []entryResponse {
	out := make([]entryResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toEntryResponse(e))
	}
	return out
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		ID:         e.ID,
		Date:       e.Date,
		Value:      e.Value,
		TimeSlot:   e.TimeSlot,
		InsertedAt: e.InsertedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
