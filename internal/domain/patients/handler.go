package patients

import (
	"encoding/json"
	"net/http"
	"time"

	"idhealth/internal/domain/profiles"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, profilesSvc *profiles.Service) {
	r.Route("/me/patient", func(pr chi.Router) {
		pr.Use(profiles.RequireRole(profilesSvc, profiles.RolePatient))
		pr.Get("/", getPatientHandler(svc))
		pr.Put("/", savePatientHandler(svc))
	})
}

type savePatientRequest struct {
	GivenName    string            `json:"given_name"`
	FamilyName   string            `json:"family_name"`
	BirthDate    string            `json:"birth_date"` // YYYY-MM-DD opcional
	Gender       string            `json:"gender"`
	DiabetesType DiabetesType      `json:"diabetes_type"`
	Doctors      []string          `json:"doctors"` // WebID de doctores autorizados
	Extra        map[string]string `json:"extra"`
}

type patientResponse struct {
	WebID        string            `json:"web_id"`
	GivenName    string            `json:"given_name"`
	FamilyName   string            `json:"family_name"`
	BirthDate    *time.Time        `json:"birth_date,omitempty"`
	Gender       string            `json:"gender,omitempty"`
	DiabetesType DiabetesType      `json:"diabetes_type,omitempty"`
	CreatedAt    string            `json:"created_at,omitempty"`
	Doctors      []string          `json:"doctors,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// getPatientHandler godoc
// @Summary Ficha del paciente
// @Description Devuelve patient/Patient.ttl del pod del usuario. 404 significa que el perfil todavía no fue configurado.
// @Tags patients
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Success 200 {object} patientResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "patient record not configured"
// @Router /me/patient [get]
func getPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())

		if !svc.HasRecord(r.Context(), p.StorageLocation) {
			http.Error(w, "patient record not configured", http.StatusNotFound)
			return
		}

		rec, err := svc.Load(r.Context(), p.StorageLocation, p.WebID)
		if err != nil {
			profiles.WriteError(w, r, err)
			return
		}
		if rec == nil {
			http.Error(w, "patient record not configured", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponse(*rec))
	}
}

// savePatientHandler godoc
// @Summary Guardar ficha del paciente
// @Description Crea o reemplaza patient/Patient.ttl. La escritura es condicional sobre el ETag del documento.
// @Tags patients
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Param payload body savePatientRequest true "Datos del paciente"
// @Success 200 {object} patientResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {string} string "concurrent modification"
// @Router /me/patient [put]
func savePatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())

		var req savePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rec, err := svc.Save(r.Context(), p.StorageLocation, p.WebID, SaveInput{
			GivenName:    req.GivenName,
			FamilyName:   req.FamilyName,
			BirthDate:    req.BirthDate,
			Gender:       req.Gender,
			DiabetesType: req.DiabetesType,
			Doctors:      req.Doctors,
			Extra:        req.Extra,
		})
		if err != nil {
			profiles.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponse(rec))
	}
}

func toPatientResponse(rec PatientRecord) patientResponse {
	return patientResponse{
		WebID:        rec.WebID,
		GivenName:    rec.GivenName,
		FamilyName:   rec.FamilyName,
		BirthDate:    rec.BirthDate,
		Gender:       rec.Gender,
		DiabetesType: rec.DiabetesType,
		CreatedAt:    rec.CreatedAt,
		Doctors:      rec.Doctors,
		Extra:        rec.Extra,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
