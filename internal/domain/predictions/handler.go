package predictions

import (
	"encoding/json"
	"net/http"
	"strings"

	"idhealth/internal/domain/profiles"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, profilesSvc *profiles.Service) {
	r.Route("/predictions", func(pr chi.Router) {
		pr.Use(profiles.RequireRole(profilesSvc, profiles.RolePatient))
		pr.Post("/", predictHandler(svc))
		pr.Get("/", listHandler(svc))
		pr.Get("/chart", chartHandler(svc))
	})
}

type predictRequest struct {
	TimeSlot string `json:"time_slot"`
}

type entryResponse struct {
	ID               string  `json:"id"`
	Date             string  `json:"date"`
	PredictedInsulin float64 `json:"predicted_insulin"`
	GlucoseValue     float64 `json:"glucose_value"`
	TimeSlot         string  `json:"time_slot"`
	Timestamp        string  `json:"timestamp,omitempty"`
}

type predictResponse struct {
	Date            string         `json:"date"`
	TimeSlot        string         `json:"time_slot"`
	GlucoseValue    float64        `json:"glucose_value"`
	Advice          string         `json:"advice"`
	CalculatedDose  *float64       `json:"calculated_dose,omitempty"`
	ModelPrediction *float64       `json:"model_prediction,omitempty"`
	Saved           *entryResponse `json:"saved,omitempty"`
}

// predictHandler godoc
// @Summary Predecir dosis de insulina
// @Description Toma la última medición de hoy en la franja. Hasta 100 mg/dL responde take-basal-insulin sin guardar nada; si no calcula (mg/dL / 18) * 0.2 y lo guarda. model_prediction es el valor del modelo externo, solo informativo.
// @Tags predictions
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Param payload body predictRequest true "Franja"
// @Success 200 {object} predictResponse "basal, nada guardado"
// @Success 201 {object} predictResponse "dosis calculada y guardada"
// @Failure 400 {string} string "time_slot inválida"
// @Failure 404 {string} string "no hay medición hoy en la franja"
// @Failure 502 {string} string "pod unreachable"
// @Router /predictions [post]
func predictHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())

		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.Predict(r.Context(), p.StorageLocation, req.TimeSlot)
		if err != nil {
			profiles.WriteError(w, r, err)
			return
		}

		out := predictResponse{
			Date:            res.Date,
			TimeSlot:        res.TimeSlot,
			GlucoseValue:    res.GlucoseValue,
			Advice:          res.Advice.String(),
			ModelPrediction: res.ModelPrediction,
		}
		status := http.StatusOK
		if !res.Advice.Basal {
			dose := res.Advice.CalculatedDose
			out.CalculatedDose = &dose
		}
		if res.Saved != nil {
			e := toEntryResponse(*res.Saved)
			out.Saved = &e
			status = http.StatusCreated
		}
		writeJSON(w, status, out)
	}
}

// listHandler godoc
// @Summary Predicciones de un día
// @Tags predictions
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Param date query string false "YYYY-MM-DD, default hoy"
// @Success 200 {array} entryResponse
// @Failure 400 {string} string "date inválida"
// @Router /predictions [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())

		items, err := svc.ListForDate(r.Context(), p.StorageLocation, dateParam(r, svc))
		if err != nil {
			profiles.WriteError(w, r, err)
			return
		}
		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// chartHandler godoc
// @Summary Puntos del gráfico de insulina
// @Description Un punto por valor distinto de insulina del día, gana el primero.
// @Tags predictions
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, WebID del usuario"
// @Param Authorization header string false "Bearer token Solid-OIDC"
// @Param date query string false "YYYY-MM-DD, default hoy"
// @Success 200 {array} ChartPoint
// @Router /predictions/chart [get]
func chartHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := profiles.FromContext(r.Context())

		pts, err := svc.Chart(r.Context(), p.StorageLocation, dateParam(r, svc))
		if err != nil {
			profiles.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, pts)
	}
}

func dateParam(r *http.Request, svc *Service) string {
	if d := strings.TrimSpace(r.URL.Query().Get("date")); d != "" {
		return d
	}
	return svc.Today()
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		ID:               e.ID,
		Date:             e.Date,
		PredictedInsulin: e.PredictedInsulin,
		GlucoseValue:     e.GlucoseValue,
		TimeSlot:         e.TimeSlot,
		Timestamp:        e.Timestamp,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
