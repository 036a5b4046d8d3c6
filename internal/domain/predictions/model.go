package predictions

import "context"

// AdviceBasal indica que con esa glucosa basta la insulina basal.
const AdviceBasal = "take-basal-insulin"

const (
	basalThreshold = 100.0 // mg/dL, inclusive
	mgdlPerMmol    = 18.0
	insulinFactor  = 0.2
)

// Advice es el resultado de la regla fija de dosis: o Basal, o una dosis calculada.
type Advice struct {
	Basal          bool
	CalculatedDose float64
}

func (a Advice) String() string {
	if a.Basal {
		return AdviceBasal
	}
	return "calculated-dose"
}

// Entry es una predicción guardada. Nunca se actualiza, solo se agrega.
type Entry struct {
	ID               string
	Date             string
	PredictedInsulin float64
	GlucoseValue     float64
	TimeSlot         string
	Timestamp        string
}

// ChartPoint es un punto por valor distinto de insulina.
type ChartPoint struct {
	Label        string  `json:"label"`
	Insulin      float64 `json:"insulin"`
	GlucoseValue float64 `json:"glucose_value"`
	TimeSlot     string  `json:"time_slot"`
}

// PredictResult resume el flujo de predicción de una franja.
type PredictResult struct {
	Date         string
	TimeSlot     string
	GlucoseValue float64
	Advice       Advice

	// Saved es nil cuando la recomendación es basal.
	Saved *Entry

	// ModelPrediction es el valor del servicio externo. Es informativo: no se
	// guarda ni reemplaza la dosis calculada.
	ModelPrediction *float64
}

// Predictor es el servicio externo de predicción.
type Predictor interface {
	Predict(ctx context.Context, slot string, mmol float64) (float64, error)
}
