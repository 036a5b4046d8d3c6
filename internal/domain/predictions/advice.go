package predictions

import (
	"idhealth/internal/domain/measurements"
	"idhealth/internal/platform/logger"
)

// ComputeInsulinAdvice aplica la regla de negocio: hasta 100 mg/dL basal,
// si no (mg/dL / 18) * 0.2 unidades.
func ComputeInsulinAdvice(mgdl float64) Advice {
	if mgdl <= basalThreshold {
		return Advice{Basal: true}
	}
	return Advice{CalculatedDose: (mgdl / mgdlPerMmol) * insulinFactor}
}

// FindLatestForTimeSlot elige, en una pasada, la lectura completa de la franja
// con el timestamp mayor (comparación de strings HH:MM:SS). Las incompletas se
// registran y se saltean. nil si no hay ninguna.
func FindLatestForTimeSlot(log logger.Logger, readings []measurements.Reading, slot string) *measurements.Reading {
	var latest *measurements.Reading
	for i := range readings {
		r := &readings[i]
		if !r.Complete() {
			if log != nil {
				log.Warn("incomplete measurement skipped", map[string]any{
					"id":          r.ID,
					"has_value":   r.Value != nil,
					"time_slot":   r.TimeSlot,
					"inserted_at": r.InsertedAt,
				})
			}
			continue
		}
		if r.TimeSlot != slot {
			continue
		}
		if latest == nil || r.InsertedAt > latest.InsertedAt {
			latest = r
		}
	}
	return latest
}
