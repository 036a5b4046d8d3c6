package predictions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"idhealth/internal/domain/measurements"
	"idhealth/internal/platform/apperr"
	"idhealth/internal/platform/logger"
	"idhealth/internal/ports/pod"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const idPrefix = "insulin-prediction-"

type Service struct {
	store        pod.Store
	updater      *pod.Updater
	measurements *measurements.Service
	predictor    Predictor
	log          logger.Logger
	now          func() time.Time

	charts singleflight.Group
}

// NewService: predictor puede ser nil; Predict entonces solo usa la regla local.
func NewService(store pod.Store, updater *pod.Updater, ms *measurements.Service, predictor Predictor, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:        store,
		updater:      updater,
		measurements: ms,
		predictor:    predictor,
		log:          log.With(map[string]any{"component": "predictions"}),
		now:          time.Now,
	}
}

func (s *Service) Today() string {
	return s.now().Format(measurements.DateLayout)
}

func containerURL(storage, date string) string {
	return pod.Join(storage, pod.PredictionsContainer) + date + "/"
}

func dayURL(storage, date string) string {
	return containerURL(storage, date) + pod.DayDocument
}

// Save agrega una predicción al día, creando el contenedor si no existe.
func (s *Service) Save(ctx context.Context, storage, date string, e Entry) (Entry, error) {
	if !measurements.ValidDate(date) {
		return Entry{}, apperr.InvalidInput("date must be YYYY-MM-DD")
	}

	container := containerURL(storage, date)
	ok, err := s.store.Exists(ctx, container)
	if err != nil {
		s.log.Error("prediction container check failed", map[string]any{"url": container, "error": err})
		return Entry{}, pod.AppError(err, "predictions")
	}
	if !ok {
		if err := s.store.CreateContainer(ctx, container); err != nil {
			s.log.Error("prediction container create failed", map[string]any{"url": container, "error": err})
			return Entry{}, pod.AppError(err, "predictions")
		}
	}

	now := s.now()
	id, err := uuid.NewV7()
	if err != nil {
		return Entry{}, apperr.Wrap(err, apperr.KindServerError, "ID_GENERATION", "could not generate record id")
	}
	e.ID = idPrefix + now.Format("15-04-05") + "-" + id.String()
	e.Date = date
	e.Timestamp = now.Format(measurements.TimestampLayout)

	url := dayURL(storage, date)
	err = s.updater.Update(ctx, url, true, func(ds *pod.Dataset) error {
		th := pod.NewThing(ds.ThingURL(e.ID))
		// Los pods existentes guardan estos valores como string.
		th.Set(pod.SchemaPredictedInsulin, pod.String(formatFloat(e.PredictedInsulin)))
		th.Set(pod.SchemaGlucoseValue, pod.String(formatFloat(e.GlucoseValue)))
		th.Set(pod.SchemaTime, pod.String(e.TimeSlot))
		th.Set(pod.SchemaTimestamp, pod.String(e.Timestamp))
		ds.SetThing(th)
		return nil
	})
	if err != nil {
		s.log.Error("prediction save failed", map[string]any{"url": url, "error": err})
		return Entry{}, pod.AppError(err, "predictions")
	}

	s.log.Info("prediction saved", map[string]any{"id": e.ID, "date": date, "time_slot": e.TimeSlot})
	return e, nil
}

// ListForDate devuelve las predicciones completas del día en orden del dataset.
func (s *Service) ListForDate(ctx context.Context, storage, date string) ([]Entry, error) {
	ds, err := s.load(ctx, storage, date)
	if err != nil || ds == nil {
		return []Entry{}, err
	}

	out := make([]Entry, 0, ds.Len())
	for _, th := range ds.Things() {
		e, ok := toEntry(th, date)
		if !ok {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// DistinctInsulinValues devuelve los predictedInsulin distintos del día tal
// como están escritos en el pod, en orden de aparición.
func (s *Service) DistinctInsulinValues(ctx context.Context, storage, date string) ([]string, error) {
	ds, err := s.load(ctx, storage, date)
	if err != nil || ds == nil {
		return []string{}, err
	}

	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, th := range ds.Things() {
		v, ok := th.String(pod.SchemaPredictedInsulin)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// Predict toma la última medición de hoy en la franja y aplica la regla de
// dosis. Si no es basal consulta el modelo externo (solo informativo) y guarda
// la dosis calculada.
func (s *Service) Predict(ctx context.Context, storage, slot string) (PredictResult, error) {
	ts, ok := measurements.ParseTimeSlot(slot)
	if !ok {
		return PredictResult{}, apperr.InvalidInput("unknown time slot").With("time_slot", slot)
	}
	date := s.Today()

	readings, err := s.measurements.ReadingsForDate(ctx, storage, date)
	if err != nil {
		return PredictResult{}, err
	}

	latest := FindLatestForTimeSlot(s.log, readings, string(ts))
	if latest == nil {
		return PredictResult{}, apperr.NotFound("no measurement for the selected time slot today").
			With("time_slot", string(ts)).With("date", date)
	}

	res := PredictResult{
		Date:         date,
		TimeSlot:     string(ts),
		GlucoseValue: *latest.Value,
		Advice:       ComputeInsulinAdvice(*latest.Value),
	}
	if res.Advice.Basal {
		s.log.Info("basal insulin advised", map[string]any{"glucose": res.GlucoseValue, "time_slot": res.TimeSlot})
		return res, nil
	}

	if s.predictor != nil {
		mp, err := s.predictor.Predict(ctx, string(ts), res.GlucoseValue/mgdlPerMmol)
		if err != nil {
			fields := map[string]any{"time_slot": res.TimeSlot, "error": err}
			var ae *apperr.Error
			if errors.As(err, &ae) {
				for k, v := range ae.LogFields() {
					fields[k] = v
				}
			}
			s.log.Warn("external prediction failed", fields)
		} else {
			s.log.Info("external prediction received", map[string]any{
				"model_prediction": mp,
				"calculated_dose":  res.Advice.CalculatedDose,
			})
			res.ModelPrediction = &mp
		}
	}

	saved, err := s.Save(ctx, storage, date, Entry{
		PredictedInsulin: res.Advice.CalculatedDose,
		GlucoseValue:     res.GlucoseValue,
		TimeSlot:         res.TimeSlot,
	})
	if err != nil {
		return PredictResult{}, err
	}
	res.Saved = &saved
	return res, nil
}

// Chart arma un punto por valor distinto de insulina (gana el primero).
// Pedidos iguales concurrentes comparten una sola lectura del pod.
func (s *Service) Chart(ctx context.Context, storage, date string) ([]ChartPoint, error) {
	key := pod.AccessToken(ctx) + "|" + dayURL(storage, date)
	// la carga compartida no depende de la cancelación del primer llamador
	shared := context.WithoutCancel(ctx)
	ch := s.charts.DoChan(key, func() (any, error) {
		entries, err := s.ListForDate(shared, storage, date)
		if err != nil {
			return nil, err
		}
		return chartPoints(entries), nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	pts := res.Val.([]ChartPoint)
	out := make([]ChartPoint, len(pts))
	copy(out, pts)
	return out, nil
}

func chartPoints(entries []Entry) []ChartPoint {
	seen := map[float64]struct{}{}
	out := make([]ChartPoint, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.PredictedInsulin]; ok {
			continue
		}
		seen[e.PredictedInsulin] = struct{}{}
		out = append(out, ChartPoint{
			Label:        fmt.Sprintf("Insulin: %.2f", e.PredictedInsulin),
			Insulin:      e.PredictedInsulin,
			GlucoseValue: e.GlucoseValue,
			TimeSlot:     e.TimeSlot,
		})
	}
	return out
}

// load devuelve nil, nil si el día no tiene predicciones.
func (s *Service) load(ctx context.Context, storage, date string) (*pod.Dataset, error) {
	if !measurements.ValidDate(date) {
		return nil, apperr.InvalidInput("date must be YYYY-MM-DD")
	}
	url := dayURL(storage, date)
	ds, err := s.store.GetDataset(ctx, url)
	if errors.Is(err, pod.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("prediction day fetch failed", map[string]any{"url": url, "error": err})
		return nil, pod.AppError(err, "predictions")
	}
	return ds, nil
}

func toEntry(th *pod.Thing, date string) (Entry, bool) {
	insulin, ok1 := th.Decimal(pod.SchemaPredictedInsulin)
	glucose, ok2 := th.Decimal(pod.SchemaGlucoseValue)
	slot, ok3 := th.String(pod.SchemaTime)
	if !ok1 || !ok2 || !ok3 {
		return Entry{}, false
	}
	e := Entry{
		ID:               thingName(th.URL),
		Date:             date,
		PredictedInsulin: insulin,
		GlucoseValue:     glucose,
		TimeSlot:         slot,
	}
	e.Timestamp, _ = th.String(pod.SchemaTimestamp)
	if e.Timestamp == "" {
		e.Timestamp = timestampFromName(e.ID)
	}
	return e, true
}

// timestampFromName recupera HH:MM:SS de nombres "insulin-prediction-HH-MM-SS".
func timestampFromName(name string) string {
	rest, ok := strings.CutPrefix(name, idPrefix)
	if !ok || len(rest) < 8 {
		return ""
	}
	hms := rest[:8]
	if _, err := time.Parse("15-04-05", hms); err != nil {
		return ""
	}
	return strings.ReplaceAll(hms, "-", ":")
}

func thingName(url string) string {
	if i := strings.LastIndex(url, "#"); i >= 0 {
		return url[i+1:]
	}
	return url
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
