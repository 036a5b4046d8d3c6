package training

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"idhealth/internal/platform/apperr"
	"idhealth/internal/platform/logger"
	"idhealth/internal/ports/pod"
)

type Service struct {
	store   pod.Store
	updater *pod.Updater
	source  InsulinSource
	trainer Trainer
	log     logger.Logger
	now     func() time.Time
}

func NewService(store pod.Store, updater *pod.Updater, source InsulinSource, trainer Trainer, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:   store,
		updater: updater,
		source:  source,
		trainer: trainer,
		log:     log.With(map[string]any{"component": "training"}),
		now:     time.Now,
	}
}

func containerURL(storage string) string {
	return pod.Join(storage, pod.TrainingContainer)
}

func logURL(storage string) string {
	return containerURL(storage) + pod.DayDocument
}

// RecordEvent agrega un evento con la hora actual al log de entrenamientos.
func (s *Service) RecordEvent(ctx context.Context, storage string) (Event, error) {
	container := containerURL(storage)
	ok, err := s.store.Exists(ctx, container)
	if err != nil {
		s.log.Error("training container check failed", map[string]any{"url": container, "error": err})
		return Event{}, pod.AppError(err, "training")
	}
	if !ok {
		if err := s.store.CreateContainer(ctx, container); err != nil {
			s.log.Error("training container create failed", map[string]any{"url": container, "error": err})
			return Event{}, pod.AppError(err, "training")
		}
	}

	at := s.now().Truncate(time.Second)
	stamp := at.Format(EventLayout)
	// el sufijo evita que dos eventos del mismo segundo se pisen
	name := stamp + "-" + uuid.NewString()[:8]

	url := logURL(storage)
	err = s.updater.Update(ctx, url, true, func(ds *pod.Dataset) error {
		th := pod.NewThing(ds.ThingURL(name))
		th.Set(pod.XSDDateTime, pod.String(stamp))
		ds.SetThing(th)
		return nil
	})
	if err != nil {
		s.log.Error("training event save failed", map[string]any{"url": url, "error": err})
		return Event{}, pod.AppError(err, "training")
	}

	s.log.Info("training event recorded", map[string]any{"at": stamp, "id": name})
	return Event{At: at}, nil
}

// Events devuelve los eventos en el orden del dataset. Sin log, lista vacía.
func (s *Service) Events(ctx context.Context, storage string) ([]Event, error) {
	url := logURL(storage)
	ds, err := s.store.GetDataset(ctx, url)
	if errors.Is(err, pod.ErrNotFound) {
		return []Event{}, nil
	}
	if err != nil {
		s.log.Error("training events fetch failed", map[string]any{"url": url, "error": err})
		return nil, pod.AppError(err, "training")
	}

	out := make([]Event, 0, ds.Len())
	for _, th := range ds.Things() {
		raw, ok := th.String(pod.XSDDateTime)
		if !ok {
			continue
		}
		at, err := time.ParseInLocation(EventLayout, strings.TrimSpace(raw), time.Local)
		if err != nil {
			s.log.Warn("unparseable training event", map[string]any{"value": raw})
			continue
		}
		out = append(out, Event{At: at})
	}
	return out, nil
}

// ListEvents devuelve los eventos ya formateados para mostrar.
func (s *Service) ListEvents(ctx context.Context, storage string) ([]string, error) {
	events, err := s.Events(ctx, storage)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.String())
	}
	return out, nil
}

// Trigger entrena con los valores de insulina dados. Con menos de
// MinDistinctValues distintos no hay llamada de red. Solo un entrenamiento
// exitoso registra un evento.
func (s *Service) Trigger(ctx context.Context, storage string, values []string) (Result, error) {
	distinct := distinctValues(values)
	if len(distinct) < MinDistinctValues {
		s.log.Warn("not enough values to train", map[string]any{"distinct": len(distinct), "required": MinDistinctValues})
		return Result{}, apperr.InsufficientData("at least 6 distinct insulin values are required").
			With("distinct", len(distinct))
	}

	floats := make([]float64, 0, len(distinct))
	for _, v := range distinct {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Result{}, apperr.InvalidInput("insulin value is not a number").With("value", v)
		}
		floats = append(floats, f)
	}

	if s.trainer == nil {
		return Result{}, apperr.ServerError(errors.New("trainer not configured"), "train")
	}
	msg, err := s.trainer.Train(ctx, floats)
	if err != nil {
		s.log.Error("training request failed", map[string]any{"rows": len(floats), "error": err})
		return Result{}, err
	}
	s.log.Info("training completed", map[string]any{"rows": len(floats), "message": msg})

	res := Result{Values: floats, Message: msg}
	ev, err := s.RecordEvent(ctx, storage)
	if err != nil {
		s.log.Warn("training succeeded but event was not recorded", map[string]any{"error": err})
		return res, nil
	}
	res.Recorded = true
	res.Event = &ev
	return res, nil
}

// TriggerFromPredictions entrena con los predictedInsulin distintos de hoy.
func (s *Service) TriggerFromPredictions(ctx context.Context, storage string) (Result, error) {
	if s.source == nil {
		return Result{}, apperr.ServerError(errors.New("prediction source not configured"), "train")
	}
	values, err := s.source.DistinctInsulinValues(ctx, storage, s.source.Today())
	if err != nil {
		return Result{}, err
	}
	return s.Trigger(ctx, storage, values)
}

func distinctValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
