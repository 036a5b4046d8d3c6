package measurements

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"idhealth/internal/platform/apperr"
	"idhealth/internal/platform/logger"
	"idhealth/internal/ports/pod"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	idPrefix = "measurement-"

	countParallelism = 4
	dayCacheTTL      = 30 * time.Second
)

type cachedDay struct {
	entries []Entry
	at      time.Time
}

type Service struct {
	store   pod.Store
	updater *pod.Updater
	log     logger.Logger
	now     func() time.Time

	mu  sync.Mutex
	day map[string]map[string]cachedDay
}

func NewService(store pod.Store, updater *pod.Updater, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:   store,
		updater: updater,
		log:     log.With(map[string]any{"component": "measurements"}),
		now:     time.Now,
		day:     make(map[string]map[string]cachedDay),
	}
}

// Today devuelve la fecha local en formato de contenedor.
func (s *Service) Today() string {
	return s.now().Format(DateLayout)
}

func rootURL(storage string) string {
	return pod.Join(storage, pod.MeasurementsContainer)
}

func dayURL(storage, date string) string {
	return rootURL(storage) + date + "/" + pod.DayDocument
}

// CountAll suma los registros de todos los contenedores diarios.
// Sin contenedores (o sin raíz) el total es 0.
func (s *Service) CountAll(ctx context.Context, storage string) (int, error) {
	root := rootURL(storage)
	children, err := s.store.ListContained(ctx, root)
	if errors.Is(err, pod.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		s.log.Error("list measurement containers failed", map[string]any{"url": root, "error": err})
		return 0, pod.AppError(err, "measurements")
	}

	containers := make([]string, 0, len(children))
	for _, c := range children {
		if strings.HasSuffix(c, "/") {
			containers = append(containers, c)
		}
	}

	counts := make([]int, len(containers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(countParallelism)
	for i, c := range containers {
		g.Go(func() error {
			ds, err := s.store.GetDataset(gctx, c+pod.DayDocument)
			if errors.Is(err, pod.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			counts[i] = len(records(ds))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("count measurements failed", map[string]any{"url": root, "error": err})
		return 0, pod.AppError(err, "measurements")
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// ReadingsForDate devuelve todos los registros del día, incompletos incluidos.
// Un contenedor inexistente es una lista vacía.
func (s *Service) ReadingsForDate(ctx context.Context, storage, date string) ([]Reading, error) {
	if !ValidDate(date) {
		return nil, apperr.InvalidInput("date must be YYYY-MM-DD")
	}
	url := dayURL(storage, date)
	ds, err := s.store.GetDataset(ctx, url)
	if errors.Is(err, pod.ErrNotFound) {
		return []Reading{}, nil
	}
	if err != nil {
		s.log.Error("measurement day fetch failed", map[string]any{"url": url, "error": err})
		return nil, pod.AppError(err, "measurements")
	}

	out := make([]Reading, 0, ds.Len())
	for _, th := range records(ds) {
		out = append(out, toReading(th))
	}
	return out, nil
}

// ListForDate descarta registros sin valor, franja o timestamp.
func (s *Service) ListForDate(ctx context.Context, storage, date string) ([]Entry, error) {
	url := dayURL(storage, date)
	if cached, ok := s.cached(ctx, url); ok {
		return cached, nil
	}

	readings, err := s.ReadingsForDate(ctx, storage, date)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(readings))
	for _, r := range readings {
		if !r.Complete() {
			s.log.Debug("skipping incomplete measurement", map[string]any{"id": r.ID, "date": date})
			continue
		}
		out = append(out, Entry{
			ID:         r.ID,
			Date:       date,
			Value:      *r.Value,
			TimeSlot:   TimeSlot(r.TimeSlot),
			InsertedAt: r.InsertedAt,
		})
	}

	s.remember(ctx, url, out)
	return out, nil
}

func (s *Service) Insert(ctx context.Context, storage, date string, in NewEntry) (Entry, error) {
	if !ValidDate(date) {
		return Entry{}, apperr.InvalidInput("date must be YYYY-MM-DD")
	}
	slot, ok := ParseTimeSlot(in.TimeSlot)
	if !ok {
		return Entry{}, apperr.InvalidInput("unknown time slot").With("time_slot", in.TimeSlot)
	}
	if in.Value <= 0 {
		return Entry{}, apperr.InvalidInput("value must be positive")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Entry{}, apperr.Wrap(err, apperr.KindServerError, "ID_GENERATION", "could not generate record id")
	}
	e := Entry{
		ID:         idPrefix + id.String(),
		Date:       date,
		Value:      in.Value,
		TimeSlot:   slot,
		InsertedAt: s.now().Format(TimestampLayout),
	}

	url := dayURL(storage, date)
	err = s.updater.Update(ctx, url, true, func(ds *pod.Dataset) error {
		th := pod.NewThing(ds.ThingURL(e.ID))
		th.Set(pod.SchemaTime, pod.String(string(e.TimeSlot)))
		th.Set(pod.SchemaGlucoseValue, pod.Decimal(e.Value))
		th.Set(pod.SchemaTimestamp, pod.String(e.InsertedAt))
		ds.SetThing(th)
		return nil
	})
	if err != nil {
		s.log.Error("measurement insert failed", map[string]any{"url": url, "error": err})
		return Entry{}, pod.AppError(err, "measurements")
	}

	s.invalidate(url)
	s.log.Info("measurement inserted", map[string]any{"id": e.ID, "date": date, "time_slot": string(slot)})
	return e, nil
}

// Delete falla con NotFound si el registro no está; el dataset no se toca.
func (s *Service) Delete(ctx context.Context, storage, date, recordID string) error {
	if !ValidDate(date) {
		return apperr.InvalidInput("date must be YYYY-MM-DD")
	}
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return apperr.InvalidInput("record id required")
	}

	url := dayURL(storage, date)
	err := s.updater.Update(ctx, url, false, func(ds *pod.Dataset) error {
		if !ds.RemoveThing(ds.ThingURL(recordID)) {
			return apperr.NotFound("measurement not found").With("id", recordID)
		}
		return nil
	})
	if errors.Is(err, pod.ErrNotFound) {
		return apperr.NotFound("measurement not found").With("id", recordID)
	}
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.log.Error("measurement delete failed", map[string]any{"url": url, "id": recordID, "error": err})
		}
		return pod.AppError(err, "measurements")
	}

	s.forget(url, recordID)
	s.log.Info("measurement deleted", map[string]any{"id": recordID, "date": date})
	return nil
}

// records devuelve los Things que son mediciones.
func records(ds *pod.Dataset) []*pod.Thing {
	out := make([]*pod.Thing, 0, ds.Len())
	for _, th := range ds.Things() {
		if strings.HasPrefix(thingName(th.URL), idPrefix) {
			out = append(out, th)
		}
	}
	return out
}

func toReading(th *pod.Thing) Reading {
	r := Reading{ID: thingName(th.URL)}
	if v, ok := th.Decimal(pod.SchemaGlucoseValue); ok {
		r.Value = &v
	}
	r.TimeSlot, _ = th.String(pod.SchemaTime)
	r.InsertedAt, _ = th.String(pod.SchemaTimestamp)
	return r
}

func thingName(url string) string {
	if i := strings.LastIndex(url, "#"); i >= 0 {
		return url[i+1:]
	}
	return url
}

// -------------------------
// Cache de listas por día
// -------------------------

// Las listas se guardan por access token: cada usuario ve solo lo que su pod
// le dejó leer.

func (s *Service) cached(ctx context.Context, url string) ([]Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byToken := s.day[url]
	c, ok := byToken[pod.AccessToken(ctx)]
	if !ok {
		return nil, false
	}
	if s.now().Sub(c.at) > dayCacheTTL {
		delete(byToken, pod.AccessToken(ctx))
		return nil, false
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out, true
}

func (s *Service) remember(ctx context.Context, url string, entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	if s.day[url] == nil {
		s.day[url] = make(map[string]cachedDay)
	}
	s.day[url][pod.AccessToken(ctx)] = cachedDay{entries: cp, at: s.now()}
}

func (s *Service) invalidate(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.day, url)
}

// forget filtra el registro borrado de todas las listas cacheadas del día.
func (s *Service) forget(url, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, c := range s.day[url] {
		kept := make([]Entry, 0, len(c.entries))
		for _, e := range c.entries {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		c.entries = kept
		s.day[url][tok] = c
	}
}
