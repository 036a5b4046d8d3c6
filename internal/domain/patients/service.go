package patients

import (
	"context"
	"errors"
	"strings"
	"time"

	"idhealth/internal/platform/apperr"
	"idhealth/internal/platform/logger"
	"idhealth/internal/ports/pod"
)

const (
	recordThing = "patient"
	dateLayout  = "2006-01-02"
)

var known = map[string]struct{}{
	pod.SchemaGivenName:   {},
	pod.SchemaFamilyName:  {},
	pod.SchemaBirthDate:   {},
	pod.SchemaGender:      {},
	pod.SchemaDiagnosis:   {},
	pod.SchemaDateCreated: {},
	pod.ACLAgent:          {},
}

type Service struct {
	store   pod.Store
	updater *pod.Updater
	log     logger.Logger
	now     func() time.Time
}

func NewService(store pod.Store, updater *pod.Updater, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:   store,
		updater: updater,
		log:     log.With(map[string]any{"component": "patients"}),
		now:     time.Now,
	}
}

func recordURL(storage string) string {
	return pod.Join(storage, pod.PatientDocument)
}

// HasRecord no distingue entre ausencia y fallo de red: ambos son false.
func (s *Service) HasRecord(ctx context.Context, storage string) bool {
	url := recordURL(storage)
	ok, err := s.store.Exists(ctx, url)
	if err != nil {
		s.log.Warn("patient record check failed", map[string]any{"url": url, "error": err})
		return false
	}
	return ok
}

// Load devuelve nil, nil si el documento no existe.
func (s *Service) Load(ctx context.Context, storage, webID string) (*PatientRecord, error) {
	url := recordURL(storage)
	ds, err := s.store.GetDataset(ctx, url)
	if errors.Is(err, pod.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("patient record fetch failed", map[string]any{"url": url, "error": err})
		return nil, pod.AppError(err, "patient record")
	}

	th := recordOf(ds, webID)
	if th == nil {
		return nil, nil
	}
	rec := fromThing(th)
	rec.WebID = webID
	return &rec, nil
}

type SaveInput struct {
	GivenName    string
	FamilyName   string
	BirthDate    string // YYYY-MM-DD opcional
	Gender       string
	DiabetesType DiabetesType
	Doctors      []string
	Extra        map[string]string
}

// Save crea o reemplaza la ficha del paciente.
func (s *Service) Save(ctx context.Context, storage, webID string, in SaveInput) (PatientRecord, error) {
	in.GivenName = strings.TrimSpace(in.GivenName)
	in.FamilyName = strings.TrimSpace(in.FamilyName)
	if in.GivenName == "" || in.FamilyName == "" {
		return PatientRecord{}, apperr.InvalidInput("given_name and family_name are required")
	}

	var bd *time.Time
	if strings.TrimSpace(in.BirthDate) != "" {
		t, err := time.Parse(dateLayout, strings.TrimSpace(in.BirthDate))
		if err != nil {
			return PatientRecord{}, apperr.InvalidInput("birth_date must be YYYY-MM-DD")
		}
		bd = &t
	}

	switch in.DiabetesType {
	case "", DiabetesType1, DiabetesType2, DiabetesTypeGestational, DiabetesTypeOther:
	default:
		return PatientRecord{}, apperr.InvalidInput("unknown diabetes_type")
	}

	doctors := make([]string, 0, len(in.Doctors))
	seen := make(map[string]struct{}, len(in.Doctors))
	for _, d := range in.Doctors {
		d = strings.TrimSpace(d)
		if !strings.HasPrefix(d, "https://") && !strings.HasPrefix(d, "http://") {
			return PatientRecord{}, apperr.InvalidInput("doctors must be absolute WebID URLs")
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		doctors = append(doctors, d)
	}

	for k := range in.Extra {
		if !strings.HasPrefix(k, "http://") && !strings.HasPrefix(k, "https://") {
			return PatientRecord{}, apperr.InvalidInput("extra keys must be absolute predicate IRIs")
		}
	}

	var saved PatientRecord
	url := recordURL(storage)
	err := s.updater.Update(ctx, url, true, func(ds *pod.Dataset) error {
		created := s.now().UTC().Format(time.RFC3339)
		if old := recordOf(ds, webID); old != nil {
			if v, ok := old.String(pod.SchemaDateCreated); ok {
				created = v
			}
			ds.RemoveThing(old.URL)
		}

		th := pod.NewThing(ds.ThingURL(recordThing))
		th.Set(pod.SchemaGivenName, pod.String(in.GivenName))
		th.Set(pod.SchemaFamilyName, pod.String(in.FamilyName))
		if bd != nil {
			th.Set(pod.SchemaBirthDate, pod.Value{Kind: pod.KindLiteral, Lexical: bd.Format(dateLayout), Datatype: pod.XSDDate})
		}
		if g := strings.TrimSpace(in.Gender); g != "" {
			th.Set(pod.SchemaGender, pod.String(g))
		}
		if in.DiabetesType != "" {
			th.Set(pod.SchemaDiagnosis, pod.String(string(in.DiabetesType)))
		}
		th.Set(pod.SchemaDateCreated, pod.String(created))
		for _, d := range doctors {
			th.Add(pod.ACLAgent, pod.IRI(d))
		}
		for k, v := range in.Extra {
			if _, ok := known[k]; ok {
				continue
			}
			th.Set(k, pod.String(v))
		}
		ds.SetThing(th)

		saved = fromThing(th)
		saved.WebID = webID
		return nil
	})
	if err != nil {
		s.log.Error("patient record save failed", map[string]any{"url": url, "error": err})
		return PatientRecord{}, pod.AppError(err, "patient record")
	}
	return saved, nil
}

// GrantsDoctor indica si la ficha del paciente en storage autoriza a
// doctorWebID. Sin ficha no hay autorización.
func (s *Service) GrantsDoctor(ctx context.Context, storage, doctorWebID string) (bool, error) {
	url := recordURL(storage)
	ds, err := s.store.GetDataset(ctx, url)
	if errors.Is(err, pod.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		s.log.Warn("patient grants fetch failed", map[string]any{"url": url, "error": err})
		return false, pod.AppError(err, "patient record")
	}

	th := recordOf(ds, "")
	if th == nil {
		return false, nil
	}
	for _, d := range th.URLs(pod.ACLAgent) {
		if d == doctorWebID {
			return true, nil
		}
	}
	return false, nil
}

// recordOf busca la ficha: el Thing del WebID, #patient o el primero.
func recordOf(ds *pod.Dataset, webID string) *pod.Thing {
	if th, ok := ds.Thing(webID); ok {
		return th
	}
	if th, ok := ds.Thing(ds.ThingURL(recordThing)); ok {
		return th
	}
	things := ds.Things()
	if len(things) == 0 {
		return nil
	}
	return things[0]
}

func fromThing(th *pod.Thing) PatientRecord {
	rec := PatientRecord{Extra: map[string]string{}}
	rec.GivenName, _ = th.String(pod.SchemaGivenName)
	rec.FamilyName, _ = th.String(pod.SchemaFamilyName)
	rec.Gender, _ = th.String(pod.SchemaGender)
	rec.CreatedAt, _ = th.String(pod.SchemaDateCreated)
	rec.Doctors = th.URLs(pod.ACLAgent)
	if v, ok := th.String(pod.SchemaDiagnosis); ok {
		rec.DiabetesType = DiabetesType(v)
	}
	if v, ok := th.String(pod.SchemaBirthDate); ok {
		if t, err := time.Parse(dateLayout, v); err == nil {
			rec.BirthDate = &t
		}
	}
	for _, p := range th.Predicates() {
		if _, ok := known[p]; ok {
			continue
		}
		if v, ok := th.String(p); ok {
			rec.Extra[p] = v
		}
	}
	return rec
}
