package patients

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"idhealth/internal/adapters/storage/memory"
	"idhealth/internal/platform/apperr"
	"idhealth/internal/platform/logger"
	"idhealth/internal/ports/pod"
)

const (
	storage = "https://alice.example/"
	webID   = "https://alice.example/profile/card#me"
)

type failingStore struct {
	pod.Store
}

func (failingStore) Exists(ctx context.Context, url string) (bool, error) {
	return false, fmt.Errorf("dial: %w", pod.ErrUpstream)
}

func (failingStore) GetDataset(ctx context.Context, url string) (*pod.Dataset, error) {
	return nil, fmt.Errorf("dial: %w", pod.ErrUpstream)
}

func newTestService() (*Service, *memory.PodStore) {
	st := memory.NewPodStore()
	svc := NewService(st, pod.NewUpdater(st), logger.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC) }
	return svc, st
}

func TestService_HasRecordAndLoad_Absent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if svc.HasRecord(ctx, storage) {
		t.Fatalf("expected no record")
	}
	rec, err := svc.Load(ctx, storage, webID)
	if err != nil || rec != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", rec, err)
	}
}

func TestService_HasRecord_FailureIsFalse(t *testing.T) {
	svc := NewService(failingStore{}, nil, logger.NewNop())
	if svc.HasRecord(context.Background(), storage) {
		t.Fatalf("network failure must read as absent")
	}
	if _, err := svc.Load(context.Background(), storage, webID); !errors.Is(err, apperr.ErrNetworkFailure) {
		t.Fatalf("expected NetworkFailure from Load, got %v", err)
	}
}

func TestService_SaveThenLoad(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Save(ctx, storage, webID, SaveInput{
		GivenName:    " Alice ",
		FamilyName:   "Rossi",
		BirthDate:    "1990-04-02",
		Gender:       "female",
		DiabetesType: DiabetesType1,
		Extra:        map[string]string{"http://schema.org/weight": "62"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if !svc.HasRecord(ctx, storage) {
		t.Fatalf("expected record after save")
	}
	rec, err := svc.Load(ctx, storage, webID)
	if err != nil || rec == nil {
		t.Fatalf("load: %+v %v", rec, err)
	}
	if rec.GivenName != "Alice" || rec.FamilyName != "Rossi" || rec.DiabetesType != DiabetesType1 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.BirthDate == nil || rec.BirthDate.Format("2006-01-02") != "1990-04-02" {
		t.Fatalf("birth date = %v", rec.BirthDate)
	}
	if rec.Extra["http://schema.org/weight"] != "62" {
		t.Fatalf("extra = %v", rec.Extra)
	}
	if rec.CreatedAt != "2025-01-10T09:00:00Z" {
		t.Fatalf("created_at = %q", rec.CreatedAt)
	}

	// Reemplazo conserva la fecha de creación.
	svc.now = func() time.Time { return time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC) }
	if _, err := svc.Save(ctx, storage, webID, SaveInput{GivenName: "Alice", FamilyName: "Bianchi"}); err != nil {
		t.Fatalf("resave: %v", err)
	}
	rec, _ = svc.Load(ctx, storage, webID)
	if rec.FamilyName != "Bianchi" || rec.CreatedAt != "2025-01-10T09:00:00Z" {
		t.Fatalf("unexpected record after resave %+v", rec)
	}
}

func TestService_Save_Validation(t *testing.T) {
	svc, _ := newTestService()
	cases := []SaveInput{
		{FamilyName: "Rossi"},
		{GivenName: "Alice", FamilyName: "Rossi", BirthDate: "02/04/1990"},
		{GivenName: "Alice", FamilyName: "Rossi", DiabetesType: "type3"},
		{GivenName: "Alice", FamilyName: "Rossi", Extra: map[string]string{"weight": "62"}},
	}
	for i, in := range cases {
		if _, err := svc.Save(context.Background(), storage, webID, in); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("case %d: expected InvalidInput, got %v", i, err)
		}
	}
}

func TestService_GrantsDoctor(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	const bob = "https://bob.example/profile/card#me"

	ok, err := svc.GrantsDoctor(ctx, storage, bob)
	if err != nil || ok {
		t.Fatalf("no record must grant nothing, got %v %v", ok, err)
	}

	rec, err := svc.Save(ctx, storage, webID, SaveInput{
		GivenName:  "Alice",
		FamilyName: "Rossi",
		Doctors:    []string{bob, " " + bob + " "},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(rec.Doctors) != 1 || rec.Doctors[0] != bob {
		t.Fatalf("doctors = %v", rec.Doctors)
	}

	if ok, err := svc.GrantsDoctor(ctx, storage, bob); err != nil || !ok {
		t.Fatalf("expected grant for bob, got %v %v", ok, err)
	}
	if ok, _ := svc.GrantsDoctor(ctx, storage, "https://eve.example/profile/card#me"); ok {
		t.Fatalf("eve must not be granted")
	}

	loaded, err := svc.Load(ctx, storage, webID)
	if err != nil || loaded == nil || len(loaded.Doctors) != 1 {
		t.Fatalf("load = %+v, %v", loaded, err)
	}
	if _, ok := loaded.Extra[pod.ACLAgent]; ok {
		t.Fatalf("grants must not leak into extra")
	}

	if _, err := svc.Save(ctx, storage, webID, SaveInput{GivenName: "Alice", FamilyName: "Rossi"}); err != nil {
		t.Fatalf("save without doctors: %v", err)
	}
	if ok, _ := svc.GrantsDoctor(ctx, storage, bob); ok {
		t.Fatalf("saving without doctors revokes the grant")
	}
}

func TestService_GrantsDoctor_UpstreamFailure(t *testing.T) {
	svc := NewService(failingStore{}, nil, logger.NewNop())
	if _, err := svc.GrantsDoctor(context.Background(), storage, "https://bob.example/profile/card#me"); !errors.Is(err, apperr.ErrNetworkFailure) {
		t.Fatalf("expected NetworkFailure, got %v", err)
	}
}

func TestService_Save_RejectsRelativeDoctor(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Save(context.Background(), storage, webID, SaveInput{GivenName: "A", FamilyName: "R", Doctors: []string{"bob"}})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}
