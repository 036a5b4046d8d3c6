package profiles_test

import (
	"context"
	"errors"
	"testing"

	"idhealth/internal/adapters/storage/memory"
	"idhealth/internal/domain/profiles"
	"idhealth/internal/platform/apperr"
	"idhealth/internal/platform/logger"
	"idhealth/internal/ports/pod"

	"github.com/google/go-cmp/cmp"
)

const daveWebID = "https://dave.example/profile/card#me"

func TestService_Seed_ThenResolve(t *testing.T) {
	st := memory.NewPodStore()
	cache := memory.NewProfileCache()
	svc := profiles.NewService(st, logger.NewNop(), profiles.Options{Cache: cache})
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, daveWebID); err == nil {
		t.Fatalf("expected resolve to fail before seeding")
	}

	got, err := svc.Seed(ctx, daveWebID, profiles.SeedInput{
		Name:  "Dave Bianchi",
		Email: "mailto:dave@example.org",
		Role:  " Patient ",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	want := profiles.Profile{
		WebID:           daveWebID,
		Name:            "Dave Bianchi",
		Email:           "dave@example.org",
		StorageLocation: "https://dave.example/",
		Role:            profiles.RolePatient,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}

	resolved, err := svc.Resolve(ctx, daveWebID)
	if err != nil || resolved != want {
		t.Fatalf("resolve after seed = %+v, %v", resolved, err)
	}
}

func TestService_Seed_KeepsOtherTriplesAndChangesRole(t *testing.T) {
	st := memory.NewPodStore()
	card := pod.NewDataset("https://dave.example/profile/card")
	card.Ensure(card.ThingURL("key")).Set(pod.VCardValue, pod.String("public key"))
	st.Seed(card)

	cache := memory.NewProfileCache()
	svc := profiles.NewService(st, logger.NewNop(), profiles.Options{Cache: cache})
	ctx := context.Background()

	if _, err := svc.Seed(ctx, daveWebID, profiles.SeedInput{Role: profiles.RolePatient, Storage: "https://pods.example/dave"}); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	p, err := svc.Seed(ctx, daveWebID, profiles.SeedInput{Role: profiles.RoleDoctor, Storage: "https://pods.example/dave"})
	if err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	if p.Role != profiles.RoleDoctor || p.StorageLocation != "https://pods.example/dave/" {
		t.Fatalf("unexpected profile %+v", p)
	}

	ds, err := st.GetDataset(ctx, "https://dave.example/profile/card")
	if err != nil {
		t.Fatalf("get webid doc: %v", err)
	}
	if _, ok := ds.Thing(ds.ThingURL("key")); !ok {
		t.Fatalf("seed must keep unrelated things of the webid document")
	}
}

func TestService_Seed_Validation(t *testing.T) {
	svc := profiles.NewService(memory.NewPodStore(), logger.NewNop(), profiles.Options{})
	ctx := context.Background()

	cases := []struct {
		name  string
		webID string
		in    profiles.SeedInput
	}{
		{"relative webid", "dave", profiles.SeedInput{Role: profiles.RolePatient}},
		{"unknown role", daveWebID, profiles.SeedInput{Role: "admin"}},
		{"relative storage", daveWebID, profiles.SeedInput{Role: profiles.RoleDoctor, Storage: "pods/dave"}},
	}
	for _, tc := range cases {
		if _, err := svc.Seed(ctx, tc.webID, tc.in); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("%s: expected InvalidInput, got %v", tc.name, err)
		}
	}
}
