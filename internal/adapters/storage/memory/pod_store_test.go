package memory

import (
	"context"
	"errors"
	"testing"

	"idhealth/internal/ports/pod"

	"github.com/google/go-cmp/cmp"
)

func TestPodStore_ConditionalWrites(t *testing.T) {
	st := NewPodStore()
	ctx := context.Background()
	url := "https://alice.example/prediction/2025-01-10/index.ttl"

	ds := pod.NewDataset(url)
	ds.Ensure(ds.ThingURL("p1")).Set(pod.SchemaPredictedInsulin, pod.String("1.31"))
	if err := st.SaveDataset(ctx, ds); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := st.SaveDataset(ctx, pod.NewDataset(url)); !errors.Is(err, pod.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure on re-create, got %v", err)
	}

	a, _ := st.GetDataset(ctx, url)
	b, _ := st.GetDataset(ctx, url)
	a.Ensure(a.ThingURL("p2"))
	if err := st.SaveDataset(ctx, a); err != nil {
		t.Fatalf("update a: %v", err)
	}
	b.Ensure(b.ThingURL("p3"))
	if err := st.SaveDataset(ctx, b); !errors.Is(err, pod.ErrPreconditionFailed) {
		t.Fatalf("expected stale write rejected, got %v", err)
	}
}

func TestPodStore_GetReturnsCopy(t *testing.T) {
	st := NewPodStore()
	ctx := context.Background()
	url := "https://alice.example/x.ttl"

	ds := pod.NewDataset(url)
	ds.Ensure(ds.ThingURL("a"))
	st.Seed(ds)

	got, _ := st.GetDataset(ctx, url)
	got.RemoveThing(got.ThingURL("a"))

	again, _ := st.GetDataset(ctx, url)
	if again.Len() != 1 {
		t.Fatalf("stored dataset mutated through returned copy")
	}
}

func TestPodStore_ListContained(t *testing.T) {
	st := NewPodStore()
	ctx := context.Background()
	root := "https://alice.example/measuraments/"

	if _, err := st.ListContained(ctx, root); !errors.Is(err, pod.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missing container, got %v", err)
	}

	st.Seed(pod.NewDataset(root + "2025-01-11/index.ttl"))
	st.Seed(pod.NewDataset(root + "2025-01-10/index.ttl"))
	if err := st.CreateContainer(ctx, root+"2025-01-12"); err != nil {
		t.Fatalf("create container: %v", err)
	}

	got, err := st.ListContained(ctx, root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{root + "2025-01-10/", root + "2025-01-11/", root + "2025-01-12/"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	ok, _ := st.Exists(ctx, root+"2025-01-12/")
	if !ok {
		t.Fatalf("expected created container to exist")
	}
	ok, _ = st.Exists(ctx, "https://alice.example/patient/Patient.ttl")
	if ok {
		t.Fatalf("patient record should not exist")
	}
}
