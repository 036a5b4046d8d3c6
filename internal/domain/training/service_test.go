package training

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"idhealth/internal/adapters/storage/memory"
	"idhealth/internal/platform/apperr"
	"idhealth/internal/platform/logger"
	"idhealth/internal/ports/pod"

	"github.com/google/go-cmp/cmp"
)

const storage = "https://alice.example/"

type fakeTrainer struct {
	calls  int
	values []float64
	err    error
}

func (f *fakeTrainer) Train(ctx context.Context, values []float64) (string, error) {
	f.calls++
	f.values = values
	if f.err != nil {
		return "", f.err
	}
	return "Model trained successfully", nil
}

type fakeSource struct {
	values []string
}

func (f fakeSource) Today() string { return "2025-01-10" }

func (f fakeSource) DistinctInsulinValues(ctx context.Context, storage, date string) ([]string, error) {
	if date != "2025-01-10" {
		return nil, errors.New("unexpected date " + date)
	}
	return f.values, nil
}

func newTestService(t *testing.T, src InsulinSource, tr Trainer) (*Service, *memory.PodStore) {
	t.Helper()
	st := memory.NewPodStore()
	svc := NewService(st, pod.NewUpdater(st), src, tr, logger.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 1, 10, 14, 30, 5, 0, time.Local) }
	return svc, st
}

func TestService_RecordAndListEvents(t *testing.T) {
	svc, st := newTestService(t, nil, nil)
	ctx := context.Background()

	if got, err := svc.ListEvents(ctx, storage); err != nil || len(got) != 0 {
		t.Fatalf("expected empty log, got %v %v", got, err)
	}

	ev, err := svc.RecordEvent(ctx, storage)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if ev.String() != "10 January 2025 -- 14:30" {
		t.Fatalf("event = %q", ev.String())
	}

	ds, err := st.GetDataset(ctx, storage+"training_date/index.ttl")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	things := ds.Things()
	if len(things) != 1 || !strings.HasPrefix(things[0].URL, ds.ThingURL("2025-01-10T14:30:05-")) {
		t.Fatalf("expected one thing named by timestamp, got %d", len(things))
	}
	th := things[0]
	if v, _ := th.String(pod.XSDDateTime); v != "2025-01-10T14:30:05" {
		t.Fatalf("stored value %q", v)
	}

	svc.now = func() time.Time { return time.Date(2025, 1, 9, 8, 0, 0, 0, time.Local) }
	if _, err := svc.RecordEvent(ctx, storage); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := svc.ListEvents(ctx, storage)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"10 January 2025 -- 14:30", "09 January 2025 -- 08:00"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events not in dataset order (-want +got):\n%s", diff)
	}
}

func TestService_RecordEvent_SameSecondKeepsBoth(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.RecordEvent(ctx, storage); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	got, err := svc.ListEvents(ctx, storage)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"10 January 2025 -- 14:30", "10 January 2025 -- 14:30"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestService_ListEvents_SkipsForeignThings(t *testing.T) {
	svc, st := newTestService(t, nil, nil)
	ds := pod.NewDataset(storage + "training_date/index.ttl")
	ds.Ensure(ds.ThingURL("2024-12-01T09:15:00")).Set(pod.XSDDateTime, pod.String("2024-12-01T09:15:00"))
	ds.Ensure(ds.ThingURL("other")).Set(pod.SchemaTime, pod.String("x"))
	ds.Ensure(ds.ThingURL("garbage")).Set(pod.XSDDateTime, pod.String("yesterday"))
	st.Seed(ds)

	got, err := svc.ListEvents(context.Background(), storage)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"01 December 2024 -- 09:15"}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestService_Trigger_InsufficientData(t *testing.T) {
	tr := &fakeTrainer{}
	svc, _ := newTestService(t, nil, tr)

	_, err := svc.Trigger(context.Background(), storage, []string{"1", "2", "3", "4", "5", "5", "1"})
	if !errors.Is(err, apperr.ErrInsufficientData) {
		t.Fatalf("expected InsufficientData, got %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("no request expected with insufficient data")
	}
	if evs, _ := svc.ListEvents(context.Background(), storage); len(evs) != 0 {
		t.Fatalf("no event expected, got %v", evs)
	}
}

func TestService_Trigger_Success(t *testing.T) {
	tr := &fakeTrainer{}
	svc, _ := newTestService(t, nil, tr)

	res, err := svc.Trigger(context.Background(), storage, []string{"1.2", "1.5", "2", "2.5", "3", "3.5", "2"})
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if tr.calls != 1 {
		t.Fatalf("expected one training call, got %d", tr.calls)
	}
	if diff := cmp.Diff([]float64{1.2, 1.5, 2, 2.5, 3, 3.5}, tr.values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	if !res.Recorded || res.Event == nil {
		t.Fatalf("expected recorded event, got %+v", res)
	}
	evs, _ := svc.ListEvents(context.Background(), storage)
	if len(evs) != 1 {
		t.Fatalf("expected exactly one event, got %v", evs)
	}
}

func TestService_Trigger_FailureRecordsNothing(t *testing.T) {
	tr := &fakeTrainer{err: apperr.ServerError(errors.New("status=500"), "train")}
	svc, _ := newTestService(t, nil, tr)

	_, err := svc.Trigger(context.Background(), storage, []string{"1", "2", "3", "4", "5", "6"})
	if !errors.Is(err, apperr.ErrServerError) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if evs, _ := svc.ListEvents(context.Background(), storage); len(evs) != 0 {
		t.Fatalf("no event expected after failure, got %v", evs)
	}
}

func TestService_Trigger_NonNumeric(t *testing.T) {
	tr := &fakeTrainer{}
	svc, _ := newTestService(t, nil, tr)

	for _, bad := range []string{"abc", "NaN", "+Inf"} {
		_, err := svc.Trigger(context.Background(), storage, []string{"1", "2", "3", "4", "5", bad})
		if !errors.Is(err, apperr.ErrInvalidInput) || tr.calls != 0 {
			t.Fatalf("%q: expected InvalidInput without call, got %v calls=%d", bad, err, tr.calls)
		}
	}
}

func TestService_TriggerFromPredictions(t *testing.T) {
	tr := &fakeTrainer{}
	src := fakeSource{values: []string{"1.31", "1.5", "2", "2.22", "3", "4"}}
	svc, _ := newTestService(t, src, tr)

	if _, err := svc.TriggerFromPredictions(context.Background(), storage); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if tr.calls != 1 || len(tr.values) != 6 {
		t.Fatalf("calls=%d values=%v", tr.calls, tr.values)
	}
}
