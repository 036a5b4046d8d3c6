package predictions

import (
	"math"
	"testing"

	"idhealth/internal/domain/measurements"
	"idhealth/internal/platform/logger"
)

func TestComputeInsulinAdvice(t *testing.T) {
	if a := ComputeInsulinAdvice(100); !a.Basal || a.String() != AdviceBasal {
		t.Fatalf("100 mg/dL should advise basal, got %+v", a)
	}
	if a := ComputeInsulinAdvice(65); !a.Basal {
		t.Fatalf("65 mg/dL should advise basal")
	}

	a := ComputeInsulinAdvice(118)
	if a.Basal {
		t.Fatalf("118 mg/dL should compute a dose")
	}
	want := (118.0 / 18) * 0.2
	if math.Abs(a.CalculatedDose-want) > 1e-9 || math.Abs(a.CalculatedDose-1.31) > 0.01 {
		t.Fatalf("dose = %v, want ≈ %v", a.CalculatedDose, want)
	}
}

func f(v float64) *float64 { return &v }

func TestFindLatestForTimeSlot(t *testing.T) {
	readings := []measurements.Reading{
		{ID: "a", Value: f(120), TimeSlot: "G at 13:00", InsertedAt: "13:01:00"},
		{ID: "b", Value: f(140), TimeSlot: "G at 13:00", InsertedAt: "13:20:00"},
		{ID: "c", Value: f(90), TimeSlot: "G at 09:30", InsertedAt: "23:59:59"},
		{ID: "d", Value: nil, TimeSlot: "G at 13:00", InsertedAt: "13:59:00"},
		{ID: "e", Value: f(150), TimeSlot: "G at 13:00", InsertedAt: "13:05:00"},
	}

	got := FindLatestForTimeSlot(logger.NewNop(), readings, "G at 13:00")
	if got == nil || got.ID != "b" {
		t.Fatalf("expected b, got %+v", got)
	}

	if got := FindLatestForTimeSlot(logger.NewNop(), readings, "G at 20:00"); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	if got := FindLatestForTimeSlot(nil, nil, "G at 13:00"); got != nil {
		t.Fatalf("expected nil on empty input")
	}
	if len(readings) != 5 {
		t.Fatalf("input must not be modified")
	}
}
