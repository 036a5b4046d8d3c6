package measurements

import (
	"strings"
	"time"
)

// TimeSlot es una de las seis franjas fijas de medición del día.
type TimeSlot string

const (
	SlotWaking TimeSlot = "G at Waking"
	Slot0930   TimeSlot = "G at 09:30"
	Slot1300   TimeSlot = "G at 13:00"
	Slot1500   TimeSlot = "G at 15:00"
	Slot1800   TimeSlot = "G at 18:00"
	Slot2000   TimeSlot = "G at 20:00"
)

// TimeSlots en orden del día.
var TimeSlots = []TimeSlot{SlotWaking, Slot0930, Slot1300, Slot1500, Slot1800, Slot2000}

func ParseTimeSlot(s string) (TimeSlot, bool) {
	s = strings.TrimSpace(s)
	for _, ts := range TimeSlots {
		if string(ts) == s {
			return ts, true
		}
	}
	return "", false
}

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "15:04:05"
)

// ValidDate acepta solo YYYY-MM-DD.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Entry es una medición completa (mg/dL).
type Entry struct {
	ID         string
	Date       string
	Value      float64
	TimeSlot   TimeSlot
	InsertedAt string // HH:MM:SS
}

type NewEntry struct {
	Value    float64
	TimeSlot string
}

// Reading es un registro crudo del pod; cualquier campo puede faltar.
type Reading struct {
	ID         string
	Value      *float64
	TimeSlot   string
	InsertedAt string
}

func (r Reading) Complete() bool {
	return r.Value != nil && r.TimeSlot != "" && r.InsertedAt != ""
}
