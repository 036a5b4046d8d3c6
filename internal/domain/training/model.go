package training

import (
	"context"
	"time"
)

// MinDistinctValues es el mínimo de valores distintos de insulina para entrenar.
const MinDistinctValues = 6

const (
	// EventLayout es el valor guardado de cada evento y el prefijo de su Thing.
	EventLayout = "2006-01-02T15:04:05"
	// DisplayLayout es como se listan los eventos.
	DisplayLayout = "02 January 2006 -- 15:04"
)

// Event es un entrenamiento exitoso registrado en el pod.
type Event struct {
	At time.Time
}

func (e Event) String() string {
	return e.At.Format(DisplayLayout)
}

// Result describe un entrenamiento disparado.
type Result struct {
	Values  []float64
	Message string

	// Recorded es false si el modelo entrenó pero no se pudo guardar el evento.
	Recorded bool
	Event    *Event
}

// Trainer es el servicio externo de entrenamiento.
type Trainer interface {
	Train(ctx context.Context, values []float64) (string, error)
}

// InsulinSource entrega los valores distintos de insulina predichos de un día.
type InsulinSource interface {
	Today() string
	DistinctInsulinValues(ctx context.Context, storage, date string) ([]string, error)
}
