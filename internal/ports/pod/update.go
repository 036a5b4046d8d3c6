package pod

import (
	"context"
	"errors"
	"fmt"

	"idhealth/internal/platform/keylock"
)

const maxUpdateAttempts = 3

// Updater aplica read-modify-write sobre datasets: serializa por URL dentro
// del proceso y usa escritura condicional contra el store para detectar
// escritores concurrentes de otros procesos.
type Updater struct {
	store Store
	locks *keylock.Locker
}

func NewUpdater(store Store) *Updater {
	return &Updater{store: store, locks: keylock.New()}
}

// Update carga url (o un dataset vacío si no existe y create es true), aplica
// fn y guarda. fn puede ejecutarse más de una vez si hay conflicto, así que no
// debe tener efectos fuera del dataset. Si fn devuelve error no se escribe nada.
func (u *Updater) Update(ctx context.Context, url string, create bool, fn func(*Dataset) error) error {
	unlock := u.locks.Lock(url)
	defer unlock()

	var lastErr error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		ds, err := u.store.GetDataset(ctx, url)
		if err != nil {
			if !errors.Is(err, ErrNotFound) || !create {
				return err
			}
			ds = NewDataset(url)
		}

		if err := fn(ds); err != nil {
			return err
		}

		err = u.store.SaveDataset(ctx, ds)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrPreconditionFailed) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("update %s: %w", url, lastErr)
}
